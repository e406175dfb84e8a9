package content

import (
	"math/rand"

	"github.com/architect/learning-playground/internal/common/errors"
	"github.com/architect/learning-playground/internal/session/models"
)

// Question banks per subject. Content here is an opaque data source for the
// engine; real deployments swap in the full curriculum banks.
var questionBanks = map[string][]models.Question{
	"math": {
		{ID: "math_1", Type: "mcq", Question: "What is 7 + 5?", Options: []string{"10", "11", "12", "13"}, CorrectAnswers: []string{"12"}, Points: 10},
		{ID: "math_2", Type: "mcq", Question: "What is 9 × 6?", Options: []string{"52", "54", "56", "58"}, CorrectAnswers: []string{"54"}, Points: 10},
		{ID: "math_3", Type: "input", Question: "What is 100 ÷ 4?", CorrectAnswers: []string{"25"}, Points: 10},
		{ID: "math_4", Type: "mcq", Question: "Which number is prime?", Options: []string{"9", "15", "17", "21"}, CorrectAnswers: []string{"17"}, Hint: "It has exactly two divisors", Points: 15},
		{ID: "math_5", Type: "input", Question: "What is 12 squared?", CorrectAnswers: []string{"144"}, Points: 15},
		{ID: "math_6", Type: "mcq", Question: "What is 3/4 as a percentage?", Options: []string{"25%", "50%", "75%", "80%"}, CorrectAnswers: []string{"75%"}, Points: 10},
		{ID: "math_7", Type: "input", Question: "What is 15% of 200?", CorrectAnswers: []string{"30"}, Points: 15},
		{ID: "math_8", Type: "mcq", Question: "How many degrees in a right angle?", Options: []string{"45", "90", "180", "360"}, CorrectAnswers: []string{"90"}, Points: 10},
	},
	"science": {
		{ID: "sci_1", Type: "mcq", Question: "What planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Saturn"}, CorrectAnswers: []string{"Mars"}, Points: 10},
		{ID: "sci_2", Type: "mcq", Question: "What gas do plants absorb from the air?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Helium"}, CorrectAnswers: []string{"Carbon dioxide"}, Points: 10},
		{ID: "sci_3", Type: "input", Question: "What is H2O commonly called?", CorrectAnswers: []string{"water"}, Points: 10},
		{ID: "sci_4", Type: "mcq", Question: "How many legs does an insect have?", Options: []string{"4", "6", "8", "10"}, CorrectAnswers: []string{"6"}, Points: 10},
		{ID: "sci_5", Type: "match", Question: "Which of these are mammals?", Options: []string{"whale", "shark", "bat", "penguin"}, CorrectAnswers: []string{"whale", "bat"}, Hint: "They feed their young milk", Points: 15},
		{ID: "sci_6", Type: "mcq", Question: "What force pulls objects toward Earth?", Options: []string{"Magnetism", "Gravity", "Friction", "Inertia"}, CorrectAnswers: []string{"Gravity"}, Points: 10},
	},
	"english": {
		{ID: "eng_1", Type: "mcq", Question: "Which word is a noun?", Options: []string{"run", "happy", "dog", "quickly"}, CorrectAnswers: []string{"dog"}, Points: 10},
		{ID: "eng_2", Type: "input", Question: "What is the plural of 'child'?", CorrectAnswers: []string{"children"}, Points: 10},
		{ID: "eng_3", Type: "mcq", Question: "Which word is spelled correctly?", Options: []string{"recieve", "receive", "receeve", "receve"}, CorrectAnswers: []string{"receive"}, Points: 10},
		{ID: "eng_4", Type: "input", Question: "What is the opposite of 'ancient'?", CorrectAnswers: []string{"modern", "new"}, Points: 15},
		{ID: "eng_5", Type: "mcq", Question: "Which sentence uses the correct verb?", Options: []string{"She don't like tea", "She doesn't like tea", "She not like tea", "She no likes tea"}, CorrectAnswers: []string{"She doesn't like tea"}, Points: 10},
	},
	"geography": {
		{ID: "geo_1", Type: "mcq", Question: "What is the largest ocean?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, CorrectAnswers: []string{"Pacific"}, Points: 10},
		{ID: "geo_2", Type: "input", Question: "What is the capital of France?", CorrectAnswers: []string{"paris"}, Points: 10},
		{ID: "geo_3", Type: "mcq", Question: "Which continent is the Sahara desert in?", Options: []string{"Asia", "Africa", "Australia", "South America"}, CorrectAnswers: []string{"Africa"}, Points: 10},
		{ID: "geo_4", Type: "mcq", Question: "How many continents are there?", Options: []string{"5", "6", "7", "8"}, CorrectAnswers: []string{"7"}, Points: 10},
		{ID: "geo_5", Type: "input", Question: "Which river flows through Egypt?", CorrectAnswers: []string{"nile", "the nile"}, Points: 15},
	},
	"history": {
		{ID: "his_1", Type: "mcq", Question: "Who built the pyramids of Giza?", Options: []string{"Romans", "Greeks", "Egyptians", "Mayans"}, CorrectAnswers: []string{"Egyptians"}, Points: 10},
		{ID: "his_2", Type: "mcq", Question: "In which year did World War II end?", Options: []string{"1918", "1939", "1945", "1950"}, CorrectAnswers: []string{"1945"}, Points: 10},
		{ID: "his_3", Type: "input", Question: "What wonder of the world stood in Alexandria?", CorrectAnswers: []string{"lighthouse", "the lighthouse"}, Hint: "It guided ships into the harbour", Points: 15},
		{ID: "his_4", Type: "mcq", Question: "The Great Wall is located in which country?", Options: []string{"Japan", "India", "China", "Mongolia"}, CorrectAnswers: []string{"China"}, Points: 10},
	},
}

// Subjects lists the subjects that have question banks
func Subjects() []string {
	return []string{"math", "science", "english", "geography", "history"}
}

// QuestionsForSubject returns the full bank for a subject
func QuestionsForSubject(subject string) ([]models.Question, error) {
	bank, ok := questionBanks[subject]
	if !ok {
		return nil, errors.NotFound("subject")
	}
	out := make([]models.Question, len(bank))
	copy(out, bank)
	return out, nil
}

// RandomQuestions returns up to count shuffled questions from a subject's
// bank
func RandomQuestions(subject string, count int) ([]models.Question, error) {
	bank, err := QuestionsForSubject(subject)
	if err != nil {
		return nil, err
	}
	Shuffle(bank)
	if count > 0 && count < len(bank) {
		bank = bank[:count]
	}
	return bank, nil
}

// Shuffle randomizes question order in place
func Shuffle(questions []models.Question) {
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
