package models

// Metrics tracks per class/subject performance used to steer difficulty
type Metrics struct {
	CurrentDifficulty int       `json:"currentDifficulty"`
	CorrectStreak     int       `json:"correctStreak"`
	TotalAttempts     int       `json:"totalAttempts"`
	CorrectAttempts   int       `json:"correctAttempts"`
	AverageTime       float64   `json:"averageTime"`
	RecentScores      []float64 `json:"recentScores"`
}

// Accuracy is the lifetime correct ratio as a percentage. With no attempts
// yet it reports the neutral prior of 70, the same baseline the adjustment
// rules assume for an empty score history.
func (m *Metrics) Accuracy() float64 {
	if m.TotalAttempts == 0 {
		return 70
	}
	return float64(m.CorrectAttempts) / float64(m.TotalAttempts) * 100
}

// Settings are the gameplay knobs a difficulty level maps to
type Settings struct {
	Level            int     `json:"level"`
	TimeMultiplier   float64 `json:"timeMultiplier"`
	HintsEnabled     bool    `json:"hintsEnabled"`
	QuestionCount    int     `json:"questionCount"`
	PointsMultiplier float64 `json:"pointsMultiplier"`
}

// Adjustment describes a difficulty change and why it happened.
// Change is -1, 0 or +1; the new level is already clamped to [1, 5].
type Adjustment struct {
	PreviousLevel int    `json:"previousLevel"`
	NewLevel      int    `json:"newLevel"`
	Change        int    `json:"change"`
	Reason        string `json:"reason"`
}

// presets indexed by level-1
var presets = [5]Settings{
	{Level: 1, TimeMultiplier: 1.5, HintsEnabled: true, QuestionCount: 5, PointsMultiplier: 0.8},
	{Level: 2, TimeMultiplier: 1.2, HintsEnabled: true, QuestionCount: 8, PointsMultiplier: 1.0},
	{Level: 3, TimeMultiplier: 1.0, HintsEnabled: false, QuestionCount: 10, PointsMultiplier: 1.2},
	{Level: 4, TimeMultiplier: 0.8, HintsEnabled: false, QuestionCount: 12, PointsMultiplier: 1.5},
	{Level: 5, TimeMultiplier: 0.6, HintsEnabled: false, QuestionCount: 15, PointsMultiplier: 2.0},
}

// SettingsForLevel returns the preset for a level, clamping out-of-range
// levels to the nearest valid one
func SettingsForLevel(level int) Settings {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return presets[level-1]
}

var labels = [5]string{"Easy", "Medium", "Standard", "Hard", "Expert"}

// LabelForLevel returns the display name of a difficulty level
func LabelForLevel(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return labels[level-1]
}

// InitialDifficultyForClass maps a class number to a starting level
func InitialDifficultyForClass(classNumber int) int {
	switch {
	case classNumber <= 3:
		return 1
	case classNumber <= 5:
		return 2
	case classNumber <= 7:
		return 3
	case classNumber <= 9:
		return 4
	default:
		return 5
	}
}
