package models

// GameState is the lifecycle state of one activity session
type GameState string

const (
	StateIdle      GameState = "idle"
	StateRules     GameState = "rules"
	StatePlaying   GameState = "playing"
	StatePaused    GameState = "paused"
	StateCompleted GameState = "completed"
	StateFailed    GameState = "failed"
)

// Terminal reports whether the state ends the session
func (s GameState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// GameConfig parameterizes one session. It is immutable input for the
// engine; difficulty presets produce it for the next session.
type GameConfig struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	MaxTime          int     `json:"max_time"` // seconds, 0 = no limit
	MaxQuestions     int     `json:"max_questions"`
	PointsPerCorrect int     `json:"points_per_correct"`
	PointsPerWrong   int     `json:"points_per_wrong"`
	XPMultiplier     float64 `json:"xp_multiplier"`
	DifficultyLevel  int     `json:"difficulty_level"` // 1-5
}

// GameProgress is the engine's mutable per-session state
type GameProgress struct {
	Score           int `json:"score"`
	CorrectAnswers  int `json:"correct_answers"`
	WrongAnswers    int `json:"wrong_answers"`
	TimeElapsed     int `json:"time_elapsed"` // seconds
	CurrentQuestion int `json:"current_question"`
	TotalQuestions  int `json:"total_questions"`
	Streak          int `json:"streak"`
	MaxStreak       int `json:"max_streak"`
}

// GameResult is the immutable snapshot computed once at completion
type GameResult struct {
	Score     int     `json:"score"`
	XPEarned  int     `json:"xp_earned"`
	Stars     int     `json:"stars"` // 0-3
	Accuracy  float64 `json:"accuracy"`
	TimeSpent int     `json:"time_spent"`
	Completed bool    `json:"completed"`
	Passed    bool    `json:"passed"`
}

// AnswerOutcome is the immediate feedback from one submitted answer
type AnswerOutcome struct {
	PointsEarned int  `json:"points_earned"`
	IsCorrect    bool `json:"is_correct"`
}

// Question is one record from the content source. The engine treats it as
// opaque input; only CorrectAnswers participates in answer matching.
type Question struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"` // mcq, input, drag-drop, match, sequence, tap
	Question       string   `json:"question"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswers []string `json:"correct_answers"`
	Hint           string   `json:"hint,omitempty"`
	Points         int      `json:"points,omitempty"`
	Difficulty     int      `json:"difficulty,omitempty"` // 1-5
}
