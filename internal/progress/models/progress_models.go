package models

import (
	"time"
)

// ActivityType categorizes a playable unit
type ActivityType string

const (
	ActivityLearn    ActivityType = "learn"
	ActivityPlay     ActivityType = "play"
	ActivityPractice ActivityType = "practice"
	ActivityQuiz     ActivityType = "quiz"
)

// Valid reports whether the type is one of the four known categories
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityLearn, ActivityPlay, ActivityPractice, ActivityQuiz:
		return true
	}
	return false
}

// PlayerProfile is the singleton per-device player record
type PlayerProfile struct {
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar"`
	TotalXP      int       `json:"total_xp"`
	Level        int       `json:"level"`
	CreatedAt    time.Time `json:"created_at"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

// ProfileUpdate carries a shallow-merge patch; nil fields are left untouched
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// XPAward is the outcome of an AddXP call
type XPAward struct {
	NewTotal int  `json:"new_total"`
	LevelUp  bool `json:"level_up"`
	NewLevel int  `json:"new_level"`
}

// SubjectProgress tracks everything a player did in one (class, subject) pair
type SubjectProgress struct {
	SubjectID         string         `json:"subject_id"`
	LessonsCompleted  []int          `json:"lessons_completed"`
	GamesCompleted    []int          `json:"games_completed"`
	QuizzesCompleted  []int          `json:"quizzes_completed"`
	PracticeCompleted []int          `json:"practice_completed"`
	TotalXP           int            `json:"total_xp"`
	Accuracy          float64        `json:"accuracy"`
	TimeSpent         int            `json:"time_spent"` // seconds
	LastPlayedAt      time.Time      `json:"last_played_at"`
	HighScores        map[string]int `json:"high_scores"` // "{type}_{id}" -> best score
	Stars             map[string]int `json:"stars"`       // "{type}_{id}" -> best stars
}

// CompletedCount is the number of completed activities across all categories
func (s *SubjectProgress) CompletedCount() int {
	return len(s.LessonsCompleted) + len(s.GamesCompleted) +
		len(s.QuizzesCompleted) + len(s.PracticeCompleted)
}

// CompletedList returns the completed-id list for the given category
func (s *SubjectProgress) CompletedList(t ActivityType) *[]int {
	switch t {
	case ActivityLearn:
		return &s.LessonsCompleted
	case ActivityPlay:
		return &s.GamesCompleted
	case ActivityPractice:
		return &s.PracticeCompleted
	case ActivityQuiz:
		return &s.QuizzesCompleted
	}
	return nil
}

// ClassProgress aggregates one class's subjects. TotalXP is always
// recomputed as the sum over subjects, never incremented.
type ClassProgress struct {
	ClassNumber     int                         `json:"class_number"`
	Subjects        map[string]*SubjectProgress `json:"subjects"`
	OverallProgress float64                     `json:"overall_progress"` // percentage
	TotalXP         int                         `json:"total_xp"`
}

// ProgressData is the persisted progress tree
type ProgressData struct {
	Classes        map[int]*ClassProgress `json:"classes"`
	CurrentClass   int                    `json:"current_class"`
	CurrentSubject string                 `json:"current_subject"`
}

// Achievement is a stored badge record. Progress only ever grows and
// UnlockedAt is set exactly once.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Category    string     `json:"category"`
	Progress    int        `json:"progress"`
	Target      int        `json:"target"`
	UnlockedAt  *time.Time `json:"unlocked_at"`
}

// Unlocked reports whether the achievement has been unlocked
func (a *Achievement) Unlocked() bool {
	return a.UnlockedAt != nil
}

// GameSettings holds player preferences
type GameSettings struct {
	SoundEnabled  bool   `json:"sound_enabled"`
	MusicEnabled  bool   `json:"music_enabled"`
	Difficulty    int    `json:"difficulty"` // 1-5
	Theme         string `json:"theme"`      // "light", "dark", "system"
	ReducedMotion bool   `json:"reduced_motion"`
}

// SettingsUpdate is a shallow-merge patch over GameSettings
type SettingsUpdate struct {
	SoundEnabled  *bool   `json:"sound_enabled,omitempty"`
	MusicEnabled  *bool   `json:"music_enabled,omitempty"`
	Difficulty    *int    `json:"difficulty,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	ReducedMotion *bool   `json:"reduced_motion,omitempty"`
}

// AnalyticsEntry is one completed-activity record in the bounded log
type AnalyticsEntry struct {
	Date         time.Time    `json:"date"`
	ClassNumber  int          `json:"class_number"`
	SubjectID    string       `json:"subject_id"`
	ActivityType ActivityType `json:"activity_type"`
	ActivityID   string       `json:"activity_id"`
	Score        int          `json:"score"`
	XPEarned     int          `json:"xp_earned"`
	Accuracy     float64      `json:"accuracy"`
	TimeSpent    int          `json:"time_spent"`
	Completed    bool         `json:"completed"`
}

// WeeklyStats is the trailing-7-day view derived from the analytics log
type WeeklyStats struct {
	Dates    []string `json:"dates"` // short weekday labels, oldest first
	XP       []int    `json:"xp"`
	Accuracy []int    `json:"accuracy"` // rounded daily mean
}

// SubjectInsights lists the strongest and weakest subjects of a class
type SubjectInsights struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// DefaultProfile returns the profile created on first access
func DefaultProfile(now time.Time) PlayerProfile {
	return PlayerProfile{
		Name:         "Student",
		Avatar:       "default",
		TotalXP:      0,
		Level:        1,
		CreatedAt:    now,
		LastPlayedAt: now,
	}
}

// DefaultSettings returns the settings used before the player changes any
func DefaultSettings() GameSettings {
	return GameSettings{
		SoundEnabled:  true,
		MusicEnabled:  true,
		Difficulty:    2,
		Theme:         "system",
		ReducedMotion: false,
	}
}

// DefaultProgress returns an empty progress tree
func DefaultProgress() ProgressData {
	return ProgressData{
		Classes:      make(map[int]*ClassProgress),
		CurrentClass: 1,
	}
}

// NewSubjectProgress returns an empty per-subject record
func NewSubjectProgress(subjectID string, now time.Time) *SubjectProgress {
	return &SubjectProgress{
		SubjectID:         subjectID,
		LessonsCompleted:  []int{},
		GamesCompleted:    []int{},
		QuizzesCompleted:  []int{},
		PracticeCompleted: []int{},
		LastPlayedAt:      now,
		HighScores:        make(map[string]int),
		Stars:             make(map[string]int),
	}
}
