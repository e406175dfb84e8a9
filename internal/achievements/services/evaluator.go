package services

import (
	"sync"

	"github.com/architect/learning-playground/internal/common/notify"
	"github.com/architect/learning-playground/internal/progress/models"
	progress "github.com/architect/learning-playground/internal/progress/services"
)

// GameStats is a completed game summarized for badge evaluation
type GameStats struct {
	ClassNumber    int     `json:"classNumber"`
	SubjectID      string  `json:"subjectId"`
	Score          int     `json:"score"`
	Accuracy       float64 `json:"accuracy"`
	MaxStreak      int     `json:"maxStreak"`
	CorrectAnswers int     `json:"correctAnswers"`
	TimeSpent      int     `json:"timeSpent"`
	Passed         bool    `json:"passed"`
}

// Evaluator runs the badge rules against stored progress. Unlocks are
// one-shot; re-evaluating an unlocked badge never fires again.
type Evaluator struct {
	store    *progress.Store
	notifier notify.Notifier

	mu        sync.Mutex
	listeners []func(models.Achievement)
}

func NewEvaluator(store *progress.Store, notifier notify.Notifier) *Evaluator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Evaluator{store: store, notifier: notifier}
}

// OnUnlock registers a callback fired for every newly unlocked badge
func (e *Evaluator) OnUnlock(fn func(models.Achievement)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
	idx := len(e.listeners) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.listeners) {
			e.listeners[idx] = nil
		}
	}
}

func (e *Evaluator) fire(a models.Achievement) {
	e.notifier.AchievementUnlocked(a.ID, a.Name)

	e.mu.Lock()
	snapshot := make([]func(models.Achievement), len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, fn := range snapshot {
		if fn != nil {
			fn(a)
		}
	}
}

// update raises a badge's absolute progress and returns the record when this
// call unlocked it, nil otherwise. Newly unlocked badges flow back through
// return values rather than listeners, so concurrent evaluations never see
// each other's unlocks.
func (e *Evaluator) update(id string, value int) (*models.Achievement, error) {
	updated, unlocked, err := e.store.UpdateAchievementProgress(id, value)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, nil
	}
	e.fire(*updated)
	return updated, nil
}

// increment adds to a badge's current progress
func (e *Evaluator) increment(id string, delta int) (*models.Achievement, error) {
	for _, a := range e.store.GetAchievements() {
		if a.ID == id {
			return e.update(id, a.Progress+delta)
		}
	}
	return nil, nil
}

// UpdateProgress sets a badge's absolute progress and reports whether that
// unlocked it
func (e *Evaluator) UpdateProgress(id string, value int) (bool, error) {
	unlocked, err := e.update(id, value)
	return unlocked != nil, err
}

// CheckGameCompletion runs the full badge battery against a finished game
// and returns the badges it newly unlocked, in evaluation order. The
// correct-answer tiers take the game's count as absolute progress, so they
// reward the best single game rather than a lifetime total.
func (e *Evaluator) CheckGameCompletion(stats GameStats) ([]models.Achievement, error) {
	totalGames := e.store.TotalGamesCompleted()

	steps := []func() (*models.Achievement, error){
		func() (*models.Achievement, error) { return e.update("first_game", 1) },
		func() (*models.Achievement, error) { return e.update("games_5", totalGames) },
		func() (*models.Achievement, error) { return e.update("games_10", totalGames) },
		func() (*models.Achievement, error) { return e.update("games_25", totalGames) },
		func() (*models.Achievement, error) { return e.update("games_50", totalGames) },
	}
	if stats.Passed {
		steps = append(steps, func() (*models.Achievement, error) { return e.update("first_win", 1) })
	}
	if stats.Accuracy >= 100 {
		steps = append(steps,
			func() (*models.Achievement, error) { return e.update("perfect_score", 1) },
			func() (*models.Achievement, error) { return e.increment("perfect_5", 1) },
		)
	}
	for _, id := range []string{"streak_5", "streak_10", "streak_20"} {
		steps = append(steps, func() (*models.Achievement, error) { return e.update(id, stats.MaxStreak) })
	}
	for _, id := range []string{"correct_10", "correct_50", "correct_100"} {
		steps = append(steps, func() (*models.Achievement, error) { return e.update(id, stats.CorrectAnswers) })
	}
	if stats.TimeSpent < 30 && stats.Accuracy >= 70 {
		steps = append(steps, func() (*models.Achievement, error) { return e.update("speed_demon", 1) })
	}
	subjects := len(e.store.SubjectsPlayed(stats.ClassNumber))
	steps = append(steps,
		func() (*models.Achievement, error) { return e.update("explorer", subjects) },
		func() (*models.Achievement, error) { return e.update("all_rounder", subjects) },
	)

	var unlocked []models.Achievement
	for _, step := range steps {
		a, err := step()
		if err != nil {
			return unlocked, err
		}
		if a != nil {
			unlocked = append(unlocked, *a)
		}
	}
	return unlocked, nil
}

// CheckXPMilestones feeds a new XP total into the XP tiers
func (e *Evaluator) CheckXPMilestones(totalXP int) ([]models.Achievement, error) {
	var unlocked []models.Achievement
	for _, id := range []string{"xp_100", "xp_500", "xp_1000", "xp_5000"} {
		a, err := e.update(id, totalXP)
		if err != nil {
			return unlocked, err
		}
		if a != nil {
			unlocked = append(unlocked, *a)
		}
	}
	return unlocked, nil
}

// GetAllAchievements returns stored records merged over the catalog so new
// badges appear even against older saved data
func (e *Evaluator) GetAllAchievements() []models.Achievement {
	stored := e.store.GetAchievements()
	byID := make(map[string]models.Achievement, len(stored))
	for _, a := range stored {
		byID[a.ID] = a
	}

	catalog := models.AchievementCatalog()
	out := make([]models.Achievement, 0, len(catalog))
	for _, def := range catalog {
		if got, ok := byID[def.ID]; ok {
			out = append(out, got)
		} else {
			out = append(out, def)
		}
	}
	return out
}

// UnlockedCount reports how many badges are unlocked
func (e *Evaluator) UnlockedCount() int {
	count := 0
	for _, a := range e.GetAllAchievements() {
		if a.Unlocked() {
			count++
		}
	}
	return count
}

// TotalCount reports the catalog size
func (e *Evaluator) TotalCount() int {
	return len(models.AchievementCatalog())
}
