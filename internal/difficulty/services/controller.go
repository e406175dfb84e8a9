package services

import (
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	dmodels "github.com/architect/learning-playground/internal/difficulty/models"
	"github.com/architect/learning-playground/internal/progress/repository"
	smodels "github.com/architect/learning-playground/internal/session/models"
	"github.com/architect/learning-playground/pkg/logger"
)

const (
	recentScoresMax = 10
	perfectRunMin   = 3
	streakStepUp    = 5
	raiseThreshold  = 85.0
	lowerThreshold  = 50.0

	// Weight of history vs the newest sample in the running time average
	timeDecay = 0.8
)

// Controller adjusts difficulty per class/subject based on recorded play
type Controller struct {
	kv *repository.KVRepository
}

func NewController(kv *repository.KVRepository) *Controller {
	return &Controller{kv: kv}
}

func metricsKey(classNumber int, subjectID string) string {
	return fmt.Sprintf("%d_%s", classNumber, subjectID)
}

func (c *Controller) load() (map[string]*dmodels.Metrics, error) {
	raw, found, err := c.kv.Get(repository.KeyDifficulty)
	if err != nil {
		return nil, err
	}
	all := make(map[string]*dmodels.Metrics)
	if !found {
		return all, nil
	}
	if err := json.Unmarshal(raw, &all); err != nil {
		logger.Warn("corrupt difficulty data, resetting", zap.Error(err))
		return make(map[string]*dmodels.Metrics), nil
	}
	return all, nil
}

func (c *Controller) save(all map[string]*dmodels.Metrics) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return c.kv.Put(repository.KeyDifficulty, raw)
}

// GetMetrics returns the metrics for a class/subject pair, creating the
// default entry at the class's initial difficulty when none exists yet
func (c *Controller) GetMetrics(classNumber int, subjectID string) (*dmodels.Metrics, error) {
	all, err := c.load()
	if err != nil {
		return nil, err
	}
	return c.ensure(all, classNumber, subjectID), nil
}

func (c *Controller) ensure(all map[string]*dmodels.Metrics, classNumber int, subjectID string) *dmodels.Metrics {
	key := metricsKey(classNumber, subjectID)
	if m, ok := all[key]; ok {
		return m
	}
	m := &dmodels.Metrics{
		CurrentDifficulty: dmodels.InitialDifficultyForClass(classNumber),
		RecentScores:      []float64{},
	}
	all[key] = m
	return m
}

// RecordAttempt folds a single answer into the metrics. Time is averaged
// with exponential decay so recent pace dominates.
func (c *Controller) RecordAttempt(classNumber int, subjectID string, correct bool, timeSpent float64) error {
	all, err := c.load()
	if err != nil {
		return err
	}
	m := c.ensure(all, classNumber, subjectID)

	m.TotalAttempts++
	if correct {
		m.CorrectAttempts++
		m.CorrectStreak++
	} else {
		m.CorrectStreak = 0
	}
	// Every sample folds in, including zero-duration answers
	if m.AverageTime == 0 {
		m.AverageTime = timeSpent
	} else {
		m.AverageTime = m.AverageTime*timeDecay + timeSpent*(1-timeDecay)
	}
	return c.save(all)
}

// RecordGameCompletion folds a finished game's score into the recent
// history and decides whether difficulty moves. Rules are checked in
// priority order; the first match wins.
func (c *Controller) RecordGameCompletion(classNumber int, subjectID string, score float64) (*dmodels.Adjustment, error) {
	all, err := c.load()
	if err != nil {
		return nil, err
	}
	m := c.ensure(all, classNumber, subjectID)

	m.RecentScores = append(m.RecentScores, score)
	if len(m.RecentScores) > recentScoresMax {
		m.RecentScores = m.RecentScores[len(m.RecentScores)-recentScoresMax:]
	}

	change, reason := c.evaluate(m)

	adj := &dmodels.Adjustment{
		PreviousLevel: m.CurrentDifficulty,
		Change:        change,
		Reason:        reason,
	}
	next := clampLevel(m.CurrentDifficulty + change)
	adj.Change = next - m.CurrentDifficulty
	adj.NewLevel = next
	m.CurrentDifficulty = next

	if err := c.save(all); err != nil {
		return nil, err
	}
	if adj.Change != 0 {
		logger.Info("difficulty adjusted",
			zap.Int("class", classNumber),
			zap.String("subject", subjectID),
			zap.Int("level", adj.NewLevel),
			zap.String("reason", adj.Reason))
	}
	return adj, nil
}

func (c *Controller) evaluate(m *dmodels.Metrics) (int, string) {
	switch {
	case trailingPerfectGames(m.RecentScores) >= perfectRunMin:
		return 1, "perfect score streak"
	case m.CorrectStreak >= streakStepUp:
		return 1, "answer streak"
	case recentMean(m.RecentScores) >= raiseThreshold:
		return 1, "consistently high scores"
	case recentMean(m.RecentScores) < lowerThreshold:
		return -1, "recent scores below target"
	default:
		return 0, "performance steady"
	}
}

// trailingPerfectGames counts consecutive 100% scores at the end of the
// history
func trailingPerfectGames(scores []float64) int {
	count := 0
	for i := len(scores) - 1; i >= 0; i-- {
		if scores[i] < 100 {
			break
		}
		count++
	}
	return count
}

// recentMean averages the score history, treating no history as neutral
func recentMean(scores []float64) float64 {
	if len(scores) == 0 {
		return 70
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

// CurrentDifficulty returns the active level for a class/subject pair
func (c *Controller) CurrentDifficulty(classNumber int, subjectID string) (int, error) {
	m, err := c.GetMetrics(classNumber, subjectID)
	if err != nil {
		return 0, err
	}
	return m.CurrentDifficulty, nil
}

// SetDifficulty overrides the level for a class/subject pair, clamped to
// the valid range
func (c *Controller) SetDifficulty(classNumber int, subjectID string, level int) error {
	all, err := c.load()
	if err != nil {
		return err
	}
	m := c.ensure(all, classNumber, subjectID)
	m.CurrentDifficulty = clampLevel(level)
	return c.save(all)
}

// SettingsFor returns the gameplay preset for the pair's active level
func (c *Controller) SettingsFor(classNumber int, subjectID string) (dmodels.Settings, error) {
	level, err := c.CurrentDifficulty(classNumber, subjectID)
	if err != nil {
		return dmodels.Settings{}, err
	}
	return dmodels.SettingsForLevel(level), nil
}

// SessionConfig applies the pair's active preset to a base game config
func (c *Controller) SessionConfig(classNumber int, subjectID string, base smodels.GameConfig) (smodels.GameConfig, error) {
	settings, err := c.SettingsFor(classNumber, subjectID)
	if err != nil {
		return base, err
	}
	cfg := base
	if cfg.MaxTime > 0 {
		cfg.MaxTime = int(math.Round(float64(cfg.MaxTime) * settings.TimeMultiplier))
	}
	cfg.MaxQuestions = settings.QuestionCount
	cfg.PointsPerCorrect = int(math.Round(float64(cfg.PointsPerCorrect) * settings.PointsMultiplier))
	cfg.DifficultyLevel = settings.Level
	return cfg, nil
}

// ResetProgress drops the tracked metrics for a class/subject pair
func (c *Controller) ResetProgress(classNumber int, subjectID string) error {
	all, err := c.load()
	if err != nil {
		return err
	}
	delete(all, metricsKey(classNumber, subjectID))
	return c.save(all)
}

// Label returns the display name for a level
func (c *Controller) Label(level int) string {
	return dmodels.LabelForLevel(level)
}
