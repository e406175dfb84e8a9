package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architect/learning-playground/internal/common/database"
	"github.com/architect/learning-playground/internal/difficulty/models"
	"github.com/architect/learning-playground/internal/progress/repository"
	smodels "github.com/architect/learning-playground/internal/session/models"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()

	db, err := database.ConnectInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	kv, err := repository.NewKVRepository(db)
	require.NoError(t, err)
	return NewController(kv)
}

func TestInitialDifficultyByClass(t *testing.T) {
	cases := []struct {
		class int
		level int
	}{
		{1, 1}, {3, 1}, {4, 2}, {5, 2}, {6, 3}, {7, 3}, {8, 4}, {9, 4}, {10, 5},
	}

	controller := newTestController(t)
	for _, tc := range cases {
		m, err := controller.GetMetrics(tc.class, "math")
		require.NoError(t, err)
		assert.Equal(t, tc.level, m.CurrentDifficulty, "class %d", tc.class)
	}
}

func TestController_RecordAttempt(t *testing.T) {
	controller := newTestController(t)

	require.NoError(t, controller.RecordAttempt(3, "math", true, 10))
	require.NoError(t, controller.RecordAttempt(3, "math", true, 20))
	require.NoError(t, controller.RecordAttempt(3, "math", false, 0))

	m, err := controller.GetMetrics(3, "math")
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalAttempts)
	assert.Equal(t, 2, m.CorrectAttempts)
	assert.Equal(t, 0, m.CorrectStreak)
	// 10, then 10*0.8 + 20*0.2, then the zero sample folds in too
	assert.InDelta(t, 9.6, m.AverageTime, 0.001)
	assert.InDelta(t, 66.67, m.Accuracy(), 0.01)
}

func TestMetrics_FreshAccuracyIsNeutral(t *testing.T) {
	controller := newTestController(t)

	m, err := controller.GetMetrics(3, "math")
	require.NoError(t, err)
	assert.Equal(t, 70.0, m.Accuracy())

	require.NoError(t, controller.RecordAttempt(3, "math", false, 5))
	m, err = controller.GetMetrics(3, "math")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Accuracy())
}

func TestController_PerfectRunRaisesDifficulty(t *testing.T) {
	controller := newTestController(t)

	// The first two perfect games already step up through the accuracy rule
	for i := 0; i < 2; i++ {
		adj, err := controller.RecordGameCompletion(3, "math", 100)
		require.NoError(t, err)
		assert.Equal(t, 1, adj.Change)
		assert.Equal(t, "consistently high scores", adj.Reason)
	}

	// The third consecutive perfect game trips the dedicated rule first
	adj, err := controller.RecordGameCompletion(3, "math", 100)
	require.NoError(t, err)
	assert.Equal(t, 1, adj.Change)
	assert.Equal(t, 4, adj.NewLevel)
	assert.Equal(t, "perfect score streak", adj.Reason)
}

func TestController_AnswerStreakRaisesDifficulty(t *testing.T) {
	controller := newTestController(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, controller.RecordAttempt(3, "math", true, 5))
	}

	adj, err := controller.RecordGameCompletion(3, "math", 70)
	require.NoError(t, err)
	assert.Equal(t, 1, adj.Change)
	assert.Equal(t, "answer streak", adj.Reason)
}

func TestController_HighRecentMeanRaisesDifficulty(t *testing.T) {
	controller := newTestController(t)

	_, err := controller.RecordGameCompletion(3, "math", 90)
	require.NoError(t, err)
	adj, err := controller.RecordGameCompletion(3, "math", 88)
	require.NoError(t, err)
	assert.Equal(t, 1, adj.Change)
	assert.Equal(t, "consistently high scores", adj.Reason)
}

func TestController_LowRecentMeanLowersDifficulty(t *testing.T) {
	controller := newTestController(t)
	require.NoError(t, controller.SetDifficulty(3, "math", 3))

	adj, err := controller.RecordGameCompletion(3, "math", 40)
	require.NoError(t, err)
	assert.Equal(t, -1, adj.Change)
	assert.Equal(t, 2, adj.NewLevel)
	assert.Equal(t, "recent scores below target", adj.Reason)

	adj, err = controller.RecordGameCompletion(3, "math", 30)
	require.NoError(t, err)
	assert.Equal(t, -1, adj.Change)
	assert.Equal(t, 1, adj.NewLevel)
}

func TestController_LevelClamps(t *testing.T) {
	controller := newTestController(t)

	// Class 1 starts at level 1; a bad run cannot go lower
	_, err := controller.RecordGameCompletion(1, "math", 10)
	require.NoError(t, err)
	adj, err := controller.RecordGameCompletion(1, "math", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, adj.Change)
	assert.Equal(t, 1, adj.NewLevel)

	// Class 10 starts at level 5; perfect play cannot go higher
	for i := 0; i < 4; i++ {
		adj, err = controller.RecordGameCompletion(10, "math", 100)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, adj.Change)
	assert.Equal(t, 5, adj.NewLevel)
}

func TestController_RecentScoresRing(t *testing.T) {
	controller := newTestController(t)

	for i := 0; i < 12; i++ {
		_, err := controller.RecordGameCompletion(3, "math", float64(i))
		require.NoError(t, err)
	}

	m, err := controller.GetMetrics(3, "math")
	require.NoError(t, err)
	require.Len(t, m.RecentScores, 10)
	assert.Equal(t, 2.0, m.RecentScores[0])
	assert.Equal(t, 11.0, m.RecentScores[9])
}

func TestController_SetDifficultyClampsOverride(t *testing.T) {
	controller := newTestController(t)

	require.NoError(t, controller.SetDifficulty(3, "math", 9))
	level, err := controller.CurrentDifficulty(3, "math")
	require.NoError(t, err)
	assert.Equal(t, 5, level)

	require.NoError(t, controller.SetDifficulty(3, "math", 0))
	level, err = controller.CurrentDifficulty(3, "math")
	require.NoError(t, err)
	assert.Equal(t, 1, level)
}

func TestController_ResetProgress(t *testing.T) {
	controller := newTestController(t)

	require.NoError(t, controller.SetDifficulty(8, "math", 2))
	require.NoError(t, controller.ResetProgress(8, "math"))

	// Back to the class default
	level, err := controller.CurrentDifficulty(8, "math")
	require.NoError(t, err)
	assert.Equal(t, 4, level)
}

func TestSettingsForLevel(t *testing.T) {
	easy := models.SettingsForLevel(1)
	assert.Equal(t, 1.5, easy.TimeMultiplier)
	assert.True(t, easy.HintsEnabled)
	assert.Equal(t, 5, easy.QuestionCount)
	assert.Equal(t, 0.8, easy.PointsMultiplier)

	hard := models.SettingsForLevel(5)
	assert.Equal(t, 0.6, hard.TimeMultiplier)
	assert.False(t, hard.HintsEnabled)
	assert.Equal(t, 15, hard.QuestionCount)
	assert.Equal(t, 2.0, hard.PointsMultiplier)

	// Out-of-range levels clamp
	assert.Equal(t, 1, models.SettingsForLevel(-2).Level)
	assert.Equal(t, 5, models.SettingsForLevel(8).Level)
}

func TestController_SessionConfig(t *testing.T) {
	controller := newTestController(t)
	require.NoError(t, controller.SetDifficulty(3, "math", 4))

	base := smodels.GameConfig{
		ID:               "math",
		MaxTime:          100,
		PointsPerCorrect: 10,
		XPMultiplier:     1,
	}
	cfg, err := controller.SessionConfig(3, "math", base)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.MaxTime)
	assert.Equal(t, 12, cfg.MaxQuestions)
	assert.Equal(t, 15, cfg.PointsPerCorrect)
	assert.Equal(t, 4, cfg.DifficultyLevel)
}

func TestLabels(t *testing.T) {
	controller := newTestController(t)
	assert.Equal(t, "Easy", controller.Label(1))
	assert.Equal(t, "Standard", controller.Label(3))
	assert.Equal(t, "Expert", controller.Label(5))
}
