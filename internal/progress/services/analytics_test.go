package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architect/learning-playground/internal/progress/models"
)

func TestStore_AnalyticsLogIsBounded(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 105; i++ {
		err := store.LogActivity(models.AnalyticsEntry{
			Date:       time.Now(),
			SubjectID:  "math",
			ActivityID: fmt.Sprintf("%d", i),
			XPEarned:   1,
		})
		require.NoError(t, err)
	}

	entries := store.GetAnalytics()
	assert.Len(t, entries, 100)
	// Oldest entries were evicted first
	assert.Equal(t, "5", entries[0].ActivityID)
	assert.Equal(t, "104", entries[99].ActivityID)
}

func TestStore_WeeklyStats(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	require.NoError(t, store.LogActivity(models.AnalyticsEntry{
		Date: now, SubjectID: "math", XPEarned: 30, Accuracy: 85,
	}))
	require.NoError(t, store.LogActivity(models.AnalyticsEntry{
		Date: now, SubjectID: "science", XPEarned: 20, Accuracy: 95,
	}))
	require.NoError(t, store.LogActivity(models.AnalyticsEntry{
		Date: now.AddDate(0, 0, -2), SubjectID: "math", XPEarned: 15, Accuracy: 60,
	}))

	stats := store.GetWeeklyStats()
	require.Len(t, stats.Dates, 7)
	require.Len(t, stats.XP, 7)
	require.Len(t, stats.Accuracy, 7)

	// Buckets run oldest to newest, today last
	assert.Equal(t, now.Format("Mon"), stats.Dates[6])
	assert.Equal(t, 50, stats.XP[6])
	assert.Equal(t, 90, stats.Accuracy[6])

	assert.Equal(t, 15, stats.XP[4])
	assert.Equal(t, 60, stats.Accuracy[4])

	// Idle days report zero
	assert.Equal(t, 0, stats.XP[5])
	assert.Equal(t, 0, stats.Accuracy[5])
}

func TestStore_StrengthsAndWeaknesses(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CompleteActivity(3, "math", models.ActivityPlay, 1, 90, 45, 92, 3, 60))
	require.NoError(t, store.CompleteActivity(3, "science", models.ActivityPlay, 1, 70, 35, 71, 1, 60))
	require.NoError(t, store.CompleteActivity(3, "english", models.ActivityPlay, 1, 50, 25, 48, 0, 60))
	require.NoError(t, store.CompleteActivity(3, "history", models.ActivityPlay, 1, 85, 42, 83, 2, 60))

	insights := store.GetStrengthsAndWeaknesses(3)
	assert.Equal(t, []string{"math", "history"}, insights.Strengths)
	assert.Equal(t, []string{"english", "science"}, insights.Weaknesses)
}

func TestStore_StrengthsAndWeaknessesEmptyClass(t *testing.T) {
	store := newTestStore(t)

	insights := store.GetStrengthsAndWeaknesses(7)
	assert.Empty(t, insights.Strengths)
	assert.Empty(t, insights.Weaknesses)
}
