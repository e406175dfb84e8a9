package services

import (
	"math"
	"sort"
	"time"

	"github.com/architect/learning-playground/internal/progress/models"
	"github.com/architect/learning-playground/internal/progress/repository"
)

// maxAnalyticsEntries bounds the activity log; the oldest entry is evicted
const maxAnalyticsEntries = 100

// LogActivity appends one entry to the bounded analytics log
func (s *Store) LogActivity(entry models.AnalyticsEntry) error {
	return logActivity(s.kv, entry)
}

func logActivity(kv *repository.KVRepository, entry models.AnalyticsEntry) error {
	entries := analyticsLog(kv)
	entries = append(entries, entry)
	if len(entries) > maxAnalyticsEntries {
		entries = entries[len(entries)-maxAnalyticsEntries:]
	}
	return putJSON(kv, repository.KeyAnalytics, entries)
}

// GetAnalytics returns the raw activity log, oldest first
func (s *Store) GetAnalytics() []models.AnalyticsEntry {
	return analyticsLog(s.kv)
}

func analyticsLog(kv *repository.KVRepository) []models.AnalyticsEntry {
	var entries []models.AnalyticsEntry
	if !getJSON(kv, repository.KeyAnalytics, &entries) {
		return []models.AnalyticsEntry{}
	}
	return entries
}

// GetWeeklyStats buckets the trailing seven calendar days (oldest first):
// per day the XP sum and the rounded mean accuracy of that day's entries.
// Days without entries report zero for both.
func (s *Store) GetWeeklyStats() models.WeeklyStats {
	entries := analyticsLog(s.kv)
	now := time.Now()

	stats := models.WeeklyStats{
		Dates:    make([]string, 0, 7),
		XP:       make([]int, 0, 7),
		Accuracy: make([]int, 0, 7),
	}

	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		stats.Dates = append(stats.Dates, day.Format("Mon"))

		xp := 0
		accuracySum := 0.0
		count := 0
		for _, e := range entries {
			if sameDay(e.Date, day) {
				xp += e.XPEarned
				accuracySum += e.Accuracy
				count++
			}
		}

		stats.XP = append(stats.XP, xp)
		if count > 0 {
			stats.Accuracy = append(stats.Accuracy, int(math.Round(accuracySum/float64(count))))
		} else {
			stats.Accuracy = append(stats.Accuracy, 0)
		}
	}

	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GetStrengthsAndWeaknesses sorts a class's subjects by accuracy and picks
// the top two as strengths and bottom two as weaknesses, considering only
// subjects with at least one completed activity.
func (s *Store) GetStrengthsAndWeaknesses(classNumber int) models.SubjectInsights {
	data := progressTree(s.kv)
	class, ok := data.Classes[classNumber]
	if !ok {
		return models.SubjectInsights{Strengths: []string{}, Weaknesses: []string{}}
	}

	var played []*models.SubjectProgress
	for _, subject := range class.Subjects {
		if subject.CompletedCount() > 0 {
			played = append(played, subject)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].Accuracy > played[j].Accuracy
	})

	insights := models.SubjectInsights{Strengths: []string{}, Weaknesses: []string{}}
	for i := 0; i < len(played) && i < 2; i++ {
		insights.Strengths = append(insights.Strengths, played[i].SubjectID)
	}
	// Bottom two, weakest first
	for i := len(played) - 1; i >= 0 && len(insights.Weaknesses) < 2; i-- {
		insights.Weaknesses = append(insights.Weaknesses, played[i].SubjectID)
	}

	return insights
}
