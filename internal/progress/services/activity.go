package services

import (
	"fmt"
	"time"

	"github.com/architect/learning-playground/internal/progress/models"
	"github.com/architect/learning-playground/internal/progress/repository"
)

// activityKey builds the "{type}_{id}" key used by the highScores/stars maps
func activityKey(activityType models.ActivityType, activityID int) string {
	return fmt.Sprintf("%s_%d", activityType, activityID)
}

// GetProgress returns the whole progress tree
func (s *Store) GetProgress() models.ProgressData {
	return progressTree(s.kv)
}

func progressTree(kv *repository.KVRepository) models.ProgressData {
	var data models.ProgressData
	if !getJSON(kv, repository.KeyProgress, &data) {
		return models.DefaultProgress()
	}
	if data.Classes == nil {
		data.Classes = make(map[int]*models.ClassProgress)
	}
	return data
}

// SetCurrentSelection records which class and subject the player is in
func (s *Store) SetCurrentSelection(classNumber int, subjectID string) error {
	data := progressTree(s.kv)
	data.CurrentClass = classNumber
	data.CurrentSubject = subjectID
	return putJSON(s.kv, repository.KeyProgress, data)
}

// GetClassProgress returns the progress record for a class, creating and
// persisting the default on first access. Repeat reads are idempotent.
func (s *Store) GetClassProgress(classNumber int) (models.ClassProgress, error) {
	var class models.ClassProgress
	err := s.kv.Transaction(func(tx *repository.KVRepository) error {
		c, err := ensureClass(tx, classNumber)
		if err != nil {
			return err
		}
		class = *c
		return nil
	})
	return class, err
}

func ensureClass(kv *repository.KVRepository, classNumber int) (*models.ClassProgress, error) {
	data := progressTree(kv)
	if c, ok := data.Classes[classNumber]; ok {
		return c, nil
	}

	c := &models.ClassProgress{
		ClassNumber: classNumber,
		Subjects:    make(map[string]*models.SubjectProgress),
	}
	data.Classes[classNumber] = c
	if err := putJSON(kv, repository.KeyProgress, data); err != nil {
		return nil, err
	}
	return c, nil
}

// GetSubjectProgress returns the per-(class, subject) record, creating and
// persisting the default on first access
func (s *Store) GetSubjectProgress(classNumber int, subjectID string) (models.SubjectProgress, error) {
	var subject models.SubjectProgress
	err := s.kv.Transaction(func(tx *repository.KVRepository) error {
		sp, err := ensureSubject(tx, classNumber, subjectID)
		if err != nil {
			return err
		}
		subject = *sp
		return nil
	})
	return subject, err
}

func ensureSubject(kv *repository.KVRepository, classNumber int, subjectID string) (*models.SubjectProgress, error) {
	data := progressTree(kv)
	class, ok := data.Classes[classNumber]
	if !ok {
		class = &models.ClassProgress{
			ClassNumber: classNumber,
			Subjects:    make(map[string]*models.SubjectProgress),
		}
		data.Classes[classNumber] = class
	}

	if sp, ok := class.Subjects[subjectID]; ok {
		return sp, nil
	}

	sp := models.NewSubjectProgress(subjectID, time.Now())
	class.Subjects[subjectID] = sp
	if err := putJSON(kv, repository.KeyProgress, data); err != nil {
		return nil, err
	}
	return sp, nil
}

// CompleteActivity records a finished activity: appends the id to the
// category's completed list (idempotent), keeps highScores/stars as running
// maxima, accumulates XP and time, recomputes the subject's running accuracy
// average and the class total as a fresh sum, then appends one analytics
// entry. Everything commits in one transaction.
func (s *Store) CompleteActivity(
	classNumber int,
	subjectID string,
	activityType models.ActivityType,
	activityID int,
	score int,
	xpEarned int,
	accuracy float64,
	stars int,
	timeSpent int,
) error {
	if !activityType.Valid() {
		return fmt.Errorf("unknown activity type %q", activityType)
	}

	return s.kv.Transaction(func(tx *repository.KVRepository) error {
		data := progressTree(tx)
		class, ok := data.Classes[classNumber]
		if !ok {
			class = &models.ClassProgress{
				ClassNumber: classNumber,
				Subjects:    make(map[string]*models.SubjectProgress),
			}
			data.Classes[classNumber] = class
		}
		subject, ok := class.Subjects[subjectID]
		if !ok {
			subject = models.NewSubjectProgress(subjectID, time.Now())
			class.Subjects[subjectID] = subject
		}

		// Completed list: exactly one occurrence per id
		list := subject.CompletedList(activityType)
		present := false
		for _, id := range *list {
			if id == activityID {
				present = true
				break
			}
		}
		if !present {
			*list = append(*list, activityID)
		}

		// High score and stars never regress on a worse repeat attempt
		key := activityKey(activityType, activityID)
		if score > subject.HighScores[key] {
			subject.HighScores[key] = score
		}
		if stars > subject.Stars[key] {
			subject.Stars[key] = stars
		}

		subject.TotalXP += xpEarned
		subject.TimeSpent += timeSpent
		subject.LastPlayedAt = time.Now()

		// Running weighted accuracy over the completed count
		n := subject.CompletedCount()
		if n > 0 {
			subject.Accuracy = (subject.Accuracy*float64(n-1) + accuracy) / float64(n)
		}

		// Class XP is recomputed as a sum, never drifted incrementally
		total := 0
		for _, sp := range class.Subjects {
			total += sp.TotalXP
		}
		class.TotalXP = total

		if err := putJSON(tx, repository.KeyProgress, data); err != nil {
			return err
		}

		// Analytics log entry
		return logActivity(tx, models.AnalyticsEntry{
			Date:         time.Now(),
			ClassNumber:  classNumber,
			SubjectID:    subjectID,
			ActivityType: activityType,
			ActivityID:   fmt.Sprintf("%d", activityID),
			Score:        score,
			XPEarned:     xpEarned,
			Accuracy:     accuracy,
			TimeSpent:    timeSpent,
			Completed:    true,
		})
	})
}

// totalCompleted counts completed activities of one category across all
// classes and subjects
func totalCompleted(data models.ProgressData, activityType models.ActivityType) int {
	total := 0
	for _, class := range data.Classes {
		for _, subject := range class.Subjects {
			total += len(*subject.CompletedList(activityType))
		}
	}
	return total
}

// IsActivityCompleted reports whether the id is in the category's completed
// list. Unknown classes, subjects and ids are simply false.
func (s *Store) IsActivityCompleted(classNumber int, subjectID string, activityType models.ActivityType, activityID int) bool {
	if !activityType.Valid() {
		return false
	}
	data := progressTree(s.kv)
	class, ok := data.Classes[classNumber]
	if !ok {
		return false
	}
	subject, ok := class.Subjects[subjectID]
	if !ok {
		return false
	}
	for _, id := range *subject.CompletedList(activityType) {
		if id == activityID {
			return true
		}
	}
	return false
}

// GetActivityStars returns the best star rating recorded for an activity,
// 0 when unknown
func (s *Store) GetActivityStars(classNumber int, subjectID string, activityType models.ActivityType, activityID int) int {
	data := progressTree(s.kv)
	class, ok := data.Classes[classNumber]
	if !ok {
		return 0
	}
	subject, ok := class.Subjects[subjectID]
	if !ok {
		return 0
	}
	return subject.Stars[activityKey(activityType, activityID)]
}

// SubjectsPlayed lists the subjects of a class with at least one completed
// activity, used by the variety achievements
func (s *Store) SubjectsPlayed(classNumber int) []string {
	data := progressTree(s.kv)
	class, ok := data.Classes[classNumber]
	if !ok {
		return nil
	}
	var subjects []string
	for id, subject := range class.Subjects {
		if subject.CompletedCount() > 0 {
			subjects = append(subjects, id)
		}
	}
	return subjects
}

// TotalGamesCompleted counts play-category completions across everything
func (s *Store) TotalGamesCompleted() int {
	return totalCompleted(progressTree(s.kv), models.ActivityPlay)
}
