package services

import (
	"encoding/json"
	"time"

	"github.com/architect/learning-playground/internal/progress/models"
	"github.com/architect/learning-playground/internal/progress/repository"
	"github.com/architect/learning-playground/pkg/logger"
	"go.uber.org/zap"
)

// Store is the durable repository for the player profile, progress tree,
// achievements, settings and analytics log. Reads never fail: a missing or
// corrupt record yields the documented default. Construct one per database;
// there is no package-level instance.
type Store struct {
	kv *repository.KVRepository
}

// NewStore creates a store over the given key-value repository
func NewStore(kv *repository.KVRepository) *Store {
	return &Store{kv: kv}
}

// getJSON decodes the value under key into dst, reporting whether a usable
// stored value was found. Corrupt payloads are treated as absent.
func getJSON(kv *repository.KVRepository, key string, dst interface{}) bool {
	raw, found, err := kv.Get(key)
	if err != nil || !found {
		if err != nil {
			logger.Warn("store read failed, using default", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("corrupt store record, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// putJSON encodes value and writes it under key
func putJSON(kv *repository.KVRepository, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return kv.Put(key, raw)
}

// ========== PROFILE ==========

// GetProfile returns the player profile, creating the default on first access
func (s *Store) GetProfile() models.PlayerProfile {
	return s.profile(s.kv)
}

func (s *Store) profile(kv *repository.KVRepository) models.PlayerProfile {
	var p models.PlayerProfile
	if !getJSON(kv, repository.KeyProfile, &p) {
		return models.DefaultProfile(time.Now())
	}
	return p
}

// UpdateProfile shallow-merges the patch over the stored profile and
// refreshes lastPlayedAt
func (s *Store) UpdateProfile(updates models.ProfileUpdate) (models.PlayerProfile, error) {
	p := s.GetProfile()
	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Avatar != nil {
		p.Avatar = *updates.Avatar
	}
	p.LastPlayedAt = time.Now()

	if err := putJSON(s.kv, repository.KeyProfile, p); err != nil {
		return p, err
	}
	return p, nil
}

// AddXP adds a non-negative amount of XP to the profile and recomputes the
// level from the new total. Badge rules live in the achievements evaluator;
// this only moves the profile. Negative amounts are a caller contract
// violation.
func (s *Store) AddXP(amount int) (models.XPAward, error) {
	var award models.XPAward

	err := s.kv.Transaction(func(tx *repository.KVRepository) error {
		p := s.profile(tx)
		oldLevel := p.Level

		p.TotalXP += amount
		p.Level = CalculateLevel(p.TotalXP).Level
		p.LastPlayedAt = time.Now()

		if err := putJSON(tx, repository.KeyProfile, p); err != nil {
			return err
		}

		award = models.XPAward{
			NewTotal: p.TotalXP,
			LevelUp:  p.Level > oldLevel,
			NewLevel: p.Level,
		}
		return nil
	})

	return award, err
}

// ========== ACHIEVEMENT RECORDS ==========

// GetAchievements returns all stored achievement records, defaulting to the
// untouched catalog
func (s *Store) GetAchievements() []models.Achievement {
	return achievements(s.kv)
}

func achievements(kv *repository.KVRepository) []models.Achievement {
	var list []models.Achievement
	if !getJSON(kv, repository.KeyAchievements, &list) || len(list) == 0 {
		return models.AchievementCatalog()
	}
	return list
}

// UpdateAchievementProgress raises an achievement's progress (monotonic;
// smaller values are ignored) and sets unlockedAt exactly once when progress
// first reaches the target. Returns the updated record and whether this call
// unlocked it. Unknown ids return (nil, false, nil).
func (s *Store) UpdateAchievementProgress(id string, newProgress int) (*models.Achievement, bool, error) {
	return updateAchievementProgress(s.kv, id, newProgress)
}

func updateAchievementProgress(kv *repository.KVRepository, id string, newProgress int) (*models.Achievement, bool, error) {
	list := achievements(kv)

	for i := range list {
		if list[i].ID != id {
			continue
		}

		if newProgress > list[i].Progress {
			list[i].Progress = newProgress
		}

		newlyUnlocked := false
		if list[i].Progress >= list[i].Target && list[i].UnlockedAt == nil {
			now := time.Now().UTC()
			list[i].UnlockedAt = &now
			newlyUnlocked = true
		}

		if err := putJSON(kv, repository.KeyAchievements, list); err != nil {
			return nil, false, err
		}
		updated := list[i]
		return &updated, newlyUnlocked, nil
	}

	return nil, false, nil
}

// ========== SETTINGS ==========

// GetSettings returns stored settings or the defaults
func (s *Store) GetSettings() models.GameSettings {
	var settings models.GameSettings
	if !getJSON(s.kv, repository.KeySettings, &settings) {
		return models.DefaultSettings()
	}
	return settings
}

// UpdateSettings merges the patch over stored settings
func (s *Store) UpdateSettings(updates models.SettingsUpdate) (models.GameSettings, error) {
	settings := s.GetSettings()
	if updates.SoundEnabled != nil {
		settings.SoundEnabled = *updates.SoundEnabled
	}
	if updates.MusicEnabled != nil {
		settings.MusicEnabled = *updates.MusicEnabled
	}
	if updates.Difficulty != nil {
		settings.Difficulty = *updates.Difficulty
	}
	if updates.Theme != nil {
		settings.Theme = *updates.Theme
	}
	if updates.ReducedMotion != nil {
		settings.ReducedMotion = *updates.ReducedMotion
	}

	if err := putJSON(s.kv, repository.KeySettings, settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// ========== RESET ==========

// ClearAll wipes every store namespace. Only an explicit player reset calls
// this.
func (s *Store) ClearAll() error {
	return s.kv.Delete(
		repository.KeyProfile,
		repository.KeyProgress,
		repository.KeyAchievements,
		repository.KeySettings,
		repository.KeyAnalytics,
	)
}
