package repository

import (
	"time"

	"github.com/architect/learning-playground/internal/common/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SchemaVersion is the current payload version written with every record.
// Reads of older versions pass through migratePayload before decoding.
const SchemaVersion = 1

// Store namespaces. Each key holds one JSON-serialized value.
const (
	KeyProfile      = "player_profile"
	KeyProgress     = "progress"
	KeyAchievements = "achievements"
	KeySettings     = "settings"
	KeyAnalytics    = "analytics"
	KeyDifficulty   = "difficulty_data"
)

// StoreRecord is one namespaced row of the key-value store
type StoreRecord struct {
	Key           string `gorm:"primaryKey;size:64"`
	SchemaVersion int    `gorm:"not null"`
	Value         []byte `gorm:"not null"`
	UpdatedAt     time.Time
}

// KVRepository is the gorm-backed key-value store shared by the progress
// store and the difficulty controller (separate namespaces).
type KVRepository struct {
	db *gorm.DB
}

// NewKVRepository migrates the backing table and returns a repository
func NewKVRepository(db *gorm.DB) (*KVRepository, error) {
	if err := db.AutoMigrate(&StoreRecord{}); err != nil {
		return nil, errors.Internal("failed to migrate store schema", err.Error())
	}
	return &KVRepository{db: db}, nil
}

// Get returns the raw payload for a key, migrated to the current schema
// version. A missing key returns (nil, false, nil); absence is not an error.
func (r *KVRepository) Get(key string) ([]byte, bool, error) {
	var rec StoreRecord
	result := r.db.Where("key = ?", key).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, errors.Internal("failed to read store record", result.Error.Error())
	}

	payload := migratePayload(rec.Key, rec.SchemaVersion, rec.Value)
	return payload, true, nil
}

// Put writes a payload under a key at the current schema version
func (r *KVRepository) Put(key string, value []byte) error {
	rec := StoreRecord{
		Key:           key,
		SchemaVersion: SchemaVersion,
		Value:         value,
		UpdatedAt:     time.Now(),
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&rec)
	if result.Error != nil {
		return errors.Internal("failed to write store record", result.Error.Error())
	}
	return nil
}

// Delete removes the given keys; missing keys are ignored
func (r *KVRepository) Delete(keys ...string) error {
	result := r.db.Where("key IN ?", keys).Delete(&StoreRecord{})
	if result.Error != nil {
		return errors.Internal("failed to delete store records", result.Error.Error())
	}
	return nil
}

// Transaction runs fn against a repository bound to one database
// transaction, so composed read-modify-write sequences commit atomically.
func (r *KVRepository) Transaction(fn func(tx *KVRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&KVRepository{db: tx})
	})
}

// migratePayload upgrades old payload shapes to the current schema version.
// Version 1 is the initial shape, so this is the identity for now; the hook
// exists so future shape changes ship with an upgrade path instead of
// silently breaking stored data.
func migratePayload(key string, version int, value []byte) []byte {
	if version >= SchemaVersion {
		return value
	}
	// No older versions exist yet.
	return value
}
