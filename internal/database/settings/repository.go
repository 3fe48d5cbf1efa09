// Package settings persists the device-local key/value store.
//
// Values are stored as text, normally JSON documents. The repository does not
// interpret them; decoding and merging happen in syncedstate.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	raw, ok, err := repo.Get(entities.SettingKeyTheme)
package settings

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/chumash/internal/entities"
)

// Repository handles local settings rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the raw value stored under key. ok is false when the key was
// never written.
func (r *Repository) Get(key string) (string, bool, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return setting.Value, true, nil
}

// Set creates or replaces the value under key.
func (r *Repository) Set(key, value string) error {
	setting := entities.Setting{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

// Keys lists every stored key in alphabetical order.
func (r *Repository) Keys() ([]string, error) {
	var keys []string
	err := r.db.Model(&entities.Setting{}).Order("key").Pluck("key", &keys).Error
	return keys, err
}
