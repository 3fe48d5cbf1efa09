// Package usersettings stores the cloud-side user_settings rows: one row per
// user, one JSON column per settings category.
package usersettings

import (
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/chumash/internal/entities"
)

var (
	ErrNoRow         = errors.New("no settings row for user")
	ErrUnknownColumn = errors.New("unknown settings column")
)

// Repository handles user_settings rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReadColumn returns the JSON stored in column for userID. A nil result with
// no error means the row exists but the column was never written.
func (r *Repository) ReadColumn(userID, column string) (*string, error) {
	if !entities.IsUserSettingsColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	var values []sql.NullString
	err := r.db.Model(&entities.UserSettings{}).
		Where("user_id = ?", userID).
		Limit(1).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s for user %s: %w", column, userID, err)
	}
	if len(values) == 0 {
		return nil, ErrNoRow
	}
	if !values[0].Valid {
		return nil, nil
	}
	return &values[0].String, nil
}

// WriteColumn upserts the row for userID, setting only column.
func (r *Repository) WriteColumn(userID, column, value string) error {
	if !entities.IsUserSettingsColumn(column) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	row := map[string]any{
		"user_id": userID,
		column:    value,
	}
	err := r.db.Model(&entities.UserSettings{}).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to write %s for user %s: %w", column, userID, err)
	}
	return nil
}

// Get returns the full row for userID.
func (r *Repository) Get(userID string) (*entities.UserSettings, error) {
	var row entities.UserSettings
	err := r.db.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRow
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the row for userID.
func (r *Repository) Delete(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&entities.UserSettings{}).Error
}
