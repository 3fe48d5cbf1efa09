// Package sync records the progress of bulk downloads into the durable cache
// (all commentaries, all sefarim), so the HTTP layer can report them while a
// background task runs.
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	tracker := repo.Tracker(entities.SyncTypeCommentaries)
//	tracker.Start(75)
package sync

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/chumash/internal/entities"
)

// staleAfter marks a running download as interrupted when it has not
// reported progress for this long.
const staleAfter = 10 * time.Minute

// Repository handles sync progress rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the progress row for syncType.
func (r *Repository) Get(syncType entities.SyncType) (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// List returns every progress row.
func (r *Repository) List() ([]entities.SyncProgress, error) {
	var rows []entities.SyncProgress
	err := r.db.Order("sync_type").Find(&rows).Error
	return rows, err
}

// Tracker binds progress updates to a single sync type.
func (r *Repository) Tracker(syncType entities.SyncType) *Tracker {
	return &Tracker{db: r.db, syncType: syncType}
}

// Tracker updates one progress row.
type Tracker struct {
	db       *gorm.DB
	syncType entities.SyncType
}

// Start creates or resets the progress row.
func (t *Tracker) Start(totalItems int) error {
	now := time.Now()
	var progress entities.SyncProgress
	err := t.db.Where("sync_type = ?", t.syncType).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = entities.SyncProgress{
			SyncType:   t.syncType,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return t.db.Create(&progress).Error
	} else if err != nil {
		return err
	}

	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Succeeded = 0
	progress.Failed = 0
	progress.Skipped = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return t.db.Save(&progress).Error
}

// Update writes the running counters.
func (t *Tracker) Update(processed, succeeded, failed, skipped int, currentItem string) error {
	return t.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", t.syncType).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// Complete marks the download as completed, or failed when errMsg is set.
func (t *Tracker) Complete(errMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if errMsg != "" {
		status = entities.SyncStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errMsg != "" {
		updates["error"] = errMsg
	}
	return t.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", t.syncType).
		Updates(updates).Error
}

// IsRunning reports whether a download of this type is in progress. A stale
// running row is closed as failed.
func (t *Tracker) IsRunning() (bool, error) {
	var progress entities.SyncProgress
	err := t.db.Where("sync_type = ? AND status = ?", t.syncType, entities.SyncStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-staleAfter)) {
		_ = t.Complete("download was interrupted")
		return false, nil
	}

	return true, nil
}
