// Package cache is the durable structured cache: JSON payloads grouped in
// named collections, valid for a fixed TTL after they were stored. Expired
// rows are deleted when read; nothing sweeps them in the background.
package cache

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/chumash/internal/entities"
)

const (
	DefaultTTL = 24 * time.Hour

	// Version is written into every entry; rows with a different version are
	// treated as misses.
	Version = "1"
)

// Repository reads and writes cache_entries.
type Repository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewRepository creates a cache repository. A non-positive ttl falls back to
// DefaultTTL.
func NewRepository(db *gorm.DB, ttl time.Duration) *Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository{db: db, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// TTL returns the validity window of an entry.
func (r *Repository) TTL() time.Duration {
	return r.ttl
}

// Get returns the payload stored under (collection, key). ok is false for a
// missing, expired or outdated entry; the latter two are deleted.
func (r *Repository) Get(collection, key string) ([]byte, bool, error) {
	var entry entities.CacheEntry
	err := r.db.Where("collection = ? AND key = ?", collection, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s/%s: %w", collection, key, err)
	}

	if !r.valid(entry) {
		if err := r.db.Delete(&entry).Error; err != nil {
			return nil, false, fmt.Errorf("failed to delete expired cache entry %s/%s: %w", collection, key, err)
		}
		return nil, false, nil
	}

	return entry.Payload, true, nil
}

// Set stores payload under (collection, key), replacing any previous entry
// and restarting its TTL.
func (r *Repository) Set(collection, key string, payload []byte) error {
	entry := entities.CacheEntry{
		Collection: collection,
		Key:        key,
		Payload:    payload,
		StoredAt:   r.now().UnixMilli(),
		Version:    Version,
		SizeBytes:  len(payload),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "stored_at", "version", "size_bytes"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s/%s: %w", collection, key, err)
	}
	return nil
}

// Delete removes one entry.
func (r *Repository) Delete(collection, key string) error {
	return r.db.Where("collection = ? AND key = ?", collection, key).
		Delete(&entities.CacheEntry{}).Error
}

// Clear removes every entry of a collection.
func (r *Repository) Clear(collection string) error {
	return r.db.Where("collection = ?", collection).Delete(&entities.CacheEntry{}).Error
}

// ClearAll empties the cache.
func (r *Repository) ClearAll() error {
	return r.db.Where("1 = 1").Delete(&entities.CacheEntry{}).Error
}

// Keys lists the keys stored in a collection, including expired ones that
// have not been read since they expired.
func (r *Repository) Keys(collection string) ([]string, error) {
	var keys []string
	err := r.db.Model(&entities.CacheEntry{}).
		Where("collection = ?", collection).
		Order("key").
		Pluck("key", &keys).Error
	return keys, err
}

// CollectionStats summarizes one collection.
type CollectionStats struct {
	Collection string `json:"collection"`
	Entries    int64  `json:"entries"`
	SizeBytes  int64  `json:"size_bytes"`
}

// Stats returns entry counts and payload sizes per collection.
func (r *Repository) Stats() ([]CollectionStats, error) {
	var stats []CollectionStats
	err := r.db.Model(&entities.CacheEntry{}).
		Select("collection, COUNT(*) AS entries, COALESCE(SUM(size_bytes), 0) AS size_bytes").
		Group("collection").
		Order("collection").
		Scan(&stats).Error
	return stats, err
}

func (r *Repository) valid(entry entities.CacheEntry) bool {
	if entry.Version != Version {
		return false
	}
	age := r.now().UnixMilli() - entry.StoredAt
	return age < r.ttl.Milliseconds()
}
