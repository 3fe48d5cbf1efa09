// Package annotations stores per-user bookmarks, highlights and notes on
// pesukim.
//
// This package implements the AnnotationsStore interface defined in
// internal/http/annotations.go.
//
// # Usage
//
//	repo := annotations.NewRepository(db)
//	bookmarks, err := repo.ListBookmarks(userID, "")
package annotations

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/chumash/internal/entities"
)

var (
	ErrNotFound     = errors.New("annotation not found")
	ErrInvalidRange = errors.New("invalid highlight range")
	ErrInvalidColor = errors.New("invalid highlight color")
)

// Repository handles annotation rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// scope restricts a query to one user and, when pasukID is set, one pasuk.
func scope(db *gorm.DB, userID, pasukID string) *gorm.DB {
	q := db.Where("user_id = ?", userID)
	if pasukID != "" {
		q = q.Where("pasuk_id = ?", pasukID)
	}
	return q
}

func deleteOwned(db *gorm.DB, model any, userID, id string) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Bookmarks

// ListBookmarks returns a user's bookmarks, newest first.
func (r *Repository) ListBookmarks(userID, pasukID string) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := scope(r.db, userID, pasukID).Order("created_at DESC").Find(&bookmarks).Error
	return bookmarks, err
}

// AddBookmark stores a bookmark. A user has at most one bookmark per pasuk;
// bookmarking the same pasuk again updates its note and tags.
func (r *Repository) AddBookmark(b *entities.Bookmark) error {
	var existing entities.Bookmark
	err := r.db.Where("user_id = ? AND pasuk_id = ?", b.UserID, b.PasukID).First(&existing).Error
	if err == nil {
		existing.Note = b.Note
		existing.Tags = b.Tags
		if b.PasukText != "" {
			existing.PasukText = b.PasukText
		}
		if err := r.db.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update bookmark: %w", err)
		}
		*b = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := r.db.Create(b).Error; err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}
	return nil
}

// UpdateBookmark replaces the note and tags of a user's bookmark.
func (r *Repository) UpdateBookmark(userID, id, note string, tags []string) (*entities.Bookmark, error) {
	var b entities.Bookmark
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Note = note
	b.Tags = tags
	if err := r.db.Save(&b).Error; err != nil {
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}
	return &b, nil
}

func (r *Repository) DeleteBookmark(userID, id string) error {
	return deleteOwned(r.db, &entities.Bookmark{}, userID, id)
}

// BookmarkTags returns the distinct tags a user has used, sorted.
func (r *Repository) BookmarkTags(userID string) ([]string, error) {
	bookmarks, err := r.ListBookmarks(userID, "")
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, b := range bookmarks {
		for _, tag := range b.Tags {
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}
	slices.Sort(tags)
	return tags, nil
}

// Highlights

// ListHighlights returns a user's highlights ordered by position.
func (r *Repository) ListHighlights(userID, pasukID string) ([]entities.Highlight, error) {
	var highlights []entities.Highlight
	err := scope(r.db, userID, pasukID).
		Order("pasuk_id ASC, start_index ASC").
		Find(&highlights).Error
	return highlights, err
}

// AddHighlight validates and stores a highlight. An empty color picks the
// first palette color.
func (r *Repository) AddHighlight(h *entities.Highlight) error {
	if h.StartIndex < 0 || h.EndIndex <= h.StartIndex {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, h.StartIndex, h.EndIndex)
	}
	if h.Color == "" {
		h.Color = entities.HighlightColors[0]
	}
	if !slices.Contains(entities.HighlightColors, h.Color) {
		return fmt.Errorf("%w: %s", ErrInvalidColor, h.Color)
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if err := r.db.Create(h).Error; err != nil {
		return fmt.Errorf("failed to create highlight: %w", err)
	}
	return nil
}

func (r *Repository) DeleteHighlight(userID, id string) error {
	return deleteOwned(r.db, &entities.Highlight{}, userID, id)
}

// Notes

// ListNotes returns a user's notes, newest first.
func (r *Repository) ListNotes(userID, pasukID string) ([]entities.Note, error) {
	var notes []entities.Note
	err := scope(r.db, userID, pasukID).Order("created_at DESC").Find(&notes).Error
	return notes, err
}

// ListSharedNotes returns notes other users marked as shared for a pasuk.
func (r *Repository) ListSharedNotes(pasukID, excludeUserID string) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.Where("pasuk_id = ? AND is_shared = ? AND user_id <> ?", pasukID, true, excludeUserID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *Repository) AddNote(n *entities.Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := r.db.Create(n).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// UpdateNote replaces the text and sharing flag of a user's note.
func (r *Repository) UpdateNote(userID, id, text string, shared bool) (*entities.Note, error) {
	var n entities.Note
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	n.NoteText = text
	n.IsShared = shared
	if err := r.db.Save(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &n, nil
}

func (r *Repository) DeleteNote(userID, id string) error {
	return deleteOwned(r.db, &entities.Note{}, userID, id)
}
