package entities

import (
	"time"
)

// Bookmark marks a pasuk, optionally with a note and tags.
type Bookmark struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:64" json:"user_id"`
	PasukID   string    `gorm:"index;size:32" json:"pasuk_id"` // "sefer-perek-pasuk"
	PasukText string    `gorm:"type:text" json:"pasuk_text"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	Tags      []string  `gorm:"serializer:json" json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bookmark) TableName() string {
	return "user_bookmarks"
}

// Highlight colors a character range of a pasuk.
type Highlight struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"index;size:64" json:"user_id"`
	PasukID       string    `gorm:"index;size:32" json:"pasuk_id"`
	StartIndex    int       `json:"start_index"`
	EndIndex      int       `json:"end_index"`
	HighlightText string    `gorm:"type:text" json:"highlight_text"`
	Color         string    `gorm:"size:10" json:"color"` // hex color code
	CreatedAt     time.Time `json:"created_at"`
}

func (Highlight) TableName() string {
	return "user_highlights"
}

// Note is free text attached to a pasuk.
type Note struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:64" json:"user_id"`
	PasukID   string    `gorm:"index;size:32" json:"pasuk_id"`
	NoteText  string    `gorm:"type:text" json:"note_text"`
	IsShared  bool      `gorm:"default:false" json:"is_shared"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string {
	return "user_notes"
}

// Highlight palette offered by the reader.
var HighlightColors = []string{"#fef08a", "#bbf7d0", "#bfdbfe", "#fbcfe8"}
