package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/database/annotations"
	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/hebrew"
)

// AnnotationsStore defines the database operations needed by AnnotationsController.
type AnnotationsStore interface {
	ListBookmarks(userID, pasukID string) ([]entities.Bookmark, error)
	AddBookmark(b *entities.Bookmark) error
	UpdateBookmark(userID, id, note string, tags []string) (*entities.Bookmark, error)
	DeleteBookmark(userID, id string) error
	BookmarkTags(userID string) ([]string, error)

	ListHighlights(userID, pasukID string) ([]entities.Highlight, error)
	AddHighlight(h *entities.Highlight) error
	DeleteHighlight(userID, id string) error

	ListNotes(userID, pasukID string) ([]entities.Note, error)
	ListSharedNotes(pasukID, excludeUserID string) ([]entities.Note, error)
	AddNote(n *entities.Note) error
	UpdateNote(userID, id, text string, shared bool) (*entities.Note, error)
	DeleteNote(userID, id string) error
}

// AnnotationsController handles the current user's bookmarks, highlights
// and notes.
type AnnotationsController struct {
	store AnnotationsStore
}

func NewAnnotationsController(store AnnotationsStore) *AnnotationsController {
	return &AnnotationsController{store: store}
}

// pasukFilter reads the optional pasuk_id query parameter.
func pasukFilter(c *gin.Context) (string, bool) {
	id := c.Query("pasuk_id")
	if id == "" {
		return "", true
	}
	return validPasukID(c, id)
}

func validPasukID(c *gin.Context, id string) (string, bool) {
	ref, ok := hebrew.ParseVerseID(id)
	if !ok || ref.Sefer <= 0 || ref.Perek <= 0 || ref.Pasuk <= 0 {
		respondBadRequest(c, "invalid pasuk_id")
		return "", false
	}
	return ref.String(), true
}

func respondAnnotationError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, annotations.ErrNotFound):
		respondNotFound(c, "annotation")
	case errors.Is(err, annotations.ErrInvalidRange), errors.Is(err, annotations.ErrInvalidColor):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Bookmarks ---

type bookmarkRequest struct {
	PasukID   string   `json:"pasuk_id" binding:"required"`
	PasukText string   `json:"pasuk_text"`
	Note      string   `json:"note"`
	Tags      []string `json:"tags"`
}

type updateBookmarkRequest struct {
	Note string   `json:"note"`
	Tags []string `json:"tags"`
}

// ListBookmarks handles GET /api/annotations/bookmarks
func (ac *AnnotationsController) ListBookmarks(c *gin.Context) {
	pasukID, ok := pasukFilter(c)
	if !ok {
		return
	}
	bookmarks, err := ac.store.ListBookmarks(GetUserID(c), pasukID)
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}
	if bookmarks == nil {
		bookmarks = []entities.Bookmark{}
	}
	c.JSON(http.StatusOK, bookmarks)
}

// AddBookmark handles POST /api/annotations/bookmarks
// Bookmarking an already bookmarked pasuk replaces its note and tags.
func (ac *AnnotationsController) AddBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "pasuk_id is required")
		return
	}
	pasukID, ok := validPasukID(c, req.PasukID)
	if !ok {
		return
	}

	bookmark := &entities.Bookmark{
		UserID:    GetUserID(c),
		PasukID:   pasukID,
		PasukText: req.PasukText,
		Note:      req.Note,
		Tags:      req.Tags,
	}
	if err := ac.store.AddBookmark(bookmark); err != nil {
		respondAnnotationError(c, err, "add bookmark")
		return
	}
	respondCreated(c, bookmark)
}

// UpdateBookmark handles PATCH /api/annotations/bookmarks/:id
func (ac *AnnotationsController) UpdateBookmark(c *gin.Context) {
	var req updateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	bookmark, err := ac.store.UpdateBookmark(GetUserID(c), c.Param("id"), req.Note, req.Tags)
	if err != nil {
		respondAnnotationError(c, err, "update bookmark")
		return
	}
	c.JSON(http.StatusOK, bookmark)
}

// DeleteBookmark handles DELETE /api/annotations/bookmarks/:id
func (ac *AnnotationsController) DeleteBookmark(c *gin.Context) {
	if err := ac.store.DeleteBookmark(GetUserID(c), c.Param("id")); err != nil {
		respondAnnotationError(c, err, "delete bookmark")
		return
	}
	respondSuccess(c, "bookmark deleted")
}

// BookmarkTags handles GET /api/annotations/bookmarks/tags
func (ac *AnnotationsController) BookmarkTags(c *gin.Context) {
	tags, err := ac.store.BookmarkTags(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "bookmark tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, tags)
}

// --- Highlights ---

type highlightRequest struct {
	PasukID       string `json:"pasuk_id" binding:"required"`
	StartIndex    int    `json:"start_index"`
	EndIndex      int    `json:"end_index"`
	HighlightText string `json:"highlight_text"`
	Color         string `json:"color"`
}

// ListHighlights handles GET /api/annotations/highlights
func (ac *AnnotationsController) ListHighlights(c *gin.Context) {
	pasukID, ok := pasukFilter(c)
	if !ok {
		return
	}
	highlights, err := ac.store.ListHighlights(GetUserID(c), pasukID)
	if err != nil {
		respondInternalError(c, err, "list highlights")
		return
	}
	if highlights == nil {
		highlights = []entities.Highlight{}
	}
	c.JSON(http.StatusOK, highlights)
}

// AddHighlight handles POST /api/annotations/highlights
func (ac *AnnotationsController) AddHighlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "pasuk_id is required")
		return
	}
	pasukID, ok := validPasukID(c, req.PasukID)
	if !ok {
		return
	}

	highlight := &entities.Highlight{
		UserID:        GetUserID(c),
		PasukID:       pasukID,
		StartIndex:    req.StartIndex,
		EndIndex:      req.EndIndex,
		HighlightText: req.HighlightText,
		Color:         req.Color,
	}
	if err := ac.store.AddHighlight(highlight); err != nil {
		respondAnnotationError(c, err, "add highlight")
		return
	}
	respondCreated(c, highlight)
}

// DeleteHighlight handles DELETE /api/annotations/highlights/:id
func (ac *AnnotationsController) DeleteHighlight(c *gin.Context) {
	if err := ac.store.DeleteHighlight(GetUserID(c), c.Param("id")); err != nil {
		respondAnnotationError(c, err, "delete highlight")
		return
	}
	respondSuccess(c, "highlight deleted")
}

// --- Notes ---

type noteRequest struct {
	PasukID  string `json:"pasuk_id" binding:"required"`
	NoteText string `json:"note_text" binding:"required"`
	IsShared bool   `json:"is_shared"`
}

type updateNoteRequest struct {
	NoteText string `json:"note_text" binding:"required"`
	IsShared bool   `json:"is_shared"`
}

// ListNotes handles GET /api/annotations/notes
func (ac *AnnotationsController) ListNotes(c *gin.Context) {
	pasukID, ok := pasukFilter(c)
	if !ok {
		return
	}
	notes, err := ac.store.ListNotes(GetUserID(c), pasukID)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	if notes == nil {
		notes = []entities.Note{}
	}
	c.JSON(http.StatusOK, notes)
}

// ListSharedNotes handles GET /api/annotations/notes/shared?pasuk_id=
// Returns other users' shared notes on one pasuk.
func (ac *AnnotationsController) ListSharedNotes(c *gin.Context) {
	raw := c.Query("pasuk_id")
	if raw == "" {
		respondBadRequest(c, "pasuk_id is required")
		return
	}
	pasukID, ok := validPasukID(c, raw)
	if !ok {
		return
	}
	notes, err := ac.store.ListSharedNotes(pasukID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list shared notes")
		return
	}
	if notes == nil {
		notes = []entities.Note{}
	}
	c.JSON(http.StatusOK, notes)
}

// AddNote handles POST /api/annotations/notes
func (ac *AnnotationsController) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "pasuk_id and note_text are required")
		return
	}
	pasukID, ok := validPasukID(c, req.PasukID)
	if !ok {
		return
	}

	note := &entities.Note{
		UserID:   GetUserID(c),
		PasukID:  pasukID,
		NoteText: req.NoteText,
		IsShared: req.IsShared,
	}
	if err := ac.store.AddNote(note); err != nil {
		respondAnnotationError(c, err, "add note")
		return
	}
	respondCreated(c, note)
}

// UpdateNote handles PATCH /api/annotations/notes/:id
func (ac *AnnotationsController) UpdateNote(c *gin.Context) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "note_text is required")
		return
	}
	note, err := ac.store.UpdateNote(GetUserID(c), c.Param("id"), req.NoteText, req.IsShared)
	if err != nil {
		respondAnnotationError(c, err, "update note")
		return
	}
	c.JSON(http.StatusOK, note)
}

// DeleteNote handles DELETE /api/annotations/notes/:id
func (ac *AnnotationsController) DeleteNote(c *gin.Context) {
	if err := ac.store.DeleteNote(GetUserID(c), c.Param("id")); err != nil {
		respondAnnotationError(c, err, "delete note")
		return
	}
	respondSuccess(c, "note deleted")
}
