package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/preferences"
)

// PreferencesService is the part of preferences.Manager the API exposes.
type PreferencesService interface {
	Status() preferences.Status
	SetTheme(t preferences.Theme) error
	UpdateFontSettings(patch json.RawMessage) error
	UpdateDisplaySettings(patch json.RawMessage) error
	SetShowSharedContent(show bool) error
	SyncNow(ctx context.Context)
}

type PreferencesController struct {
	prefs PreferencesService
}

func NewPreferencesController(prefs PreferencesService) *PreferencesController {
	return &PreferencesController{prefs: prefs}
}

// GetStatus handles GET /api/preferences
// Returns every preference with its sync status.
func (pc *PreferencesController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, pc.prefs.Status())
}

type themeRequest struct {
	Theme preferences.Theme `json:"theme" binding:"required"`
}

// SetTheme handles PUT /api/preferences/theme
func (pc *PreferencesController) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "theme is required")
		return
	}
	pc.respond(c, pc.prefs.SetTheme(req.Theme))
}

// UpdateFontSettings handles PATCH /api/preferences/font
// The body is a partial font settings object.
func (pc *PreferencesController) UpdateFontSettings(c *gin.Context) {
	patch, ok := readObject(c)
	if !ok {
		return
	}
	pc.respond(c, pc.prefs.UpdateFontSettings(patch))
}

// UpdateDisplaySettings handles PATCH /api/preferences/display
func (pc *PreferencesController) UpdateDisplaySettings(c *gin.Context) {
	patch, ok := readObject(c)
	if !ok {
		return
	}
	pc.respond(c, pc.prefs.UpdateDisplaySettings(patch))
}

type showSharedRequest struct {
	Show *bool `json:"show" binding:"required"`
}

// SetShowSharedContent handles PUT /api/preferences/show-shared
func (pc *PreferencesController) SetShowSharedContent(c *gin.Context) {
	var req showSharedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "show is required")
		return
	}
	pc.respond(c, pc.prefs.SetShowSharedContent(*req.Show))
}

// SyncNow handles POST /api/preferences/sync
// Pushes every preference to the cloud immediately. Failures show up in the
// returned status, not as an error response.
func (pc *PreferencesController) SyncNow(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	pc.prefs.SyncNow(ctx)
	c.JSON(http.StatusOK, pc.prefs.Status())
}

func (pc *PreferencesController) respond(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, pc.prefs.Status())
	case errors.Is(err, preferences.ErrInvalidValue):
		respondBadRequest(c, err.Error())
	default:
		// The value is applied in memory even when the local write fails
		respondInternalError(c, err, "preferences")
	}
}

// readObject reads a JSON object body.
func readObject(c *gin.Context) (json.RawMessage, bool) {
	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil || patch == nil {
		respondBadRequest(c, "body must be a JSON object")
		return nil, false
	}
	raw, _ := json.Marshal(patch)
	return raw, true
}
