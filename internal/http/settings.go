package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxSettingKeyLength = 100

// LocalSettings is the device-local key/value store.
type LocalSettings interface {
	GetRaw(key string) (string, bool, error)
	SetRaw(key, value string) error
	Remove(key string) error
	Source(key string) string
}

// SettingsController exposes raw local settings, for clients that keep
// their own state next to the synced preferences.
type SettingsController struct {
	store LocalSettings
}

func NewSettingsController(store LocalSettings) *SettingsController {
	return &SettingsController{store: store}
}

type SettingResponse struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

type setSettingRequest struct {
	Value *string `json:"value" binding:"required"`
}

// GetSetting handles GET /api/settings/:key
func (sc *SettingsController) GetSetting(c *gin.Context) {
	key, ok := settingKey(c)
	if !ok {
		return
	}
	value, found, err := sc.store.GetRaw(key)
	if err != nil {
		respondInternalError(c, err, "get setting")
		return
	}
	if !found {
		respondNotFound(c, "setting")
		return
	}
	c.JSON(http.StatusOK, SettingResponse{Key: key, Value: value, Source: sc.store.Source(key)})
}

// SetSetting handles PUT /api/settings/:key
// The value is stored verbatim; clients usually send a JSON document.
func (sc *SettingsController) SetSetting(c *gin.Context) {
	key, ok := settingKey(c)
	if !ok {
		return
	}
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "value is required")
		return
	}
	if err := sc.store.SetRaw(key, *req.Value); err != nil {
		respondInternalError(c, err, "set setting")
		return
	}
	c.JSON(http.StatusOK, SettingResponse{Key: key, Value: *req.Value, Source: sc.store.Source(key)})
}

// DeleteSetting handles DELETE /api/settings/:key
func (sc *SettingsController) DeleteSetting(c *gin.Context) {
	key, ok := settingKey(c)
	if !ok {
		return
	}
	if err := sc.store.Remove(key); err != nil {
		respondInternalError(c, err, "delete setting")
		return
	}
	respondSuccess(c, "setting removed")
}

func settingKey(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if key == "" || len(key) > maxSettingKeyLength {
		respondBadRequest(c, "invalid key")
		return "", false
	}
	return key, true
}
