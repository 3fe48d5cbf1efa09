package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/preferences"
	"github.com/mrlokans/chumash/internal/settingsstore"
	"github.com/mrlokans/chumash/internal/syncedstate"
)

func setupPreferencesRouter(t *testing.T) (*gin.Engine, *preferences.Manager, *settingsstore.SettingsStore) {
	t.Helper()
	local := settingsstore.NewMemory()
	prefs := preferences.New(preferences.Options{
		Local:    local,
		Remote:   cloud.NewMemoryBackend(),
		Debounce: 10 * time.Millisecond,
	})
	t.Cleanup(prefs.Close)

	controller := NewPreferencesController(prefs)
	router := gin.New()
	router.GET("/api/preferences", controller.GetStatus)
	router.PUT("/api/preferences/theme", controller.SetTheme)
	router.PATCH("/api/preferences/font", controller.UpdateFontSettings)
	router.PATCH("/api/preferences/display", controller.UpdateDisplaySettings)
	router.PUT("/api/preferences/show-shared", controller.SetShowSharedContent)
	router.POST("/api/preferences/sync", controller.SyncNow)
	return router, prefs, local
}

func sendJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestPreferencesController_GetStatus(t *testing.T) {
	router, _, _ := setupPreferencesRouter(t)

	w := sendJSON(router, "GET", "/api/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status preferences.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, preferences.ThemeClassic, status.Theme.Data)
	assert.Equal(t, preferences.DefaultDisplaySettings, status.Display.Data)
	assert.True(t, status.ShowShared.Data)
	// No user is signed in, so nothing has synced
	assert.Zero(t, status.Theme.LastSynced)
}

func TestPreferencesController_SetTheme(t *testing.T) {
	t.Run("valid theme is stored locally", func(t *testing.T) {
		router, prefs, local := setupPreferencesRouter(t)

		w := sendJSON(router, "PUT", "/api/preferences/theme", `{"theme":"elegant-night"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, preferences.ThemeElegantNight, prefs.Theme())
		raw, ok, err := local.GetRaw("torah-theme")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `"elegant-night"`, raw)
	})

	t.Run("unknown theme is rejected", func(t *testing.T) {
		router, prefs, _ := setupPreferencesRouter(t)

		w := sendJSON(router, "PUT", "/api/preferences/theme", `{"theme":"neon"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, preferences.ThemeClassic, prefs.Theme())
	})

	t.Run("missing theme", func(t *testing.T) {
		router, _, _ := setupPreferencesRouter(t)
		w := sendJSON(router, "PUT", "/api/preferences/theme", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPreferencesController_Patches(t *testing.T) {
	t.Run("font patch merges onto current settings", func(t *testing.T) {
		router, prefs, _ := setupPreferencesRouter(t)

		w := sendJSON(router, "PATCH", "/api/preferences/font", `{"pasukSize":24,"pasukBold":true}`)

		require.Equal(t, http.StatusOK, w.Code)
		font := prefs.FontSettings()
		assert.Equal(t, 24, font.PasukSize)
		assert.True(t, font.PasukBold)
		assert.Equal(t, preferences.DefaultFontSettings.PasukFont, font.PasukFont)
	})

	t.Run("display patch is sanitized", func(t *testing.T) {
		router, prefs, _ := setupPreferencesRouter(t)

		w := sendJSON(router, "PATCH", "/api/preferences/display", `{"mode":"compact","pasukCount":0}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, preferences.DisplaySettings{Mode: preferences.DisplayCompact, PasukCount: 10}, prefs.DisplaySettings())
	})

	t.Run("non-object bodies are rejected", func(t *testing.T) {
		router, _, _ := setupPreferencesRouter(t)

		for _, body := range []string{`[1,2]`, `"x"`, `null`, `{`} {
			w := sendJSON(router, "PATCH", "/api/preferences/font", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("wrongly typed field is rejected", func(t *testing.T) {
		router, prefs, _ := setupPreferencesRouter(t)

		w := sendJSON(router, "PATCH", "/api/preferences/font", `{"pasukSize":"big"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, preferences.DefaultFontSettings.PasukSize, prefs.FontSettings().PasukSize)
	})
}

func TestPreferencesController_ShowShared(t *testing.T) {
	router, prefs, _ := setupPreferencesRouter(t)

	w := sendJSON(router, "PUT", "/api/preferences/show-shared", `{"show":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, prefs.ShowSharedContent())

	w = sendJSON(router, "PUT", "/api/preferences/show-shared", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferencesController_SyncNow(t *testing.T) {
	router, _, _ := setupPreferencesRouter(t)

	w := sendJSON(router, "POST", "/api/preferences/sync", "")

	require.Equal(t, http.StatusOK, w.Code)
	var status preferences.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	// Without a user there is nothing to push
	assert.NotEqual(t, syncedstate.StatusError, status.Theme.Status)
}
