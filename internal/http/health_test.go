package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/database"
	"github.com/mrlokans/chumash/internal/search"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSilentDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixedState search.State

func (s fixedState) State() search.State { return search.State(s) }

func getHealth(t *testing.T, controller *HealthController) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupTestDB(t)

		code, response := getHealth(t, NewHealthController(db, "1.0.0", nil))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Contains(t, response.Time, "T")
		assert.NotContains(t, response.Checks, "search_index")
	})

	t.Run("reports not configured database", func(t *testing.T) {
		code, response := getHealth(t, NewHealthController(nil, "1.0.0", nil))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		code, response := getHealth(t, NewHealthController(db, "1.0.0", nil))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})

	t.Run("includes search index state", func(t *testing.T) {
		db := setupTestDB(t)

		code, response := getHealth(t, NewHealthController(db, "", fixedState(search.StateIndexing)))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "indexing", response.Checks["search_index"])
		assert.Empty(t, response.Version)
	})
}
