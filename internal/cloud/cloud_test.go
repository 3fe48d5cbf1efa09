package cloud

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/database"
	"github.com/mrlokans/chumash/internal/database/usersettings"
	"github.com/mrlokans/chumash/internal/entities"
)

func setupGormBackend(t *testing.T) *GormBackend {
	db, err := database.NewSilentDatabase(filepath.Join(t.TempDir(), "cloud.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewGormBackend(usersettings.NewRepository(db.DB))
}

// backendContract runs the behaviour every Backend must share.
func backendContract(t *testing.T, b Backend) {
	ctx := context.Background()
	table := entities.TableUserSettings

	_, err := b.ReadColumn(ctx, table, entities.ColumnTheme, "u1")
	assert.ErrorIs(t, err, ErrNoRow)

	require.NoError(t, b.WriteColumn(ctx, table, entities.ColumnTheme, "u1", json.RawMessage(`"dark"`)))

	value, err := b.ReadColumn(ctx, table, entities.ColumnTheme, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `"dark"`, string(value))

	value, err = b.ReadColumn(ctx, table, entities.ColumnFontSettings, "u1")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestGormBackend(t *testing.T) {
	t.Run("contract", func(t *testing.T) {
		backendContract(t, setupGormBackend(t))
	})

	t.Run("unknown table", func(t *testing.T) {
		b := setupGormBackend(t)
		_, err := b.ReadColumn(context.Background(), "profiles", entities.ColumnTheme, "u1")
		assert.ErrorIs(t, err, ErrUnknownTable)
		err = b.WriteColumn(context.Background(), "profiles", entities.ColumnTheme, "u1", json.RawMessage(`1`))
		assert.ErrorIs(t, err, ErrUnknownTable)
	})

	t.Run("unknown column", func(t *testing.T) {
		b := setupGormBackend(t)
		err := b.WriteColumn(context.Background(), entities.TableUserSettings, "nope", "u1", json.RawMessage(`1`))
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("invalid json", func(t *testing.T) {
		b := setupGormBackend(t)
		err := b.WriteColumn(context.Background(), entities.TableUserSettings, entities.ColumnTheme, "u1", json.RawMessage(`{`))
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		b := setupGormBackend(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := b.ReadColumn(ctx, entities.TableUserSettings, entities.ColumnTheme, "u1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryBackend(t *testing.T) {
	backendContract(t, NewMemoryBackend())
}

// fakeAPI mimics the column endpoints of the settings API.
type fakeAPI struct {
	mu      sync.Mutex
	token   string
	columns map[string]json.RawMessage
	hasRow  bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/cloud/"), "/")
	if len(parts) != 2 || !entities.IsUserSettingsColumn(parts[1]) {
		http.Error(w, "unknown column", http.StatusBadRequest)
		return
	}
	column := parts[1]

	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		if !f.hasRow {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(ColumnPayload{Value: f.columns[column]})
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var payload ColumnPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.hasRow = true
		f.columns[column] = payload.Value
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestHTTPBackend(t *testing.T) {
	api := &fakeAPI{token: "tok", columns: map[string]json.RawMessage{}}
	server := httptest.NewServer(api)
	defer server.Close()

	t.Run("contract", func(t *testing.T) {
		backendContract(t, NewHTTPBackend(server.URL+"/", func() string { return "tok" }))
	})

	t.Run("unauthorized", func(t *testing.T) {
		b := NewHTTPBackend(server.URL, nil)
		_, err := b.ReadColumn(context.Background(), entities.TableUserSettings, entities.ColumnTheme, "u1")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown column", func(t *testing.T) {
		b := NewHTTPBackend(server.URL, func() string { return "tok" })
		err := b.WriteColumn(context.Background(), entities.TableUserSettings, "nope", "u1", json.RawMessage(`1`))
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("ping", func(t *testing.T) {
		b := NewHTTPBackend(server.URL, nil)
		assert.NoError(t, b.Ping(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		b := NewHTTPBackend("http://127.0.0.1:1", nil)
		assert.Error(t, b.Ping(context.Background()))
	})
}
