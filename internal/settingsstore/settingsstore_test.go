package settingsstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/database"
	"github.com/mrlokans/chumash/internal/database/settings"
	"github.com/mrlokans/chumash/internal/entities"
)

func setupTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	db, err := database.NewSilentDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(settings.NewRepository(db.DB))
}

type brokenBackend struct{}

func (brokenBackend) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenBackend) Set(string, string) error         { return errors.New("disk gone") }
func (brokenBackend) Delete(string) error              { return errors.New("disk gone") }

func TestSettingsStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)

	_, ok, err := store.GetRaw(entities.SettingKeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "default", store.Source(entities.SettingKeyTheme))

	require.NoError(t, store.SetRaw(entities.SettingKeyTheme, `"dark"`))

	value, ok, err := store.GetRaw(entities.SettingKeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"dark"`, value)
	assert.Equal(t, "database", store.Source(entities.SettingKeyTheme))

	require.NoError(t, store.Remove(entities.SettingKeyTheme))
	_, ok, err = store.GetRaw(entities.SettingKeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	db, err := database.NewSilentDatabase(path)
	require.NoError(t, err)
	require.NoError(t, New(settings.NewRepository(db.DB)).SetRaw("k", "v"))
	require.NoError(t, db.Close())

	db, err = database.NewSilentDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	value, ok, err := New(settings.NewRepository(db.DB)).GetRaw("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestSettingsStore_BrokenBackendFallsBackToMemory(t *testing.T) {
	store := New(brokenBackend{})

	err := store.SetRaw("k", "v")
	assert.Error(t, err)

	value, ok, err := store.GetRaw("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	assert.Equal(t, "memory", store.Source("k"))
}

func TestNewMemory(t *testing.T) {
	store := NewMemory()

	require.NoError(t, store.SetRaw("k", "v"))
	value, ok, err := store.GetRaw("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, store.Remove("k"))
	_, ok, _ = store.GetRaw("k")
	assert.False(t, ok)
}
