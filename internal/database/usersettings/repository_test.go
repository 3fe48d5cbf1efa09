package usersettings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/chumash/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	dbPath := filepath.Join(t.TempDir(), "usersettings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.UserSettings{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func TestRepository_ReadColumn(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		repo := setupTestDB(t)

		_, err := repo.ReadColumn("u1", entities.ColumnTheme)
		assert.ErrorIs(t, err, ErrNoRow)
	})

	t.Run("unknown column", func(t *testing.T) {
		repo := setupTestDB(t)

		_, err := repo.ReadColumn("u1", "password")
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("row without the column", func(t *testing.T) {
		repo := setupTestDB(t)
		require.NoError(t, repo.WriteColumn("u1", entities.ColumnTheme, `"dark"`))

		value, err := repo.ReadColumn("u1", entities.ColumnFontSettings)
		require.NoError(t, err)
		assert.Nil(t, value)
	})
}

func TestRepository_WriteColumn(t *testing.T) {
	t.Run("creates row", func(t *testing.T) {
		repo := setupTestDB(t)

		require.NoError(t, repo.WriteColumn("u1", entities.ColumnTheme, `"dark"`))

		value, err := repo.ReadColumn("u1", entities.ColumnTheme)
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, `"dark"`, *value)
	})

	t.Run("updates one column only", func(t *testing.T) {
		repo := setupTestDB(t)

		require.NoError(t, repo.WriteColumn("u1", entities.ColumnTheme, `"dark"`))
		require.NoError(t, repo.WriteColumn("u1", entities.ColumnFontSettings, `{"size":18}`))
		require.NoError(t, repo.WriteColumn("u1", entities.ColumnTheme, `"light"`))

		row, err := repo.Get("u1")
		require.NoError(t, err)
		require.NotNil(t, row.Theme)
		require.NotNil(t, row.FontSettings)
		assert.Equal(t, `"light"`, *row.Theme)
		assert.JSONEq(t, `{"size":18}`, *row.FontSettings)
		assert.Nil(t, row.DisplaySettings)
	})

	t.Run("users are isolated", func(t *testing.T) {
		repo := setupTestDB(t)

		require.NoError(t, repo.WriteColumn("u1", entities.ColumnTheme, `"dark"`))

		_, err := repo.ReadColumn("u2", entities.ColumnTheme)
		assert.ErrorIs(t, err, ErrNoRow)
	})

	t.Run("rejects unknown column", func(t *testing.T) {
		repo := setupTestDB(t)

		err := repo.WriteColumn("u1", "user_id", `"x"`)
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})
}

func TestRepository_Delete(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.WriteColumn("u1", entities.ColumnTheme, `"dark"`))

	require.NoError(t, repo.Delete("u1"))

	_, err := repo.Get("u1")
	assert.ErrorIs(t, err, ErrNoRow)
}
