package http

import (
	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/database"
	"github.com/mrlokans/chumash/internal/database/cache"
	"github.com/mrlokans/chumash/internal/loader"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Nil optional dependencies leave their routes unregistered.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Version  string

	// Authentication; nil serves every request as the default user
	AuthMiddleware *auth.Middleware

	// Content
	Books        *loader.Books
	Commentaries *loader.Commentaries
	Cache        *cache.Repository

	// Search
	SearchIndex SearchIndex
	Corpus      CorpusBuilder
	Sefarim     []int

	// Task queue (optional)
	TaskQueue    TaskQueue
	SyncProgress SyncProgressLister

	// User state
	Preferences PreferencesService
	Settings    LocalSettings
	Annotations AnnotationsStore
	Cloud       cloud.Backend
}
