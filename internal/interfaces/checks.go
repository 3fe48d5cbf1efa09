package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/corpus"
	"github.com/mrlokans/chumash/internal/database/annotations"
	"github.com/mrlokans/chumash/internal/database/cache"
	"github.com/mrlokans/chumash/internal/database/settings"
	"github.com/mrlokans/chumash/internal/database/sync"
	"github.com/mrlokans/chumash/internal/http"
	"github.com/mrlokans/chumash/internal/loader"
	"github.com/mrlokans/chumash/internal/preferences"
	"github.com/mrlokans/chumash/internal/scheduler"
	"github.com/mrlokans/chumash/internal/search"
	"github.com/mrlokans/chumash/internal/settingsstore"
	"github.com/mrlokans/chumash/internal/syncedstate"
	"github.com/mrlokans/chumash/internal/tasks"
	"github.com/mrlokans/chumash/internal/tiered"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Durable cache
var _ tiered.Store = (*cache.Repository)(nil)
var _ http.CacheInspector = (*cache.Repository)(nil)

// Local settings
var _ settingsstore.Backend = (*settings.Repository)(nil)
var _ syncedstate.LocalStore = (*settingsstore.SettingsStore)(nil)
var _ auth.LocalStore = (*settingsstore.SettingsStore)(nil)
var _ http.LocalSettings = (*settingsstore.SettingsStore)(nil)

// Annotations
var _ http.AnnotationsStore = (*annotations.Repository)(nil)

// =============================================================================
// Cloud Settings
// =============================================================================

var _ cloud.Backend = (*cloud.GormBackend)(nil)
var _ cloud.Backend = (*cloud.HTTPBackend)(nil)
var _ cloud.Backend = (*cloud.MemoryBackend)(nil)
var _ preferences.Session = (*auth.Session)(nil)
var _ preferences.Connectivity = (*scheduler.ConnectivityMonitor)(nil)
var _ http.PreferencesService = (*preferences.Manager)(nil)

// =============================================================================
// Content and Search
// =============================================================================

var _ http.BookLoader = (*loader.Books)(nil)
var _ http.CommentaryLoader = (*loader.Commentaries)(nil)
var _ http.TieredCache = (*loader.Books)(nil)
var _ http.TieredCache = (*loader.Commentaries)(nil)
var _ http.CorpusBuilder = (*corpus.Builder)(nil)
var _ http.SearchIndex = (*search.Client)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ tasks.SeferLoader = (*loader.Books)(nil)
var _ tasks.CommentaryDownloader = (*loader.Commentaries)(nil)
var _ tasks.ProgressTracker = (*sync.Tracker)(nil)
var _ tasks.CorpusSource = (*corpus.Builder)(nil)
var _ tasks.IndexLoader = (*search.Client)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.SyncProgressLister = (*sync.Repository)(nil)
