// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage
//
//   - tiered.Store: durable tier behind the in-memory cache (internal/tiered/tiered.go)
//   - settingsstore.Backend: key/value rows for local settings (internal/settingsstore/settingsstore.go)
//   - syncedstate.LocalStore: device-local persistence of synced values (internal/syncedstate/container.go)
//   - cloud.Backend: per-user cloud settings (internal/cloud/cloud.go)
//
// ## Content and Search
//
//   - content.Source: where raw sefarim and commentaries come from (internal/content/source.go)
//   - http.BookLoader, http.CommentaryLoader: cached content reads (internal/http/content.go)
//   - http.SearchIndex: fuzzy search over the corpus (internal/http/search.go)
//   - tasks.CorpusSource, tasks.IndexLoader: background index builds (internal/tasks/search_index.go)
//
// ## Sync
//
//   - preferences.Session: who the device is signed in as (internal/preferences/preferences.go)
//   - preferences.Connectivity: online/offline notifications (internal/preferences/preferences.go)
//   - tasks.ProgressTracker: download progress reporting (internal/tasks/content.go)
//
// # Adding a New Content Source
//
//  1. Implement content.Source in internal/content/
//
//     type ArchiveSource struct{ root string }
//
//     func (s *ArchiveSource) Sefer(ctx context.Context, id int) (*Sefer, error)
//     func (s *ArchiveSource) Commentary(ctx context.Context, mefareshEn string, sefer int) (*Commentary, error)
//
//  2. Select it in entrypoint.NewServices
//
// # Adding a New Synced Setting
//
//  1. Add the value type and its default in internal/preferences/types.go
//  2. Hold a syncedstate.Container for it on preferences.Manager
//  3. Expose it through the preferences controller in internal/http/
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
