// Package database opens the application's SQLite database and hosts the
// per-table repositories in its subpackages:
//
//   - settings: device-local key/value store backing settingsstore
//   - cache: durable structured cache with lazy TTL expiry
//   - usersettings: row-per-user cloud settings columns
//   - annotations: bookmarks, highlights and notes
//   - sync: progress of bulk cache downloads
//
// # Usage
//
//	db, err := database.NewDatabase("./chumash.db")
//	repo := cache.NewRepository(db.DB)
package database
