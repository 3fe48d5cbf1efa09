// Package cloud is the remote side of settings sync: one row per user in a
// table, one JSON column per settings category.
//
// Two backends implement the contract. GormBackend writes straight into the
// user_settings table of a database; HTTPBackend talks to the settings API
// served by internal/http on another host.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNoRow means the user has never written any column of the table.
	ErrNoRow = errors.New("cloud: no row for user")

	ErrUnknownTable  = errors.New("cloud: unknown table")
	ErrUnknownColumn = errors.New("cloud: unknown column")
	ErrUnauthorized  = errors.New("cloud: unauthorized")
)

// Backend reads and writes a single column of a user's row.
//
// ReadColumn returns (nil, nil) when the row exists but the column is null,
// and ErrNoRow when the row does not exist.
type Backend interface {
	ReadColumn(ctx context.Context, table, column, userID string) (json.RawMessage, error)
	WriteColumn(ctx context.Context, table, column, userID string, value json.RawMessage) error
}
