package cloud

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryBackend keeps rows in memory. It backs the CLI when no cloud is
// configured, and tests.
type MemoryBackend struct {
	mu   sync.Mutex
	rows map[string]map[string]json.RawMessage // table/user -> column -> value
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{rows: make(map[string]map[string]json.RawMessage)}
}

func (b *MemoryBackend) ReadColumn(ctx context.Context, table, column, userID string) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	row, ok := b.rows[table+"/"+userID]
	if !ok {
		return nil, ErrNoRow
	}
	return row[column], nil
}

func (b *MemoryBackend) WriteColumn(ctx context.Context, table, column, userID string, value json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := table + "/" + userID
	if b.rows[key] == nil {
		b.rows[key] = make(map[string]json.RawMessage)
	}
	b.rows[key][column] = append(json.RawMessage(nil), value...)
	return nil
}
