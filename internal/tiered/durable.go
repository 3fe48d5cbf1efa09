package tiered

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is a durable key/value cache namespaced by collection, such as
// database/cache.Repository.
type Store interface {
	Get(collection, key string) ([]byte, bool, error)
	Set(collection, key string, payload []byte) error
	Clear(collection string) error
}

// Durable is a tier that keeps JSON-encoded values in one collection of a
// Store.
type Durable[K comparable, V any] struct {
	store      Store
	collection string
	keyOf      func(K) string
}

func NewDurable[K comparable, V any](store Store, collection string, keyOf func(K) string) *Durable[K, V] {
	return &Durable[K, V]{store: store, collection: collection, keyOf: keyOf}
}

func (d *Durable[K, V]) Name() string { return "durable cache (" + d.collection + ")" }

func (d *Durable[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	payload, ok, err := d.store.Get(d.collection, d.keyOf(key))
	if err != nil || !ok {
		return zero, false, err
	}
	var v V
	if err := json.Unmarshal(payload, &v); err != nil {
		return zero, false, fmt.Errorf("decode %s/%s: %w", d.collection, d.keyOf(key), err)
	}
	return v, true, nil
}

func (d *Durable[K, V]) Set(ctx context.Context, key K, value V) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", d.collection, d.keyOf(key), err)
	}
	return d.store.Set(d.collection, d.keyOf(key), payload)
}

// Clear empties the collection.
func (d *Durable[K, V]) Clear() error {
	return d.store.Clear(d.collection)
}
