// Package tiered resolves values through an ordered list of caches in front
// of a slow origin. A hit in a slower tier is copied into every faster tier;
// an origin load is written to all of them. Cache failures are logged and
// skipped, never returned.
package tiered

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"
)

// ErrUnknownID is returned for keys outside the valid set. No tier is read
// or written for such keys.
var ErrUnknownID = errors.New("unknown identifier")

// Tier is one cache level. Get reports ok=false on a miss.
type Tier[K comparable, V any] interface {
	Name() string
	Get(ctx context.Context, key K) (V, bool, error)
	Set(ctx context.Context, key K, value V) error
}

// Origin produces the authoritative value for a key.
type Origin[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Chain is the ordered tier list plus its origin.
type Chain[K comparable, V any] struct {
	name     string
	tiers    []Tier[K, V]
	origin   Origin[K, V]
	validate func(K) bool
	keyOf    func(K) string
	group    singleflight.Group
}

type Option[K comparable, V any] func(*Chain[K, V])

// WithValidator rejects keys for which valid returns false.
func WithValidator[K comparable, V any](valid func(K) bool) Option[K, V] {
	return func(c *Chain[K, V]) { c.validate = valid }
}

// WithKeyString sets how keys are rendered for single-flight grouping and
// logs. Defaults to fmt's %v.
func WithKeyString[K comparable, V any](keyOf func(K) string) Option[K, V] {
	return func(c *Chain[K, V]) { c.keyOf = keyOf }
}

// NewChain builds a chain. Tiers are consulted in the given order.
func NewChain[K comparable, V any](name string, origin Origin[K, V], tiers []Tier[K, V], opts ...Option[K, V]) *Chain[K, V] {
	c := &Chain[K, V]{
		name:   name,
		tiers:  tiers,
		origin: origin,
		keyOf:  func(k K) string { return fmt.Sprintf("%v", k) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the value for key from the fastest tier that has it, or from
// the origin. Concurrent origin loads of one key share a single call.
func (c *Chain[K, V]) Load(ctx context.Context, key K) (V, error) {
	var zero V
	if c.validate != nil && !c.validate(key) {
		return zero, fmt.Errorf("%s %v: %w", c.name, key, ErrUnknownID)
	}

	for i, tier := range c.tiers {
		v, ok, err := tier.Get(ctx, key)
		if err != nil {
			log.Printf("[Loader] %s: %s read failed for %s: %v", c.name, tier.Name(), c.keyOf(key), err)
			continue
		}
		if !ok {
			continue
		}
		c.fill(ctx, c.tiers[:i], key, v)
		return v, nil
	}

	res, err, _ := c.group.Do(c.keyOf(key), func() (any, error) {
		v, err := c.origin(ctx, key)
		if err != nil {
			return nil, err
		}
		c.fill(ctx, c.tiers, key, v)
		return v, nil
	})
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", c.name, c.keyOf(key), err)
	}
	return res.(V), nil
}

func (c *Chain[K, V]) fill(ctx context.Context, tiers []Tier[K, V], key K, v V) {
	for _, tier := range tiers {
		if err := tier.Set(ctx, key, v); err != nil {
			log.Printf("[Loader] %s: %s write failed for %s: %v", c.name, tier.Name(), c.keyOf(key), err)
		}
	}
}

// Valid reports whether key passes the validator.
func (c *Chain[K, V]) Valid(key K) bool {
	return c.validate == nil || c.validate(key)
}
