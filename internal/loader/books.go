// Package loader resolves sefarim and commentary files through the memory
// cache, the durable cache and finally the content source.
package loader

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/mrlokans/chumash/internal/content"
	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/tiered"
)

// ErrUnknownID is returned for sefer ids outside the catalog and unknown
// commentators.
var ErrUnknownID = tiered.ErrUnknownID

const DefaultPreloadDelay = 2 * time.Second

// Books loads sefarim by id.
type Books struct {
	catalog      *content.Catalog
	memory       *tiered.Memory[int, *content.Sefer]
	durable      *tiered.Durable[int, *content.Sefer]
	chain        *tiered.Chain[int, *content.Sefer]
	preloadDelay time.Duration

	mu       sync.Mutex
	timers   map[int]*time.Timer
	preloads sync.WaitGroup
	closed   bool
}

// NewBooks creates a book loader. store may be nil, in which case only the
// memory tier is used; a typed nil such as a nil *cache.Repository is not
// accepted. A non-positive preloadDelay falls back to DefaultPreloadDelay.
func NewBooks(source content.Source, store tiered.Store, catalog *content.Catalog, preloadDelay time.Duration) *Books {
	if catalog == nil {
		catalog = content.DefaultCatalog()
	}
	if preloadDelay <= 0 {
		preloadDelay = DefaultPreloadDelay
	}

	b := &Books{
		catalog:      catalog,
		memory:       tiered.NewMemory[int, *content.Sefer](),
		preloadDelay: preloadDelay,
		timers:       make(map[int]*time.Timer),
	}
	tiers := []tiered.Tier[int, *content.Sefer]{b.memory}
	if store != nil {
		b.durable = tiered.NewDurable[int, *content.Sefer](store, entities.CollectionSefarim, strconv.Itoa)
		tiers = append(tiers, b.durable)
	}

	b.chain = tiered.NewChain[int, *content.Sefer]("sefer", source.Sefer, tiers,
		tiered.WithValidator[int, *content.Sefer](catalog.ValidBook),
		tiered.WithKeyString[int, *content.Sefer](strconv.Itoa),
	)
	return b
}

// Load returns the sefer with the given id. Ids outside the catalog fail
// with ErrUnknownID.
func (b *Books) Load(ctx context.Context, id int) (*content.Sefer, error) {
	return b.chain.Load(ctx, id)
}

// Preload warms the caches for id after the preload delay, in the
// background. Failures are ignored. Repeated calls for a pending id are
// collapsed.
func (b *Books) Preload(id int) {
	if !b.catalog.ValidBook(id) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if _, pending := b.timers[id]; pending {
		return
	}

	b.preloads.Add(1)
	b.timers[id] = time.AfterFunc(b.preloadDelay, func() {
		defer b.preloads.Done()

		b.mu.Lock()
		delete(b.timers, id)
		b.mu.Unlock()

		log.Printf("[Loader] Preloading sefer %d", id)
		if _, err := b.Load(context.Background(), id); err != nil {
			log.Printf("[Loader] Preload of sefer %d failed: %v", id, err)
		}
	})
}

// PreloadNext preloads the sefer after current, wrapping from the last to
// the first.
func (b *Books) PreloadNext(current int) {
	b.Preload(b.catalog.NextBook(current))
}

// ClearAll empties the memory and durable caches.
func (b *Books) ClearAll() error {
	b.memory.Clear()
	if b.durable != nil {
		return b.durable.Clear()
	}
	return nil
}

// Catalog returns the catalog ids are validated against.
func (b *Books) Catalog() *content.Catalog {
	return b.catalog
}

// Cached reports how many sefarim are held in memory.
func (b *Books) Cached() int {
	return b.memory.Len()
}

// Close cancels preloads that have not started and waits for running ones.
func (b *Books) Close() {
	b.mu.Lock()
	b.closed = true
	for id, t := range b.timers {
		if t.Stop() {
			b.preloads.Done()
		}
		delete(b.timers, id)
	}
	b.mu.Unlock()

	b.preloads.Wait()
}
