package corpus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/loader"
	"github.com/mrlokans/chumash/internal/search"
	"github.com/mrlokans/chumash/internal/tiered"
	"golang.org/x/sync/errgroup"
)

// cacheKeyPrefix versions the cached corpus layout.
const cacheKeyPrefix = "search_items_v3"

var ErrNoBooks = errors.New("no sefer could be loaded")

// BookStatus is the load state of one sefer during a build.
type BookStatus string

const (
	BookPending   BookStatus = "pending"
	BookLoading   BookStatus = "loading"
	BookCompleted BookStatus = "completed"
	BookError     BookStatus = "error"
)

// BookProgress reports one sefer of the current build.
type BookProgress struct {
	Sefer  int        `json:"sefer"`
	Name   string     `json:"name"`
	Status BookStatus `json:"status"`
}

// Builder assembles the multi-sefer search corpus and caches it as a whole.
type Builder struct {
	books        *loader.Books
	commentaries *loader.Commentaries
	memory       *tiered.Memory[string, []search.Record]
	durable      *tiered.Durable[string, []search.Record]
	chain        *tiered.Chain[string, []search.Record]

	mu       sync.Mutex
	progress map[int]BookProgress
}

// NewBuilder creates a corpus builder. commentaries and store may be nil;
// without commentaries only book content is indexed. A nil store must be an
// untyped nil: a nil *cache.Repository wrapped in tiered.Store is used as-is.
func NewBuilder(books *loader.Books, commentaries *loader.Commentaries, store tiered.Store) *Builder {
	b := &Builder{
		books:        books,
		commentaries: commentaries,
		memory:       tiered.NewMemory[string, []search.Record](),
		progress:     make(map[int]BookProgress),
	}
	tiers := []tiered.Tier[string, []search.Record]{b.memory}
	if store != nil {
		b.durable = tiered.NewDurable[string, []search.Record](store, entities.CollectionSearchIndex, func(k string) string { return k })
		tiers = append(tiers, b.durable)
	}
	b.chain = tiered.NewChain[string, []search.Record]("corpus", b.build, tiers)
	return b
}

// Records returns the corpus for the given sefarim, from cache when possible.
func (b *Builder) Records(ctx context.Context, sefarim []int) ([]search.Record, error) {
	if len(sefarim) == 0 {
		return nil, fmt.Errorf("%w: empty sefer list", ErrNoBooks)
	}
	return b.chain.Load(ctx, cacheKey(sefarim))
}

// Progress returns the per-sefer state of the most recent build, ordered by
// sefer id.
func (b *Builder) Progress() []BookProgress {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]BookProgress, 0, len(b.progress))
	for _, p := range b.progress {
		out = append(out, p)
	}
	slices.SortFunc(out, func(x, y BookProgress) int { return x.Sefer - y.Sefer })
	return out
}

// Invalidate drops every cached corpus.
func (b *Builder) Invalidate() error {
	b.memory.Clear()
	if b.durable != nil {
		return b.durable.Clear()
	}
	return nil
}

func (b *Builder) build(ctx context.Context, key string) ([]search.Record, error) {
	sefarim, err := parseCacheKey(key)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.progress = make(map[int]BookProgress, len(sefarim))
	for _, id := range sefarim {
		b.progress[id] = BookProgress{Sefer: id, Name: b.bookName(id), Status: BookPending}
	}
	b.mu.Unlock()

	loaded := make([]*Book, len(sefarim))
	var g errgroup.Group
	for i, id := range sefarim {
		g.Go(func() error {
			b.setStatus(id, BookLoading)
			book, err := b.loadBook(ctx, id)
			if err != nil {
				log.Printf("[Search] Skipping sefer %d in corpus: %v", id, err)
				b.setStatus(id, BookError)
				return nil
			}
			loaded[i] = book
			b.setStatus(id, BookCompleted)
			return nil
		})
	}
	_ = g.Wait()

	var books []Book
	for _, book := range loaded {
		if book != nil {
			books = append(books, *book)
		}
	}
	if len(books) == 0 {
		return nil, ErrNoBooks
	}

	records := BuildAll(books)
	log.Printf("[Search] Built corpus of %d records from %d sefarim", len(records), len(books))
	return records, nil
}

func (b *Builder) loadBook(ctx context.Context, id int) (*Book, error) {
	data, err := b.books.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	book := &Book{Sefer: id, Data: data}
	if b.commentaries != nil {
		book.Commentaries, err = b.commentaries.LoadAvailable(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	return book, nil
}

func (b *Builder) setStatus(id int, status BookStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.progress[id]
	p.Status = status
	b.progress[id] = p
}

func (b *Builder) bookName(id int) string {
	if book, ok := b.books.Catalog().Book(id); ok {
		return book.Hebrew
	}
	return strconv.Itoa(id)
}

// cacheKey names the corpus for a set of sefarim. Ids are sorted, so the
// corpus is always built in canonical book order.
func cacheKey(sefarim []int) string {
	ids := slices.Compact(slices.Sorted(slices.Values(sefarim)))
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return cacheKeyPrefix + ":" + strings.Join(parts, ",")
}

func parseCacheKey(key string) ([]int, error) {
	list, ok := strings.CutPrefix(key, cacheKeyPrefix+":")
	if !ok {
		return nil, fmt.Errorf("corpus key %q: %w", key, tiered.ErrUnknownID)
	}
	var ids []int
	for _, part := range strings.Split(list, ",") {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("corpus key %q: %w", key, tiered.ErrUnknownID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
