package loader

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/chumash/internal/content"
	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/tiered"
)

// CommentaryKey identifies one commentator-on-book file.
type CommentaryKey struct {
	Mefaresh string // English catalog name, e.g. "Ibn_Ezra"
	Sefer    int
}

// Commentaries loads commentary files by (mefaresh, sefer).
type Commentaries struct {
	catalog *content.Catalog
	memory  *tiered.Memory[CommentaryKey, *content.Commentary]
	durable *tiered.Durable[CommentaryKey, *content.Commentary]
	chain   *tiered.Chain[CommentaryKey, *content.Commentary]
}

// NewCommentaries creates a commentary loader. store may be nil, but not a
// typed nil such as a nil *cache.Repository.
func NewCommentaries(source content.Source, store tiered.Store, catalog *content.Catalog) *Commentaries {
	if catalog == nil {
		catalog = content.DefaultCatalog()
	}
	c := &Commentaries{
		catalog: catalog,
		memory:  tiered.NewMemory[CommentaryKey, *content.Commentary](),
	}

	keyOf := func(k CommentaryKey) string {
		if b, ok := catalog.Book(k.Sefer); ok {
			return b.Sefaria + "-" + k.Mefaresh
		}
		return fmt.Sprintf("%d-%s", k.Sefer, k.Mefaresh)
	}
	valid := func(k CommentaryKey) bool {
		_, ok := catalog.Commentator(k.Mefaresh)
		return ok && catalog.ValidBook(k.Sefer)
	}
	origin := func(ctx context.Context, k CommentaryKey) (*content.Commentary, error) {
		return source.Commentary(ctx, k.Mefaresh, k.Sefer)
	}

	tiers := []tiered.Tier[CommentaryKey, *content.Commentary]{c.memory}
	if store != nil {
		c.durable = tiered.NewDurable[CommentaryKey, *content.Commentary](store, entities.CollectionCommentaries, keyOf)
		tiers = append(tiers, c.durable)
	}
	c.chain = tiered.NewChain[CommentaryKey, *content.Commentary]("commentary", origin, tiers,
		tiered.WithValidator[CommentaryKey, *content.Commentary](valid),
		tiered.WithKeyString[CommentaryKey, *content.Commentary](keyOf),
	)
	return c
}

// Load returns the commentary of mefareshEn on sefer. A commentator without
// a file for that sefer fails with content.ErrNotFound.
func (c *Commentaries) Load(ctx context.Context, mefareshEn string, sefer int) (*content.Commentary, error) {
	return c.chain.Load(ctx, CommentaryKey{Mefaresh: mefareshEn, Sefer: sefer})
}

// LoadAvailable returns every catalog commentator that has a file for sefer,
// in catalog order. Missing files are skipped; other failures are logged and
// skipped.
func (c *Commentaries) LoadAvailable(ctx context.Context, sefer int) ([]content.LoadedCommentary, error) {
	if !c.catalog.ValidBook(sefer) {
		return nil, fmt.Errorf("sefer %d: %w", sefer, ErrUnknownID)
	}

	var loaded []content.LoadedCommentary
	for _, m := range c.catalog.Commentators {
		data, err := c.Load(ctx, m.English, sefer)
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return loaded, ctx.Err()
			}
			log.Printf("[Loader] Skipping %s on sefer %d: %v", m.English, sefer, err)
			continue
		}
		loaded = append(loaded, content.LoadedCommentary{Commentator: m, Data: data})
	}
	return loaded, nil
}

// VerseCommentary is one commentator's text on a pasuk.
type VerseCommentary struct {
	ID         int    `json:"id"`
	Mefaresh   string `json:"mefaresh"`
	MefareshEn string `json:"mefaresh_en"`
	Text       string `json:"text"`
	URL        string `json:"url"`
}

// ForVerse collects the non-empty commentaries on one pasuk.
func (c *Commentaries) ForVerse(ctx context.Context, sefer, perek, pasuk int) ([]VerseCommentary, error) {
	loaded, err := c.LoadAvailable(ctx, sefer)
	if err != nil {
		return nil, err
	}

	var out []VerseCommentary
	for _, lc := range loaded {
		text := lc.Data.Verse(perek, pasuk)
		if text == "" {
			continue
		}
		out = append(out, VerseCommentary{
			ID:         1000 + c.catalogIndex(lc.Commentator.English),
			Mefaresh:   lc.Commentator.Hebrew,
			MefareshEn: lc.Commentator.English,
			Text:       text,
			URL:        c.catalog.CommentaryURL(sefer, perek, pasuk, lc.Commentator.Hebrew),
		})
	}
	return out, nil
}

func (c *Commentaries) catalogIndex(english string) int {
	for i, m := range c.catalog.Commentators {
		if m.English == english {
			return i
		}
	}
	return -1
}

// ClearAll empties the memory and durable caches.
func (c *Commentaries) ClearAll() error {
	c.memory.Clear()
	if c.durable != nil {
		return c.durable.Clear()
	}
	return nil
}

// Progress receives download progress. current is a display label such as
// "רש"י על בראשית"; it is empty on the final call.
type Progress func(completed, total int, current string)

// DownloadResult counts the outcome of a bulk download.
type DownloadResult struct {
	Downloaded int `json:"downloaded"`
	Missing    int `json:"missing"`
	Failed     int `json:"failed"`
}

// DownloadAll loads every (sefer, commentator) pair into the caches.
func (c *Commentaries) DownloadAll(ctx context.Context, progress Progress) (DownloadResult, error) {
	var keys []CommentaryKey
	for _, b := range c.catalog.Books {
		for _, m := range c.catalog.Commentators {
			keys = append(keys, CommentaryKey{Mefaresh: m.English, Sefer: b.ID})
		}
	}
	return c.download(ctx, keys, progress)
}

// DownloadByMefaresh loads one commentator's files for every sefer.
func (c *Commentaries) DownloadByMefaresh(ctx context.Context, mefareshEn string, progress Progress) (DownloadResult, error) {
	if _, ok := c.catalog.Commentator(mefareshEn); !ok {
		return DownloadResult{}, fmt.Errorf("mefaresh %q: %w", mefareshEn, ErrUnknownID)
	}
	keys := make([]CommentaryKey, 0, len(c.catalog.Books))
	for _, b := range c.catalog.Books {
		keys = append(keys, CommentaryKey{Mefaresh: mefareshEn, Sefer: b.ID})
	}
	return c.download(ctx, keys, progress)
}

func (c *Commentaries) download(ctx context.Context, keys []CommentaryKey, progress Progress) (DownloadResult, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}

	var result DownloadResult
	total := len(keys)
	for i, k := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		progress(i, total, c.label(k))

		_, err := c.Load(ctx, k.Mefaresh, k.Sefer)
		switch {
		case err == nil:
			result.Downloaded++
		case errors.Is(err, content.ErrNotFound):
			result.Missing++
		default:
			result.Failed++
			log.Printf("[Loader] Download of %s on sefer %d failed: %v", k.Mefaresh, k.Sefer, err)
		}
	}
	progress(total, total, "")
	return result, nil
}

func (c *Commentaries) label(k CommentaryKey) string {
	m, _ := c.catalog.Commentator(k.Mefaresh)
	b, _ := c.catalog.Book(k.Sefer)
	return m.Hebrew + " על " + b.Hebrew
}
