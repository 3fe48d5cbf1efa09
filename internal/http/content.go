package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/content"
	"github.com/mrlokans/chumash/internal/loader"
)

// BookLoader loads sefarim through the caches.
type BookLoader interface {
	Load(ctx context.Context, id int) (*content.Sefer, error)
	PreloadNext(current int)
	Catalog() *content.Catalog
}

// CommentaryLoader loads Sefaria commentary files through the caches.
type CommentaryLoader interface {
	Load(ctx context.Context, mefareshEn string, sefer int) (*content.Commentary, error)
	LoadAvailable(ctx context.Context, sefer int) ([]content.LoadedCommentary, error)
	ForVerse(ctx context.Context, sefer, perek, pasuk int) ([]loader.VerseCommentary, error)
}

// ContentController serves the book and commentary payloads.
type ContentController struct {
	books        BookLoader
	commentaries CommentaryLoader
}

func NewContentController(books BookLoader, commentaries CommentaryLoader) *ContentController {
	return &ContentController{books: books, commentaries: commentaries}
}

type CatalogResponse struct {
	Books        []content.Book        `json:"books"`
	Commentators []content.Commentator `json:"commentators"`
}

// GetCatalog handles GET /api/catalog
func (cc *ContentController) GetCatalog(c *gin.Context) {
	catalog := cc.books.Catalog()
	c.JSON(http.StatusOK, CatalogResponse{Books: catalog.Books, Commentators: catalog.Commentators})
}

// GetBook handles GET /api/books/:sefer
// A successful load schedules a background preload of the following sefer.
func (cc *ContentController) GetBook(c *gin.Context) {
	sefer, ok := parseIntParam(c, "sefer")
	if !ok {
		return
	}

	book, err := cc.books.Load(c.Request.Context(), sefer)
	if err != nil {
		respondContentError(c, err, "sefer")
		return
	}
	cc.books.PreloadNext(sefer)
	c.JSON(http.StatusOK, book)
}

// AvailableCommentary names a commentator that has a file for a sefer.
type AvailableCommentary struct {
	Mefaresh   string                      `json:"mefaresh"`
	MefareshEn string                      `json:"mefaresh_en"`
	Category   content.CommentatorCategory `json:"category"`
}

// ListCommentaries handles GET /api/books/:sefer/commentaries
func (cc *ContentController) ListCommentaries(c *gin.Context) {
	sefer, ok := parseIntParam(c, "sefer")
	if !ok {
		return
	}

	loaded, err := cc.commentaries.LoadAvailable(c.Request.Context(), sefer)
	if err != nil {
		respondContentError(c, err, "sefer")
		return
	}
	out := make([]AvailableCommentary, 0, len(loaded))
	for _, lc := range loaded {
		out = append(out, AvailableCommentary{
			Mefaresh:   lc.Commentator.Hebrew,
			MefareshEn: lc.Commentator.English,
			Category:   lc.Commentator.Category,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetCommentary handles GET /api/books/:sefer/commentaries/:mefaresh
// mefaresh is the English catalog name, e.g. "Ibn_Ezra".
func (cc *ContentController) GetCommentary(c *gin.Context) {
	sefer, ok := parseIntParam(c, "sefer")
	if !ok {
		return
	}

	commentary, err := cc.commentaries.Load(c.Request.Context(), c.Param("mefaresh"), sefer)
	if err != nil {
		respondContentError(c, err, "commentary")
		return
	}
	c.JSON(http.StatusOK, commentary)
}

type VerseCommentariesResponse struct {
	Sefer        int                      `json:"sefer"`
	Perek        int                      `json:"perek"`
	Pasuk        int                      `json:"pasuk"`
	URL          string                   `json:"url"`
	Commentaries []loader.VerseCommentary `json:"commentaries"`
}

// GetVerseCommentaries handles GET /api/books/:sefer/verses/:perek/:pasuk/commentaries
func (cc *ContentController) GetVerseCommentaries(c *gin.Context) {
	sefer, ok := parseIntParam(c, "sefer")
	if !ok {
		return
	}
	perek, ok := parseIntParam(c, "perek")
	if !ok {
		return
	}
	pasuk, ok := parseIntParam(c, "pasuk")
	if !ok {
		return
	}

	out, err := cc.commentaries.ForVerse(c.Request.Context(), sefer, perek, pasuk)
	if err != nil {
		respondContentError(c, err, "sefer")
		return
	}
	if out == nil {
		out = []loader.VerseCommentary{}
	}
	c.JSON(http.StatusOK, VerseCommentariesResponse{
		Sefer:        sefer,
		Perek:        perek,
		Pasuk:        pasuk,
		URL:          cc.books.Catalog().VerseURL(sefer, perek, pasuk),
		Commentaries: out,
	})
}

// respondContentError maps loader errors: unknown ids and missing files are
// 404, anything else (origin unreachable, bad payload) is 502.
func respondContentError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, loader.ErrUnknownID):
		respondError(c, http.StatusNotFound, "unknown_id", "unknown "+resource)
	case errors.Is(err, content.ErrNotFound):
		respondNotFound(c, resource)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "timeout", "content request timed out")
	default:
		log.Printf("[Loader] Failed to load %s: %v", resource, err)
		respondError(c, http.StatusBadGateway, "origin_unavailable", "content origin unavailable")
	}
}
