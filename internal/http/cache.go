package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/database/cache"
	"github.com/mrlokans/chumash/internal/entities"
)

// CacheInspector reads and clears the durable cache.
type CacheInspector interface {
	Stats() ([]cache.CollectionStats, error)
	Keys(collection string) ([]string, error)
	Clear(collection string) error
}

// TieredCache is a loader holding a memory tier in front of the durable cache.
type TieredCache interface {
	ClearAll() error
}

// CorpusInvalidator drops the cached search corpus.
type CorpusInvalidator interface {
	Invalidate() error
}

// CacheController exposes cache statistics and clearing.
type CacheController struct {
	store        CacheInspector
	books        TieredCache
	commentaries TieredCache
	corpus       CorpusInvalidator
}

func NewCacheController(store CacheInspector, books, commentaries TieredCache, corpus CorpusInvalidator) *CacheController {
	return &CacheController{
		store:        store,
		books:        books,
		commentaries: commentaries,
		corpus:       corpus,
	}
}

// GetStats handles GET /api/cache/stats
func (cc *CacheController) GetStats(c *gin.Context) {
	stats, err := cc.store.Stats()
	if err != nil {
		respondInternalError(c, err, "cache stats")
		return
	}
	if stats == nil {
		stats = []cache.CollectionStats{}
	}
	c.JSON(http.StatusOK, gin.H{"collections": stats})
}

// ListKeys handles GET /api/cache/:collection/keys
func (cc *CacheController) ListKeys(c *gin.Context) {
	collection := c.Param("collection")
	if !knownCollection(collection) {
		respondNotFound(c, "collection")
		return
	}
	keys, err := cc.store.Keys(collection)
	if err != nil {
		respondInternalError(c, err, "cache keys")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"collection": collection, "keys": keys})
}

// ClearAll handles DELETE /api/cache
func (cc *CacheController) ClearAll(c *gin.Context) {
	for _, collection := range entities.CacheCollections {
		if err := cc.clear(collection); err != nil {
			respondInternalError(c, err, "clear cache "+collection)
			return
		}
	}
	respondSuccess(c, "cache cleared")
}

// ClearCollection handles DELETE /api/cache/:collection
func (cc *CacheController) ClearCollection(c *gin.Context) {
	collection := c.Param("collection")
	if !knownCollection(collection) {
		respondNotFound(c, "collection")
		return
	}
	if err := cc.clear(collection); err != nil {
		respondInternalError(c, err, "clear cache "+collection)
		return
	}
	respondSuccess(c, collection+" cleared")
}

// clear empties a collection along with any memory tier in front of it.
func (cc *CacheController) clear(collection string) error {
	switch {
	case collection == entities.CollectionSefarim && cc.books != nil:
		return cc.books.ClearAll()
	case collection == entities.CollectionCommentaries && cc.commentaries != nil:
		return cc.commentaries.ClearAll()
	case collection == entities.CollectionSearchIndex && cc.corpus != nil:
		return cc.corpus.Invalidate()
	}
	return cc.store.Clear(collection)
}

func knownCollection(name string) bool {
	for _, c := range entities.CacheCollections {
		if c == name {
			return true
		}
	}
	return false
}
