package entities

// CacheEntry is a durable cache row. An entry is valid while
// now - StoredAt < TTL; expired rows are removed when read.
type CacheEntry struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Collection string `gorm:"uniqueIndex:idx_cache_collection_key;size:50" json:"collection"`
	Key        string `gorm:"uniqueIndex:idx_cache_collection_key;size:255" json:"key"`
	Payload    []byte `json:"-"`
	StoredAt   int64  `gorm:"index" json:"stored_at"` // epoch milliseconds
	Version    string `gorm:"size:20" json:"version"`
	SizeBytes  int    `json:"size_bytes"`
}

func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Cache collections
const (
	CollectionSefarim      = "sefarim"
	CollectionCommentaries = "commentaries"
	CollectionSearchIndex  = "search_index"
	CollectionUserData     = "user_data"
)

// CacheCollections lists every collection, in clearing order.
var CacheCollections = []string{
	CollectionSefarim,
	CollectionCommentaries,
	CollectionSearchIndex,
	CollectionUserData,
}
