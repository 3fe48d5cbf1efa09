package search

import (
	"errors"
	"fmt"

	"github.com/mrlokans/chumash/internal/hebrew"
)

// AllMefarshim is the mefaresh filter value meaning "any commentator".
const AllMefarshim = "הכל"

// SearchAll is the searchType value meaning "any kind".
const SearchAll = "all"

var ErrInvalidFilters = errors.New("invalid search filters")

// Filters narrow scored results. A nil or zero Sefer, an empty or "all"
// SearchType and an empty or AllMefarshim Mefaresh do not filter.
type Filters struct {
	Sefer      *int   `json:"sefer"`
	SearchType string `json:"searchType"`
	Mefaresh   string `json:"mefaresh"`
}

// Validate rejects unknown search types.
func (f *Filters) Validate() error {
	if f == nil || f.SearchType == "" || f.SearchType == SearchAll {
		return nil
	}
	if !Kind(f.SearchType).Valid() {
		return fmt.Errorf("%w: searchType %q", ErrInvalidFilters, f.SearchType)
	}
	return nil
}

// Allows reports whether r passes every filter.
func (f *Filters) Allows(r Record) bool {
	if f == nil {
		return true
	}
	if f.Sefer != nil && *f.Sefer != 0 && r.Sefer != *f.Sefer {
		return false
	}
	if f.SearchType != "" && f.SearchType != SearchAll && string(r.Kind) != f.SearchType {
		return false
	}
	if f.Mefaresh != "" && f.Mefaresh != AllMefarshim && r.Mefaresh != hebrew.NormalizeMefaresh(f.Mefaresh) {
		return false
	}
	return true
}

// Apply keeps the results whose records pass the filters, preserving order.
func (f *Filters) Apply(results []Result) []Result {
	if f == nil {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if f.Allows(r.Item) {
			out = append(out, r)
		}
	}
	return out
}
