package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/mrlokans/chumash/internal/search"
)

// CorpusSource builds or loads the search corpus.
type CorpusSource interface {
	Records(ctx context.Context, sefarim []int) ([]search.Record, error)
}

// IndexLoader replaces the search index.
type IndexLoader interface {
	Init(ctx context.Context, records []search.Record) error
}

// BuildSearchIndexTask rebuilds the search index over the given sefarim.
type BuildSearchIndexTask struct {
	Sefarim []int `json:"sefarim"`
}

func (t BuildSearchIndexTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueBuildSearchIndex,
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     10 * time.Minute,
		Retention:   defaultRetention,
	}
}

func BuildSearchIndexProcessor(corpus CorpusSource, index IndexLoader) backlite.QueueProcessor[BuildSearchIndexTask] {
	return func(ctx context.Context, task BuildSearchIndexTask) error {
		if corpus == nil || index == nil {
			return fmt.Errorf("search index not configured")
		}
		records, err := corpus.Records(ctx, task.Sefarim)
		if err != nil {
			return fmt.Errorf("build corpus: %w", err)
		}
		if err := index.Init(ctx, records); err != nil {
			return fmt.Errorf("init index: %w", err)
		}
		log.Printf("[TASK] Search index rebuilt with %d records", len(records))
		return nil
	}
}

func NewBuildSearchIndexQueue(corpus CorpusSource, index IndexLoader) backlite.Queue {
	return backlite.NewQueue(BuildSearchIndexProcessor(corpus, index))
}
