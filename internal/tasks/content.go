package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/mrlokans/chumash/internal/content"
	"github.com/mrlokans/chumash/internal/loader"
)

// Queue names
const (
	QueuePreloadSefer         = "preload_sefer"
	QueueDownloadSefarim      = "download_sefarim"
	QueueDownloadCommentaries = "download_commentaries"
	QueueBuildSearchIndex     = "build_search_index"
)

// SeferLoader loads one sefer through the caches.
type SeferLoader interface {
	Load(ctx context.Context, id int) (*content.Sefer, error)
	Catalog() *content.Catalog
}

// CommentaryDownloader warms the commentary caches.
type CommentaryDownloader interface {
	DownloadAll(ctx context.Context, progress loader.Progress) (loader.DownloadResult, error)
	DownloadByMefaresh(ctx context.Context, mefareshEn string, progress loader.Progress) (loader.DownloadResult, error)
}

// ProgressTracker persists bulk download progress.
type ProgressTracker interface {
	Start(totalItems int) error
	Update(processed, succeeded, failed, skipped int, currentItem string) error
	Complete(errMsg string) error
}

var defaultRetention = &backlite.Retention{
	Duration:   24 * time.Hour,
	OnlyFailed: false,
	Data:       &backlite.RetainData{OnlyFailed: true},
}

// PreloadSeferTask loads one sefer into the memory and durable caches.
type PreloadSeferTask struct {
	Sefer int `json:"sefer"`
}

func (t PreloadSeferTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueuePreloadSefer,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention:   defaultRetention,
	}
}

func PreloadSeferProcessor(books SeferLoader) backlite.QueueProcessor[PreloadSeferTask] {
	return func(ctx context.Context, task PreloadSeferTask) error {
		if books == nil {
			return fmt.Errorf("sefer loader not configured")
		}
		sefer, err := books.Load(ctx, task.Sefer)
		if err != nil {
			return fmt.Errorf("preload sefer %d: %w", task.Sefer, err)
		}
		log.Printf("[TASK] Preloaded sefer %d (%d pesukim)", task.Sefer, sefer.VerseCount())
		return nil
	}
}

func NewPreloadSeferQueue(books SeferLoader) backlite.Queue {
	return backlite.NewQueue(PreloadSeferProcessor(books))
}

// DownloadSefarimTask loads every sefer of the catalog, recording progress.
type DownloadSefarimTask struct{}

func (t DownloadSefarimTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueDownloadSefarim,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention:   defaultRetention,
	}
}

func DownloadSefarimProcessor(books SeferLoader, tracker ProgressTracker) backlite.QueueProcessor[DownloadSefarimTask] {
	return func(ctx context.Context, task DownloadSefarimTask) error {
		if books == nil || tracker == nil {
			return fmt.Errorf("sefer download not configured")
		}

		catalog := books.Catalog()
		if err := tracker.Start(len(catalog.Books)); err != nil {
			return fmt.Errorf("start progress: %w", err)
		}

		succeeded, failed := 0, 0
		for i, b := range catalog.Books {
			if err := ctx.Err(); err != nil {
				_ = tracker.Complete(err.Error())
				return err
			}
			_ = tracker.Update(i, succeeded, failed, 0, b.Hebrew)
			if _, err := books.Load(ctx, b.ID); err != nil {
				log.Printf("[TASK] Failed to download sefer %d: %v", b.ID, err)
				failed++
				continue
			}
			succeeded++
		}

		_ = tracker.Update(len(catalog.Books), succeeded, failed, 0, "")
		log.Printf("[TASK] Sefarim download complete: %d succeeded, %d failed", succeeded, failed)
		return tracker.Complete("")
	}
}

func NewDownloadSefarimQueue(books SeferLoader, tracker ProgressTracker) backlite.Queue {
	return backlite.NewQueue(DownloadSefarimProcessor(books, tracker))
}

// DownloadCommentariesTask fills the commentary cache, for one mefaresh or,
// when Mefaresh is empty, for all of them.
type DownloadCommentariesTask struct {
	Mefaresh string `json:"mefaresh,omitempty"`
}

func (t DownloadCommentariesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueDownloadCommentaries,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention:   defaultRetention,
	}
}

func DownloadCommentariesProcessor(downloader CommentaryDownloader, tracker ProgressTracker) backlite.QueueProcessor[DownloadCommentariesTask] {
	return func(ctx context.Context, task DownloadCommentariesTask) error {
		if downloader == nil || tracker == nil {
			return fmt.Errorf("commentary download not configured")
		}

		started := false
		progress := func(completed, total int, current string) {
			if !started {
				started = true
				if err := tracker.Start(total); err != nil {
					log.Printf("[TASK] Failed to record download start: %v", err)
				}
			}
			_ = tracker.Update(completed, 0, 0, 0, current)
		}

		var result loader.DownloadResult
		var err error
		if task.Mefaresh == "" {
			result, err = downloader.DownloadAll(ctx, progress)
		} else {
			result, err = downloader.DownloadByMefaresh(ctx, task.Mefaresh, progress)
		}
		if err != nil {
			if started {
				_ = tracker.Complete(err.Error())
			}
			return fmt.Errorf("download commentaries: %w", err)
		}

		processed := result.Downloaded + result.Failed + result.Missing
		_ = tracker.Update(processed, result.Downloaded, result.Failed, result.Missing, "")
		log.Printf("[TASK] Commentary download complete: %d downloaded, %d missing, %d failed",
			result.Downloaded, result.Missing, result.Failed)
		return tracker.Complete("")
	}
}

func NewDownloadCommentariesQueue(downloader CommentaryDownloader, tracker ProgressTracker) backlite.Queue {
	return backlite.NewQueue(DownloadCommentariesProcessor(downloader, tracker))
}
