package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/chumash/internal/config"
	"github.com/mrlokans/chumash/internal/entities"
	"github.com/mrlokans/chumash/internal/entrypoint"
	"github.com/mrlokans/chumash/internal/tasks"
)

// WarmCacheCommand fills the durable cache so the reader works offline.
type WarmCacheCommand struct {
	Commentaries bool
	Mefaresh     string
	Index        bool
	DatabasePath string
	ContentDir   string
	Timeout      time.Duration
}

func NewWarmCacheCommand() *WarmCacheCommand {
	return &WarmCacheCommand{}
}

func (cmd *WarmCacheCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("warm-cache", flag.ExitOnError)

	fs.BoolVar(&cmd.Commentaries, "commentaries", true, "Also download commentaries")
	fs.StringVar(&cmd.Mefaresh, "mefaresh", "", "Only download commentary by this mefaresh (English name, e.g. Rashi)")
	fs.BoolVar(&cmd.Index, "index", true, "Build and cache the search corpus afterwards")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: DATABASE_PATH)")
	fs.StringVar(&cmd.ContentDir, "content", "", "Content directory (default: CONTENT_DIR)")
	fs.DurationVar(&cmd.Timeout, "timeout", time.Hour, "Time allowed for the whole run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s warm-cache [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download sefarim and commentaries into the local cache.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s warm-cache\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s warm-cache -mefaresh Rashi -index=false\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *WarmCacheCommand) Run() error {
	cfg := config.NewConfig()
	applyOverrides(cfg, cmd.DatabasePath, cmd.ContentDir)

	services, err := entrypoint.NewServices(cfg, true)
	if err != nil {
		return err
	}
	defer services.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	// Same processors the task queue runs, so progress shows up in
	// /api/sync/progress as well
	fmt.Println("Downloading sefarim...")
	downloadSefarim := tasks.DownloadSefarimProcessor(services.Books, services.SyncProgress.Tracker(entities.SyncTypeSefarim))
	if err := downloadSefarim(ctx, tasks.DownloadSefarimTask{}); err != nil {
		return fmt.Errorf("sefarim: %w", err)
	}
	if err := printProgress(services, entities.SyncTypeSefarim); err != nil {
		return err
	}

	if cmd.Commentaries || cmd.Mefaresh != "" {
		fmt.Println("Downloading commentaries...")
		downloadCommentaries := tasks.DownloadCommentariesProcessor(services.Commentaries, services.SyncProgress.Tracker(entities.SyncTypeCommentaries))
		if err := downloadCommentaries(ctx, tasks.DownloadCommentariesTask{Mefaresh: cmd.Mefaresh}); err != nil {
			return fmt.Errorf("commentaries: %w", err)
		}
		if err := printProgress(services, entities.SyncTypeCommentaries); err != nil {
			return err
		}
	}

	if cmd.Index {
		fmt.Println("Building search corpus...")
		records, err := services.Corpus.Records(ctx, cfg.Search.Books)
		if err != nil {
			return fmt.Errorf("search corpus: %w", err)
		}
		fmt.Printf("  %d records cached\n", len(records))
	}

	stats, err := services.Cache.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("\n=== Cache ===\n")
	for _, s := range stats {
		fmt.Printf("%-14s %5d entries %10d bytes\n", s.Collection, s.Entries, s.SizeBytes)
	}
	return nil
}

func printProgress(services *entrypoint.Services, syncType entities.SyncType) error {
	p, err := services.SyncProgress.Get(syncType)
	if err != nil {
		return err
	}
	fmt.Printf("  %d succeeded, %d failed, %d skipped of %d\n", p.Succeeded, p.Failed, p.Skipped, p.TotalItems)
	return nil
}
