package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/chumash/internal/config"
	"github.com/mrlokans/chumash/internal/entrypoint"
	"github.com/mrlokans/chumash/internal/hebrew"
	"github.com/mrlokans/chumash/internal/search"
)

type SearchCommand struct {
	Query        string
	SearchType   string
	Mefaresh     string
	Sefer        int
	Books        string
	Limit        int
	DatabasePath string
	ContentDir   string
	Timeout      time.Duration
}

func NewSearchCommand() *SearchCommand {
	return &SearchCommand{}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)

	fs.StringVar(&cmd.Query, "q", "", "Search query (required)")
	fs.StringVar(&cmd.SearchType, "type", search.SearchAll, "Record type: all, pasuk, question or perush")
	fs.StringVar(&cmd.Mefaresh, "mefaresh", "", "Only commentary by this mefaresh (Hebrew name)")
	fs.IntVar(&cmd.Sefer, "sefer", 0, "Only results from this sefer (1-5)")
	fs.StringVar(&cmd.Books, "books", "", "Comma separated sefarim to index (default: SEARCH_BOOKS)")
	fs.IntVar(&cmd.Limit, "limit", 20, "Maximum number of results to print")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: DATABASE_PATH)")
	fs.StringVar(&cmd.ContentDir, "content", "", "Content directory (default: CONTENT_DIR)")
	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "Time allowed to build the index")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Build the search index and run one query against it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s search -q \"ויאמר אלהים\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s search -q \"תהו\" -type perush -mefaresh \"רש\\\"י\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.Query) == "" {
		fs.Usage()
		return fmt.Errorf("query is required")
	}
	return nil
}

func (cmd *SearchCommand) filters() *search.Filters {
	f := &search.Filters{SearchType: cmd.SearchType, Mefaresh: cmd.Mefaresh}
	if cmd.Sefer > 0 {
		sefer := cmd.Sefer
		f.Sefer = &sefer
	}
	return f
}

func (cmd *SearchCommand) Run() error {
	filters := cmd.filters()
	if err := filters.Validate(); err != nil {
		return err
	}

	cfg := config.NewConfig()
	applyOverrides(cfg, cmd.DatabasePath, cmd.ContentDir)
	books := cfg.Search.Books
	if cmd.Books != "" {
		var err error
		if books, err = parseBooks(cmd.Books); err != nil {
			return err
		}
	}

	services, err := entrypoint.NewServices(cfg, true)
	if err != nil {
		return err
	}
	defer services.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	start := time.Now()
	if err := services.BuildIndex(ctx, books); err != nil {
		return err
	}
	fmt.Printf("Index built in %s\n", time.Since(start).Round(time.Millisecond))

	results, err := services.Search.Search(ctx, cmd.Query, filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("\n=== %d results for %q ===\n", len(results), cmd.Query)
	for i, r := range results {
		if i == cmd.Limit {
			fmt.Printf("... %d more\n", len(results)-cmd.Limit)
			break
		}
		fmt.Printf("%3d. %s  %s\n", i+1, cmd.reference(services, r.Item), truncate(r.Item.Text, 80))
	}
	return nil
}

// reference formats a record location as "בראשית א:ב", with the mefaresh
// for commentary.
func (cmd *SearchCommand) reference(services *entrypoint.Services, rec search.Record) string {
	name := strconv.Itoa(rec.Sefer)
	if b, ok := services.Catalog.Book(rec.Sefer); ok {
		name = b.Hebrew
	}
	ref := fmt.Sprintf("%s %s:%s", name, hebrew.ToNumber(rec.Perek), hebrew.ToNumber(rec.Pasuk))
	if rec.Mefaresh != "" {
		ref += " [" + rec.Mefaresh + "]"
	}
	return ref
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
