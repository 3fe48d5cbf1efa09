package entrypoint

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/cloud"
	"github.com/mrlokans/chumash/internal/config"
	"github.com/mrlokans/chumash/internal/content"
	"github.com/mrlokans/chumash/internal/corpus"
	"github.com/mrlokans/chumash/internal/database"
	"github.com/mrlokans/chumash/internal/database/annotations"
	"github.com/mrlokans/chumash/internal/database/cache"
	"github.com/mrlokans/chumash/internal/database/settings"
	syncrepo "github.com/mrlokans/chumash/internal/database/sync"
	"github.com/mrlokans/chumash/internal/database/usersettings"
	"github.com/mrlokans/chumash/internal/loader"
	"github.com/mrlokans/chumash/internal/scheduler"
	"github.com/mrlokans/chumash/internal/search"
	"github.com/mrlokans/chumash/internal/settingsstore"
)

// Services holds everything the server and the CLI commands share.
type Services struct {
	DB           *database.Database
	Catalog      *content.Catalog
	Cache        *cache.Repository
	Books        *loader.Books
	Commentaries *loader.Commentaries
	Corpus       *corpus.Builder
	Engine       *search.Engine
	Search       *search.Client
	Settings     *settingsstore.SettingsStore
	Session      *auth.Session
	Cloud        cloud.Backend
	SyncProgress *syncrepo.Repository
	Annotations  *annotations.Repository
}

// NewServices opens the database and wires the content, search and settings
// layers. silent suppresses SQL logging, for CLI commands.
func NewServices(cfg *config.Config, silent bool) (*Services, error) {
	open := database.NewDatabase
	if silent {
		open = database.NewSilentDatabase
	}
	db, err := open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	catalog := content.DefaultCatalog()
	var source content.Source
	if cfg.Content.BaseURL != "" {
		log.Printf("[Loader] Content origin: %s", cfg.Content.BaseURL)
		source = content.NewHTTPSource(cfg.Content.BaseURL, catalog)
	} else {
		if _, err := os.Stat(cfg.Content.Dir); err != nil {
			log.Printf("WARNING: content directory %s is not readable: %v", cfg.Content.Dir, err)
		}
		log.Printf("[Loader] Content directory: %s", cfg.Content.Dir)
		source = content.NewFSSource(os.DirFS(cfg.Content.Dir), catalog)
	}

	store := cache.NewRepository(db.DB, cfg.Cache.TTL)
	books := loader.NewBooks(source, store, catalog, cfg.Cache.PreloadDelay)
	commentaries := loader.NewCommentaries(source, store, catalog)
	engine := search.NewEngine(nil)

	local := settingsstore.New(settings.NewRepository(db.DB))
	session := auth.NewSession(local)

	var backend cloud.Backend
	if cfg.Cloud.URL != "" {
		log.Printf("[Sync] Cloud settings API: %s", cfg.Cloud.URL)
		backend = cloud.NewHTTPBackend(cfg.Cloud.URL, session.Token)
	} else {
		backend = cloud.NewGormBackend(usersettings.NewRepository(db.DB))
	}

	return &Services{
		DB:           db,
		Catalog:      catalog,
		Cache:        store,
		Books:        books,
		Commentaries: commentaries,
		Corpus:       corpus.NewBuilder(books, commentaries, store),
		Engine:       engine,
		Search:       search.NewClient(engine),
		Settings:     local,
		Session:      session,
		Cloud:        backend,
		SyncProgress: syncrepo.NewRepository(db.DB),
		Annotations:  annotations.NewRepository(db.DB),
	}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityProbe picks how the cloud's reachability is checked: the
// cloud API itself, a configured URL, or nothing when the cloud is local.
func (s *Services) ConnectivityProbe(cfg *config.Config) scheduler.Prober {
	if p, ok := s.Cloud.(pinger); ok {
		return p.Ping
	}
	if cfg.Connectivity.ProbeURL != "" {
		return scheduler.HTTPProbe(cfg.Connectivity.ProbeURL)
	}
	return nil
}

// BuildIndex loads the corpus for sefarim and replaces the search index.
func (s *Services) BuildIndex(ctx context.Context, sefarim []int) error {
	records, err := s.Corpus.Records(ctx, sefarim)
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}
	if err := s.Search.Init(ctx, records); err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	log.Printf("[Search] Index ready with %d records", len(records))
	return nil
}

func (s *Services) Close() {
	s.Books.Close()
	s.Engine.Close()
	if err := s.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
