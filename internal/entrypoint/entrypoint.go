package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/config"
	"github.com/mrlokans/chumash/internal/entities"
	http_controllers "github.com/mrlokans/chumash/internal/http"
	"github.com/mrlokans/chumash/internal/preferences"
	"github.com/mrlokans/chumash/internal/scheduler"
	"github.com/mrlokans/chumash/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM; SIGKILL cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Chumash v%s", version)

	services, err := NewServices(cfg, false)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer services.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize authentication
	var authMiddleware *auth.Middleware
	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		if cfg.Auth.JWTSecret == "" {
			log.Fatalf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
		log.Printf("Authentication mode: jwt")
		authMiddleware = auth.NewMiddleware(auth.NewTokenService(cfg.Auth), cfg.Auth)
	default:
		log.Printf("Authentication mode: none (no authentication required)")
		if services.Session.UserID() == "" {
			services.Session.Login(auth.DefaultUserID, "")
		}
	}

	// Connectivity drives the online/offline state of the settings sync
	monitor := scheduler.NewConnectivityMonitor(services.ConnectivityProbe(cfg), cfg.Connectivity.Schedule, true)
	if err := monitor.Start(ctx); err != nil {
		log.Printf("WARNING: connectivity monitor disabled: %v", err)
	}

	prefs := preferences.New(preferences.Options{
		Local:        services.Settings,
		Remote:       services.Cloud,
		Session:      services.Session,
		Connectivity: monitor,
		Debounce:     cfg.Sync.Debounce,
	})
	prefs.Start(ctx)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPreloadSeferQueue(services.Books),
			tasks.NewDownloadSefarimQueue(services.Books, services.SyncProgress.Tracker(entities.SyncTypeSefarim)),
			tasks.NewDownloadCommentariesQueue(services.Commentaries, services.SyncProgress.Tracker(entities.SyncTypeCommentaries)),
			tasks.NewBuildSearchIndexQueue(services.Corpus, services.Search),
		)

		// Start task workers in background
		go taskClient.Start(ctx)
	}

	// The index builds in the background; searches answer 503 until it is ready
	if len(cfg.Search.Books) > 0 {
		if taskClient != nil {
			if _, err := taskClient.Enqueue(tasks.BuildSearchIndexTask{Sefarim: cfg.Search.Books}); err != nil {
				log.Printf("[Search] Failed to queue index build: %v", err)
			}
		} else {
			go func() {
				if err := services.BuildIndex(ctx, cfg.Search.Books); err != nil {
					log.Printf("[Search] Index build failed: %v", err)
				}
			}()
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       services.DB,
		Version:        version,
		AuthMiddleware: authMiddleware,
		Books:          services.Books,
		Commentaries:   services.Commentaries,
		Cache:          services.Cache,
		SearchIndex:    services.Search,
		Corpus:         services.Corpus,
		Sefarim:        cfg.Search.Books,
		SyncProgress:   services.SyncProgress,
		Preferences:    prefs,
		Settings:       services.Settings,
		Annotations:    services.Annotations,
		Cloud:          services.Cloud,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		prefs.SyncNow(ctx)
		prefs.Close()
		monitor.Stop()
		cancel()
	}

	Serve(router, cfg, onShutdown)
}
