package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone AuthMode = "none" // Every request acts as DefaultUserID (default)
	AuthModeJWT  AuthMode = "jwt"  // Bearer tokens signed with AUTH_JWT_SECRET
)

type (
	Config struct {
		HTTP
		Global
		Database
		Content
		Cache
		Sync
		Cloud
		Connectivity
		Search
		Tasks
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Content struct {
		Dir     string // Local bundle: <sefer>.json and sefaria/*.json
		BaseURL string // Optional HTTP origin used instead of Dir
	}
	Cache struct {
		TTL          time.Duration
		PreloadDelay time.Duration // Delay before the next sefer is fetched in the background
	}
	Sync struct {
		Debounce time.Duration
	}
	Cloud struct {
		URL string // Remote settings API; empty means the local database acts as the cloud
	}
	Connectivity struct {
		Schedule string // Cron spec for the reachability probe
		ProbeURL string
	}
	Search struct {
		Books []int // Sefarim indexed at startup
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		Mode        AuthMode
		JWTSecret   string
		TokenExpiry time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Content and caching
	v.SetDefault("content_dir", DefaultContentDir)
	v.SetDefault("content_base_url", "")
	v.SetDefault("cache_ttl", "24h")
	v.SetDefault("preload_delay", "2s")

	// Settings sync
	v.SetDefault("sync_debounce", "1s")
	v.SetDefault("cloud_url", "")
	v.SetDefault("connectivity_schedule", "@every 30s")
	v.SetDefault("connectivity_probe_url", "")

	v.SetDefault("search_books", "1,2,3,4,5")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_jwt_secret", "")
	v.SetDefault("auth_token_expiry", "720h") // 30 days

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "10m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Content: Content{
			Dir:     v.GetString("CONTENT_DIR"),
			BaseURL: v.GetString("CONTENT_BASE_URL"),
		},
		Cache: Cache{
			TTL:          v.GetDuration("CACHE_TTL"),
			PreloadDelay: v.GetDuration("PRELOAD_DELAY"),
		},
		Sync: Sync{
			Debounce: v.GetDuration("SYNC_DEBOUNCE"),
		},
		Cloud: Cloud{
			URL: v.GetString("CLOUD_URL"),
		},
		Connectivity: Connectivity{
			Schedule: v.GetString("CONNECTIVITY_SCHEDULE"),
			ProbeURL: v.GetString("CONNECTIVITY_PROBE_URL"),
		},
		Search: Search{
			Books: parseBookList(v.GetString("SEARCH_BOOKS")),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:        AuthMode(v.GetString("AUTH_MODE")),
			JWTSecret:   v.GetString("AUTH_JWT_SECRET"),
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
		},
	}
}

// parseBookList reads a comma separated list of sefer ids, ignoring anything
// that is not a positive integer.
func parseBookList(s string) []int {
	var books []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			continue
		}
		books = append(books, id)
	}
	return books
}
