package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version, cfg.SearchIndex)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog and texts
	if cfg.Books != nil && cfg.Commentaries != nil {
		contentController := NewContentController(cfg.Books, cfg.Commentaries)
		router.GET("/api/catalog", contentController.GetCatalog)
		router.GET("/api/books/:sefer", contentController.GetBook)
		router.GET("/api/books/:sefer/commentaries", contentController.ListCommentaries)
		router.GET("/api/books/:sefer/commentaries/:mefaresh", contentController.GetCommentary)
		router.GET("/api/books/:sefer/verses/:perek/:pasuk/commentaries", contentController.GetVerseCommentaries)
	}

	// Cache management
	if cfg.Cache != nil {
		var books, commentaries TieredCache
		if cfg.Books != nil {
			books = cfg.Books
		}
		if cfg.Commentaries != nil {
			commentaries = cfg.Commentaries
		}
		cacheController := NewCacheController(cfg.Cache, books, commentaries, cfg.Corpus)
		router.GET("/api/cache/stats", cacheController.GetStats)
		router.GET("/api/cache/:collection/keys", cacheController.ListKeys)
		router.DELETE("/api/cache", cacheController.ClearAll)
		router.DELETE("/api/cache/:collection", cacheController.ClearCollection)
	}

	// Search endpoints
	if cfg.SearchIndex != nil {
		searchController := NewSearchController(cfg.SearchIndex, cfg.Corpus, cfg.TaskQueue, cfg.Sefarim)
		router.POST("/api/search", searchController.Search)
		router.GET("/api/search/status", searchController.GetStatus)
		router.POST("/api/search/rebuild", searchController.Rebuild)
	}
	// The socket builds its own index per connection
	router.GET("/ws/search", NewSearchController(nil, nil, nil, nil).Socket)

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.SyncProgress, cfg.Sefarim)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
		router.GET("/api/sync/progress", tasksController.GetSyncProgress)
	}

	// Preferences
	if cfg.Preferences != nil {
		preferencesController := NewPreferencesController(cfg.Preferences)
		router.GET("/api/preferences", preferencesController.GetStatus)
		router.PUT("/api/preferences/theme", preferencesController.SetTheme)
		router.PATCH("/api/preferences/font", preferencesController.UpdateFontSettings)
		router.PATCH("/api/preferences/display", preferencesController.UpdateDisplaySettings)
		router.PUT("/api/preferences/show-shared", preferencesController.SetShowSharedContent)
		router.POST("/api/preferences/sync", preferencesController.SyncNow)
	}

	// Raw local settings
	if cfg.Settings != nil {
		settingsController := NewSettingsController(cfg.Settings)
		router.GET("/api/settings/:key", settingsController.GetSetting)
		router.PUT("/api/settings/:key", settingsController.SetSetting)
		router.DELETE("/api/settings/:key", settingsController.DeleteSetting)
	}

	// Bookmarks, highlights and notes
	if cfg.Annotations != nil {
		annotationsController := NewAnnotationsController(cfg.Annotations)
		router.GET("/api/annotations/bookmarks", annotationsController.ListBookmarks)
		router.POST("/api/annotations/bookmarks", annotationsController.AddBookmark)
		router.GET("/api/annotations/bookmarks/tags", annotationsController.BookmarkTags)
		router.PATCH("/api/annotations/bookmarks/:id", annotationsController.UpdateBookmark)
		router.DELETE("/api/annotations/bookmarks/:id", annotationsController.DeleteBookmark)
		router.GET("/api/annotations/highlights", annotationsController.ListHighlights)
		router.POST("/api/annotations/highlights", annotationsController.AddHighlight)
		router.DELETE("/api/annotations/highlights/:id", annotationsController.DeleteHighlight)
		router.GET("/api/annotations/notes", annotationsController.ListNotes)
		router.GET("/api/annotations/notes/shared", annotationsController.ListSharedNotes)
		router.POST("/api/annotations/notes", annotationsController.AddNote)
		router.PATCH("/api/annotations/notes/:id", annotationsController.UpdateNote)
		router.DELETE("/api/annotations/notes/:id", annotationsController.DeleteNote)
	}

	// Cloud row store for other devices
	if cfg.Cloud != nil {
		cloudController := NewCloudController(cfg.Cloud)
		router.GET("/api/cloud/:table/:column", cloudController.ReadColumn)
		router.PUT("/api/cloud/:table/:column", cloudController.WriteColumn)
	}

	return router
}
