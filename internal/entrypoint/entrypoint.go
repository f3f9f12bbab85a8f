// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/auth"
	"github.com/mkadlec/bookcatalog/internal/config"
	"github.com/mkadlec/bookcatalog/internal/database"
	"github.com/mkadlec/bookcatalog/internal/database/audit"
	"github.com/mkadlec/bookcatalog/internal/database/books"
	"github.com/mkadlec/bookcatalog/internal/database/catalogimport"
	"github.com/mkadlec/bookcatalog/internal/database/comments"
	"github.com/mkadlec/bookcatalog/internal/database/favorites"
	"github.com/mkadlec/bookcatalog/internal/database/orders"
	"github.com/mkadlec/bookcatalog/internal/database/ratings"
	"github.com/mkadlec/bookcatalog/internal/database/users"
	http_controllers "github.com/mkadlec/bookcatalog/internal/http"
	"github.com/mkadlec/bookcatalog/internal/importer"
	"github.com/mkadlec/bookcatalog/internal/scheduler"
	"github.com/mkadlec/bookcatalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the HTTP listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the full application and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Catalog v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	booksRepo := books.NewRepository(db.DB)
	importRepo := catalogimport.NewRepository(db.DB)
	favoritesRepo := favorites.NewRepository(db.DB)
	ratingsRepo := ratings.NewRepository(db.DB)
	commentsRepo := comments.NewRepository(db.DB)
	ordersRepo := orders.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)

	fileImporter := importer.NewImporter(importRepo, auditRepo)

	// Authentication
	authService := auth.NewService(usersRepo, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)
	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{})
	authController := auth.NewController(authService, sessionManager, rateLimiter, auditRepo)
	defer authController.Stop()

	var csrfSecret []byte
	if cfg.Auth.CSRFEnabled {
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}
	}

	// Task queue for background imports and maintenance
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var importScheduler *scheduler.ImportScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.DefaultConfig()
		if cfg.Tasks.Workers > 0 {
			taskCfg.Workers = cfg.Tasks.Workers
		}
		if cfg.Tasks.ReleaseAfter > 0 {
			taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
		}
		if cfg.Tasks.CleanupInterval > 0 {
			taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCatalogImportQueue(fileImporter),
			tasks.NewCleanupAuditEventsQueue(auditRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Kick off retention cleanup once per startup
		_, err = taskClient.Add(tasks.CleanupAuditEventsTask{RetentionDays: cfg.Audit.RetentionDays}).Save()
		if err != nil {
			log.Printf("Failed to enqueue audit cleanup: %v", err)
		}

		if cfg.Import.OnStartup && cfg.Import.File != "" {
			_, err = taskClient.Add(tasks.CatalogImportTask{File: cfg.Import.File}).Save()
			if err != nil {
				log.Printf("Failed to enqueue startup import: %v", err)
			}
		}

		importScheduler = scheduler.NewImportScheduler(taskClient, cfg.Import)
		if err := importScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start import scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database: db,
		Version:  version,

		CatalogStore:   booksRepo,
		ReconcileStore: importRepo,
		FavoritesStore: favoritesRepo,
		RatingsStore:   ratingsRepo,
		CommentsStore:  commentsRepo,
		OrdersStore:    ordersRepo,
		ProfileStore:   usersRepo,
		Auditor:        auditRepo,

		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		AuthController: authController,

		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Auth.SecureCookies,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if importScheduler != nil {
			importScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
