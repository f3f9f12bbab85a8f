// Package http wires the Gin router and the JSON API controllers.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/auth"
	"github.com/mkadlec/bookcatalog/internal/database"
)

// RouterConfig carries every dependency the router needs. Controllers are
// constructed here from their store interfaces.
type RouterConfig struct {
	Database *database.Database
	Version  string

	CatalogStore   CatalogStore
	ReconcileStore ReconcileStore
	FavoritesStore FavoritesStore
	RatingsStore   RatingsStore
	CommentsStore  CommentsStore
	OrdersStore    OrdersStore
	ProfileStore   ProfileStore
	Auditor        Auditor

	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthController *auth.Controller

	CSRFSecret    []byte
	SecureCookies bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.LoadUser())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.CatalogStore)
	importController := NewImportController(cfg.ReconcileStore, cfg.Auditor)
	favoritesController := NewFavoritesController(cfg.FavoritesStore)
	ratingsController := NewRatingsController(cfg.RatingsStore)
	commentsController := NewCommentsController(cfg.CommentsStore)
	ordersController := NewOrdersController(cfg.OrdersStore, cfg.Auditor)
	profileController := NewProfileController(cfg.ProfileStore)

	// Health and utility endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/csrf-token", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrf_token": auth.GetCSRFToken(c)})
	})

	// Public catalog endpoints
	router.GET("/books", booksController.List)
	router.GET("/books/search", booksController.List)
	router.GET("/books/:isbn13", booksController.GetByISBN)
	router.GET("/categories", booksController.Categories)
	router.GET("/books/:isbn13/comments", commentsController.List)

	// Bulk catalog reconciliation
	router.POST("/data", importController.Import)

	// Account endpoints
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	// Session-only endpoints
	sessionRequired := router.Group("/")
	if cfg.AuthMiddleware != nil {
		sessionRequired.Use(cfg.AuthMiddleware.RequireSession())
	}

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterSessionRoutes(sessionRequired)
	}

	sessionRequired.GET("/profile", profileController.Get)
	sessionRequired.PUT("/profile", profileController.Update)

	sessionRequired.POST("/add_to_favorites", favoritesController.Add)
	sessionRequired.POST("/remove_from_favorites", favoritesController.Remove)
	sessionRequired.GET("/favorites", favoritesController.List)

	sessionRequired.POST("/books/:isbn13/rate", ratingsController.Rate)
	sessionRequired.GET("/books/:isbn13/user-rating", ratingsController.GetUserRating)
	sessionRequired.POST("/books/:isbn13/comments", commentsController.Add)

	sessionRequired.POST("/orders", ordersController.Create)
	sessionRequired.GET("/orders", ordersController.List)

	return router
}
