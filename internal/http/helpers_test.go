package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkadlec/bookcatalog/internal/auth"
	"github.com/mkadlec/bookcatalog/internal/database/audit"
	"github.com/mkadlec/bookcatalog/internal/database/books"
	"github.com/mkadlec/bookcatalog/internal/database/catalogimport"
	"github.com/mkadlec/bookcatalog/internal/database/comments"
	"github.com/mkadlec/bookcatalog/internal/database/favorites"
	"github.com/mkadlec/bookcatalog/internal/database/orders"
	"github.com/mkadlec/bookcatalog/internal/database/ratings"
	"github.com/mkadlec/bookcatalog/internal/database/users"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// setupTestRouter builds a router with all controllers wired to a file-based
// test database. Requests are authenticated as testUserID via an injected
// context middleware instead of real sessions.
const testUserID = uint(1)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.FavoriteBook{},
		&entities.UserRating{},
		&entities.Comment{},
		&entities.Order{},
		&entities.OrderItem{},
		&entities.AuditEvent{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Create(&entities.User{ID: testUserID, Username: "tester"}).Error)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, testUserID)
		c.Set(auth.ContextKeyUsername, "tester")
		c.Next()
	})

	booksController := NewBooksController(books.NewRepository(db))
	importController := NewImportController(catalogimport.NewRepository(db), audit.NewRepository(db))
	favoritesController := NewFavoritesController(favorites.NewRepository(db))
	ratingsController := NewRatingsController(ratings.NewRepository(db))
	commentsController := NewCommentsController(comments.NewRepository(db))
	ordersController := NewOrdersController(orders.NewRepository(db), audit.NewRepository(db))
	profileController := NewProfileController(users.NewRepository(db))

	router.GET("/books", booksController.List)
	router.GET("/books/search", booksController.List)
	router.GET("/books/:isbn13", booksController.GetByISBN)
	router.GET("/categories", booksController.Categories)
	router.POST("/data", importController.Import)
	router.POST("/add_to_favorites", favoritesController.Add)
	router.POST("/remove_from_favorites", favoritesController.Remove)
	router.GET("/favorites", favoritesController.List)
	router.POST("/books/:isbn13/rate", ratingsController.Rate)
	router.GET("/books/:isbn13/user-rating", ratingsController.GetUserRating)
	router.GET("/books/:isbn13/comments", commentsController.List)
	router.POST("/books/:isbn13/comments", commentsController.Add)
	router.POST("/orders", ordersController.Create)
	router.GET("/orders", ordersController.List)
	router.GET("/profile", profileController.Get)
	router.PUT("/profile", profileController.Update)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return router, db, cleanup
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createBook(t *testing.T, db *gorm.DB, isbn13, title, authors, categories string, price float64) {
	t.Helper()
	require.NoError(t, db.Create(&entities.Book{
		ISBN13:     isbn13,
		ISBN10:     isbn13[3:],
		Title:      title,
		Authors:    authors,
		Categories: categories,
		Price:      price,
		IsActive:   true,
	}).Error)
}
