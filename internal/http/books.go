package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/books"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// CatalogStore defines the read operations the books controller needs.
type CatalogStore interface {
	List(q books.ListQuery) (*books.Page, error)
	GetByISBN(isbn13 string) (*entities.Book, error)
	Categories() ([]string, error)
}

type BooksController struct {
	store CatalogStore
}

func NewBooksController(store CatalogStore) *BooksController {
	return &BooksController{store: store}
}

// List returns one page of active books, optionally filtered and sorted.
// GET /books and GET /books/search
func (bc *BooksController) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	result, err := bc.store.List(books.ListQuery{
		Title:    c.Query("title"),
		Author:   c.Query("author"),
		Category: c.Query("category"),
		ISBN13:   c.Query("isbn13"),
		SortBy:   c.Query("sort_by"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetByISBN returns a single book, active or not.
// GET /books/:isbn13
func (bc *BooksController) GetByISBN(c *gin.Context) {
	book, err := bc.store.GetByISBN(c.Param("isbn13"))
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// Categories returns the distinct category tags of the active catalog.
// GET /categories
func (bc *BooksController) Categories(c *gin.Context) {
	categories, err := bc.store.Categories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
