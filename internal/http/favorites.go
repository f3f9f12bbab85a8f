package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/books"
	"github.com/mkadlec/bookcatalog/internal/database/favorites"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// FavoritesStore defines the operations the favorites controller needs.
type FavoritesStore interface {
	Add(userID uint, isbn13 string) ([]entities.Book, error)
	Remove(userID uint, isbn13 string) ([]entities.Book, error)
	List(userID uint, page, pageSize int, sortBy string) (*books.Page, error)
}

type FavoritesController struct {
	store FavoritesStore
}

func NewFavoritesController(store FavoritesStore) *FavoritesController {
	return &FavoritesController{store: store}
}

type favoriteRequest struct {
	ISBN13 string `json:"isbn13"`
}

// Add marks a book as a favorite. Re-adding is a no-op that still returns
// the current list.
// POST /add_to_favorites
func (fc *FavoritesController) Add(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ISBN13 == "" {
		respondBadRequest(c, "isbn13 is required")
		return
	}

	list, err := fc.store.Add(GetUserID(c), req.ISBN13)
	if err != nil {
		if errors.Is(err, favorites.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "add favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "book added to favorites",
		"favorites": list,
	})
}

// Remove drops a book from the user's favorites. Removing a book that was
// never favorited is a 404.
// POST /remove_from_favorites
func (fc *FavoritesController) Remove(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ISBN13 == "" {
		respondBadRequest(c, "isbn13 is required")
		return
	}

	list, err := fc.store.Remove(GetUserID(c), req.ISBN13)
	if err != nil {
		if errors.Is(err, favorites.ErrNotFavorite) {
			respondNotFound(c, "favorite")
			return
		}
		respondInternalError(c, err, "remove favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "book removed from favorites",
		"favorites": list,
	})
}

// List returns one page of the user's favorites, deactivated books
// included.
// GET /favorites
func (fc *FavoritesController) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	result, err := fc.store.List(GetUserID(c), page, pageSize, c.Query("sort_by"))
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, result)
}
