package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/ratings"
)

// RatingsStore defines the operations the ratings controller needs.
type RatingsStore interface {
	Rate(userID uint, isbn13 string, rating int) (*ratings.Summary, error)
	GetUserRating(userID uint, isbn13 string) (int, bool, error)
}

type RatingsController struct {
	store RatingsStore
}

func NewRatingsController(store RatingsStore) *RatingsController {
	return &RatingsController{store: store}
}

type rateRequest struct {
	Rating *int `json:"rating"`
}

// Rate stores or replaces the caller's rating and returns the recomputed
// aggregates.
// POST /books/:isbn13/rate
func (rc *RatingsController) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating == nil {
		respondBadRequest(c, "rating is required")
		return
	}

	summary, err := rc.store.Rate(GetUserID(c), c.Param("isbn13"), *req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, ratings.ErrInvalidRating):
			respondBadRequest(c, err.Error())
		case errors.Is(err, ratings.ErrBookNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "rate book")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "rating saved",
		"average_rating": summary.AverageRating,
		"ratings_count":  summary.RatingsCount,
	})
}

// GetUserRating returns the caller's stored rating for a book. Not having
// rated yet is a normal response, not an error.
// GET /books/:isbn13/user-rating
func (rc *RatingsController) GetUserRating(c *gin.Context) {
	rating, found, err := rc.store.GetUserRating(GetUserID(c), c.Param("isbn13"))
	if err != nil {
		respondInternalError(c, err, "get user rating")
		return
	}

	if !found {
		c.JSON(http.StatusOK, gin.H{"rating": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating})
}
