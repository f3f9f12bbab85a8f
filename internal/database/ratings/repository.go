// Package ratings maintains per-user star ratings and keeps the aggregate
// fields on the book row consistent with them.
package ratings

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

var (
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	ErrBookNotFound  = errors.New("book not found")
)

// Summary is the recomputed aggregate state of a book after a rating write.
type Summary struct {
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Rate stores or replaces the user's rating for a book and recomputes the
// book's average from the full set of stored ratings. Recomputing from
// SUM/COUNT rather than adjusting the previous average keeps the aggregate
// correct under concurrent writes: the row write is last-writer-wins, the
// aggregate is always derived from what actually landed.
func (r *Repository) Rate(userID uint, isbn13 string, rating int) (*Summary, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	var summary Summary
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.Select("isbn13").Where("isbn13 = ?", isbn13).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("look up book: %w", err)
		}

		var existing entities.UserRating
		err := tx.Where("user_id = ? AND isbn13 = ?", userID, isbn13).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&entities.UserRating{}).
				Where("user_id = ? AND isbn13 = ?", userID, isbn13).
				Update("rating", rating).Error; err != nil {
				return fmt.Errorf("update rating: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&entities.UserRating{
				UserID: userID,
				ISBN13: isbn13,
				Rating: rating,
			}).Error; err != nil {
				return fmt.Errorf("create rating: %w", err)
			}
		default:
			return fmt.Errorf("look up rating: %w", err)
		}

		var agg struct {
			Count int64
			Total float64
		}
		if err := tx.Model(&entities.UserRating{}).
			Where("isbn13 = ?", isbn13).
			Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS total").
			Scan(&agg).Error; err != nil {
			return fmt.Errorf("aggregate ratings: %w", err)
		}

		average := 0.0
		if agg.Count > 0 {
			average = math.Round(agg.Total/float64(agg.Count)*100) / 100
		}

		if err := tx.Model(&entities.Book{}).
			Where("isbn13 = ?", isbn13).
			Updates(map[string]any{
				"average_rating": average,
				"ratings_count":  agg.Count,
			}).Error; err != nil {
			return fmt.Errorf("update book aggregates: %w", err)
		}

		summary = Summary{AverageRating: average, RatingsCount: int(agg.Count)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// GetUserRating returns the user's stored rating for a book. A missing
// rating is reported through the boolean, not as an error.
func (r *Repository) GetUserRating(userID uint, isbn13 string) (int, bool, error) {
	var userRating entities.UserRating
	err := r.db.Where("user_id = ? AND isbn13 = ?", userID, isbn13).First(&userRating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return userRating.Rating, true, nil
}
