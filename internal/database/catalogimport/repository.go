// Package catalogimport reconciles an externally supplied catalog batch
// against the book store. Present records are upserted, absent ones are
// deactivated; nothing is ever hard-deleted.
package catalogimport

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

// Record is one incoming book object from a catalog push.
type Record struct {
	ISBN13        string  `json:"isbn13"`
	ISBN10        string  `json:"isbn10"`
	Title         string  `json:"title"`
	Subtitle      string  `json:"subtitle"`
	Authors       string  `json:"authors"`
	Categories    string  `json:"categories"`
	Thumbnail     string  `json:"thumbnail"`
	Description   string  `json:"description"`
	PublishedYear int     `json:"published_year"`
	AverageRating float64 `json:"average_rating"`
	NumPages      int     `json:"num_pages"`
	RatingsCount  int     `json:"ratings_count"`
	Price         float64 `json:"price"`
}

// Result reports the per-outcome counts of one reconciliation run.
type Result struct {
	Added       int `json:"added"`
	Updated     int `json:"updated"`
	Skipped     int `json:"skipped"`
	Deactivated int `json:"deactivated"`
}

func (r Record) validate() error {
	var missing []string
	if r.ISBN13 == "" {
		missing = append(missing, "isbn13")
	}
	if r.ISBN10 == "" {
		missing = append(missing, "isbn10")
	}
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %v", missing)
	}
	return nil
}

// updateFields is the allow-listed set of columns an import may rewrite on
// an existing book. The rating aggregates are owned by the ratings overlay
// and are deliberately absent.
func (r Record) updateFields() map[string]any {
	return map[string]any{
		"isbn10":         r.ISBN10,
		"title":          r.Title,
		"subtitle":       r.Subtitle,
		"authors":        r.Authors,
		"categories":     r.Categories,
		"thumbnail":      r.Thumbnail,
		"description":    r.Description,
		"published_year": r.PublishedYear,
		"num_pages":      r.NumPages,
		"price":          r.Price,
		"is_active":      true,
	}
}

func (r Record) toBook() *entities.Book {
	return &entities.Book{
		ISBN13:        r.ISBN13,
		ISBN10:        r.ISBN10,
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		Authors:       r.Authors,
		Categories:    r.Categories,
		Thumbnail:     r.Thumbnail,
		Description:   r.Description,
		PublishedYear: r.PublishedYear,
		AverageRating: r.AverageRating,
		NumPages:      r.NumPages,
		RatingsCount:  r.RatingsCount,
		Price:         r.Price,
		IsActive:      true,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Reconcile applies a catalog batch as a single transaction. Records with
// missing required fields are skipped and counted without aborting the
// batch; any storage failure rolls the whole batch back.
func (repo *Repository) Reconcile(records []Record) (*Result, error) {
	result := &Result{}

	err := repo.db.Transaction(func(tx *gorm.DB) error {
		seen := make([]string, 0, len(records))

		for i, rec := range records {
			if err := rec.validate(); err != nil {
				log.Printf("Catalog import: record %d skipped: %v", i+1, err)
				result.Skipped++
				continue
			}
			seen = append(seen, rec.ISBN13)

			var existing entities.Book
			err := tx.Select("isbn13").Where("isbn13 = ?", rec.ISBN13).First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&entities.Book{}).
					Where("isbn13 = ?", rec.ISBN13).
					Updates(rec.updateFields()).Error; err != nil {
					return fmt.Errorf("update book %s: %w", rec.ISBN13, err)
				}
				result.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(rec.toBook()).Error; err != nil {
					return fmt.Errorf("create book %s: %w", rec.ISBN13, err)
				}
				result.Added++
			default:
				return fmt.Errorf("look up book %s: %w", rec.ISBN13, err)
			}
		}

		// Books absent from the batch fall out of the catalog but keep
		// their row and their per-user history.
		deactivate := tx.Model(&entities.Book{}).Where("is_active = ?", true)
		if len(seen) > 0 {
			deactivate = deactivate.Where("isbn13 NOT IN ?", seen)
		}
		res := deactivate.Update("is_active", false)
		if res.Error != nil {
			return fmt.Errorf("deactivate absent books: %w", res.Error)
		}
		result.Deactivated = int(res.RowsAffected)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
