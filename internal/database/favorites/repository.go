// Package favorites manages the per-user favorite relation. Favorites are
// user history, not a catalog view, so listings here do not filter on
// is_active: a favorited book that later drops out of the imported catalog
// stays visible to its owner.
package favorites

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/database/books"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrNotFavorite  = errors.New("book is not in favorites")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add marks a book as a favorite of the user and returns the full updated
// favorites list. Adding an already-favorited book is a no-op.
func (r *Repository) Add(userID uint, isbn13 string) ([]entities.Book, error) {
	var book entities.Book
	if err := r.db.Select("isbn13").Where("isbn13 = ?", isbn13).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("look up book: %w", err)
	}

	var favorite entities.FavoriteBook
	err := r.db.Where("user_id = ? AND isbn13 = ?", userID, isbn13).First(&favorite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		favorite = entities.FavoriteBook{UserID: userID, ISBN13: isbn13}
		if err := r.db.Create(&favorite).Error; err != nil {
			return nil, fmt.Errorf("create favorite: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("look up favorite: %w", err)
	}

	return r.listAll(userID)
}

// Remove deletes the favorite and returns the updated list. Removing a
// book that was never favorited signals ErrNotFavorite.
func (r *Repository) Remove(userID uint, isbn13 string) ([]entities.Book, error) {
	result := r.db.Where("user_id = ? AND isbn13 = ?", userID, isbn13).
		Delete(&entities.FavoriteBook{})
	if result.Error != nil {
		return nil, fmt.Errorf("delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFavorite
	}

	return r.listAll(userID)
}

// List returns one page of the user's favorite books in the requested sort
// order, with the same page shape as catalog listings.
func (r *Repository) List(userID uint, page, pageSize int, sortBy string) (*books.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = books.DefaultPageSize
	}

	var total int64
	if err := r.favoritesQuery(userID).Count(&total).Error; err != nil {
		return nil, err
	}

	query := r.favoritesQuery(userID)
	if clause, ok := books.OrderClause(sortBy); ok {
		query = query.Order(clause)
	}

	var results []entities.Book
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&results).Error; err != nil {
		return nil, err
	}

	return books.NewPage(results, total, page, pageSize), nil
}

func (r *Repository) favoritesQuery(userID uint) *gorm.DB {
	return r.db.Model(&entities.Book{}).
		Joins("JOIN favorite_books ON favorite_books.isbn13 = books.isbn13").
		Where("favorite_books.user_id = ?", userID)
}

func (r *Repository) listAll(userID uint) ([]entities.Book, error) {
	var results []entities.Book
	err := r.favoritesQuery(userID).Order("books.title ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []entities.Book{}
	}
	return results, nil
}
