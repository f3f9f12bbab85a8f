// Package orders records purchases against the catalog. Orders snapshot the
// unit price at creation time so later catalog imports cannot change what a
// user paid.
package orders

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be a positive integer")
	ErrBookNotFound    = errors.New("book not found")
)

// ItemRequest is one requested line of a new order.
type ItemRequest struct {
	ISBN13   string `json:"isbn13"`
	Quantity int    `json:"quantity"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create places an order for the user. All items are resolved and priced
// inside one transaction; any unknown book aborts the whole order.
func (r *Repository) Create(userID uint, paymentMethod string, items []ItemRequest) (*entities.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var order *entities.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		orderItems := make([]entities.OrderItem, 0, len(items))

		for _, item := range items {
			var book entities.Book
			err := tx.Select("isbn13, price, is_active").
				Where("isbn13 = ? AND is_active = ?", item.ISBN13, true).
				First(&book).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrBookNotFound, item.ISBN13)
				}
				return fmt.Errorf("look up book %s: %w", item.ISBN13, err)
			}

			orderItems = append(orderItems, entities.OrderItem{
				ISBN13:   book.ISBN13,
				Quantity: item.Quantity,
				Price:    book.Price,
			})
			total += book.Price * float64(item.Quantity)
		}

		order = &entities.Order{
			UserID:        userID,
			TotalAmount:   math.Round(total*100) / 100,
			PaymentMethod: paymentMethod,
			Items:         orderItems,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListForUser returns the user's orders newest first, items included.
func (r *Repository) ListForUser(userID uint) ([]entities.Order, error) {
	var results []entities.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []entities.Order{}
	}
	return results, nil
}
