// Package comments stores free-text user comments attached to books.
package comments

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrEmptyContent = errors.New("comment content is required")
)

// CommentView is a comment joined with its author's username, the shape
// handed back to API consumers.
type CommentView struct {
	ID        uint   `json:"id"`
	ISBN13    string `json:"isbn13"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add stores a comment on a book. The book must exist; inactive books still
// accept comments since users may hold them in their history.
func (r *Repository) Add(userID uint, isbn13, content string) (*entities.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var book entities.Book
	if err := r.db.Select("isbn13").Where("isbn13 = ?", isbn13).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("look up book: %w", err)
	}

	comment := &entities.Comment{
		ISBN13:  isbn13,
		UserID:  userID,
		Content: content,
	}
	if err := r.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListForBook returns a book's comments newest first, each carrying the
// author's username.
func (r *Repository) ListForBook(isbn13 string) ([]CommentView, error) {
	var book entities.Book
	if err := r.db.Select("isbn13").Where("isbn13 = ?", isbn13).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("look up book: %w", err)
	}

	var rows []struct {
		entities.Comment
		Username string
	}
	err := r.db.Model(&entities.Comment{}).
		Select("comments.*, users.username").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.isbn13 = ?", isbn13).
		Order("comments.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	views := make([]CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, CommentView{
			ID:        row.ID,
			ISBN13:    row.ISBN13,
			Username:  row.Username,
			Content:   row.Content,
			CreatedAt: row.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return views, nil
}
