package entities

import "time"

// Book is a catalog record keyed by its ISBN-13. Books are only ever
// created or updated by the reconciliation importer; a book that drops out
// of the imported feed is deactivated, never deleted, so per-user history
// (favorites, ratings, comments, order items) stays resolvable.
type Book struct {
	ISBN13        string  `gorm:"primaryKey;size:13" json:"isbn13"`
	ISBN10        string  `gorm:"size:10" json:"isbn10"`
	Title         string  `gorm:"size:255;index" json:"title"`
	Subtitle      string  `gorm:"size:255" json:"subtitle,omitempty"`
	Authors       string  `gorm:"size:512;index" json:"authors,omitempty"`
	Categories    string  `gorm:"size:512" json:"categories,omitempty"`
	Thumbnail     string  `gorm:"size:2048" json:"thumbnail,omitempty"`
	Description   string  `gorm:"type:text" json:"description,omitempty"`
	PublishedYear int     `json:"published_year,omitempty"`
	AverageRating float64 `json:"average_rating"`
	NumPages      int     `json:"num_pages,omitempty"`
	RatingsCount  int     `json:"ratings_count"`
	Price         float64 `json:"price,omitempty"`
	IsActive      bool    `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:80" json:"username"`
	PasswordHash string `gorm:"size:128" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`

	Favorites []FavoriteBook `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Ratings   []UserRating   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Comments  []Comment      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FavoriteBook joins users and books. Existence is the only signal; there
// is no ordering or weighting.
type FavoriteBook struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ISBN13    string    `gorm:"primaryKey;size:13" json:"isbn13"`
	Book      Book      `gorm:"foreignKey:ISBN13;references:ISBN13" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRating holds one rating per (user, book) pair. Writing a new value
// for an existing pair replaces the old one.
type UserRating struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ISBN13    string    `gorm:"primaryKey;size:13" json:"isbn13"`
	Rating    int       `json:"rating"`
	Book      Book      `gorm:"foreignKey:ISBN13;references:ISBN13" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ISBN13    string    `gorm:"index;size:13" json:"isbn13"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Content   string    `gorm:"type:text" json:"content"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Book      Book      `gorm:"foreignKey:ISBN13;references:ISBN13" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"index" json:"user_id"`
	TotalAmount   float64     `json:"total_amount"`
	PaymentMethod string      `gorm:"size:50" json:"payment_method"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem captures the unit price at order time so later catalog imports
// cannot rewrite past orders.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	OrderID  uint    `gorm:"index" json:"order_id"`
	ISBN13   string  `gorm:"size:13" json:"isbn13"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (Book) TableName() string {
	return "books"
}

func (User) TableName() string {
	return "users"
}

func (FavoriteBook) TableName() string {
	return "favorite_books"
}

func (UserRating) TableName() string {
	return "user_ratings"
}

func (Comment) TableName() string {
	return "comments"
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}
