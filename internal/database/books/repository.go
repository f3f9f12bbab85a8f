// Package books implements the catalog listing and search queries.
//
// All catalog-wide queries carry an implicit is_active filter so that
// deactivated books disappear from listings while staying reachable
// through direct ISBN lookup.
package books

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

var ErrBookNotFound = errors.New("book not found")

const DefaultPageSize = 50

// sortClauses maps the public sort_by values to ORDER BY clauses.
// Anything not in this table leaves the result unordered; that is a
// defined fallback, not an error.
var sortClauses = map[string]string{
	"title_asc":   "title ASC",
	"title_desc":  "title DESC",
	"author_asc":  "authors ASC",
	"author_desc": "authors DESC",
	"rating_asc":  "average_rating ASC",
	"rating_desc": "average_rating DESC",
	"year_asc":    "published_year ASC",
	"year_desc":   "published_year DESC",
}

// OrderClause resolves a sort_by value to an ORDER BY clause. The second
// return value is false for unrecognized values.
func OrderClause(sortBy string) (string, bool) {
	clause, ok := sortClauses[sortBy]
	return clause, ok
}

// ListQuery carries the optional filters, sort order and page bounds for a
// catalog query. Filters are conjunctive; substring matches are
// case-insensitive. Category accepts a comma-separated list treated as
// exact-match-any.
type ListQuery struct {
	Title    string
	Author   string
	Category string
	ISBN13   string
	SortBy   string
	Page     int
	PageSize int
}

// Page is one page of catalog results together with the totals for the
// whole filtered set.
type Page struct {
	Books       []entities.Book `json:"books"`
	TotalBooks  int64           `json:"totalBooks"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

// NewPage assembles a result page, deriving totalPages from the unpaginated
// match count. totalPages is 0 when nothing matched.
func NewPage(books []entities.Book, total int64, page, pageSize int) *Page {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if books == nil {
		books = []entities.Book{}
	}
	return &Page{
		Books:       books,
		TotalBooks:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of active books matching the query filters. An
// out-of-range page yields an empty book list with unchanged totals.
func (r *Repository) List(q ListQuery) (*Page, error) {
	page, pageSize := normalizeBounds(q.Page, q.PageSize)

	filtered := r.applyFilters(r.db.Model(&entities.Book{}), q)

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, err
	}

	query := r.applyFilters(r.db.Model(&entities.Book{}), q)
	if clause, ok := OrderClause(q.SortBy); ok {
		query = query.Order(clause)
	}

	var results []entities.Book
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&results).Error; err != nil {
		return nil, err
	}

	return NewPage(results, total, page, pageSize), nil
}

// GetByISBN returns a single book by its ISBN-13. Inactive books are still
// returned so favorite and order history stays resolvable.
func (r *Repository) GetByISBN(isbn13 string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn13 = ?", isbn13).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Categories returns the sorted distinct category tags across the active
// catalog. The stored categories field is comma-joined; tags are split,
// trimmed and deduplicated here.
func (r *Repository) Categories() ([]string, error) {
	var rows []string
	err := r.db.Model(&entities.Book{}).
		Where("is_active = ?", true).
		Distinct("categories").
		Pluck("categories", &rows).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		for _, tag := range strings.Split(row, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				seen[tag] = true
			}
		}
	}

	categories := make([]string, 0, len(seen))
	for tag := range seen {
		categories = append(categories, tag)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *Repository) applyFilters(query *gorm.DB, q ListQuery) *gorm.DB {
	query = query.Where("is_active = ?", true)

	if q.Title != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+q.Title+"%")
	}
	if q.Author != "" {
		query = query.Where("LOWER(authors) LIKE LOWER(?)", "%"+q.Author+"%")
	}
	if q.ISBN13 != "" {
		query = query.Where("LOWER(isbn13) LIKE LOWER(?)", "%"+q.ISBN13+"%")
	}
	if q.Category != "" {
		tags := splitTags(q.Category)
		if len(tags) > 1 {
			query = query.Where("categories IN ?", tags)
		} else if len(tags) == 1 {
			query = query.Where("LOWER(categories) LIKE LOWER(?)", "%"+tags[0]+"%")
		}
	}
	return query
}

func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func normalizeBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}
