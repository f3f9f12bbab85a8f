package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestBook(t *testing.T, db *gorm.DB, book entities.Book) {
	t.Helper()
	if book.ISBN10 == "" {
		book.ISBN10 = book.ISBN13[3:]
	}
	book.IsActive = true
	require.NoError(t, db.Create(&book).Error)
}

func TestRepository_List_Pagination(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		createTestBook(t, db, entities.Book{
			ISBN13: "978000000000" + string(rune('0'+i)),
			Title:  "Book " + string(rune('A'+i)),
		})
	}

	page, err := repo.List(ListQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalBooks)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Books, 2)

	page, err = repo.List(ListQuery{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Books, 1)
}

func TestRepository_List_PageBeyondEnd(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "Only Book"})

	page, err := repo.List(ListQuery{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Books)
	assert.Equal(t, int64(1), page.TotalBooks)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 9, page.CurrentPage)
}

func TestRepository_List_EmptyCatalog(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	page, err := repo.List(ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Books)
	assert.Equal(t, int64(0), page.TotalBooks)
	assert.Equal(t, 0, page.TotalPages)
}

func TestRepository_List_FiltersAreConjunctive(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "Alpha", Authors: "Smith", Categories: "Fiction"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000002", Title: "Beta", Authors: "Smith", Categories: "History"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000003", Title: "Gamma", Authors: "Jones", Categories: "Fiction"})

	page, err := repo.List(ListQuery{Author: "smith", Category: "Fiction"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Alpha", page.Books[0].Title)
}

func TestRepository_List_TitleSubstringCaseInsensitive(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "The Go Programming Language"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000002", Title: "Learning Python"})

	page, err := repo.List(ListQuery{Title: "go program"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "9780000000001", page.Books[0].ISBN13)
}

func TestRepository_List_CategoryListMatchesAny(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "A", Categories: "Fiction"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000002", Title: "B", Categories: "History"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000003", Title: "C", Categories: "Science"})

	page, err := repo.List(ListQuery{Category: "Fiction,History"})
	require.NoError(t, err)
	assert.Len(t, page.Books, 2)
}

func TestRepository_List_Sorting(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "Charlie", AverageRating: 3.5, PublishedYear: 2001})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000002", Title: "Alpha", AverageRating: 4.8, PublishedYear: 1999})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000003", Title: "Bravo", AverageRating: 1.2, PublishedYear: 2015})

	t.Run("title ascending", func(t *testing.T) {
		page, err := repo.List(ListQuery{SortBy: "title_asc"})
		require.NoError(t, err)
		require.Len(t, page.Books, 3)
		assert.Equal(t, "Alpha", page.Books[0].Title)
		assert.Equal(t, "Charlie", page.Books[2].Title)
	})

	t.Run("rating descending", func(t *testing.T) {
		page, err := repo.List(ListQuery{SortBy: "rating_desc"})
		require.NoError(t, err)
		require.Len(t, page.Books, 3)
		assert.Equal(t, "Alpha", page.Books[0].Title)
		assert.Equal(t, "Bravo", page.Books[2].Title)
	})

	t.Run("year ascending", func(t *testing.T) {
		page, err := repo.List(ListQuery{SortBy: "year_asc"})
		require.NoError(t, err)
		require.Len(t, page.Books, 3)
		assert.Equal(t, 1999, page.Books[0].PublishedYear)
	})

	t.Run("unrecognized value is not an error", func(t *testing.T) {
		page, err := repo.List(ListQuery{SortBy: "price_asc"})
		require.NoError(t, err)
		assert.Len(t, page.Books, 3)
	})
}

func TestRepository_List_ExcludesInactiveBooks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "Active"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000002", Title: "Retired"})
	require.NoError(t, db.Model(&entities.Book{}).
		Where("isbn13 = ?", "9780000000002").
		Update("is_active", false).Error)

	page, err := repo.List(ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Active", page.Books[0].Title)
	assert.Equal(t, int64(1), page.TotalBooks)
}

func TestRepository_GetByISBN(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "Known"})

	t.Run("found", func(t *testing.T) {
		book, err := repo.GetByISBN("9780000000001")
		require.NoError(t, err)
		assert.Equal(t, "Known", book.Title)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByISBN("9789999999999")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("inactive book is still returned", func(t *testing.T) {
		require.NoError(t, db.Model(&entities.Book{}).
			Where("isbn13 = ?", "9780000000001").
			Update("is_active", false).Error)

		book, err := repo.GetByISBN("9780000000001")
		require.NoError(t, err)
		assert.False(t, book.IsActive)
	})
}

func TestRepository_Categories(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, entities.Book{ISBN13: "9780000000001", Title: "A", Categories: "Fiction, Drama"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000002", Title: "B", Categories: "Drama,History"})
	createTestBook(t, db, entities.Book{ISBN13: "9780000000003", Title: "C", Categories: ""})

	categories, err := repo.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Fiction", "History"}, categories)
}
