package favorites

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
	dbPath := "./test_favorites_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.Book{}, &entities.FavoriteBook{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestBook(t *testing.T, db *gorm.DB, isbn13, title string, active bool) {
	t.Helper()
	book := &entities.Book{
		ISBN13:   isbn13,
		ISBN10:   isbn13[3:],
		Title:    title,
		IsActive: active,
	}
	require.NoError(t, db.Create(book).Error)
}

func TestRepository_Add(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "9780000000001", "Alpha", true)
	createTestBook(t, db, "9780000000002", "Beta", true)

	list, err := repo.Add(1, "9780000000001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alpha", list[0].Title)

	list, err = repo.Add(1, "9780000000002")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRepository_Add_IsIdempotent(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "9780000000001", "Alpha", true)

	_, err := repo.Add(1, "9780000000001")
	require.NoError(t, err)
	list, err := repo.Add(1, "9780000000001")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	var count int64
	db.Model(&entities.FavoriteBook{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Add_UnknownBook(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Add(1, "9789999999999")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_Add_ScopedPerUser(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "9780000000001", "Alpha", true)
	createTestBook(t, db, "9780000000002", "Beta", true)

	_, err := repo.Add(1, "9780000000001")
	require.NoError(t, err)
	list, err := repo.Add(2, "9780000000002")
	require.NoError(t, err)

	require.Len(t, list, 1)
	assert.Equal(t, "Beta", list[0].Title)
}

func TestRepository_Remove(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "9780000000001", "Alpha", true)
	createTestBook(t, db, "9780000000002", "Beta", true)

	_, err := repo.Add(1, "9780000000001")
	require.NoError(t, err)
	_, err = repo.Add(1, "9780000000002")
	require.NoError(t, err)

	list, err := repo.Remove(1, "9780000000001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Beta", list[0].Title)
}

func TestRepository_Remove_NotFavorited(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "9780000000001", "Alpha", true)

	_, err := repo.Remove(1, "9780000000001")
	assert.ErrorIs(t, err, ErrNotFavorite)
}

func TestRepository_List_KeepsDeactivatedBooks(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, db, "9780000000001", "Alpha", true)
	createTestBook(t, db, "9780000000002", "Beta", false)

	_, err := repo.Add(1, "9780000000001")
	require.NoError(t, err)
	_, err = repo.Add(1, "9780000000002")
	require.NoError(t, err)

	page, err := repo.List(1, 1, 50, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalBooks)
	assert.Len(t, page.Books, 2)
}

func TestRepository_List_SortsAndPaginates(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	titles := []string{"Charlie", "Alpha", "Bravo"}
	for i, title := range titles {
		isbn := "978000000000" + string(rune('1'+i))
		createTestBook(t, db, isbn, title, true)
		_, err := repo.Add(1, isbn)
		require.NoError(t, err)
	}

	page, err := repo.List(1, 1, 2, "title_asc")
	require.NoError(t, err)
	require.Len(t, page.Books, 2)
	assert.Equal(t, "Alpha", page.Books[0].Title)
	assert.Equal(t, "Bravo", page.Books[1].Title)
	assert.Equal(t, 2, page.TotalPages)

	page, err = repo.List(1, 2, 2, "title_asc")
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Charlie", page.Books[0].Title)
}
