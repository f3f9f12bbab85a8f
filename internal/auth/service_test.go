package auth

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkadlec/bookcatalog/internal/config"
	"github.com/mkadlec/bookcatalog/internal/database/users"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

func setupService(t *testing.T) (*Service, func()) {
	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	service := NewService(users.NewRepository(db), config.Auth{BcryptCost: bcrypt.MinCost})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, cleanup
}

func TestService_Register(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	user, err := service.Register("alice", "password-123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password-123", user.PasswordHash)
}

func TestService_Register_Validation(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"empty username", "", "password-123", ErrUsernameRequired},
		{"empty password", "alice", "", ErrPasswordRequired},
		{"username too short", "ab", "password-123", ErrUsernameInvalid},
		{"username bad chars", "al ice!", "password-123", ErrUsernameInvalid},
		{"password too short", "alice", "short", ErrPasswordTooShort},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Register(tc.username, tc.password)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	_, err := service.Register("alice", "password-123")
	require.NoError(t, err)

	_, err = service.Register("alice", "other-password")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Authenticate(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	_, err := service.Register("alice", "password-123")
	require.NoError(t, err)

	user, err := service.Authenticate("alice", "password-123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestService_Authenticate_BadCredentials(t *testing.T) {
	service, cleanup := setupService(t)
	defer cleanup()

	_, err := service.Register("alice", "password-123")
	require.NoError(t, err)

	// Unknown user and wrong password look identical to the caller
	_, err = service.Authenticate("nobody", "password-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
