// Package users stores account records. Password hashing happens in the
// auth service; this package only ever sees the finished hash.
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username is already taken")
)

// ProfileUpdate carries the fields a user may change about themselves.
// Anything outside this struct (id, password hash, admin flag) is not
// reachable through profile updates.
type ProfileUpdate struct {
	Username string `json:"username"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(username, passwordHash string) (*entities.User, error) {
	var existing entities.User
	err := r.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up username: %w", err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the allow-listed profile fields and returns the
// refreshed record. A username change to an already-taken name fails with
// ErrUserExists.
func (r *Repository) UpdateProfile(id uint, update ProfileUpdate) (*entities.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if update.Username != "" && update.Username != user.Username {
		var clash entities.User
		err := r.db.Where("username = ? AND id != ?", update.Username, id).First(&clash).Error
		if err == nil {
			return nil, ErrUserExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("look up username: %w", err)
		}

		if err := r.db.Model(user).Update("username", update.Username).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}

	return r.GetByID(id)
}
