package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/users"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// ProfileStore defines the operations the profile controller needs.
type ProfileStore interface {
	GetByID(id uint) (*entities.User, error)
	UpdateProfile(id uint, update users.ProfileUpdate) (*entities.User, error)
}

type ProfileController struct {
	store ProfileStore
}

func NewProfileController(store ProfileStore) *ProfileController {
	return &ProfileController{store: store}
}

type profileResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func newProfileResponse(user *entities.User) profileResponse {
	return profileResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Get returns the caller's profile.
// GET /profile
func (pc *ProfileController) Get(c *gin.Context) {
	user, err := pc.store.GetByID(GetUserID(c))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(user))
}

// Update applies allow-listed profile changes.
// PUT /profile
func (pc *ProfileController) Update(c *gin.Context) {
	var update users.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := pc.store.UpdateProfile(GetUserID(c), update)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserExists):
			respondBadRequest(c, err.Error())
		case errors.Is(err, users.ErrUserNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "update profile")
		}
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(user))
}
