package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/comments"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// CommentsStore defines the operations the comments controller needs.
type CommentsStore interface {
	Add(userID uint, isbn13, content string) (*entities.Comment, error)
	ListForBook(isbn13 string) ([]comments.CommentView, error)
}

type CommentsController struct {
	store CommentsStore
}

func NewCommentsController(store CommentsStore) *CommentsController {
	return &CommentsController{store: store}
}

type commentRequest struct {
	Content string `json:"content"`
}

// Add attaches a comment to a book.
// POST /books/:isbn13/comments
func (cc *CommentsController) Add(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	comment, err := cc.store.Add(GetUserID(c), c.Param("isbn13"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, comments.ErrEmptyContent):
			respondBadRequest(c, err.Error())
		case errors.Is(err, comments.ErrBookNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "add comment")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "comment added",
		"comment": comment,
	})
}

// List returns a book's comments, newest first.
// GET /books/:isbn13/comments
func (cc *CommentsController) List(c *gin.Context) {
	views, err := cc.store.ListForBook(c.Param("isbn13"))
	if err != nil {
		if errors.Is(err, comments.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": views})
}
