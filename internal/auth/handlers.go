package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

// EventRecorder appends auth events to the audit trail. Audit failures are
// logged and swallowed; they never fail the request.
type EventRecorder interface {
	LogEvent(userID uint, eventType entities.AuditEventType, action, description string, status entities.AuditStatus, metadata map[string]any, errMsg string) error
}

// Controller exposes the register/login/logout JSON endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	audit          EventRecorder
}

func NewController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter, audit EventRecorder) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		audit:          audit,
	}
}

// RegisterRoutes registers the public authentication routes. Logout needs
// a session and is registered separately via RegisterSessionRoutes.
func (ac *Controller) RegisterRoutes(router gin.IRoutes) {
	router.POST("/register", ac.Register)
	router.POST("/login", ac.Login)
}

// RegisterSessionRoutes registers the session-only authentication routes.
func (ac *Controller) RegisterSessionRoutes(router gin.IRoutes) {
	router.POST("/logout", ac.Logout)
}

// Stop cleans up the rate limiter's background goroutine.
func (ac *Controller) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account. Duplicate usernames come back as 400,
// matching the rest of the conflict handling in the API.
func (ac *Controller) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := ac.service.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists),
			errors.Is(err, ErrUsernameRequired),
			errors.Is(err, ErrPasswordRequired),
			errors.Is(err, ErrUsernameInvalid),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "user registered successfully",
		"username": user.Username,
	})
}

// Login verifies credentials and starts a session.
func (ac *Controller) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ip := c.ClientIP()
	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Username); !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if ac.rateLimiter != nil {
				ac.rateLimiter.RecordFailure(ip, req.Username)
			}
			ac.recordAuthEvent(0, "login", entities.AuditStatusFailed, req.Username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		log.Printf("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Session creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(ip, req.Username)
	}
	ac.recordAuthEvent(user.ID, "login", entities.AuditStatusSuccess, user.Username)

	c.JSON(http.StatusOK, gin.H{
		"message":  "logged in successfully",
		"username": user.Username,
	})
}

// Logout destroys the current session.
func (ac *Controller) Logout(c *gin.Context) {
	userID := GetUserID(c)

	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Session destroy failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ac.recordAuthEvent(userID, "logout", entities.AuditStatusSuccess, "")

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

func (ac *Controller) recordAuthEvent(userID uint, action string, status entities.AuditStatus, username string) {
	if ac.audit == nil {
		return
	}
	var metadata map[string]any
	if username != "" {
		metadata = map[string]any{"username": username}
	}
	if err := ac.audit.LogEvent(userID, entities.AuditEventAuth, action, "", status, metadata, ""); err != nil {
		log.Printf("Audit: failed to record %s event: %v", action, err)
	}
}
