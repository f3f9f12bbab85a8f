// Package audit appends operational events (imports, orders, auth) for
// later inspection. Failures to write an audit row are logged by callers
// but never fail the audited operation itself.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent appends one audit row. metadata is marshalled to JSON; a nil
// metadata map stores an empty field.
func (r *Repository) LogEvent(userID uint, eventType entities.AuditEventType, action, description string, status entities.AuditStatus, metadata map[string]any, errMsg string) error {
	event := entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      action,
		Description: description,
		Status:      status,
		ErrorMsg:    errMsg,
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("Audit: dropping unmarshallable metadata for %s: %v", action, err)
		} else {
			event.Metadata = string(raw)
		}
	}

	if err := r.db.Create(&event).Error; err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}

// ListRecent returns the newest events, optionally filtered by type.
func (r *Repository) ListRecent(eventType entities.AuditEventType, limit int) ([]entities.AuditEvent, error) {
	if limit < 1 {
		limit = 100
	}

	query := r.db.Model(&entities.AuditEvent{}).Order("created_at DESC").Limit(limit)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var events []entities.AuditEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	return events, nil
}

// DeleteOlderThan removes events past the retention window and reports how
// many rows were dropped.
func (r *Repository) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete audit events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
