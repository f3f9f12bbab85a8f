package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/catalogimport"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// ReconcileStore applies a catalog batch against the book store.
type ReconcileStore interface {
	Reconcile(records []catalogimport.Record) (*catalogimport.Result, error)
}

// Auditor records audit events. A nil auditor disables the trail.
type Auditor interface {
	LogEvent(userID uint, eventType entities.AuditEventType, action, description string, status entities.AuditStatus, metadata map[string]any, errMsg string) error
}

type ImportController struct {
	store ReconcileStore
	audit Auditor
}

func NewImportController(store ReconcileStore, audit Auditor) *ImportController {
	return &ImportController{store: store, audit: audit}
}

// Import reconciles a pushed catalog batch synchronously and returns the
// per-outcome counts.
// POST /data
func (ic *ImportController) Import(c *gin.Context) {
	var records []catalogimport.Record
	if err := c.ShouldBindJSON(&records); err != nil {
		respondBadRequest(c, "request body must be a JSON array of book records")
		return
	}

	result, err := ic.store.Reconcile(records)
	ic.recordAudit(c, result, err)
	if err != nil {
		respondInternalError(c, err, "catalog import")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "catalog import completed",
		"added":       result.Added,
		"updated":     result.Updated,
		"skipped":     result.Skipped,
		"deactivated": result.Deactivated,
	})
}

func (ic *ImportController) recordAudit(c *gin.Context, result *catalogimport.Result, runErr error) {
	if ic.audit == nil {
		return
	}

	status := entities.AuditStatusSuccess
	errMsg := ""
	metadata := map[string]any{"source": "api"}
	if result != nil {
		metadata["added"] = result.Added
		metadata["updated"] = result.Updated
		metadata["skipped"] = result.Skipped
		metadata["deactivated"] = result.Deactivated
	}
	if runErr != nil {
		status = entities.AuditStatusFailed
		errMsg = runErr.Error()
	}

	if err := ic.audit.LogEvent(GetUserID(c), entities.AuditEventImport, "catalog_import", "API import", status, metadata, errMsg); err != nil {
		log.Printf("Audit: failed to record import event: %v", err)
	}
}
