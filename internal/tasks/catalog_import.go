package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mkadlec/bookcatalog/internal/database/catalogimport"
)

// BatchRunner loads a catalog file and reconciles it against the store.
type BatchRunner interface {
	Run(path string) (*catalogimport.Result, error)
}

// CatalogImportTask reconciles a catalog file in the background. The queue
// runs on the shared worker pool, so with the default single worker two
// imports can never interleave.
type CatalogImportTask struct {
	File string `json:"file"`
}

// Config returns the queue configuration for catalog import tasks.
func (t CatalogImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "catalog_import",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CatalogImportProcessor creates a processor function for CatalogImportTask.
func CatalogImportProcessor(runner BatchRunner) backlite.QueueProcessor[CatalogImportTask] {
	return func(ctx context.Context, task CatalogImportTask) error {
		if runner == nil {
			return fmt.Errorf("import runner not configured")
		}

		result, err := runner.Run(task.File)
		if err != nil {
			return fmt.Errorf("import %s: %w", task.File, err)
		}

		log.Printf("[TASK] Catalog import %s: %d added, %d updated, %d skipped, %d deactivated",
			task.File, result.Added, result.Updated, result.Skipped, result.Deactivated)
		return nil
	}
}

// NewCatalogImportQueue creates a backlite queue for catalog import tasks.
func NewCatalogImportQueue(runner BatchRunner) backlite.Queue {
	return backlite.NewQueue(CatalogImportProcessor(runner))
}
