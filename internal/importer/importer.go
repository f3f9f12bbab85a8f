// Package importer loads catalog batches from JSON or CSV files and feeds
// them through the reconciliation repository.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mkadlec/bookcatalog/internal/database/audit"
	"github.com/mkadlec/bookcatalog/internal/database/catalogimport"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// Importer runs file-based catalog imports and records the outcome in the
// audit trail.
type Importer struct {
	catalog *catalogimport.Repository
	audit   *audit.Repository
}

func NewImporter(catalog *catalogimport.Repository, auditRepo *audit.Repository) *Importer {
	return &Importer{
		catalog: catalog,
		audit:   auditRepo,
	}
}

// Run loads the file at path and reconciles it against the book store. The
// outcome, success or failure, lands in the audit trail.
func (i *Importer) Run(path string) (*catalogimport.Result, error) {
	records, err := LoadFile(path)
	if err != nil {
		i.recordAudit(path, nil, err)
		return nil, err
	}

	result, err := i.catalog.Reconcile(records)
	i.recordAudit(path, result, err)
	if err != nil {
		return nil, err
	}

	log.Printf("Catalog import from %s: %d added, %d updated, %d skipped, %d deactivated",
		path, result.Added, result.Updated, result.Skipped, result.Deactivated)
	return result, nil
}

func (i *Importer) recordAudit(path string, result *catalogimport.Result, runErr error) {
	if i.audit == nil {
		return
	}

	status := entities.AuditStatusSuccess
	errMsg := ""
	metadata := map[string]any{"file": path}
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

	if err := i.audit.LogEvent(0, entities.AuditEventImport, "catalog_import", "file import", status, metadata, errMsg); err != nil {
		log.Printf("Audit: failed to record import event: %v", err)
	}
}

// LoadFile reads a catalog batch from a JSON array or CSV file, dispatching
// on the file extension.
func LoadFile(path string) ([]catalogimport.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(f)
	case ".csv":
		return parseCSV(f)
	default:
		return nil, fmt.Errorf("unsupported catalog file format: %s", filepath.Ext(path))
	}
}

func parseJSON(r io.Reader) ([]catalogimport.Record, error) {
	var records []catalogimport.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog JSON: %w", err)
	}
	return records, nil
}

// parseCSV reads a header-based CSV batch. Unknown columns are ignored;
// rows with missing required fields are passed through and counted as
// skipped during reconciliation.
func parseCSV(r io.Reader) ([]catalogimport.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	var records []catalogimport.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		records = append(records, catalogimport.Record{
			ISBN13:        field("isbn13"),
			ISBN10:        field("isbn10"),
			Title:         field("title"),
			Subtitle:      field("subtitle"),
			Authors:       field("authors"),
			Categories:    field("categories"),
			Thumbnail:     field("thumbnail"),
			Description:   field("description"),
			PublishedYear: parseInt(field("published_year")),
			AverageRating: parseFloat(field("average_rating")),
			NumPages:      parseInt(field("num_pages")),
			RatingsCount:  parseInt(field("ratings_count")),
			Price:         parseFloat(field("price")),
		})
	}

	return records, nil
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	// Some feeds export integer columns as floats ("2004.0")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
