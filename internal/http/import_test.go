package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

func TestImport(t *testing.T) {
	router, db, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(router, http.MethodPost, "/data", `[
		{"isbn13": "9780000000001", "isbn10": "0000000001", "title": "Alpha"},
		{"isbn13": "9780000000002", "title": "No ISBN10"}
	]`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Added       int `json:"added"`
		Updated     int `json:"updated"`
		Skipped     int `json:"skipped"`
		Deactivated int `json:"deactivated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Added)
	assert.Equal(t, 1, body.Skipped)

	// Import runs leave an audit trace
	var events []entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventImport).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestImport_ReconcilesExistingCatalog(t *testing.T) {
	router, db, cleanup := setupTestRouter(t)
	defer cleanup()

	createBook(t, db, "9780000000001", "Alpha", "", "", 0)
	createBook(t, db, "9780000000002", "Beta", "", "", 0)

	w := doRequest(router, http.MethodPost, "/data", `[
		{"isbn13": "9780000000001", "isbn10": "0000000001", "title": "Alpha v2"}
	]`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Updated     int `json:"updated"`
		Deactivated int `json:"deactivated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Updated)
	assert.Equal(t, 1, body.Deactivated)

	// Deactivated books vanish from listings but stay fetchable
	listResp := doRequest(router, http.MethodGet, "/books", "")
	var list struct {
		TotalBooks int64 `json:"totalBooks"`
	}
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.TotalBooks)

	getResp := doRequest(router, http.MethodGet, "/books/9780000000002", "")
	assert.Equal(t, http.StatusOK, getResp.Code)
}

func TestImport_RejectsNonArrayBody(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(router, http.MethodPost, "/data", `{"isbn13": "9780000000001"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
