package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkadlec/bookcatalog/internal/entities"
)

func TestCreateOrder(t *testing.T) {
	router, db, cleanup := setupTestRouter(t)
	defer cleanup()

	createBook(t, db, "9780000000001", "Alpha", "", "", 10.00)
	createBook(t, db, "9780000000002", "Beta", "", "", 5.50)

	w := doRequest(router, http.MethodPost, "/orders", `{
		"payment_method": "card",
		"items": [
			{"isbn13": "9780000000001", "quantity": 2},
			{"isbn13": "9780000000002", "quantity": 1}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Order struct {
			TotalAmount float64 `json:"total_amount"`
			Items       []any   `json:"items"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 25.50, body.Order.TotalAmount)
	assert.Len(t, body.Order.Items, 2)

	// Orders leave an audit trace
	var events []entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventOrder).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestCreateOrder_Validation(t *testing.T) {
	router, db, cleanup := setupTestRouter(t)
	defer cleanup()

	createBook(t, db, "9780000000001", "Alpha", "", "", 10.00)

	w := doRequest(router, http.MethodPost, "/orders", `{"payment_method": "card", "items": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/orders", `{
		"payment_method": "card",
		"items": [{"isbn13": "9780000000001", "quantity": 0}]
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/orders", `{
		"payment_method": "card",
		"items": [{"isbn13": "9789999999999", "quantity": 1}]
	}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrders(t *testing.T) {
	router, db, cleanup := setupTestRouter(t)
	defer cleanup()

	createBook(t, db, "9780000000001", "Alpha", "", "", 10.00)
	doRequest(router, http.MethodPost, "/orders", `{
		"payment_method": "card",
		"items": [{"isbn13": "9780000000001", "quantity": 1}]
	}`)

	w := doRequest(router, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Orders []struct {
			TotalAmount float64 `json:"total_amount"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Orders, 1)
	assert.Equal(t, 10.00, body.Orders[0].TotalAmount)
}

func TestProfile(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(router, http.MethodGet, "/profile", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tester", body.Username)

	w = doRequest(router, http.MethodPut, "/profile", `{"username": "renamed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "renamed", body.Username)
}

func TestComments(t *testing.T) {
	router, db, cleanup := setupTestRouter(t)
	defer cleanup()

	createBook(t, db, "9780000000001", "Alpha", "", "", 0)

	w := doRequest(router, http.MethodPost, "/books/9780000000001/comments", `{"content": "great read"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/books/9780000000001/comments", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Comments []struct {
			Username string `json:"username"`
			Content  string `json:"content"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "tester", body.Comments[0].Username)
	assert.Equal(t, "great read", body.Comments[0].Content)

	w = doRequest(router, http.MethodPost, "/books/9780000000001/comments", `{"content": "  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/books/9789999999999/comments", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
