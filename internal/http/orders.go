package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkadlec/bookcatalog/internal/database/orders"
	"github.com/mkadlec/bookcatalog/internal/entities"
)

// OrdersStore defines the operations the orders controller needs.
type OrdersStore interface {
	Create(userID uint, paymentMethod string, items []orders.ItemRequest) (*entities.Order, error)
	ListForUser(userID uint) ([]entities.Order, error)
}

type OrdersController struct {
	store OrdersStore
	audit Auditor
}

func NewOrdersController(store OrdersStore, audit Auditor) *OrdersController {
	return &OrdersController{store: store, audit: audit}
}

type orderRequest struct {
	PaymentMethod string               `json:"payment_method"`
	Items         []orders.ItemRequest `json:"items"`
}

// Create places an order for the caller.
// POST /orders
func (oc *OrdersController) Create(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	order, err := oc.store.Create(GetUserID(c), req.PaymentMethod, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyOrder), errors.Is(err, orders.ErrInvalidQuantity):
			respondBadRequest(c, err.Error())
		case errors.Is(err, orders.ErrBookNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "create order")
		}
		return
	}

	oc.recordAudit(c, order)

	c.JSON(http.StatusCreated, gin.H{
		"message": "order placed",
		"order":   order,
	})
}

// List returns the caller's orders, newest first.
// GET /orders
func (oc *OrdersController) List(c *gin.Context) {
	results, err := oc.store.ListForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": results})
}

func (oc *OrdersController) recordAudit(c *gin.Context, order *entities.Order) {
	if oc.audit == nil {
		return
	}
	metadata := map[string]any{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
		"items":        len(order.Items),
	}
	if err := oc.audit.LogEvent(GetUserID(c), entities.AuditEventOrder, "create_order", "", entities.AuditStatusSuccess, metadata, ""); err != nil {
		log.Printf("Audit: failed to record order event: %v", err)
	}
}
