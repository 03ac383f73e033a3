package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderLineRequest una línea del body de creación de orden.
type CreateOrderLineRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerID string                   `json:"customer_id"`
	Lines      []CreateOrderLineRequest `json:"lines"`
}

// UpdateOrderStatusRequest body para PUT /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderLineResponse una línea de la orden.
type OrderLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse una orden con sus líneas.
type OrderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	Status      string              `json:"status"`
	OrderDate   time.Time           `json:"order_date"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Lines       []OrderLineResponse `json:"lines"`
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
