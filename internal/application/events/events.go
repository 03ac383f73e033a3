package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys publicadas en el exchange de eventos.
const (
	RoutingKeyOrderCreated   = "order.created"
	RoutingKeyOrderCancelled = "order.cancelled"
	RoutingKeyStockMovement  = "stock.movement"
)

// Publisher publica eventos de dominio. La publicación ocurre después del
// commit y es advisory: un fallo se registra pero nunca revierte la operación.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// OrderCreated se emite al crear una orden exitosamente.
type OrderCreated struct {
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       int             `json:"lines"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// OrderCancelled se emite al cancelar una orden (con reposición de stock).
type OrderCancelled struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StockMovementRegistered se emite por cada movimiento del ledger.
type StockMovementRegistered struct {
	MovementID  string    `json:"movement_id"`
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NopPublisher descarta los eventos. Se usa cuando AMQP no está configurado.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
