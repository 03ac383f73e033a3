package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de cliente.
const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// Order representa una orden de cliente. Las líneas son inmutables después de
// la creación; solo el estado cambia, y únicamente vía el orquestador.
type Order struct {
	ID          string
	CustomerID  string
	Status      string
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	Lines       []OrderLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLine representa una línea de la orden; el precio unitario se captura
// del producto al momento de crear la orden y no se vuelve a leer.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductID   string
	WarehouseID string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// Subtotal devuelve cantidad × precio unitario.
func (l *OrderLine) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice)
}

// IsValidOrderStatus valida que el estado solicitado sea uno de los conocidos.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition define la tabla de transiciones del camino genérico:
// Pending -> Shipped, Shipped -> Delivered. La cancelación no pasa por aquí;
// tiene su propia operación con reposición de stock.
func CanTransition(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusShipped
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	}
	return false
}

// CanCancel indica si una orden en el estado dado admite cancelación.
// Delivered y Cancelled son terminales.
func CanCancel(status string) bool {
	return status == OrderStatusPending || status == OrderStatusShipped
}
