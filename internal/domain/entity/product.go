package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// La existencia por bodega vive en Stock; aquí no hay punteros de navegación.
type Product struct {
	ID          string
	SKU         string // único
	Name        string
	Description string
	UnitPrice   decimal.Decimal // precio de venta
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
