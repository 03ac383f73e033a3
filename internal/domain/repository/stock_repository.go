package repository

import "github.com/jortega/erp-core/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar existencias por
// producto+bodega. Las mutaciones se usan dentro de transacciones.
type StockRepository interface {
	// Get devuelve nil, nil si el par no existe.
	Get(productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); nil, nil si no existe.
	GetForUpdate(productID, warehouseID string) (*entity.Stock, error)
	// Upsert escribe la cantidad absoluta (usar con la fila ya bloqueada).
	Upsert(stock *entity.Stock) error
	// AddQuantity suma delta de forma atómica, creando la fila si no existe
	// (INSERT ... ON CONFLICT DO UPDATE aditivo). Devuelve la fila resultante.
	AddQuantity(productID, warehouseID string, delta int64) (*entity.Stock, error)
	// SetMinimum fija el stock mínimo; la fila debe existir.
	SetMinimum(productID, warehouseID string, minimum int64) error
	ListByProduct(productID string) ([]*entity.Stock, error)
	ListByWarehouse(warehouseID string) ([]*entity.Stock, error)
	// ListLowStock devuelve pares con quantity <= minimum_stock.
	ListLowStock() ([]*entity.Stock, error)
	// HasStock indica si el producto tiene existencia positiva en alguna bodega.
	HasStock(productID string) (bool, error)
}
