package repository

import "github.com/jortega/erp-core/internal/domain/entity"

// StockMovementRepository define el puerto de persistencia del log de
// movimientos. Solo inserción: los movimientos nunca se actualizan ni borran.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// ListByProduct lista movimientos de un producto, opcionalmente filtrados
	// por bodega, del más reciente al más antiguo.
	ListByProduct(productID string, warehouseID *string, limit, offset int) ([]*entity.StockMovement, error)
}
