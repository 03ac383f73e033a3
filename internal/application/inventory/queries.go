package inventory

import (
	"context"

	"github.com/jortega/erp-core/internal/domain/entity"
)

// Consultas de solo lectura del ledger. No abren transacción ni anexan
// movimientos.

// StockByProduct devuelve la existencia del producto en todas las bodegas.
func (uc *LedgerUseCase) StockByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	return uc.stockRepo.ListByProduct(productID)
}

// StockByWarehouse devuelve la existencia de todos los productos de una bodega.
func (uc *LedgerUseCase) StockByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Stock, error) {
	return uc.stockRepo.ListByWarehouse(warehouseID)
}

// LowStock devuelve los pares con cantidad en o por debajo del mínimo.
func (uc *LedgerUseCase) LowStock(ctx context.Context) ([]*entity.Stock, error) {
	return uc.stockRepo.ListLowStock()
}

// History devuelve los movimientos de un producto, del más reciente al más
// antiguo, opcionalmente filtrados por bodega.
func (uc *LedgerUseCase) History(ctx context.Context, productID string, warehouseID *string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListByProduct(productID, warehouseID, limit, offset)
}
