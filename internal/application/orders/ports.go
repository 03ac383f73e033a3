package orders

import (
	"context"
	"time"

	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de órdenes y del ledger atados a esa tx. La orden, sus líneas
// y todas las salidas/reposiciones de stock se confirman o revierten juntas.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// Ledger expone los pasos de inventario que el orquestador ejecuta dentro de
// su propia transacción. Implementado por inventory.LedgerUseCase.
type Ledger interface {
	IssueInTx(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productID, warehouseID string,
		qty int64,
		reason string,
		now time.Time,
	) (*entity.Stock, *entity.StockMovement, error)
	ReceiveInTx(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productID, warehouseID string,
		qty int64,
		reason string,
		now time.Time,
	) (*entity.Stock, *entity.StockMovement, error)
}
