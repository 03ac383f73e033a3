package inventory

import (
	"context"

	"github.com/jortega/erp-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el ledger: o todas
// las escrituras (existencias + movimientos) se confirman, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}
