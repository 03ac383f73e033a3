package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jortega/erp-core/internal/application/events"
	"github.com/jortega/erp-core/internal/domain"
	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

// LedgerUseCase registra movimientos de inventario de forma transaccional
// (Receive, Issue, Transfer, Adjust) con bloqueo de fila (SELECT FOR UPDATE)
// y Commit/Rollback. Cada cambio de cantidad anexa exactamente un movimiento
// al log append-only.
type LedgerUseCase struct {
	txRunner      TxRunner
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRepository         // atado al pool; solo lecturas
	movementRepo  repository.StockMovementRepository // atado al pool; solo lecturas
	publisher     events.Publisher
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRepository,
	movementRepo repository.StockMovementRepository,
	publisher events.Publisher,
) *LedgerUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LedgerUseCase{
		txRunner:      txRunner,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		publisher:     publisher,
	}
}

// Receive registra una entrada: crea la fila de existencia si no existe
// (upsert aditivo, sin ventana de carrera en la creación), suma qty y anexa
// un movimiento Receive con delta +qty.
func (uc *LedgerUseCase) Receive(ctx context.Context, productID, warehouseID string, qty int64, reason string) (*entity.Stock, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	var stock *entity.Stock
	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		stock, mov, err = uc.ReceiveInTx(movRepo, stockRepo, productID, warehouseID, qty, reason, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(ctx, mov)
	return stock, nil
}

// ReceiveInTx ejecuta la entrada usando los repositorios del caller (misma
// transacción). Lo usa Receive y el orquestador de órdenes al cancelar.
func (uc *LedgerUseCase) ReceiveInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productID, warehouseID string,
	qty int64,
	reason string,
	now time.Time,
) (*entity.Stock, *entity.StockMovement, error) {
	stock, err := stockRepo.AddQuantity(productID, warehouseID, qty)
	if err != nil {
		return nil, nil, err
	}
	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Kind:        entity.MovementKindReceive,
		Quantity:    qty,
		Reason:      reason,
		CreatedAt:   now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, nil, err
	}
	return stock, mov, nil
}

// Issue registra una salida: bloquea la fila, verifica disponibilidad, resta
// qty y anexa un movimiento Issue con delta -qty.
func (uc *LedgerUseCase) Issue(ctx context.Context, productID, warehouseID string, qty int64, reason string) (*entity.Stock, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var stock *entity.Stock
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		var err error
		stock, mov, err = uc.IssueInTx(movRepo, stockRepo, productID, warehouseID, qty, reason, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(ctx, mov)
	return stock, nil
}

// IssueInTx ejecuta la salida usando los repositorios del caller (misma
// transacción). Lo usa Issue y el orquestador al crear órdenes.
func (uc *LedgerUseCase) IssueInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productID, warehouseID string,
	qty int64,
	reason string,
	now time.Time,
) (*entity.Stock, *entity.StockMovement, error) {
	// Bloquea la fila para evitar que dos salidas concurrentes lean la misma
	// cantidad y sobrevendan.
	stock, err := stockRepo.GetForUpdate(productID, warehouseID)
	if err != nil {
		return nil, nil, err
	}
	if stock == nil {
		return nil, nil, domain.ErrNotFound
	}
	if stock.Quantity < qty {
		return nil, nil, &domain.InsufficientStockError{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Requested:   qty,
			Available:   stock.Quantity,
		}
	}
	stock.Quantity -= qty
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(stock); err != nil {
		return nil, nil, err
	}
	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Kind:        entity.MovementKindIssue,
		Quantity:    -qty,
		Reason:      reason,
		CreatedAt:   now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, nil, err
	}
	return stock, mov, nil
}

// Transfer traslada qty entre dos bodegas distintas como una sola unidad
// atómica: resta en origen (fila bloqueada) y suma en destino. Anexa dos
// movimientos Transfer (-qty en origen, +qty en destino) para que la suma de
// deltas por par siga reconstruyendo la existencia.
func (uc *LedgerUseCase) Transfer(ctx context.Context, productID, fromWarehouseID, toWarehouseID string, qty int64, reason string) error {
	if qty <= 0 || fromWarehouseID == toWarehouseID {
		return domain.ErrInvalidInput
	}
	toWh, err := uc.warehouseRepo.GetByID(toWarehouseID)
	if err != nil {
		return err
	}
	if toWh == nil {
		return domain.ErrNotFound
	}

	var outMov, inMov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		now := time.Now()
		origin, err := stockRepo.GetForUpdate(productID, fromWarehouseID)
		if err != nil {
			return err
		}
		if origin == nil {
			return domain.ErrNotFound
		}
		if origin.Quantity < qty {
			return &domain.InsufficientStockError{
				ProductID:   productID,
				WarehouseID: fromWarehouseID,
				Requested:   qty,
				Available:   origin.Quantity,
			}
		}
		origin.Quantity -= qty
		origin.UpdatedAt = now
		if err := stockRepo.Upsert(origin); err != nil {
			return err
		}
		if _, err := stockRepo.AddQuantity(productID, toWarehouseID, qty); err != nil {
			return err
		}
		outMov = &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: fromWarehouseID,
			Kind:        entity.MovementKindTransfer,
			Quantity:    -qty,
			Reason:      reason,
			CreatedAt:   now,
		}
		if err := movRepo.Create(outMov); err != nil {
			return err
		}
		inMov = &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: toWarehouseID,
			Kind:        entity.MovementKindTransfer,
			Quantity:    qty,
			Reason:      reason,
			CreatedAt:   now,
		}
		return movRepo.Create(inMov)
	})
	if err != nil {
		return err
	}
	uc.publishMovement(ctx, outMov)
	uc.publishMovement(ctx, inMov)
	return nil
}

// Adjust fija la cantidad a newQty (corrección autoritativa) y anexa un
// movimiento Adjust con delta = newQty - cantidad anterior (puede ser cero).
func (uc *LedgerUseCase) Adjust(ctx context.Context, productID, warehouseID string, newQty int64, reason string) (*entity.Stock, error) {
	if newQty < 0 {
		return nil, domain.ErrInvalidInput
	}

	var stock *entity.Stock
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		now := time.Now()
		s, err := stockRepo.GetForUpdate(productID, warehouseID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		delta := newQty - s.Quantity
		s.Quantity = newQty
		s.UpdatedAt = now
		if err := stockRepo.Upsert(s); err != nil {
			return err
		}
		mov = &entity.StockMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: warehouseID,
			Kind:        entity.MovementKindAdjust,
			Quantity:    delta,
			Reason:      reason,
			CreatedAt:   now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		stock = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publishMovement(ctx, mov)
	return stock, nil
}

// SetMinimumStock fija el umbral de stock mínimo del par. No es un cambio de
// cantidad: no anexa movimiento.
func (uc *LedgerUseCase) SetMinimumStock(ctx context.Context, productID, warehouseID string, minimum int64) error {
	if minimum < 0 {
		return domain.ErrInvalidInput
	}
	return uc.stockRepo.SetMinimum(productID, warehouseID, minimum)
}

func (uc *LedgerUseCase) publishMovement(ctx context.Context, mov *entity.StockMovement) {
	if mov == nil {
		return
	}
	err := uc.publisher.Publish(ctx, events.RoutingKeyStockMovement, events.StockMovementRegistered{
		MovementID:  mov.ID,
		ProductID:   mov.ProductID,
		WarehouseID: mov.WarehouseID,
		Kind:        mov.Kind,
		Quantity:    mov.Quantity,
		OccurredAt:  mov.CreatedAt,
	})
	if err != nil {
		log.Warn().Err(err).Str("movement_id", mov.ID).Msg("publicar evento de movimiento")
	}
}
