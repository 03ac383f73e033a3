package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jortega/erp-core/internal/application/dto"
	"github.com/jortega/erp-core/internal/application/events"
	"github.com/jortega/erp-core/internal/domain"
	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UseCase orquesta el ciclo de vida de órdenes: creación con reserva de stock
// por línea, transiciones de estado y cancelación con reposición. Es el único
// camino de movimiento de stock originado en órdenes.
type UseCase struct {
	txRunner     TxRunner
	ledger       Ledger
	orderRepo    repository.OrderRepository // atado al pool; solo lecturas
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository // atado al pool; pre-chequeo de disponibilidad
	publisher    events.Publisher
}

// NewUseCase construye el orquestador.
func NewUseCase(
	txRunner TxRunner,
	ledger Ledger,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	publisher events.Publisher,
) *UseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &UseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		publisher:    publisher,
	}
}

// Create valida cliente, productos y disponibilidad (solo lectura, sin
// efectos persistidos si algo falla) y luego, en una sola transacción,
// persiste la orden Pending con sus líneas y emite una salida del ledger por
// cada línea. Si una salida falla (ej. stock consumido por una petición
// concurrente entre validación y emisión), todo se revierte.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*entity.Order, error) {
	if in.CustomerID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	customer, err := uc.customerRepo.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	// Validación por línea: producto existente, cantidad válida, stock
	// disponible. El precio unitario se captura aquí y no se vuelve a leer.
	now := time.Now()
	order := &entity.Order{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		Status:     entity.OrderStatusPending,
		OrderDate:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	total := decimal.Zero
	for _, lineIn := range in.Lines {
		if lineIn.ProductID == "" || lineIn.WarehouseID == "" || lineIn.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(lineIn.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		stock, err := uc.stockRepo.Get(lineIn.ProductID, lineIn.WarehouseID)
		if err != nil {
			return nil, err
		}
		available := int64(0)
		if stock != nil {
			available = stock.Quantity
		}
		if available < lineIn.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   lineIn.ProductID,
				WarehouseID: lineIn.WarehouseID,
				Requested:   lineIn.Quantity,
				Available:   available,
			}
		}
		line := entity.OrderLine{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   lineIn.ProductID,
			WarehouseID: lineIn.WarehouseID,
			Quantity:    lineIn.Quantity,
			UnitPrice:   product.UnitPrice,
		}
		order.Lines = append(order.Lines, line)
		total = total.Add(line.Subtotal())
	}
	order.TotalAmount = total

	// Una sola unidad de trabajo: cabecera + líneas + una salida por línea.
	// Cualquier error revierte todo, incluidas salidas de líneas anteriores.
	err = uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		reason := fmt.Sprintf("salida por orden %s", order.ID)
		for _, line := range order.Lines {
			if _, _, err := uc.ledger.IssueInTx(movRepo, stockRepo, line.ProductID, line.WarehouseID, line.Quantity, reason, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, events.RoutingKeyOrderCreated, events.OrderCreated{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Lines:       len(order.Lines),
		OccurredAt:  now,
	})
	return order, nil
}

// UpdateStatus aplica una transición del camino genérico (Pending -> Shipped,
// Shipped -> Delivered). Cancelled solo es alcanzable vía Cancel, que además
// repone stock; permitirlo aquí duplicaría el mismo cambio de estado con
// comportamiento divergente.
func (uc *UseCase) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	if !entity.IsValidOrderStatus(newStatus) {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if newStatus == entity.OrderStatusCancelled || !entity.CanTransition(order.Status, newStatus) {
			return &domain.InvalidTransitionError{OrderID: orderID, From: order.Status, To: newStatus}
		}
		return orderRepo.UpdateStatus(orderID, newStatus)
	})
}

// Cancel mueve la orden a Cancelled y repone el stock de cada línea en la
// misma transacción. Una orden ya cancelada devuelve (false, nil) sin tocar
// nada; una orden entregada no admite cancelación.
func (uc *UseCase) Cancel(ctx context.Context, orderID string) (bool, error) {
	changed := false
	var cancelled *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status == entity.OrderStatusCancelled {
			return nil
		}
		if !entity.CanCancel(order.Status) {
			return &domain.InvalidTransitionError{OrderID: orderID, From: order.Status, To: entity.OrderStatusCancelled}
		}
		if err := orderRepo.UpdateStatus(orderID, entity.OrderStatusCancelled); err != nil {
			return err
		}
		now := time.Now()
		reason := fmt.Sprintf("reposición por cancelación de orden %s", orderID)
		for _, line := range order.Lines {
			if _, _, err := uc.ledger.ReceiveInTx(movRepo, stockRepo, line.ProductID, line.WarehouseID, line.Quantity, reason, now); err != nil {
				return err
			}
		}
		changed = true
		cancelled = order
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		uc.publish(ctx, events.RoutingKeyOrderCancelled, events.OrderCancelled{
			OrderID:    cancelled.ID,
			CustomerID: cancelled.CustomerID,
			OccurredAt: time.Now(),
		})
	}
	return changed, nil
}

// Get devuelve una orden con sus líneas.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List devuelve órdenes paginadas, más recientes primero.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	return uc.orderRepo.List(limit, offset)
}

// ListByCustomer devuelve las órdenes de un cliente.
func (uc *UseCase) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Order, error) {
	return uc.orderRepo.ListByCustomer(customerID, limit, offset)
}

func (uc *UseCase) publish(ctx context.Context, key string, payload any) {
	if err := uc.publisher.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Msg("publicar evento de orden")
	}
}
