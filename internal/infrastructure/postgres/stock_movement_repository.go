package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL del log de movimientos
// (usable con pool o tx). Solo inserta y lee: el log es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, warehouse_id, kind, quantity, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	reason := (*string)(nil)
	if movement.Reason != "" {
		reason = &movement.Reason
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.WarehouseID,
		movement.Kind, movement.Quantity, reason, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto, opcionalmente filtrados por
// bodega, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(productID string, warehouseID *string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, warehouse_id, kind, quantity, reason, created_at
		FROM stock_movements WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if warehouseID != nil {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, *warehouseID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var reason *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.WarehouseID, &m.Kind, &m.Quantity, &reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if reason != nil {
			m.Reason = *reason
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
