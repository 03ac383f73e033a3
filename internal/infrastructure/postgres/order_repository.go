package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera y todas las líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	ctx := context.Background()
	query := `
		INSERT INTO orders (id, customer_id, status, order_date, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.CustomerID, order.Status, order.OrderDate,
		order.TotalAmount, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	lineQuery := `
		INSERT INTO order_lines (id, order_id, product_id, warehouse_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, line := range order.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, line.OrderID, line.ProductID, line.WarehouseID, line.Quantity, line.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la orden con líneas; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.getByID(id, false)
}

// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) y devuelve la
// orden con líneas; nil si no existe.
func (r *OrderRepo) GetByIDForUpdate(id string) (*entity.Order, error) {
	return r.getByID(id, true)
}

func (r *OrderRepo) getByID(id string, forUpdate bool) (*entity.Order, error) {
	ctx := context.Background()
	query := `
		SELECT id, customer_id, status, order_date, total_amount, created_at, updated_at
		FROM orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.OrderDate, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	lines, err := r.linesFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

// List lista órdenes con líneas, más recientes primero.
func (r *OrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, customer_id, status, order_date, total_amount, created_at, updated_at
		FROM orders ORDER BY order_date DESC LIMIT $1 OFFSET $2`
	return r.listOrders(query, limit, offset)
}

// ListByCustomer lista las órdenes de un cliente, más recientes primero.
func (r *OrderRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, customer_id, status, order_date, total_amount, created_at, updated_at
		FROM orders WHERE customer_id = $1 ORDER BY order_date DESC LIMIT $2 OFFSET $3`
	return r.listOrders(query, customerID, limit, offset)
}

// UpdateStatus actualiza el estado de la orden.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update order status: orden %s no existe", id)
	}
	return nil
}

func (r *OrderRepo) listOrders(query string, args ...any) ([]*entity.Order, error) {
	ctx := context.Background()
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.OrderDate, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		lines, err := r.linesFor(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
	}
	return list, nil
}

func (r *OrderRepo) linesFor(ctx context.Context, orderID string) ([]entity.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, warehouse_id, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
