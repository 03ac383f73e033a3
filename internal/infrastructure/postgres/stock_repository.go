package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jortega/erp-core/internal/domain"
	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de existencias. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = "product_id, warehouse_id, quantity, minimum_stock, updated_at"

// Get obtiene la existencia de un producto en una bodega; nil si el par no existe.
func (r *StockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, productID, warehouseID), "get stock")
}

// GetForUpdate obtiene la existencia y bloquea la fila (SELECT FOR UPDATE);
// nil si el par no existe.
func (r *StockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, productID, warehouseID), "get stock for update")
}

// Upsert escribe la cantidad absoluta (usar con la fila ya bloqueada).
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, minimum_stock, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		stock.ProductID, stock.WarehouseID, stock.Quantity, stock.MinimumStock)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// AddQuantity suma delta de forma atómica, creando la fila si no existe.
// El upsert aditivo evita el lost update entre dos primeras entradas
// concurrentes al mismo par.
func (r *StockRepo) AddQuantity(productID, warehouseID string, delta int64) (*entity.Stock, error) {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, minimum_stock, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING ` + stockColumns
	return r.scanOne(r.q.QueryRow(context.Background(), query, productID, warehouseID, delta), "add stock quantity")
}

// SetMinimum fija el stock mínimo; la fila debe existir.
func (r *StockRepo) SetMinimum(productID, warehouseID string, minimum int64) error {
	query := `
		UPDATE stock SET minimum_stock = $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2`
	cmd, err := r.q.Exec(context.Background(), query, productID, warehouseID, minimum)
	if err != nil {
		return fmt.Errorf("set minimum stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct lista la existencia del producto en todas las bodegas.
func (r *StockRepo) ListByProduct(productID string) ([]*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE product_id = $1 ORDER BY warehouse_id`
	return r.list(query, productID)
}

// ListByWarehouse lista la existencia de todos los productos de una bodega.
func (r *StockRepo) ListByWarehouse(warehouseID string) ([]*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE warehouse_id = $1 ORDER BY product_id`
	return r.list(query, warehouseID)
}

// ListLowStock lista los pares con cantidad en o por debajo del mínimo.
func (r *StockRepo) ListLowStock() ([]*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE quantity <= minimum_stock ORDER BY product_id, warehouse_id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanStocks(rows)
}

// HasStock indica si el producto tiene existencia positiva en alguna bodega.
func (r *StockRepo) HasStock(productID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM stock WHERE product_id = $1 AND quantity > 0)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("has stock: %w", err)
	}
	return exists, nil
}

func (r *StockRepo) list(query string, arg any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(context.Background(), query, arg)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	return scanStocks(rows)
}

func (r *StockRepo) scanOne(row pgx.Row, op string) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.MinimumStock, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

func scanStocks(rows pgx.Rows) ([]*entity.Stock, error) {
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.MinimumStock, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
