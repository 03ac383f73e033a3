package dto

import "time"

// ReceiveStockRequest body para POST /api/inventory/receive/:productId/:warehouseId.
type ReceiveStockRequest struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

// IssueStockRequest body para POST /api/inventory/issue/:productId/:warehouseId.
type IssueStockRequest struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

// TransferStockRequest body para POST /api/inventory/transfer/:productId.
// Origen y destino son explícitos y distintos.
type TransferStockRequest struct {
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Reason          string `json:"reason,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjust/:productId/:warehouseId.
// NewQuantity es una corrección autoritativa, no un delta.
type AdjustStockRequest struct {
	NewQuantity int64  `json:"new_quantity"`
	Reason      string `json:"reason,omitempty"`
}

// SetMinimumStockRequest body para PUT /api/inventory/minimum/:productId/:warehouseId.
type SetMinimumStockRequest struct {
	MinimumStock int64 `json:"minimum_stock"`
}

// StockResponse existencia de un producto en una bodega.
type StockResponse struct {
	ProductID    string    `json:"product_id"`
	WarehouseID  string    `json:"warehouse_id"`
	Quantity     int64     `json:"quantity"`
	MinimumStock int64     `json:"minimum_stock"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockMovementResponse un registro del log de movimientos.
type StockMovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
