package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementKindReceive  = "Receive"  // entrada
	MovementKindIssue    = "Issue"    // salida
	MovementKindTransfer = "Transfer" // traslado entre bodegas
	MovementKindAdjust   = "Adjust"   // ajuste autoritativo
)

// StockMovement representa un movimiento de inventario. Es inmutable y el log
// es append-only: la suma de Quantity por par producto/bodega reconstruye la
// existencia actual.
type StockMovement struct {
	ID          string
	ProductID   string
	WarehouseID string
	Kind        string
	Quantity    int64 // delta con signo: positivo suma, negativo resta
	Reason      string
	CreatedAt   time.Time
}
