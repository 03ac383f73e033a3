package entity

import "time"

// Stock representa la existencia actual de un producto en una bodega.
// Única por par (ProductID, WarehouseID); la cantidad nunca es negativa.
type Stock struct {
	ProductID    string
	WarehouseID  string
	Quantity     int64
	MinimumStock int64
	UpdatedAt    time.Time
}

// IsLow indica si la existencia está en o por debajo del mínimo configurado.
func (s *Stock) IsLow() bool {
	return s.Quantity <= s.MinimumStock
}
