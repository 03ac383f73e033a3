package dto

import "time"

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// UpdateWarehouseRequest body para PUT /api/warehouses/:id (campos opcionales).
type UpdateWarehouseRequest struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

// WarehouseResponse una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse listado paginado de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
