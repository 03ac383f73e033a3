package repository

import "github.com/jortega/erp-core/internal/domain/entity"

// WarehouseRepository define el puerto de persistencia para Warehouse.
type WarehouseRepository interface {
	Create(warehouse *entity.Warehouse) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(id string) (*entity.Warehouse, error)
	Update(warehouse *entity.Warehouse) error
	List(limit, offset int) ([]*entity.Warehouse, error)
	Delete(id string) error
}
