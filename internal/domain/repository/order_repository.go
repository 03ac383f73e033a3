package repository

import "github.com/jortega/erp-core/internal/domain/entity"

// OrderRepository define el puerto de persistencia para órdenes y sus líneas.
type OrderRepository interface {
	// Create inserta la cabecera y todas las líneas.
	Create(order *entity.Order) error
	// GetByID devuelve la orden con líneas; nil, nil si no existe.
	GetByID(id string) (*entity.Order, error)
	// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) y devuelve la
	// orden con líneas; nil, nil si no existe.
	GetByIDForUpdate(id string) (*entity.Order, error)
	List(limit, offset int) ([]*entity.Order, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Order, error)
	UpdateStatus(id, status string) error
}
