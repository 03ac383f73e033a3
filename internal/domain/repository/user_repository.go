package repository

import "github.com/jortega/erp-core/internal/domain/entity"

// UserRepository define el puerto de persistencia para usuarios de la API.
type UserRepository interface {
	Create(user *entity.User) error
	// GetByEmail devuelve nil, nil si no existe.
	GetByEmail(email string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
}
