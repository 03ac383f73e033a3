package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
)

// InsufficientStockError indica que la cantidad solicitada excede la disponible
// para un par producto/bodega. Desenvuelve a ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s, bodega %s (solicitado %d, disponible %d)",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidTransitionError indica un cambio de estado de orden no permitido.
// Desenvuelve a ErrInvalidTransition.
type InvalidTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición de estado inválida: orden %s (%s -> %s)", e.OrderID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
