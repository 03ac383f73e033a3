package entity

import "time"

// Customer representa un cliente que puede crear órdenes.
type Customer struct {
	ID        string
	Name      string
	Email     string // único
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
