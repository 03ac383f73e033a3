package entity

import "time"

// User representa un usuario de la API (autenticación Bearer).
type User struct {
	ID           string
	Name         string
	Email        string // único
	PasswordHash string
	CreatedAt    time.Time
}
