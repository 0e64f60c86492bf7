package entity

import "time"

// User representa un usuario autenticable (principal). Sus roles y tiendas se resuelven
// aparte vía user_roles y user_stores.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
