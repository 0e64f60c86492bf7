package entity

import "time"

// Acciones de auditoría.
const (
	AuditActionCreate       = "create"
	AuditActionUpdate       = "update"
	AuditActionStatusChange = "status_change"
)

// FieldChange es el valor anterior y nuevo de un campo modificado.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditLog registra quién cambió qué. Se escribe fuera de la transacción principal.
type AuditLog struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Changes    map[string]FieldChange
	CreatedAt  time.Time
}
