package repository

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
)

// AuditRepository persiste entradas de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
