package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo persiste audit_logs. changes se guarda como jsonb.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada de auditoría.
func (r *AuditRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	changes, err := json.Marshal(l.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(ctx, query,
		l.ID, nullIfEmpty(l.UserID), l.Action, l.EntityType, l.EntityID, changes, l.CreatedAt,
	)
	if err != nil {
		return wrapPgError("insert audit log", err)
	}
	return nil
}
