package postgres

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

var _ repository.OrderStateHistoryRepository = (*OrderStateHistoryRepo)(nil)

// OrderStateHistoryRepo historial de estados. No expone UPDATE ni DELETE.
type OrderStateHistoryRepo struct {
	q Querier
}

// NewOrderStateHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderStateHistoryRepository(q Querier) *OrderStateHistoryRepo {
	return &OrderStateHistoryRepo{q: q}
}

// Append inserta una entrada. PreviousStatus vacío y LineID vacío se guardan como NULL.
func (r *OrderStateHistoryRepo) Append(ctx context.Context, e *entity.OrderStateHistory) error {
	query := `
		INSERT INTO tailoring_order_state_history
			(id, order_id, line_id, previous_status, new_status, changed_by, notes, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.OrderID, nullIfEmpty(e.LineID), nullIfEmpty(string(e.PreviousStatus)), string(e.NewStatus),
		nullIfEmpty(e.ChangedBy), nullIfEmpty(e.Notes), e.ChangedAt,
	)
	if err != nil {
		return wrapPgError("insert order state history", err)
	}
	return nil
}

// ListByOrder historial del pedido y sus prendas por changed_at, id.
func (r *OrderStateHistoryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderStateHistory, error) {
	query := `
		SELECT id, order_id, COALESCE(line_id::text, ''), COALESCE(previous_status, ''), new_status,
		       COALESCE(changed_by::text, ''), COALESCE(notes, ''), changed_at
		FROM tailoring_order_state_history
		WHERE order_id = $1
		ORDER BY changed_at, id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, wrapPgError("list order state history", err)
	}
	defer rows.Close()
	out := []*entity.OrderStateHistory{}
	for rows.Next() {
		var e entity.OrderStateHistory
		var prev, next string
		if err := rows.Scan(&e.ID, &e.OrderID, &e.LineID, &prev, &next, &e.ChangedBy, &e.Notes, &e.ChangedAt); err != nil {
			return nil, wrapPgError("scan order state history", err)
		}
		e.PreviousStatus, e.NewStatus = entity.OrderStatus(prev), entity.OrderStatus(next)
		out = append(out, &e)
	}
	return out, rows.Err()
}
