package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

var _ orders.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunOrders inicia una transacción con repos de pedidos e historial atados a ella y hace
// Commit o Rollback.
func (r *TxRunner) RunOrders(ctx context.Context, fn func(
	orderRepo repository.TailoringOrderRepository,
	historyRepo repository.OrderStateHistoryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderRepo := NewTailoringOrderRepository(tx)
	historyRepo := NewOrderStateHistoryRepository(tx)

	if err := fn(orderRepo, historyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapPgError("commit transaction", err)
	}
	return nil
}
