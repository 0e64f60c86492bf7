package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Sastreria-api/internal/application/audit"
	"github.com/jhoicas/Sastreria-api/internal/domain"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/order"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
	"github.com/jhoicas/Sastreria-api/pkg/clock"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// ChangeStatusUseCase registra transiciones de estado de pedidos y prendas.
// Historial y estado se escriben en la misma transacción, con la fila del pedido bloqueada
// (SELECT FOR UPDATE) para que dos cambios simultáneos se serialicen.
type ChangeStatusUseCase struct {
	txRunner TxRunner
	authz    Authorizer
	policy   order.TransitionPolicy
	audit    AuditRecorder
	clock    clock.Clock
	log      *logger.Logger
}

// NewChangeStatusUseCase construye el caso de uso. policy nil = PermissiveTransitions.
func NewChangeStatusUseCase(
	txRunner TxRunner,
	authz Authorizer,
	policy order.TransitionPolicy,
	auditRec AuditRecorder,
	clk clock.Clock,
	log *logger.Logger,
) *ChangeStatusUseCase {
	if policy == nil {
		policy = order.PermissiveTransitions{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ChangeStatusUseCase{txRunner: txRunner, authz: authz, policy: policy, audit: auditRec, clock: clk, log: log}
}

// ChangeStatusInput cambio de estado del pedido, o de una prenda si LineID no está vacío.
type ChangeStatusInput struct {
	ActorID   string
	OrderID   string
	LineID    string
	NewStatus string
	Notes     string
}

// ChangeStatus valida y aplica la transición. Devuelve la entrada de historial creada.
//
// Errores:
//   - domain.ErrUnauthorized / domain.ErrForbidden  sin sesión o sin orders.edit / tienda.
//   - *domain.ValidationError                        estado fuera del enum o IDs vacíos.
//   - domain.ErrNotFound                             pedido o prenda inexistente.
//   - domain.ErrInvalidTransition                    rechazada por la política estricta.
//   - domain.ErrConflict                             bloqueo o serialización en la DB.
func (uc *ChangeStatusUseCase) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*entity.OrderStateHistory, error) {
	if err := uc.authz.RequirePermission(ctx, in.ActorID, entity.PermOrdersEdit); err != nil {
		return nil, err
	}

	to := entity.OrderStatus(in.NewStatus)
	ve := &domain.ValidationError{}
	if in.OrderID == "" {
		ve.Add("order_id", "es requerido")
	}
	if !to.Valid() {
		ve.Add("new_status", fmt.Sprintf("estado desconocido %q", in.NewStatus))
	}
	if ve.HasErrors() {
		return nil, ve
	}

	// Sin consultas de autorización con la fila bloqueada.
	scope, err := uc.authz.StoreScope(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	var entry *entity.OrderStateHistory
	err = uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.TailoringOrderRepository,
		historyRepo repository.OrderStateHistoryRepository,
	) error {
		o, err := orderRepo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !scope.Allows(o.StoreID) {
			return fmt.Errorf("%w: sin acceso a la tienda %s", domain.ErrForbidden, o.StoreID)
		}

		from := o.Status
		if in.LineID != "" {
			line, err := orderRepo.GetLineForUpdate(ctx, in.LineID)
			if err != nil {
				return err
			}
			if line == nil || line.OrderID != o.ID {
				return domain.ErrNotFound
			}
			from = line.Status
		}

		if !uc.policy.Allowed(from, to) {
			return fmt.Errorf("%w: %s → %s (permitidos: %v)", domain.ErrInvalidTransition, from, to, order.Successors(from))
		}

		now := uc.clock.Now().UTC()
		entry = &entity.OrderStateHistory{
			ID:             uuid.New().String(),
			OrderID:        o.ID,
			LineID:         in.LineID,
			PreviousStatus: from,
			NewStatus:      to,
			ChangedBy:      in.ActorID,
			Notes:          in.Notes,
			ChangedAt:      now,
		}
		if err := historyRepo.Append(ctx, entry); err != nil {
			return err
		}
		if in.LineID != "" {
			return orderRepo.UpdateLineStatus(ctx, in.LineID, to, now)
		}
		return orderRepo.UpdateStatus(ctx, o.ID, to, now)
	})
	if err != nil {
		return nil, err
	}

	entityType, entityID := "tailoring_order", entry.OrderID
	if entry.LineID != "" {
		entityType, entityID = "tailoring_order_line", entry.LineID
	}
	if uc.audit != nil {
		uc.audit.Record(ctx, entity.AuditLog{
			UserID:     in.ActorID,
			Action:     entity.AuditActionStatusChange,
			EntityType: entityType,
			EntityID:   entityID,
			Changes: audit.Diff(
				map[string]any{"status": string(entry.PreviousStatus)},
				map[string]any{"status": string(entry.NewStatus)},
			),
			CreatedAt: entry.ChangedAt,
		})
	}
	if entry.PreviousStatus.Terminal() && entry.PreviousStatus != entry.NewStatus {
		uc.log.Warn().
			Str("order_id", entry.OrderID).
			Str("line_id", entry.LineID).
			Str("from", string(entry.PreviousStatus)).
			Msg("se reabre un pedido en estado terminal")
	}
	uc.log.Info().
		Str("order_id", entry.OrderID).
		Str("line_id", entry.LineID).
		Str("from", string(entry.PreviousStatus)).
		Str("to", string(entry.NewStatus)).
		Str("actor", in.ActorID).
		Msg("cambio de estado registrado")
	return entry, nil
}
