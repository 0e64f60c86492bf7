package orders

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/application/authz"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Si fn devuelve error se hace Rollback: ni el historial ni el estado quedan escritos.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		orderRepo repository.TailoringOrderRepository,
		historyRepo repository.OrderStateHistoryRepository,
	) error) error
}

// Authorizer subconjunto de authz.Resolver que usan los casos de uso de pedidos.
type Authorizer interface {
	RequirePermission(ctx context.Context, userID, code string) error
	RequireStoreAccess(ctx context.Context, userID, storeID string) error
	StoreScope(ctx context.Context, userID string) (authz.StoreScope, error)
}

// AuditRecorder emisión de auditoría sin retorno de error.
type AuditRecorder interface {
	Record(ctx context.Context, entry entity.AuditLog)
}

// OrderSheetData todo lo que necesita la hoja de trabajo del taller.
type OrderSheetData struct {
	Order   *entity.TailoringOrder
	Client  *entity.Client // nil si el pedido no tiene cliente
	Store   *entity.Store
	History []*entity.OrderStateHistory
}

// OrderSheetGenerator genera el PDF de la hoja de trabajo.
type OrderSheetGenerator interface {
	GenerateOrderSheet(ctx context.Context, data OrderSheetData) ([]byte, error)
}
