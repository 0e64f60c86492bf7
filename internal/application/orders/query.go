package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/Sastreria-api/internal/domain"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

// QueryUseCase lecturas de pedidos acotadas al alcance de tiendas del usuario.
type QueryUseCase struct {
	authz       Authorizer
	orderRepo   repository.TailoringOrderRepository
	historyRepo repository.OrderStateHistoryRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	authz Authorizer,
	orderRepo repository.TailoringOrderRepository,
	historyRepo repository.OrderStateHistoryRepository,
) *QueryUseCase {
	return &QueryUseCase{authz: authz, orderRepo: orderRepo, historyRepo: historyRepo}
}

// GetOrder pedido con sus prendas.
func (uc *QueryUseCase) GetOrder(ctx context.Context, actorID, orderID string) (*entity.TailoringOrder, error) {
	if err := uc.authz.RequirePermission(ctx, actorID, entity.PermOrdersView); err != nil {
		return nil, err
	}
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("obtener pedido: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authz.RequireStoreAccess(ctx, actorID, o.StoreID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrdersInput filtros del listado.
type ListOrdersInput struct {
	StoreID string
	Status  string
	Limit   int
	Offset  int
}

// ListOrders lista pedidos. Sin StoreID se limita a las tiendas del usuario
// (todas si tiene stores.all). Devuelve también el total sin paginar.
func (uc *QueryUseCase) ListOrders(ctx context.Context, actorID string, in ListOrdersInput) ([]*entity.TailoringOrder, int, error) {
	if err := uc.authz.RequirePermission(ctx, actorID, entity.PermOrdersView); err != nil {
		return nil, 0, err
	}
	if in.Status != "" && !entity.OrderStatus(in.Status).Valid() {
		return nil, 0, domain.NewValidationError("status", fmt.Sprintf("estado desconocido %q", in.Status))
	}
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	scope, err := uc.authz.StoreScope(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	filter := repository.OrderFilter{Status: entity.OrderStatus(in.Status), Limit: in.Limit, Offset: in.Offset}
	switch {
	case in.StoreID != "":
		if !scope.Allows(in.StoreID) {
			return nil, 0, fmt.Errorf("%w: sin acceso a la tienda %s", domain.ErrForbidden, in.StoreID)
		}
		filter.StoreIDs = []string{in.StoreID}
	case !scope.All:
		// Un filtro vacío en el repositorio significa "todas"; sin tiendas no hay nada que ver.
		if len(scope.StoreIDs) == 0 {
			return []*entity.TailoringOrder{}, 0, nil
		}
		filter.StoreIDs = scope.StoreIDs
	}

	list, total, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("listar pedidos: %w", err)
	}
	return list, total, nil
}

// History historial completo del pedido (pedido y prendas) en orden cronológico.
func (uc *QueryUseCase) History(ctx context.Context, actorID, orderID string) ([]*entity.OrderStateHistory, error) {
	if _, err := uc.GetOrder(ctx, actorID, orderID); err != nil {
		return nil, err
	}
	h, err := uc.historyRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("obtener historial: %w", err)
	}
	return h, nil
}
