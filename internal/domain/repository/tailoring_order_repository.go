package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
)

// OrderFilter filtros para listar pedidos. StoreIDs vacío = todas las tiendas.
type OrderFilter struct {
	StoreIDs []string
	Status   entity.OrderStatus
	Limit    int
	Offset   int
}

// TailoringOrderRepository define el puerto de persistencia para pedidos y sus líneas.
type TailoringOrderRepository interface {
	Create(ctx context.Context, order *entity.TailoringOrder) error
	CreateLine(ctx context.Context, line *entity.TailoringOrderLine) error
	// GetByID devuelve el pedido con sus líneas, o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.TailoringOrder, error)
	// GetForUpdate bloquea la fila del pedido (SELECT ... FOR UPDATE) hasta el fin de la tx.
	// No carga líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.TailoringOrder, error)
	// GetLineForUpdate bloquea la fila de la línea.
	GetLineForUpdate(ctx context.Context, lineID string) (*entity.TailoringOrderLine, error)
	UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus, at time.Time) error
	UpdateLineStatus(ctx context.Context, lineID string, status entity.OrderStatus, at time.Time) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.TailoringOrder, int, error)
	// NextOrderNumber siguiente valor de la secuencia de numeración.
	NextOrderNumber(ctx context.Context) (int64, error)
}

// OrderStateHistoryRepository historial de estados. Solo inserción.
type OrderStateHistoryRepository interface {
	Append(ctx context.Context, entry *entity.OrderStateHistory) error
	// ListByOrder historial del pedido (incluye líneas) en orden cronológico.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderStateHistory, error)
}
