package repository

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
}
