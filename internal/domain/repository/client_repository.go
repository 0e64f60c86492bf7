package repository

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Client, error)
}
