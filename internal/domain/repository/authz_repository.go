package repository

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
)

// AuthzRepository lee las asociaciones usuario → roles → permisos y usuario → tiendas.
// Las implementaciones normalizan el resultado de los joins a listas planas; los
// consumidores nunca reinterpretan la forma de las filas.
type AuthzRepository interface {
	// RoleNamesByUser nombres de rol del usuario (vacío si no tiene).
	RoleNamesByUser(ctx context.Context, userID string) ([]string, error)
	// PermissionCodesByRoles unión deduplicada de los permisos de los roles indicados.
	PermissionCodesByRoles(ctx context.Context, roleNames []string) ([]string, error)
	// StoresByUser tiendas asociadas, primaria primero y luego por nombre.
	StoresByUser(ctx context.Context, userID string) ([]entity.StoreAccess, error)
}
