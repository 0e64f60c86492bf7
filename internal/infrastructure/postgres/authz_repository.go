package postgres

import (
	"context"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

var _ repository.AuthzRepository = (*AuthzRepo)(nil)

// AuthzRepo lee roles, permisos y tiendas. Aplana los joins a listas simples.
type AuthzRepo struct {
	q Querier
}

// NewAuthzRepository construye el adaptador.
func NewAuthzRepository(q Querier) *AuthzRepo {
	return &AuthzRepo{q: q}
}

// RoleNamesByUser user_roles ⋈ roles.
func (r *AuthzRepo) RoleNamesByUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`
	return r.strings(ctx, "role names by user", query, userID)
}

// PermissionCodesByRoles role_permissions ⋈ permissions para los roles indicados, sin duplicados.
func (r *AuthzRepo) PermissionCodesByRoles(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return []string{}, nil
	}
	query := `
		SELECT DISTINCT p.code
		FROM roles r
		JOIN role_permissions rp ON rp.role_id = r.id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE r.name = ANY($1)
		ORDER BY p.code`
	return r.strings(ctx, "permission codes by roles", query, roleNames)
}

// StoresByUser user_stores ⋈ stores (solo activas), primaria primero y luego por nombre.
func (r *AuthzRepo) StoresByUser(ctx context.Context, userID string) ([]entity.StoreAccess, error) {
	query := `
		SELECT s.id, s.name, s.code, us.is_primary
		FROM user_stores us
		JOIN stores s ON s.id = us.store_id
		WHERE us.user_id = $1 AND s.active
		ORDER BY us.is_primary DESC, s.name`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapPgError("stores by user", err)
	}
	defer rows.Close()
	out := []entity.StoreAccess{}
	for rows.Next() {
		var sa entity.StoreAccess
		if err := rows.Scan(&sa.StoreID, &sa.StoreName, &sa.StoreCode, &sa.IsPrimary); err != nil {
			return nil, wrapPgError("scan store access", err)
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

func (r *AuthzRepo) strings(ctx context.Context, op, query string, arg any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, wrapPgError(op, err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, wrapPgError(op, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
