package authz

import (
	"context"
	"fmt"

	"github.com/jhoicas/Sastreria-api/internal/domain"
	domainauthz "github.com/jhoicas/Sastreria-api/internal/domain/authz"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// RoleCache caché de nombres de rol por usuario con TTL acotado.
// Lo implementan cache.MemoryRoleCache y cache.RedisRoleCache.
type RoleCache interface {
	Get(ctx context.Context, userID string) ([]string, bool, error)
	Set(ctx context.Context, userID string, roles []string) error
}

// Resolver responde "qué puede hacer el usuario y dónde". Es el único punto por el que
// pasan las mutaciones protegidas antes de tocar datos.
type Resolver struct {
	repo  repository.AuthzRepository
	cache RoleCache
	log   *logger.Logger
}

// NewResolver construye el resolver. cache puede ser nil (sin caché).
func NewResolver(repo repository.AuthzRepository, cache RoleCache, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{repo: repo, cache: cache, log: log}
}

// ResolveRoles devuelve los nombres de rol del usuario. Consulta la caché primero; un fallo
// de la caché se registra y se resuelve contra la DB.
func (r *Resolver) ResolveRoles(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if r.cache != nil {
		roles, ok, err := r.cache.Get(ctx, userID)
		if err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("caché de roles no disponible")
		} else if ok {
			return roles, nil
		}
	}
	roles, err := r.repo.RoleNamesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolver roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, userID, roles); err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("no se pudo cachear roles")
		}
	}
	return roles, nil
}

// ResolvePermissions unión deduplicada de los permisos de todos los roles del usuario.
// Parte de ResolveRoles, así que hereda su ventana de obsolescencia (TTL de la caché).
func (r *Resolver) ResolvePermissions(ctx context.Context, userID string) ([]string, error) {
	roles, err := r.ResolveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.permissionsFor(ctx, roles)
}

func (r *Resolver) permissionsFor(ctx context.Context, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return []string{}, nil
	}
	codes, err := r.repo.PermissionCodesByRoles(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("resolver permisos: %w", err)
	}
	return dedup(codes), nil
}

// ResolveStores tiendas del usuario, primaria primero.
func (r *Resolver) ResolveStores(ctx context.Context, userID string) ([]entity.StoreAccess, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	stores, err := r.repo.StoresByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolver tiendas: %w", err)
	}
	if stores == nil {
		stores = []entity.StoreAccess{}
	}
	return stores, nil
}

// ResolveContext calcula roles, permisos, tiendas y si es personal interno.
func (r *Resolver) ResolveContext(ctx context.Context, userID string) (*entity.ResolvedAuthContext, error) {
	roles, err := r.ResolveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := r.permissionsFor(ctx, roles)
	if err != nil {
		return nil, err
	}
	stores, err := r.ResolveStores(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entity.ResolvedAuthContext{
		UserID:      userID,
		Roles:       roles,
		Permissions: perms,
		Stores:      stores,
		IsStaff:     domainauthz.IsStaff(roles),
	}, nil
}

// IsStaff informa si el usuario tiene algún rol de personal interno.
func (r *Resolver) IsStaff(ctx context.Context, userID string) (bool, error) {
	roles, err := r.ResolveRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return domainauthz.IsStaff(roles), nil
}

// RequirePermission nil si el usuario tiene el permiso; ErrUnauthorized sin usuario;
// ErrForbidden si le falta.
func (r *Resolver) RequirePermission(ctx context.Context, userID, code string) error {
	return r.RequireAllPermissions(ctx, userID, code)
}

// RequireAnyPermission basta con uno de los códigos.
func (r *Resolver) RequireAnyPermission(ctx context.Context, userID string, codes ...string) error {
	set, err := r.permissionSet(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range codes {
		if _, ok := set[c]; ok {
			return nil
		}
	}
	return fmt.Errorf("%w: requiere alguno de %v", domain.ErrForbidden, codes)
}

// RequireAllPermissions exige todos los códigos.
func (r *Resolver) RequireAllPermissions(ctx context.Context, userID string, codes ...string) error {
	set, err := r.permissionSet(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range codes {
		if _, ok := set[c]; !ok {
			return fmt.Errorf("%w: falta el permiso %s", domain.ErrForbidden, c)
		}
	}
	return nil
}

// RequireStoreAccess permite operar sobre storeID si el usuario está asociado a esa tienda
// o tiene el permiso stores.all.
func (r *Resolver) RequireStoreAccess(ctx context.Context, userID, storeID string) error {
	scope, err := r.StoreScope(ctx, userID)
	if err != nil {
		return err
	}
	if scope.Allows(storeID) {
		return nil
	}
	return fmt.Errorf("%w: sin acceso a la tienda %s", domain.ErrForbidden, storeID)
}

// StoreScope alcance de tiendas del usuario.
type StoreScope struct {
	All      bool
	StoreIDs []string
}

// Allows informa si el alcance cubre la tienda.
func (s StoreScope) Allows(storeID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// StoreScope calcula el alcance (todas con stores.all, si no las asociadas).
func (r *Resolver) StoreScope(ctx context.Context, userID string) (StoreScope, error) {
	set, err := r.permissionSet(ctx, userID)
	if err != nil {
		return StoreScope{}, err
	}
	if _, ok := set[entity.PermStoresAll]; ok {
		return StoreScope{All: true}, nil
	}
	stores, err := r.ResolveStores(ctx, userID)
	if err != nil {
		return StoreScope{}, err
	}
	ids := make([]string, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.StoreID)
	}
	return StoreScope{StoreIDs: ids}, nil
}

func (r *Resolver) permissionSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	perms, err := r.ResolvePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set, nil
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
