package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Sastreria-api/internal/application/dto"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

type contextResolver interface {
	ResolveContext(ctx context.Context, userID string) (*entity.ResolvedAuthContext, error)
}

// AccessHandler expone el contexto de autorización del usuario autenticado.
type AccessHandler struct {
	resolver contextResolver
	log      *logger.Logger
}

// NewAccessHandler construye el handler.
func NewAccessHandler(resolver contextResolver, log *logger.Logger) *AccessHandler {
	return &AccessHandler{resolver: resolver, log: log}
}

// Me godoc
// @Summary      Roles, permisos y tiendas del usuario autenticado
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AccessResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me/access [get]
func (h *AccessHandler) Me(c *fiber.Ctx) error {
	ac, err := h.resolver.ResolveContext(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	stores := make([]dto.StoreAccessResponse, 0, len(ac.Stores))
	for _, s := range ac.Stores {
		stores = append(stores, dto.StoreAccessResponse{
			StoreID: s.StoreID, StoreName: s.StoreName, StoreCode: s.StoreCode, IsPrimary: s.IsPrimary,
		})
	}
	return c.JSON(dto.AccessResponse{
		UserID:      ac.UserID,
		Roles:       ac.Roles,
		Permissions: ac.Permissions,
		Stores:      stores,
		IsStaff:     ac.IsStaff,
	})
}
