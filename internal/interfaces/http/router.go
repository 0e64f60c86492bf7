package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Sastreria-api/internal/application/auth"
	"github.com/jhoicas/Sastreria-api/internal/application/authz"
	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	Resolver     *authz.Resolver
	CreateOrder  *orders.CreateOrderUseCase
	OrderQuery   *orders.QueryUseCase
	ChangeStatus *orders.ChangeStatusUseCase
	OrderSheet   *orders.SheetUseCase
	JWTSecret    string
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	accessHandler := NewAccessHandler(deps.Resolver, log)
	protected.Get("/me/access", accessHandler.Me)

	// Pedidos: solo personal interno; cada operación comprueba además su permiso.
	ordersGroup := protected.Group("/orders", RequireStaff(deps.Resolver, log))
	orderHandler := NewOrderHandler(deps.CreateOrder, deps.OrderQuery, deps.ChangeStatus, deps.OrderSheet, log)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Get("/:id/history", orderHandler.History)
	ordersGroup.Get("/:id/sheet", orderHandler.Sheet)
	ordersGroup.Patch("/:id/status", orderHandler.ChangeStatus)
	ordersGroup.Patch("/:id/lines/:lineId/status", orderHandler.ChangeLineStatus)
}
