package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Sastreria-api/internal/application/audit"
	"github.com/jhoicas/Sastreria-api/internal/application/auth"
	"github.com/jhoicas/Sastreria-api/internal/application/authz"
	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/internal/domain/order"
	"github.com/jhoicas/Sastreria-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Sastreria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Sastreria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Sastreria-api/internal/interfaces/http"
	"github.com/jhoicas/Sastreria-api/pkg/clock"
	"github.com/jhoicas/Sastreria-api/pkg/config"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Caché de roles: memoria por proceso o Redis compartido entre réplicas.
	var roleCache authz.RoleCache
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr()).Msg("conexión a Redis")
		}
		defer rdb.Close()
		roleCache = cache.NewRedisRoleCache(rdb, cfg.Cache.RoleTTL())
	default:
		roleCache = cache.NewMemoryRoleCache(cfg.Cache.RoleTTL(), clock.System{})
	}
	log.Info().Str("backend", cfg.Cache.Backend).Dur("ttl", cfg.Cache.RoleTTL()).Msg("caché de roles")

	userRepo := postgres.NewUserRepository(pool)
	authzRepo := postgres.NewAuthzRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	orderRepo := postgres.NewTailoringOrderRepository(pool)
	historyRepo := postgres.NewOrderStateHistoryRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	resolver := authz.NewResolver(authzRepo, roleCache, log.Named("authz"))
	recorder := audit.NewRecorder(auditRepo, clock.System{}, log.Named("audit"))

	var policy order.TransitionPolicy = order.PermissiveTransitions{}
	if cfg.Orders.StrictTransitions {
		policy = order.StrictTransitions{}
	}

	ordersLog := log.Named("orders")
	createOrderUC := orders.NewCreateOrderUseCase(txRunner, resolver, storeRepo, clientRepo, recorder, clock.System{}, ordersLog)
	changeStatusUC := orders.NewChangeStatusUseCase(txRunner, resolver, policy, recorder, clock.System{}, ordersLog)
	queryUC := orders.NewQueryUseCase(resolver, orderRepo, historyRepo)
	sheetUC := orders.NewSheetUseCase(queryUC, storeRepo, clientRepo, infrapdf.NewOrderSheetGenerator())

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	httpLog := log.Named("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(httpLog))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sastrería API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Resolver:     resolver,
		CreateOrder:  createOrderUC,
		OrderQuery:   queryUC,
		ChangeStatus: changeStatusUC,
		OrderSheet:   sheetUC,
		JWTSecret:    cfg.JWT.Secret,
		Log:          httpLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Escrituras de auditoría en vuelo antes de cerrar el pool.
	recorder.Wait()

	log.Info().Msg("aplicación detenida")
}
