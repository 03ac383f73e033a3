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
	"github.com/jortega/erp-core/internal/application/auth"
	"github.com/jortega/erp-core/internal/application/events"
	"github.com/jortega/erp-core/internal/application/inventory"
	"github.com/jortega/erp-core/internal/application/orders"
	"github.com/jortega/erp-core/internal/application/usecase"
	"github.com/jortega/erp-core/internal/infrastructure/postgres"
	"github.com/jortega/erp-core/internal/infrastructure/rabbitmq"
	httpRouter "github.com/jortega/erp-core/internal/interfaces/http"
	"github.com/jortega/erp-core/pkg/config"
	"github.com/jortega/erp-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
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

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Publicador de eventos: RabbitMQ si AMQP_URL está definido, si no un
	// no-op. Los eventos son informativos, nunca bloquean una operación.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		mq, err := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer mq.Close()
		publisher = mq
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publicador de eventos habilitado")
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, warehouseRepo, stockRepo, movementRepo, publisher)
	ordersUC := orders.NewUseCase(txRunner, ledgerUC, orderRepo, customerRepo, productRepo, stockRepo, publisher)
	productUC := usecase.NewProductUseCase(productRepo, stockRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP Core API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		CustomerUC:  customerUC,
		WarehouseUC: warehouseUC,
		LedgerUC:    ledgerUC,
		OrdersUC:    ordersUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
