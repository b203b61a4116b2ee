package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dev-centersport/wms-sub000/internal/application/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/cache"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/memory"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/metrics"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/dev-centersport/wms-sub000/internal/interfaces/http"
	"github.com/dev-centersport/wms-sub000/pkg/config"
	"github.com/dev-centersport/wms-sub000/pkg/logger"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// storage agrupa los adaptadores del ledger según STORAGE_DRIVER.
type storage struct {
	products  repository.ProductRepository
	locations repository.LocationRepository
	stock     repository.StockRepository
	movements repository.MovementRepository
	txRunner  inventory.TxRunner
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.Storage.SeedFile); err != nil {
				return nil, err
			}
			log.Info().Str("file", cfg.Storage.SeedFile).Msg("semilla cargada")
		}
		return &storage{
			products:  store.Products(),
			locations: store.Locations(),
			stock:     store.Stock(),
			movements: store.Movements(),
			txRunner:  store.TxRunner(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		products:  postgres.NewProductRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		stock:     postgres.NewStockRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		txRunner:  postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

func openIdempotency(ctx context.Context, cfg *config.Config) (cache.IdempotencyStore, error) {
	if cfg.Redis.Addr == "" {
		return cache.NewInMemoryIdempotencyStore(time.Minute), nil
	}
	return cache.NewRedisIdempotencyStore(ctx, cfg.Redis)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("aplicación finalizada con error")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}

// run arma las dependencias y sirve HTTP hasta recibir SIGINT/SIGTERM.
// Los recursos abiertos se cierran siempre antes de volver.
func run(cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("inicializar almacenamiento: %w", err)
	}
	defer st.close()

	idem, err := openIdempotency(ctx, cfg)
	if err != nil {
		return fmt.Errorf("conexión a Redis: %w", err)
	}
	defer idem.Close()

	recorder := metrics.NewRecorder()
	opts := []inventory.Option{
		inventory.WithLogger(log),
		inventory.WithMetrics(recorder),
	}
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		st.txRunner, st.products, st.locations, st.stock, st.movements, opts...,
	)
	separationUC := inventory.NewSeparationUseCase(st.products, st.stock, opts...)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "WMS Stock API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		Separation:       separationUC,
		Idempotency:      idem,
		IdempotencyTTL:   cfg.Idempotency.TTL,
		Metrics:          recorder,
		Logger:           log,
		JWTSecret:        cfg.JWT.Secret,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
