package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/dev-centersport/wms-sub000/internal/application/inventory"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/cache"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/metrics"
	"github.com/dev-centersport/wms-sub000/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	Separation       *inventory.SeparationUseCase
	Idempotency      cache.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Recorder
	Logger           *logger.Logger
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	var observer RequestObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api", RequestLogger(deps.Logger, observer))

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Separation, deps.Logger)

	writers := []fiber.Handler{RequireRole(RoleAdmin, RoleBodeguero)}
	if deps.Idempotency != nil {
		writers = append(writers, IdempotencyMiddleware(deps.Idempotency, deps.IdempotencyTTL, deps.Logger))
	}
	writers = append(writers, inventoryHandler.RegisterMovement)
	invGroup.Post("/movements", writers...)
	invGroup.Get("/movements", inventoryHandler.ListMovements)

	invGroup.Get("/stock", inventoryHandler.ListStock)
	invGroup.Get("/stock/:product_id/:location_id", inventoryHandler.GetStock)

	invGroup.Post("/separation", inventoryHandler.PlanSeparation)
}
