package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dev-centersport/wms-sub000/internal/application/dto"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/cache"
	"github.com/dev-centersport/wms-sub000/pkg/logger"
)

// HeaderIdempotencyKey header que identifica un envío de movimiento.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyMiddleware rechaza con 409 DUPLICATE_REQUEST una clave ya usada dentro del TTL.
// La clave se guarda por usuario. Si la petición no termina en 2xx la clave se libera
// para que el cliente pueda reintentar. Sin header, la petición pasa sin control.
func IdempotencyMiddleware(store cache.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("idempotency")
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		scoped := GetUserID(c) + ":" + key

		fresh, err := store.MarkProcessed(c.Context(), scoped, ttl)
		if err != nil {
			log.Error().Err(err).Msg("almacén de idempotencia no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_UNAVAILABLE",
				Message: "no se pudo verificar la clave de idempotencia, intente más tarde",
			})
		}
		if !fresh {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "DUPLICATE_REQUEST",
				Message: "la petición con esta Idempotency-Key ya fue procesada",
			})
		}

		err = c.Next()
		if status := c.Response().StatusCode(); err != nil || status < 200 || status >= 300 {
			if relErr := store.Release(c.Context(), scoped); relErr != nil {
				log.Warn().Err(relErr).Msg("no se pudo liberar la clave")
			}
		}
		return err
	}
}
