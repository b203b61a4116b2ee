package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dev-centersport/wms-sub000/pkg/logger"
)

// RequestObserver recibe la duración de cada petición (lo implementa metrics.Recorder).
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// RequestLogger emite un evento zerolog por petición y, si hay observer, registra la duración.
func RequestLogger(log *logger.Logger, observer RequestObserver) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler de fiber escriba la respuesta antes de leer el status.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("request")

		if observer != nil {
			observer.ObserveRequest(c.Method(), c.Route().Path, status, elapsed)
		}
		return nil
	}
}
