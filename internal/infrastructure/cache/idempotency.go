// Package cache guarda claves Idempotency-Key de las peticiones que mutan el ledger.
package cache

import (
	"context"
	"time"
)

// IdempotencyStore registra claves ya vistas durante un TTL.
type IdempotencyStore interface {
	// MarkProcessed devuelve true si la clave es nueva, false si ya estaba registrada.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release borra la clave para permitir reintentos (p. ej. si la petición falló).
	Release(ctx context.Context, key string) error
	Close() error
}
