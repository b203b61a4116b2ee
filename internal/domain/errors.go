package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los errores detallados envuelven estos centinelas con %w; comparar siempre con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidMovement   = errors.New("movimiento inválido")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDuplicate         = errors.New("recurso duplicado")
)
