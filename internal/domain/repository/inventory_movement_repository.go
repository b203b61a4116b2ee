package repository

import (
	"context"
	"time"

	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// MovementFilter criterios para listar el log de movimientos.
// ProductID o LocationID (origen o destino) debe venir informado.
type MovementFilter struct {
	ProductID  string
	LocationID string
	From, To   *time.Time
	Limit      int
	Offset     int
}

// MovementRepository define el puerto de persistencia del log de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
