package repository

import (
	"context"

	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// LocationRepository resuelve ubicaciones y su bodega. Devuelve nil, nil si no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}
