package repository

import (
	"context"

	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// ProductRepository resuelve productos del catálogo (solo lectura para el núcleo).
// Ambos métodos devuelven nil, nil si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
}
