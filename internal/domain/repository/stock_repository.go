package repository

import (
	"context"

	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// StockFilter restringe FindAvailable. Vacío = todas las ubicaciones.
type StockFilter struct {
	WarehouseID string
	LocationIDs []string
}

// StockRepository es el puerto del ledger de stock por (producto, ubicación).
// Cada mutación es una única operación atómica en el almacenamiento; no se cachean cantidades.
type StockRepository interface {
	// GetOrCreate devuelve el registro existente o crea uno en cero.
	GetOrCreate(ctx context.Context, productID, locationID string) (*entity.StockRecord, error)
	// Get devuelve nil, nil si no hay registro.
	Get(ctx context.Context, productID, locationID string) (*entity.StockRecord, error)
	// Increment suma qty (>0), creando el registro si no existe.
	Increment(ctx context.Context, productID, locationID string, qty int64) (*entity.StockRecord, error)
	// Decrement resta qty (>0) solo si quantity >= qty; si no, domain.ErrInsufficientStock
	// y el registro queda intacto.
	Decrement(ctx context.Context, productID, locationID string, qty int64) (*entity.StockRecord, error)
	// FindAvailable lista registros con quantity > 0, de mayor a menor cantidad.
	FindAvailable(ctx context.Context, productID string, filter StockFilter) ([]entity.AvailableStock, error)
	// ListByProduct lista todos los registros del producto, incluidos los que están en cero.
	ListByProduct(ctx context.Context, productID string) ([]entity.StockRecord, error)
}
