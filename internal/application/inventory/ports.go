package inventory

import (
	"context"

	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún cambio aplicado (ni en el ledger ni en el log).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Metrics recibe los eventos del núcleo. La implementación por defecto no hace nada.
type Metrics interface {
	MovementApplied(movementType string)
	MovementRejected(movementType string, err error)
	SeparationPlanned(allocatedUnits, unmetLines int)
}

type nopMetrics struct{}

func (nopMetrics) MovementApplied(string)         {}
func (nopMetrics) MovementRejected(string, error) {}
func (nopMetrics) SeparationPlanned(int, int)     {}
