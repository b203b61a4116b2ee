package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
	"github.com/dev-centersport/wms-sub000/internal/domain/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
	"github.com/dev-centersport/wms-sub000/pkg/logger"
)

const (
	defaultMovementPage = 50
	maxMovementPage     = 200
)

// RegisterMovementUseCase valida y aplica movimientos (ENTRY, EXIT, TRANSFER) sobre el ledger.
// La mutación del stock y el registro del movimiento ocurren en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	stockRepo    repository.StockRepository
	movRepo      repository.MovementRepository
	log          *logger.Logger
	metrics      Metrics
	now          func() time.Time
}

// Option configura dependencias opcionales de los casos de uso.
type Option func(*options)

type options struct {
	log     *logger.Logger
	metrics Metrics
	now     func() time.Time
}

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics inyecta el receptor de métricas.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Nop(), metrics: nopMetrics{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRegisterMovementUseCase construye el caso de uso.
// stockRepo y movRepo son los repositorios de lectura fuera de transacción (consultas).
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	stockRepo repository.StockRepository,
	movRepo repository.MovementRepository,
	opts ...Option,
) *RegisterMovementUseCase {
	o := buildOptions(opts)
	return &RegisterMovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
		movRepo:      movRepo,
		log:          o.log.Component("movements"),
		metrics:      o.metrics,
		now:          o.now,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// ENTRY: DestinationLocationID. EXIT: OriginLocationID. TRANSFER: ambos.
type MovementInputDTO struct {
	UserID                string
	ProductID             string
	Type                  string
	Quantity              int64
	OriginLocationID      string
	DestinationLocationID string
	UnitCost              *decimal.Decimal
	Reference             string
}

// RegisterMovement valida el movimiento, lo aplica al ledger y persiste el registro.
// Errores: domain.ErrInvalidMovement, domain.ErrNotFound, domain.ErrInsufficientStock,
// o el error del almacenamiento tal cual. No reintenta.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.Movement, error) {
	mov, err := uc.register(ctx, input)
	if err != nil {
		uc.metrics.MovementRejected(input.Type, err)
		uc.log.Debug().Err(err).
			Str("type", input.Type).
			Str("product_id", input.ProductID).
			Int64("quantity", input.Quantity).
			Msg("movimiento rechazado")
		return nil, err
	}
	uc.metrics.MovementApplied(mov.Type)
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("type", mov.Type).
		Str("product_id", mov.ProductID).
		Str("origin", mov.OriginLocationID).
		Str("destination", mov.DestinationLocationID).
		Int64("quantity", mov.Quantity).
		Msg("movimiento aplicado")
	return mov, nil
}

func (uc *RegisterMovementUseCase) register(ctx context.Context, input MovementInputDTO) (*entity.Movement, error) {
	if err := inventory.ValidateBasics(input.Type, input.Quantity); err != nil {
		return nil, err
	}
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: el movimiento requiere producto", domain.ErrInvalidMovement)
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: el costo unitario no puede ser negativo", domain.ErrInvalidMovement)
	}

	// Las referencias inexistentes se reportan antes que las reglas del tipo.
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, input.ProductID)
	}
	for _, locationID := range []string{input.OriginLocationID, input.DestinationLocationID} {
		if locationID == entity.NoLocation {
			continue
		}
		loc, err := uc.locationRepo.GetByID(ctx, locationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
		}
	}

	if err := inventory.ValidateEndpoints(input.Type, input.OriginLocationID, input.DestinationLocationID); err != nil {
		return nil, err
	}

	mov := &entity.Movement{
		ID:                    uuid.New().String(),
		Type:                  input.Type,
		ProductID:             input.ProductID,
		OriginLocationID:      input.OriginLocationID,
		DestinationLocationID: input.DestinationLocationID,
		Quantity:              input.Quantity,
		UnitCost:              input.UnitCost,
		Reference:             input.Reference,
		CreatedBy:             input.UserID,
		CreatedAt:             uc.now().UTC(),
	}

	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.MovementRepository,
	) error {
		if err := apply(ctx, stockRepo, mov); err != nil {
			return err
		}
		// El log solo se escribe cuando el ledger ya aceptó el cambio.
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// apply traduce el movimiento a operaciones del ledger. En TRANSFER el débito va primero:
// si falla, el crédito no se ejecuta y la transacción se descarta.
func apply(ctx context.Context, stockRepo repository.StockRepository, mov *entity.Movement) error {
	switch mov.Type {
	case entity.MovementTypeENTRY:
		_, err := stockRepo.Increment(ctx, mov.ProductID, mov.DestinationLocationID, mov.Quantity)
		return err
	case entity.MovementTypeEXIT:
		_, err := stockRepo.Decrement(ctx, mov.ProductID, mov.OriginLocationID, mov.Quantity)
		return err
	case entity.MovementTypeTRANSFER:
		if _, err := stockRepo.Decrement(ctx, mov.ProductID, mov.OriginLocationID, mov.Quantity); err != nil {
			return err
		}
		_, err := stockRepo.Increment(ctx, mov.ProductID, mov.DestinationLocationID, mov.Quantity)
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidMovement, inventory.RuleUnknownType)
}

// GetStock devuelve el registro del ledger para (producto, ubicación).
// Sin registro → domain.ErrNotFound; un registro en cero se devuelve normalmente.
func (uc *RegisterMovementUseCase) GetStock(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	rec, err := uc.stockRepo.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: sin stock registrado para %s en %s", domain.ErrNotFound, productID, locationID)
	}
	return rec, nil
}

// ListStock lista todos los registros de un producto, incluidos los que están en cero.
func (uc *RegisterMovementUseCase) ListStock(ctx context.Context, productID string) ([]entity.StockRecord, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id es obligatorio", domain.ErrInvalidInput)
	}
	return uc.stockRepo.ListByProduct(ctx, productID)
}

// ListMovements consulta el log por producto o por ubicación, con paginación acotada.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.ProductID == "" && filter.LocationID == "" {
		return nil, fmt.Errorf("%w: indicar product_id o location_id", domain.ErrInvalidInput)
	}
	return uc.movRepo.List(ctx, NormalizePage(filter))
}

// NormalizePage aplica el límite por defecto (50) y el máximo (200) al filtro.
func NormalizePage(filter repository.MovementFilter) repository.MovementFilter {
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementPage
	}
	if filter.Limit > maxMovementPage {
		filter.Limit = maxMovementPage
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}
