package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-centersport/wms-sub000/internal/application/dto"
	"github.com/dev-centersport/wms-sub000/internal/application/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/memory"
)

type recordedMetrics struct {
	mu       sync.Mutex
	applied  map[string]int
	rejected map[string]int
	planned  [][2]int
}

func newRecordedMetrics() *recordedMetrics {
	return &recordedMetrics{applied: map[string]int{}, rejected: map[string]int{}}
}

func (m *recordedMetrics) MovementApplied(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied[t]++
}

func (m *recordedMetrics) MovementRejected(t string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[t]++
}

func (m *recordedMetrics) SeparationPlanned(units, unmet int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.planned = append(m.planned, [2]int{units, unmet})
}

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "P", SKU: "X", Name: "Zapatilla"})
	s.AddLocation(entity.Location{ID: "L1", WarehouseID: "W1", Code: "A-01"})
	s.AddLocation(entity.Location{ID: "L2", WarehouseID: "W2", Code: "B-01"})
	s.AddLocation(entity.Location{ID: "L3", WarehouseID: "W2", Code: "B-02"})
	return s
}

func newMovementUC(s *memory.Store, opts ...inventory.Option) *inventory.RegisterMovementUseCase {
	return inventory.NewRegisterMovementUseCase(s.TxRunner(), s.Products(), s.Locations(), s.Stock(), s.Movements(), opts...)
}

func quantity(t *testing.T, s *memory.Store, productID, locationID string) int64 {
	t.Helper()
	rec, err := s.Stock().Get(context.Background(), productID, locationID)
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.Quantity
}

// ── Escenarios del ledger ──────────────────────────────────────────────────

func TestRegisterMovement_Scenarios(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	metrics := newRecordedMetrics()
	uc := newMovementUC(s, inventory.WithMetrics(metrics))

	// 1. entrada de 10 a L1
	mov, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		UserID: "u1", ProductID: "P", Type: entity.MovementTypeENTRY, Quantity: 10, DestinationLocationID: "L1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, mov.ID)
	assert.Equal(t, "u1", mov.CreatedBy)
	assert.Equal(t, int64(10), quantity(t, s, "P", "L1"))

	// 2. salida de 4
	_, err = uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ProductID: "P", Type: entity.MovementTypeEXIT, Quantity: 4, OriginLocationID: "L1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), quantity(t, s, "P", "L1"))

	// 3. salida de 10 con solo 6 disponibles
	_, err = uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ProductID: "P", Type: entity.MovementTypeEXIT, Quantity: 10, OriginLocationID: "L1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(6), quantity(t, s, "P", "L1"), "el ledger queda intacto")

	// 4. traslado completo L1 → L2
	_, err = uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ProductID: "P", Type: entity.MovementTypeTRANSFER, Quantity: 6, OriginLocationID: "L1", DestinationLocationID: "L2",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity(t, s, "P", "L1"))
	assert.Equal(t, int64(6), quantity(t, s, "P", "L2"))

	logged, err := s.Movements().List(ctx, repository.MovementFilter{ProductID: "P"})
	require.NoError(t, err)
	assert.Len(t, logged, 3, "el movimiento rechazado no se registra")

	assert.Equal(t, 1, metrics.applied[entity.MovementTypeENTRY])
	assert.Equal(t, 1, metrics.applied[entity.MovementTypeEXIT])
	assert.Equal(t, 1, metrics.applied[entity.MovementTypeTRANSFER])
	assert.Equal(t, 1, metrics.rejected[entity.MovementTypeEXIT])
}

func TestRegisterMovement_TransferInsufficientIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("P", "L1", 3)
	s.SetStock("P", "L2", 1)
	uc := newMovementUC(s)

	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ProductID: "P", Type: entity.MovementTypeTRANSFER, Quantity: 4, OriginLocationID: "L1", DestinationLocationID: "L2",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), quantity(t, s, "P", "L1"))
	assert.Equal(t, int64(1), quantity(t, s, "P", "L2"), "el destino no recibe nada")

	logged, err := s.Movements().List(ctx, repository.MovementFilter{ProductID: "P"})
	require.NoError(t, err)
	assert.Empty(t, logged)
}

func TestRegisterMovement_TransferOverflowRollsBackDebit(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("P", "L1", 5)
	s.SetStock("P", "L2", math.MaxInt64-2)
	uc := newMovementUC(s)

	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ProductID: "P", Type: entity.MovementTypeTRANSFER, Quantity: 3, OriginLocationID: "L1", DestinationLocationID: "L2",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), quantity(t, s, "P", "L1"), "el débito se descarta")
	assert.Equal(t, int64(math.MaxInt64-2), quantity(t, s, "P", "L2"))
}

func TestRegisterMovement_TransferConservation(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("P", "L1", 9)
	s.SetStock("P", "L2", 4)
	uc := newMovementUC(s)

	before := quantity(t, s, "P", "L1") + quantity(t, s, "P", "L2")
	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ProductID: "P", Type: entity.MovementTypeTRANSFER, Quantity: 5, OriginLocationID: "L1", DestinationLocationID: "L2",
	})
	require.NoError(t, err)
	after := quantity(t, s, "P", "L1") + quantity(t, s, "P", "L2")
	assert.Equal(t, before, after)
}

// ── Validación y referencias ───────────────────────────────────────────────

func TestRegisterMovement_Validation(t *testing.T) {
	ctx := context.Background()
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name  string
		input inventory.MovementInputDTO
		want  error
	}{
		{"tipo desconocido", inventory.MovementInputDTO{ProductID: "P", Type: "ADJUST", Quantity: 1, DestinationLocationID: "L1"}, domain.ErrInvalidMovement},
		{"cantidad cero", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeENTRY, Quantity: 0, DestinationLocationID: "L1"}, domain.ErrInvalidMovement},
		{"sin producto", inventory.MovementInputDTO{Type: entity.MovementTypeENTRY, Quantity: 1, DestinationLocationID: "L1"}, domain.ErrInvalidMovement},
		{"costo negativo", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeENTRY, Quantity: 1, DestinationLocationID: "L1", UnitCost: &negative}, domain.ErrInvalidMovement},
		{"entrada con origen", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeENTRY, Quantity: 1, OriginLocationID: "L1", DestinationLocationID: "L2"}, domain.ErrInvalidMovement},
		{"salida sin origen", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeEXIT, Quantity: 1}, domain.ErrInvalidMovement},
		{"traslado misma ubicación", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeTRANSFER, Quantity: 1, OriginLocationID: "L1", DestinationLocationID: "L1"}, domain.ErrInvalidMovement},
		{"producto inexistente", inventory.MovementInputDTO{ProductID: "nope", Type: entity.MovementTypeENTRY, Quantity: 1, DestinationLocationID: "L1"}, domain.ErrNotFound},
		{"destino inexistente", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeENTRY, Quantity: 1, DestinationLocationID: "L9"}, domain.ErrNotFound},
		// NotFound se reporta antes que la regla del tipo.
		{"salida con destino inexistente", inventory.MovementInputDTO{ProductID: "P", Type: entity.MovementTypeEXIT, Quantity: 1, OriginLocationID: "L1", DestinationLocationID: "L9"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			s.SetStock("P", "L1", 5)
			uc := newMovementUC(s)

			_, err := uc.RegisterMovement(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int64(5), quantity(t, s, "P", "L1"), "un movimiento rechazado no toca el ledger")
		})
	}
}

func TestRegisterMovementFromRequest_NormalizesAndCosts(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	now := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	uc := newMovementUC(s, inventory.WithClock(func() time.Time { return now }))
	cost := decimal.RequireFromString("12.50")

	out, err := uc.RegisterMovementFromRequest(ctx, "u7", dto.RegisterMovementRequest{
		ProductID:             " P ",
		Type:                  "entry",
		Quantity:              4,
		DestinationLocationID: "L1",
		UnitCost:              &cost,
		Reference:             "REC-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeENTRY, out.Type)
	assert.Equal(t, "P", out.ProductID)
	assert.Equal(t, "u7", out.CreatedBy)
	assert.Equal(t, now, out.CreatedAt)
	require.NotNil(t, out.TotalCost)
	assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(50)), "total = 4 * 12.50")
}

// ── Consultas ──────────────────────────────────────────────────────────────

func TestGetStock(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("P", "L1", 0)
	uc := newMovementUC(s)

	rec, err := uc.GetStock(ctx, "P", "L1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity, "un registro en cero existe")

	_, err = uc.GetStock(ctx, "P", "L2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.ListStock(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	list, err := uc.ListStock(ctx, "P")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListMovements_RequiresFilterAndBoundsLimit(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	uc := newMovementUC(s)

	_, err := uc.ListMovements(ctx, repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	for i := 0; i < 3; i++ {
		_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
			ProductID: "P", Type: entity.MovementTypeENTRY, Quantity: 1, DestinationLocationID: "L1",
		})
		require.NoError(t, err)
	}
	got, err := uc.ListMovements(ctx, repository.MovementFilter{LocationID: "L1", Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

// ── Propiedades ────────────────────────────────────────────────────────────

func TestRegisterMovement_ConcurrentExitsNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	s.SetStock("P", "L1", 20)
	uc := newMovementUC(s)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
				ProductID: "P", Type: entity.MovementTypeEXIT, Quantity: 1, OriginLocationID: "L1",
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, accepted)
	assert.Equal(t, int64(0), quantity(t, s, "P", "L1"))
}

func TestRegisterMovement_RandomSequencesKeepLedgerConsistent(t *testing.T) {
	ctx := context.Background()
	faker := gofakeit.New(42)
	locations := []string{"L1", "L2", "L3"}
	types := []string{entity.MovementTypeENTRY, entity.MovementTypeEXIT, entity.MovementTypeTRANSFER}

	s := newStore()
	uc := newMovementUC(s)
	expected := map[string]int64{}

	for i := 0; i < 300; i++ {
		in := inventory.MovementInputDTO{
			ProductID: "P",
			Type:      faker.RandomString(types),
			Quantity:  int64(faker.Number(1, 8)),
		}
		origin := faker.RandomString(locations)
		dest := faker.RandomString(locations)
		switch in.Type {
		case entity.MovementTypeENTRY:
			in.DestinationLocationID = dest
		case entity.MovementTypeEXIT:
			in.OriginLocationID = origin
		case entity.MovementTypeTRANSFER:
			in.OriginLocationID, in.DestinationLocationID = origin, dest
		}

		_, err := uc.RegisterMovement(ctx, in)
		switch {
		case err == nil:
			expected[in.OriginLocationID] -= in.Quantity
			expected[in.DestinationLocationID] += in.Quantity
		case errors.Is(err, domain.ErrInsufficientStock):
			assert.Less(t, expected[in.OriginLocationID], in.Quantity)
		case errors.Is(err, domain.ErrInvalidMovement):
			assert.Equal(t, in.OriginLocationID, in.DestinationLocationID, "solo el traslado a sí mismo es inválido aquí")
		default:
			t.Fatalf("error inesperado: %v", err)
		}

		for _, loc := range locations {
			q := quantity(t, s, "P", loc)
			require.GreaterOrEqual(t, q, int64(0))
			require.Equal(t, expected[loc], q, "paso %d ubicación %s", i, loc)
		}
	}
}
