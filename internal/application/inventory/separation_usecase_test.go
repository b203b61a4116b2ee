package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-centersport/wms-sub000/internal/application/dto"
	"github.com/dev-centersport/wms-sub000/internal/application/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
	"github.com/dev-centersport/wms-sub000/internal/infrastructure/memory"
)

func orderLines(sku string, n int) []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, n)
	for i := 1; i <= n; i++ {
		lines = append(lines, entity.OrderLine{SKU: sku, OrderID: fmt.Sprintf("o%d", i), OrderNumber: fmt.Sprintf("PED-%03d", i)})
	}
	return lines
}

func newSeparationUC(s *memory.Store, opts ...inventory.Option) *inventory.SeparationUseCase {
	return inventory.NewSeparationUseCase(s.Products(), s.Stock(), opts...)
}

func totalAllocated(plan *entity.AllocationPlan, sku string) int64 {
	var sum int64
	for _, a := range plan.Allocations {
		if a.SKU == sku {
			sum += a.QuantityAllocated
		}
	}
	return sum
}

// ── Escenarios ─────────────────────────────────────────────────────────────

func TestPlanAllocation_PriorityWarehouseFirst(t *testing.T) {
	s := newStore()
	s.SetStock("P", "L1", 5)  // W1
	s.SetStock("P", "L2", 10) // W2 (prioritaria)
	uc := newSeparationUC(s)

	plan, err := uc.PlanAllocation(context.Background(), orderLines("X", 8), "W2")
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	a := plan.Allocations[0]
	assert.Equal(t, "L2", a.LocationID)
	assert.Equal(t, "W2", a.WarehouseID)
	assert.Equal(t, "P", a.ProductID)
	assert.Equal(t, int64(8), a.QuantityAllocated)
	require.Len(t, a.FulfilledOrders, 8)
	assert.Equal(t, "o1", a.FulfilledOrders[0].OrderID, "refs en orden de entrada")
	assert.Equal(t, "o8", a.FulfilledOrders[7].OrderID)
	assert.Empty(t, plan.Unmet)

	assert.Equal(t, int64(10), quantity(t, s, "P", "L2"), "planificar no reserva stock")
}

func TestPlanAllocation_InsufficientStock(t *testing.T) {
	s := newStore()
	s.AddProduct(entity.Product{ID: "PY", SKU: "Y"})
	s.SetStock("PY", "L1", 5)
	s.SetStock("PY", "L3", 3)
	uc := newSeparationUC(s)

	plan, err := uc.PlanAllocation(context.Background(), orderLines("Y", 20), "")
	require.NoError(t, err)

	assert.Equal(t, int64(8), totalAllocated(plan, "Y"))
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "L1", plan.Allocations[0].LocationID, "mayor cantidad primero")
	assert.Equal(t, []entity.OrderRef{{OrderID: "o6", OrderNumber: "PED-006"}, {OrderID: "o7", OrderNumber: "PED-007"}, {OrderID: "o8", OrderNumber: "PED-008"}},
		plan.Allocations[1].FulfilledOrders)

	require.Len(t, plan.Unmet, 12)
	for _, u := range plan.Unmet {
		assert.Equal(t, entity.UnmetReasonInsufficientStock, u.Reason)
		assert.Equal(t, int64(12), u.Shortfall)
	}
	assert.Equal(t, "o9", plan.Unmet[0].Order.OrderID)
	assert.Equal(t, "o20", plan.Unmet[11].Order.OrderID)
}

func TestPlanAllocation_ProductNotFound(t *testing.T) {
	s := newStore()
	s.SetStock("P", "L1", 2)
	uc := newSeparationUC(s)

	lines := append(orderLines("NOPE", 2), entity.OrderLine{SKU: "X", OrderID: "ox", OrderNumber: "PED-X"})
	lines = append(lines, entity.OrderLine{SKU: "   ", OrderID: "blank"})
	plan, err := uc.PlanAllocation(context.Background(), lines, "")
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "X", plan.Allocations[0].SKU)
	require.Len(t, plan.Unmet, 3)
	for _, u := range plan.Unmet {
		assert.Equal(t, entity.UnmetReasonProductNotFound, u.Reason)
	}
	assert.Equal(t, "NOPE", plan.Unmet[0].SKU)
	assert.Equal(t, "blank", plan.Unmet[2].Order.OrderID)
}

func TestPlanAllocation_EmptyInput(t *testing.T) {
	uc := newSeparationUC(newStore())
	plan, err := uc.PlanAllocation(context.Background(), nil, "W1")
	require.NoError(t, err)
	assert.NotNil(t, plan.Allocations)
	assert.NotNil(t, plan.Unmet)
	assert.Empty(t, plan.Allocations)
	assert.Empty(t, plan.Unmet)
}

func TestPlanAllocation_NormalizesSKU(t *testing.T) {
	s := newStore()
	s.AddProduct(entity.Product{ID: "PC", SKU: "CAF\u00c9-1"})
	s.SetStock("PC", "L1", 5)
	uc := newSeparationUC(s)

	// "E" + acento combinante (NFD) y espacios alrededor.
	lines := []entity.OrderLine{
		{SKU: " CAFE\u0301-1 ", OrderID: "o1"},
		{SKU: "CAF\u00c9-1", OrderID: "o2"},
	}
	plan, err := uc.PlanAllocation(context.Background(), lines, "")
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, int64(2), plan.Allocations[0].QuantityAllocated)
	assert.Empty(t, plan.Unmet)
}

func TestPlanAllocation_CatalogSKUInNFD(t *testing.T) {
	s := newStore()
	s.AddProduct(entity.Product{ID: "PD", SKU: "CAFE\u0301-1"})
	s.SetStock("PD", "L1", 3)
	uc := newSeparationUC(s)

	lines := []entity.OrderLine{
		{SKU: "CAFE\u0301-1", OrderID: "o1"},
		{SKU: "CAF\u00c9-1", OrderID: "o2"},
	}
	plan, err := uc.PlanAllocation(context.Background(), lines, "")
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "PD", plan.Allocations[0].ProductID)
	assert.Equal(t, int64(2), plan.Allocations[0].QuantityAllocated)
	assert.Empty(t, plan.Unmet)
}

func TestPlanAllocation_StorageErrorAbortsPlan(t *testing.T) {
	boom := errors.New("conexión perdida")
	uc := inventory.NewSeparationUseCase(newStore().Products(), failingStock{err: boom})

	plan, err := uc.PlanAllocation(context.Background(), orderLines("X", 1), "")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, plan)
}

type failingStock struct {
	repository.StockRepository
	err error
}

func (f failingStock) FindAvailable(context.Context, string, repository.StockFilter) ([]entity.AvailableStock, error) {
	return nil, f.err
}

// ── Orden de candidatos ────────────────────────────────────────────────────

func TestSortCandidates(t *testing.T) {
	mk := func(loc, wh string, q int64) entity.AvailableStock {
		return entity.AvailableStock{StockRecord: entity.StockRecord{LocationID: loc, Quantity: q}, WarehouseID: wh}
	}
	ids := func(c []entity.AvailableStock) []string {
		out := make([]string, len(c))
		for i := range c {
			out[i] = c[i].LocationID
		}
		return out
	}

	c := []entity.AvailableStock{mk("L1", "W1", 5), mk("L2", "W2", 5), mk("L3", "W1", 9)}
	inventory.SortCandidates(c, "W2")
	assert.Equal(t, []string{"L2", "L3", "L1"}, ids(c), "igual cantidad: gana la bodega prioritaria")

	c = []entity.AvailableStock{mk("L1", "W1", 5), mk("L2", "W2", 5), mk("L3", "W1", 9)}
	inventory.SortCandidates(c, "")
	assert.Equal(t, []string{"L3", "L1", "L2"}, ids(c), "sin prioridad: mayor cantidad, luego id")

	c = []entity.AvailableStock{mk("L1", "W1", 5), mk("L2", "W2", 5)}
	inventory.SortCandidates(c, "W9")
	assert.Equal(t, []string{"L1", "L2"}, ids(c), "bodega prioritaria sin stock no altera el orden")
}

// ── Propiedades ────────────────────────────────────────────────────────────

func TestPlanAllocation_ConservationAndBoundedness(t *testing.T) {
	faker := gofakeit.New(7)
	skus := []string{"A", "B", "C", "GHOST"}

	for round := 0; round < 25; round++ {
		s := newStore()
		available := map[string]map[string]int64{}
		for _, sku := range skus[:3] {
			id := "prod-" + sku
			s.AddProduct(entity.Product{ID: id, SKU: sku})
			available[sku] = map[string]int64{}
			for _, loc := range []string{"L1", "L2", "L3"} {
				q := int64(faker.Number(0, 6))
				s.SetStock(id, loc, q)
				available[sku][loc] = q
			}
		}

		demand := map[string]int{}
		var lines []entity.OrderLine
		for i := 0; i < faker.Number(0, 40); i++ {
			sku := faker.RandomString(skus)
			demand[sku]++
			lines = append(lines, entity.OrderLine{SKU: sku, OrderID: fmt.Sprintf("o%d", i)})
		}

		plan, err := newSeparationUC(s).PlanAllocation(context.Background(), lines, faker.RandomString([]string{"", "W1", "W2"}))
		require.NoError(t, err)

		unmet := map[string]int{}
		for _, u := range plan.Unmet {
			unmet[u.SKU]++
		}
		seen := map[string]bool{}
		for _, a := range plan.Allocations {
			key := a.SKU + "|" + a.LocationID
			assert.False(t, seen[key], "un solo bucket por (sku, ubicación)")
			seen[key] = true
			assert.Positive(t, a.QuantityAllocated)
			assert.LessOrEqual(t, a.QuantityAllocated, available[a.SKU][a.LocationID])
			assert.Len(t, a.FulfilledOrders, int(a.QuantityAllocated))
		}
		for sku, n := range demand {
			assert.Equal(t, int64(n), totalAllocated(plan, sku)+int64(unmet[sku]), "ronda %d sku %s", round, sku)
		}
	}
}

func TestPlanFromRequest(t *testing.T) {
	s := newStore()
	s.SetStock("P", "L1", 1)
	metrics := newRecordedMetrics()
	uc := newSeparationUC(s, inventory.WithMetrics(metrics))

	out, err := uc.PlanFromRequest(context.Background(), dto.SeparationRequest{
		PriorityWarehouseID: " W1 ",
		Lines: []dto.SeparationLineRequest{
			{SKU: "X", OrderID: "o1", OrderNumber: "PED-1"},
			{SKU: "X", OrderID: "o2", OrderNumber: "PED-2"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Allocations, 1)
	assert.Equal(t, "A-01", out.Allocations[0].LocationCode)
	assert.Equal(t, []dto.OrderRefDTO{{OrderID: "o1", OrderNumber: "PED-1"}}, out.Allocations[0].FulfilledOrders)
	require.Len(t, out.Unmet, 1)
	assert.Equal(t, dto.OrderRefDTO{OrderID: "o2", OrderNumber: "PED-2"}, out.Unmet[0].Order)
	assert.Equal(t, [][2]int{{1, 1}}, metrics.planned)
}
