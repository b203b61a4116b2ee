package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dev-centersport/wms-sub000/internal/application/dto"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
	"github.com/dev-centersport/wms-sub000/internal/domain/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
	"github.com/dev-centersport/wms-sub000/pkg/logger"
)

// SeparationUseCase arma planes de separación (picking) a partir de líneas de pedido.
// Solo lee el ledger: el plan es una recomendación y no reserva stock.
type SeparationUseCase struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	log         *logger.Logger
	metrics     Metrics
}

// NewSeparationUseCase construye el caso de uso.
func NewSeparationUseCase(productRepo repository.ProductRepository, stockRepo repository.StockRepository, opts ...Option) *SeparationUseCase {
	o := buildOptions(opts)
	return &SeparationUseCase{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		log:         o.log.Component("separation"),
		metrics:     o.metrics,
	}
}

// NormalizeSKU recorta espacios y normaliza a NFC para que SKUs equivalentes agrupen juntos.
func NormalizeSKU(sku string) string {
	return inventory.NormalizeSKU(sku)
}

// PlanAllocation agrupa las líneas por SKU (en orden de primera aparición) y, para cada SKU,
// recorre las ubicaciones con stock: primero las de la bodega prioritaria, luego por cantidad
// descendente. Cada ubicación aporta min(pendiente, disponible) y las referencias de pedido
// se asignan en el orden de entrada.
//
// Un error del almacenamiento aborta el plan completo.
func (uc *SeparationUseCase) PlanAllocation(ctx context.Context, lines []entity.OrderLine, priorityWarehouseID string) (*entity.AllocationPlan, error) {
	plan := &entity.AllocationPlan{
		Allocations: []entity.AllocationResult{},
		Unmet:       []entity.UnmetDemand{},
	}

	skus, bySKU := groupBySKU(lines)
	for _, sku := range skus {
		skuLines := bySKU[sku]

		var product *entity.Product
		if sku != "" {
			p, err := uc.productRepo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, fmt.Errorf("buscar producto %q: %w", sku, err)
			}
			product = p
		}
		if product == nil {
			plan.Unmet = append(plan.Unmet, unmet(sku, skuLines, entity.UnmetReasonProductNotFound)...)
			continue
		}

		candidates, err := uc.stockRepo.FindAvailable(ctx, product.ID, repository.StockFilter{})
		if err != nil {
			return nil, fmt.Errorf("stock disponible de %q: %w", sku, err)
		}
		SortCandidates(candidates, priorityWarehouseID)

		allocations, rest := allocateSKU(sku, product.ID, skuLines, candidates)
		plan.Allocations = append(plan.Allocations, allocations...)
		plan.Unmet = append(plan.Unmet, unmet(sku, rest, entity.UnmetReasonInsufficientStock)...)
	}

	var allocated int64
	for _, a := range plan.Allocations {
		allocated += a.QuantityAllocated
	}
	uc.metrics.SeparationPlanned(int(allocated), len(plan.Unmet))
	uc.log.Info().
		Int("lines", len(lines)).
		Int("skus", len(skus)).
		Int("allocations", len(plan.Allocations)).
		Int64("allocated_units", allocated).
		Int("unmet", len(plan.Unmet)).
		Str("priority_warehouse_id", priorityWarehouseID).
		Msg("plan de separación generado")
	return plan, nil
}

// PlanFromRequest adapta el request HTTP a PlanAllocation.
func (uc *SeparationUseCase) PlanFromRequest(ctx context.Context, in dto.SeparationRequest) (*dto.SeparationResponse, error) {
	lines := make([]entity.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.OrderLine{SKU: l.SKU, OrderID: l.OrderID, OrderNumber: l.OrderNumber})
	}
	plan, err := uc.PlanAllocation(ctx, lines, strings.TrimSpace(in.PriorityWarehouseID))
	if err != nil {
		return nil, err
	}
	return ToSeparationResponse(plan), nil
}

// ToSeparationResponse convierte el plan al DTO de salida.
func ToSeparationResponse(plan *entity.AllocationPlan) *dto.SeparationResponse {
	out := &dto.SeparationResponse{
		Allocations: make([]dto.AllocationDTO, 0, len(plan.Allocations)),
		Unmet:       make([]dto.UnmetDemandDTO, 0, len(plan.Unmet)),
	}
	for _, a := range plan.Allocations {
		refs := make([]dto.OrderRefDTO, 0, len(a.FulfilledOrders))
		for _, r := range a.FulfilledOrders {
			refs = append(refs, dto.OrderRefDTO{OrderID: r.OrderID, OrderNumber: r.OrderNumber})
		}
		out.Allocations = append(out.Allocations, dto.AllocationDTO{
			SKU:               a.SKU,
			ProductID:         a.ProductID,
			LocationID:        a.LocationID,
			LocationCode:      a.LocationCode,
			WarehouseID:       a.WarehouseID,
			QuantityAllocated: a.QuantityAllocated,
			FulfilledOrders:   refs,
		})
	}
	for _, u := range plan.Unmet {
		out.Unmet = append(out.Unmet, dto.UnmetDemandDTO{
			SKU:       u.SKU,
			Order:     dto.OrderRefDTO{OrderID: u.Order.OrderID, OrderNumber: u.Order.OrderNumber},
			Reason:    u.Reason,
			Shortfall: u.Shortfall,
		})
	}
	return out
}

// SortCandidates ordena in-place: bodega prioritaria primero, luego cantidad descendente,
// y por último location id para que el plan sea determinista.
func SortCandidates(candidates []entity.AvailableStock, priorityWarehouseID string) {
	sort.SliceStable(candidates, func(i, j int) bool {
		pi := priorityWarehouseID != "" && candidates[i].WarehouseID == priorityWarehouseID
		pj := priorityWarehouseID != "" && candidates[j].WarehouseID == priorityWarehouseID
		if pi != pj {
			return pi
		}
		if candidates[i].Quantity != candidates[j].Quantity {
			return candidates[i].Quantity > candidates[j].Quantity
		}
		return candidates[i].LocationID < candidates[j].LocationID
	})
}

func groupBySKU(lines []entity.OrderLine) ([]string, map[string][]entity.OrderLine) {
	var order []string
	bySKU := make(map[string][]entity.OrderLine)
	for _, l := range lines {
		sku := NormalizeSKU(l.SKU)
		if _, seen := bySKU[sku]; !seen {
			order = append(order, sku)
		}
		bySKU[sku] = append(bySKU[sku], l)
	}
	return order, bySKU
}

// allocateSKU recorre los candidatos ya ordenados. Una ubicación que aparece más de una vez
// se acumula en un único resultado. Devuelve las líneas que quedaron sin stock.
func allocateSKU(sku, productID string, lines []entity.OrderLine, candidates []entity.AvailableStock) ([]entity.AllocationResult, []entity.OrderLine) {
	var results []entity.AllocationResult
	index := make(map[string]int)
	next := 0
	for _, c := range candidates {
		remaining := int64(len(lines) - next)
		if remaining == 0 {
			break
		}
		if c.Quantity <= 0 {
			continue
		}
		take := min(remaining, c.Quantity)

		i, ok := index[c.LocationID]
		if !ok {
			results = append(results, entity.AllocationResult{
				SKU:          sku,
				ProductID:    productID,
				LocationID:   c.LocationID,
				LocationCode: c.LocationCode,
				WarehouseID:  c.WarehouseID,
			})
			i = len(results) - 1
			index[c.LocationID] = i
		}
		r := &results[i]
		r.QuantityAllocated += take
		for _, l := range lines[next : next+int(take)] {
			r.FulfilledOrders = append(r.FulfilledOrders, l.Ref())
		}
		next += int(take)
	}
	return results, lines[next:]
}

func unmet(sku string, lines []entity.OrderLine, reason string) []entity.UnmetDemand {
	if len(lines) == 0 {
		return nil
	}
	shortfall := int64(len(lines))
	out := make([]entity.UnmetDemand, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.UnmetDemand{
			SKU:       sku,
			Order:     l.Ref(),
			Reason:    reason,
			Shortfall: shortfall,
		})
	}
	return out
}
