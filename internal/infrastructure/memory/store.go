// Package memory implementa los puertos del núcleo de stock en memoria.
// Se usa con STORAGE_DRIVER=memory (desarrollo) y en los tests de casos de uso.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/dev-centersport/wms-sub000/internal/application/inventory"
	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
)

type stockKey struct {
	productID  string
	locationID string
}

// Store guarda catálogo, ledger y log bajo un único mutex.
// Cada llamada fuera de transacción es atómica por sí misma; TxRunner serializa
// transacciones completas y solo publica sus cambios si fn no devuelve error.
type Store struct {
	mu        sync.Mutex
	products  map[string]entity.Product
	skus      map[string]string
	locations map[string]entity.Location
	stock     map[stockKey]entity.StockRecord
	movements []entity.Movement
	now       func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]entity.Product),
		skus:      make(map[string]string),
		locations: make(map[string]entity.Location),
		stock:     make(map[stockKey]entity.StockRecord),
		now:       time.Now,
	}
}

// AddProduct registra un producto en el catálogo (semilla).
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.skus[inventory.NormalizeSKU(p.SKU)] = p.ID
}

// AddLocation registra una ubicación (semilla).
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = l
}

// SetStock fija la cantidad de un registro sin pasar por movimientos (semilla de tests).
func (s *Store) SetStock(productID, locationID string, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey{productID, locationID}] = entity.StockRecord{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
		UpdatedAt:  s.now().UTC(),
	}
}

// Products devuelve el repositorio de catálogo.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Locations devuelve el repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Stock devuelve el ledger fuera de transacción.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Movements devuelve el log fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// TxRunner devuelve el runner transaccional.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// run ejecuta fn sobre una vista aislada y la publica solo si no hubo error.
func (s *Store) run(ctx context.Context, fn func(v *view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &view{s: s, stock: make(map[stockKey]entity.StockRecord)}
	if err := fn(v); err != nil {
		return err
	}
	for k, rec := range v.stock {
		s.stock[k] = rec
	}
	s.movements = append(s.movements, v.movements...)
	return nil
}

// view acumula escrituras pendientes sobre el estado publicado (copy-on-write).
type view struct {
	s         *Store
	stock     map[stockKey]entity.StockRecord
	movements []entity.Movement
}

func (v *view) get(k stockKey) (entity.StockRecord, bool) {
	if rec, ok := v.stock[k]; ok {
		return rec, true
	}
	rec, ok := v.s.stock[k]
	return rec, ok
}

func (v *view) put(rec entity.StockRecord) entity.StockRecord {
	rec.UpdatedAt = v.s.now().UTC()
	v.stock[stockKey{rec.ProductID, rec.LocationID}] = rec
	return rec
}

func (v *view) getOrCreate(productID, locationID string) entity.StockRecord {
	k := stockKey{productID, locationID}
	if rec, ok := v.get(k); ok {
		return rec
	}
	return v.put(entity.StockRecord{ProductID: productID, LocationID: locationID})
}

func (v *view) increment(productID, locationID string, qty int64) (*entity.StockRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	rec := v.getOrCreate(productID, locationID)
	if qty > math.MaxInt64-rec.Quantity {
		return nil, fmt.Errorf("%w: la cantidad resultante excede el máximo", domain.ErrInvalidInput)
	}
	rec.Quantity += qty
	rec = v.put(rec)
	return &rec, nil
}

func (v *view) decrement(productID, locationID string, qty int64) (*entity.StockRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	rec, ok := v.get(stockKey{productID, locationID})
	if !ok || rec.Quantity < qty {
		return nil, domain.ErrInsufficientStock
	}
	rec.Quantity -= qty
	rec = v.put(rec)
	return &rec, nil
}

// records devuelve el estado visible (publicado + pendiente) de un producto.
func (v *view) records(productID string) []entity.StockRecord {
	seen := make(map[stockKey]bool)
	var out []entity.StockRecord
	for k, rec := range v.stock {
		if k.productID == productID {
			seen[k] = true
			out = append(out, rec)
		}
	}
	for k, rec := range v.s.stock {
		if k.productID == productID && !seen[k] {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out
}

func (v *view) findAvailable(productID string, filter repository.StockFilter) []entity.AvailableStock {
	allowed := make(map[string]bool, len(filter.LocationIDs))
	for _, id := range filter.LocationIDs {
		allowed[id] = true
	}
	out := []entity.AvailableStock{}
	for _, rec := range v.records(productID) {
		if rec.Quantity <= 0 {
			continue
		}
		if len(allowed) > 0 && !allowed[rec.LocationID] {
			continue
		}
		loc := v.s.locations[rec.LocationID]
		if filter.WarehouseID != "" && loc.WarehouseID != filter.WarehouseID {
			continue
		}
		out = append(out, entity.AvailableStock{
			StockRecord:  rec,
			WarehouseID:  loc.WarehouseID,
			LocationCode: loc.Code,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out
}

func (v *view) movement(id string) *entity.Movement {
	for _, list := range [][]entity.Movement{v.movements, v.s.movements} {
		for i := range list {
			if list[i].ID == id {
				m := list[i]
				return &m
			}
		}
	}
	return nil
}

func (v *view) listMovements(filter repository.MovementFilter) []*entity.Movement {
	all := append(append([]entity.Movement{}, v.s.movements...), v.movements...)
	var matched []*entity.Movement
	for i := range all {
		m := all[i]
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.LocationID != "" && m.OriginLocationID != filter.LocationID && m.DestinationLocationID != filter.LocationID {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, &m)
	}
	// Más recientes primero, igual que el repositorio postgres.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if filter.Offset >= len(matched) {
		return []*entity.Movement{}
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched
}

// ── Repositorios ───────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetBySKU compara SKUs normalizados. Devuelve nil, nil si no existe.
func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.skus[inventory.NormalizeSKU(sku)]
	if !ok {
		return nil, nil
	}
	p := r.s.products[id]
	return &p, nil
}

// LocationRepo implementa repository.LocationRepository.
type LocationRepo struct{ s *Store }

var _ repository.LocationRepository = (*LocationRepo)(nil)

// GetByID devuelve nil, nil si no existe.
func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// StockRepo implementa repository.StockRepository; cada método es su propia transacción.
type StockRepo struct{ s *Store }

var _ repository.StockRepository = (*StockRepo)(nil)

func (r *StockRepo) GetOrCreate(ctx context.Context, productID, locationID string) (out *entity.StockRecord, err error) {
	err = r.s.run(ctx, func(v *view) error {
		rec := v.getOrCreate(productID, locationID)
		out = &rec
		return nil
	})
	return out, err
}

func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (out *entity.StockRecord, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out, err = stockTx{v}.Get(ctx, productID, locationID)
		return err
	})
	return out, err
}

func (r *StockRepo) Increment(ctx context.Context, productID, locationID string, qty int64) (out *entity.StockRecord, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out, err = v.increment(productID, locationID, qty)
		return err
	})
	return out, err
}

func (r *StockRepo) Decrement(ctx context.Context, productID, locationID string, qty int64) (out *entity.StockRecord, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out, err = v.decrement(productID, locationID, qty)
		return err
	})
	return out, err
}

func (r *StockRepo) FindAvailable(ctx context.Context, productID string, filter repository.StockFilter) (out []entity.AvailableStock, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out = v.findAvailable(productID, filter)
		return nil
	})
	return out, err
}

func (r *StockRepo) ListByProduct(ctx context.Context, productID string) (out []entity.StockRecord, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out = v.records(productID)
		if out == nil {
			out = []entity.StockRecord{}
		}
		return nil
	})
	return out, err
}

// MovementRepo implementa repository.MovementRepository fuera de transacción.
type MovementRepo struct{ s *Store }

var _ repository.MovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.s.run(ctx, func(v *view) error { return movementTx{v}.Create(ctx, m) })
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (out *entity.Movement, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out = v.movement(id)
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) (out []*entity.Movement, err error) {
	err = r.s.run(ctx, func(v *view) error {
		out = v.listMovements(filter)
		return nil
	})
	return out, err
}

// ── Transacciones ──────────────────────────────────────────────────────────

// TxRunner implementa inventory.TxRunner.
type TxRunner struct{ s *Store }

var _ inventory.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn con repositorios atados a una vista; si fn falla, nada se publica.
func (t *TxRunner) Run(ctx context.Context, fn func(repository.StockRepository, repository.MovementRepository) error) error {
	return t.s.run(ctx, func(v *view) error {
		return fn(stockTx{v}, movementTx{v})
	})
}

var (
	_ repository.StockRepository    = stockTx{}
	_ repository.MovementRepository = movementTx{}
)

// stockTx opera sobre una vista ya bloqueada (no vuelve a tomar el mutex).
type stockTx struct{ v *view }

func (t stockTx) GetOrCreate(_ context.Context, productID, locationID string) (*entity.StockRecord, error) {
	rec := t.v.getOrCreate(productID, locationID)
	return &rec, nil
}

func (t stockTx) Get(_ context.Context, productID, locationID string) (*entity.StockRecord, error) {
	rec, ok := t.v.get(stockKey{productID, locationID})
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (t stockTx) Increment(_ context.Context, productID, locationID string, qty int64) (*entity.StockRecord, error) {
	return t.v.increment(productID, locationID, qty)
}

func (t stockTx) Decrement(_ context.Context, productID, locationID string, qty int64) (*entity.StockRecord, error) {
	return t.v.decrement(productID, locationID, qty)
}

func (t stockTx) FindAvailable(_ context.Context, productID string, filter repository.StockFilter) ([]entity.AvailableStock, error) {
	return t.v.findAvailable(productID, filter), nil
}

func (t stockTx) ListByProduct(_ context.Context, productID string) ([]entity.StockRecord, error) {
	out := t.v.records(productID)
	if out == nil {
		out = []entity.StockRecord{}
	}
	return out, nil
}

type movementTx struct{ v *view }

func (t movementTx) Create(_ context.Context, m *entity.Movement) error {
	if m == nil || m.ID == "" {
		return domain.ErrInvalidInput
	}
	if t.v.movement(m.ID) != nil {
		return domain.ErrDuplicate
	}
	t.v.movements = append(t.v.movements, *m)
	return nil
}

func (t movementTx) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	return t.v.movement(id), nil
}

func (t movementTx) List(_ context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	return t.v.listMovements(filter), nil
}
