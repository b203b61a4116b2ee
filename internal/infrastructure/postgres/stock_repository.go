package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
	"github.com/dev-centersport/wms-sub000/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, location_id, quantity, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// Las mutaciones son sentencias únicas: no hay lectura previa en la aplicación.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	if err := row.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate devuelve el registro, creándolo en cero si no existe.
func (r *StockRepo) GetOrCreate(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	query := `
		INSERT INTO stock (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, locationID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: producto o ubicación", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get or create stock: %w", err)
	}
	s, err := r.Get(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("get or create stock: registro no visible tras insertar")
	}
	return s, nil
}

// Get obtiene el registro de un producto en una ubicación; nil, nil si no existe.
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND location_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// Increment suma qty con un upsert atómico.
func (r *StockRepo) Increment(ctx context.Context, productID, locationID string, qty int64) (*entity.StockRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: cantidad a sumar debe ser positiva", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO stock (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING ` + stockColumns
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, locationID, qty))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: producto o ubicación", domain.ErrNotFound)
		}
		if isNumericOutOfRange(err) {
			return nil, fmt.Errorf("%w: la cantidad resultante excede el máximo", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return s, nil
}

// Decrement resta qty solo si alcanza. Sin fila afectada → domain.ErrInsufficientStock.
func (r *StockRepo) Decrement(ctx context.Context, productID, locationID string, qty int64) (*entity.StockRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: cantidad a restar debe ser positiva", domain.ErrInvalidInput)
	}
	query := `
		UPDATE stock SET quantity = quantity - $3, updated_at = now()
		WHERE product_id = $1 AND location_id = $2 AND quantity >= $3
		RETURNING ` + stockColumns
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, locationID, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return nil, domain.ErrInsufficientStock
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	return s, nil
}

// FindAvailable lista ubicaciones con stock positivo junto con su bodega.
func (r *StockRepo) FindAvailable(ctx context.Context, productID string, filter repository.StockFilter) ([]entity.AvailableStock, error) {
	query := `
		SELECT s.product_id, s.location_id, s.quantity, s.updated_at, l.warehouse_id, l.code
		FROM stock s
		JOIN locations l ON l.id = s.location_id
		WHERE s.product_id = $1 AND s.quantity > 0`
	args := []any{productID}
	pos := 2
	if filter.WarehouseID != "" {
		query += fmt.Sprintf(" AND l.warehouse_id = $%d", pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	if len(filter.LocationIDs) > 0 {
		query += fmt.Sprintf(" AND s.location_id = ANY($%d)", pos)
		args = append(args, filter.LocationIDs)
	}
	query += " ORDER BY s.quantity DESC, s.location_id ASC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find available stock: %w", err)
	}
	defer rows.Close()
	list := []entity.AvailableStock{}
	for rows.Next() {
		var a entity.AvailableStock
		if err := rows.Scan(&a.ProductID, &a.LocationID, &a.Quantity, &a.UpdatedAt, &a.WarehouseID, &a.LocationCode); err != nil {
			return nil, fmt.Errorf("scan available stock: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListByProduct lista todos los registros de un producto, incluidos los que están en cero.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 ORDER BY location_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock by product: %w", err)
	}
	defer rows.Close()
	list := []entity.StockRecord{}
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
