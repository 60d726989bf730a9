package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

func emptyLevel(productID, warehouseID string) *entity.StockLevel {
	return &entity.StockLevel{
		ProductID:   productID,
		WarehouseID: warehouseID,
		OnHand:      decimal.Zero,
		Allocated:   decimal.Zero,
		AvgCost:     decimal.Zero,
	}
}

// Get obtiene el stock actual de un producto en una bodega. Si la fila no existe
// todavía devuelve una fila en cero (creación perezosa en el primer Upsert).
func (r *StockLevelRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, warehouse_id, on_hand, allocated, avg_cost, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.OnHand, &s.Allocated, &s.AvgCost, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return emptyLevel(productID, warehouseID), nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT ... FOR UPDATE) para
// serializar las operaciones concurrentes sobre el mismo par (producto, bodega).
// Si la fila no existe todavía, primero la materializa en cero: FOR UPDATE sobre
// cero filas no adquiere ningún bloqueo, y dos primeras operaciones concurrentes
// sobre el mismo par se pisarían mutuamente.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	ensure := `
		INSERT INTO stock_levels (product_id, warehouse_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("materialize stock level: %w", err)
	}

	query := `
		SELECT product_id, warehouse_id, on_hand, allocated, avg_cost, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.OnHand, &s.Allocated, &s.AvgCost, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la fila de stock (por producto y bodega).
func (r *StockLevelRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (product_id, warehouse_id, on_hand, allocated, avg_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, allocated = EXCLUDED.allocated,
		              avg_cost = EXCLUDED.avg_cost, updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		level.ProductID, level.WarehouseID, level.OnHand, level.Allocated, level.AvgCost,
	)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}
