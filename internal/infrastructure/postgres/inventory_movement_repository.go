package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: solo INSERT y SELECT.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, warehouse_id, movement_type, qty, unit_cost, reference, acted_at, acted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	actedBy := (*string)(nil)
	if movement.ActedBy != "" {
		actedBy = &movement.ActedBy
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.WarehouseID, movement.Type,
		movement.Qty, movement.UnitCost, movement.Reference, movement.ActedAt, actedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento duplicado %s: %w", movement.ID, err)
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListBySKU lista los movimientos de un producto por SKU, más recientes primero.
func (r *InventoryMovementRepo) ListBySKU(ctx context.Context, sku string, limit int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT m.id, m.product_id, m.warehouse_id, m.movement_type, m.qty, m.unit_cost, m.reference, m.acted_at, m.acted_by
		FROM inventory_movements m
		JOIN products p ON p.id = m.product_id
		WHERE p.sku = $1
		ORDER BY m.acted_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, sku, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements by sku: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var actedBy *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.WarehouseID, &m.Type,
			&m.Qty, &m.UnitCost, &m.Reference, &m.ActedAt, &actedBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if actedBy != nil {
			m.ActedBy = *actedBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
