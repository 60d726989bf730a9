package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo adaptador sobre sales_orders / sales_order_items (usable con pool o tx).
// El motor avanza allocated_qty y shipped_qty; el estado de la orden no se toca.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// GetByID obtiene la cabecera de la orden de venta, o nil si no existe.
func (r *SalesOrderRepo) GetByID(ctx context.Context, soID string) (*entity.SalesOrder, error) {
	query := `
		SELECT id, customer_id, warehouse_id, created_at
		FROM sales_orders WHERE id = $1`
	var so entity.SalesOrder
	err := r.q.QueryRow(ctx, query, soID).Scan(&so.ID, &so.CustomerID, &so.WarehouseID, &so.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return &so, nil
}

// GetItemForUpdate obtiene la línea bloqueada (FOR UPDATE), o nil si no existe.
func (r *SalesOrderRepo) GetItemForUpdate(ctx context.Context, soID, productID string) (*entity.SalesOrderItem, error) {
	query := `
		SELECT so_id, product_id, ordered_qty, allocated_qty, shipped_qty, unit_price
		FROM sales_order_items WHERE so_id = $1 AND product_id = $2
		FOR UPDATE`
	var item entity.SalesOrderItem
	err := r.q.QueryRow(ctx, query, soID, productID).Scan(
		&item.SOID, &item.ProductID, &item.OrderedQty, &item.AllocatedQty, &item.ShippedQty, &item.UnitPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get so item for update: %w", err)
	}
	return &item, nil
}

// UpdateItemProgress persiste los contadores allocated_qty y shipped_qty de la línea.
func (r *SalesOrderRepo) UpdateItemProgress(ctx context.Context, item *entity.SalesOrderItem) error {
	query := `
		UPDATE sales_order_items SET allocated_qty = $3, shipped_qty = $4
		WHERE so_id = $1 AND product_id = $2`
	tag, err := r.q.Exec(ctx, query, item.SOID, item.ProductID, item.AllocatedQty, item.ShippedQty)
	if err != nil {
		return fmt.Errorf("update so item progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update so item progress: línea %s/%s no existe", item.SOID, item.ProductID)
	}
	return nil
}
