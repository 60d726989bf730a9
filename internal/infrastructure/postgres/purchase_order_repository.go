package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo adaptador sobre purchase_orders / purchase_order_items
// (usable con pool o tx). El motor solo lee cabeceras y avanza received_qty.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// GetByID obtiene la cabecera de la orden de compra, o nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, poID string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, warehouse_id, created_at
		FROM purchase_orders WHERE id = $1`
	var po entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, poID).Scan(&po.ID, &po.SupplierID, &po.WarehouseID, &po.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &po, nil
}

// GetItemForUpdate obtiene la línea bloqueada (FOR UPDATE), o nil si no existe.
// El bloqueo de la línea antes que el de stock fija el orden de adquisición.
func (r *PurchaseOrderRepo) GetItemForUpdate(ctx context.Context, poID, productID string) (*entity.PurchaseOrderItem, error) {
	query := `
		SELECT po_id, product_id, ordered_qty, received_qty, unit_cost
		FROM purchase_order_items WHERE po_id = $1 AND product_id = $2
		FOR UPDATE`
	var item entity.PurchaseOrderItem
	err := r.q.QueryRow(ctx, query, poID, productID).Scan(
		&item.POID, &item.ProductID, &item.OrderedQty, &item.ReceivedQty, &item.UnitCost,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get po item for update: %w", err)
	}
	return &item, nil
}

// UpdateItemProgress persiste el contador received_qty de la línea.
func (r *PurchaseOrderRepo) UpdateItemProgress(ctx context.Context, item *entity.PurchaseOrderItem) error {
	query := `
		UPDATE purchase_order_items SET received_qty = $3
		WHERE po_id = $1 AND product_id = $2`
	tag, err := r.q.Exec(ctx, query, item.POID, item.ProductID, item.ReceivedQty)
	if err != nil {
		return fmt.Errorf("update po item progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update po item progress: línea %s/%s no existe", item.POID, item.ProductID)
	}
	return nil
}
