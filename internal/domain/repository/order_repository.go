package repository

import (
	"context"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
)

// PurchaseOrderRepository puerto sobre órdenes de compra. El motor solo lee la
// cabecera (para resolver la bodega destino) y avanza ReceivedQty de la línea.
type PurchaseOrderRepository interface {
	// GetByID devuelve la cabecera o nil si no existe.
	GetByID(ctx context.Context, poID string) (*entity.PurchaseOrder, error)
	// GetItemForUpdate devuelve la línea bloqueada (FOR UPDATE) o nil si no existe.
	GetItemForUpdate(ctx context.Context, poID, productID string) (*entity.PurchaseOrderItem, error)
	// UpdateItemProgress persiste el contador ReceivedQty de la línea.
	UpdateItemProgress(ctx context.Context, item *entity.PurchaseOrderItem) error
}

// SalesOrderRepository puerto sobre órdenes de venta. El motor avanza
// AllocatedQty/ShippedQty; el estado de la orden es del colaborador de órdenes.
type SalesOrderRepository interface {
	// GetByID devuelve la cabecera o nil si no existe.
	GetByID(ctx context.Context, soID string) (*entity.SalesOrder, error)
	// GetItemForUpdate devuelve la línea bloqueada (FOR UPDATE) o nil si no existe.
	GetItemForUpdate(ctx context.Context, soID, productID string) (*entity.SalesOrderItem, error)
	// UpdateItemProgress persiste los contadores AllocatedQty y ShippedQty de la línea.
	UpdateItemProgress(ctx context.Context, item *entity.SalesOrderItem) error
}
