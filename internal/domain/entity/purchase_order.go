package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder orden de compra. El ciclo de vida (estado, aprobación) lo maneja
// el colaborador de órdenes; el motor solo ajusta ReceivedQty de sus líneas.
type PurchaseOrder struct {
	ID          string
	SupplierID  string
	WarehouseID string // bodega destino de las recepciones
	CreatedAt   time.Time
}

// PurchaseOrderItem línea de orden de compra.
type PurchaseOrderItem struct {
	POID        string
	ProductID   string
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal
	UnitCost    decimal.Decimal // costo pactado de la línea (informativo; la recepción trae el real)
}

// RemainingToReceive cantidad ordenada aún no recibida.
func (i *PurchaseOrderItem) RemainingToReceive() decimal.Decimal {
	return i.OrderedQty.Sub(i.ReceivedQty)
}
