package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder orden de venta. Igual que en compras, el motor solo mueve los
// contadores de avance de las líneas (AllocatedQty, ShippedQty).
type SalesOrder struct {
	ID          string
	CustomerID  string
	WarehouseID string // bodega desde la que se reserva y despacha
	CreatedAt   time.Time
}

// SalesOrderItem línea de orden de venta.
type SalesOrderItem struct {
	SOID         string
	ProductID    string
	OrderedQty   decimal.Decimal
	AllocatedQty decimal.Decimal
	ShippedQty   decimal.Decimal
	UnitPrice    decimal.Decimal
}

// RemainingToShip cantidad ordenada aún no despachada.
func (i *SalesOrderItem) RemainingToShip() decimal.Decimal {
	return i.OrderedQty.Sub(i.ShippedQty)
}

// OpenAllocation reserva viva de la línea: reservado menos ya despachado.
func (i *SalesOrderItem) OpenAllocation() decimal.Decimal {
	return i.AllocatedQty.Sub(i.ShippedQty)
}
