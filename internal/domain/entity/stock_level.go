package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa el estado de stock de un producto en una bodega.
// OnHand nunca queda negativo; Allocated es la reserva blanda acumulada de
// órdenes de venta (no descuenta OnHand hasta el despacho). AvgCost es el costo
// promedio ponderado y solo cambia en recepciones.
// La fila se crea de forma perezosa con el primer movimiento y nunca se borra.
type StockLevel struct {
	ProductID   string
	WarehouseID string
	OnHand      decimal.Decimal
	Allocated   decimal.Decimal
	AvgCost     decimal.Decimal
	UpdatedAt   time.Time
}

// Available devuelve la cantidad disponible para reservar: OnHand - Allocated.
func (s *StockLevel) Available() decimal.Decimal {
	return s.OnHand.Sub(s.Allocated)
}
