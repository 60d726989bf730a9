package entity

import "time"

// Supplier proveedor asociado a órdenes de compra.
type Supplier struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Customer cliente asociado a órdenes de venta.
type Customer struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
