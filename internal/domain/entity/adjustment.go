package entity

import "time"

// Adjustment documento de ajuste de inventario (conteo físico, merma, corrección).
// El motor lo usa para resolver la bodega afectada; las líneas aplicadas quedan
// en inventory_movements.
type Adjustment struct {
	ID          string
	WarehouseID string
	Reason      string
	CreatedAt   time.Time
}
