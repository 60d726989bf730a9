package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario. Identidad inmutable.
type Warehouse struct {
	ID        string
	Code      string // warehouse_code, único
	Name      string
	CreatedAt time.Time
}
