package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// StandardCost y ListPrice los administra el catálogo externo; el costo promedio
// real vive en StockLevel y se recalcula solo en recepciones.
type Product struct {
	ID           string
	SKU          string // código único
	Name         string
	UnitCode     string // unidad de medida (EA, KG, LT, ...)
	StandardCost decimal.Decimal
	ListPrice    decimal.Decimal
	ReorderPoint decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
