package repository

import (
	"context"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
)

// ProductRepository puerto de persistencia para productos (catálogo externo, solo lectura aquí).
type ProductRepository interface {
	// GetByID devuelve el producto o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetBySKU devuelve el producto o nil si no existe.
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
}

// WarehouseRepository puerto de persistencia para bodegas.
type WarehouseRepository interface {
	// GetByID devuelve la bodega o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}

// AdjustmentRepository puerto de lectura de documentos de ajuste.
type AdjustmentRepository interface {
	// GetByID devuelve el ajuste o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Adjustment, error)
}
