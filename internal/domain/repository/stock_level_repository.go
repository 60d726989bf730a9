package repository

import (
	"context"

	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
)

// StockLevelRepository puerto de persistencia para el estado de stock por (producto, bodega).
// Las filas se crean de forma perezosa: Get devuelve una fila en cero si todavía
// no existe, y GetForUpdate la materializa al tomar el bloqueo.
type StockLevelRepository interface {
	// Get obtiene el stock actual sin bloquear.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// GetForUpdate obtiene el stock y bloquea la fila (SELECT ... FOR UPDATE) para
	// serializar operaciones concurrentes sobre el mismo par (producto, bodega).
	// Si la fila no existe la materializa en cero antes de bloquearla, de modo que
	// el bloqueo exista también para la primera operación del par.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error)
	// Upsert inserta o actualiza la fila de stock.
	Upsert(ctx context.Context, level *entity.StockLevel) error
}

// InventoryMovementRepository puerto de persistencia del libro de movimientos (append-only).
type InventoryMovementRepository interface {
	// Create agrega un movimiento; nunca hay update ni delete sobre esta tabla.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// ListBySKU lista los movimientos de un producto por SKU, más recientes primero.
	ListBySKU(ctx context.Context, sku string, limit int) ([]*entity.InventoryMovement, error)
}
