package ledger

import (
	"context"

	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el motor de inventario: o se aplican
// el stock, el contador de la línea y el movimiento, o no se aplica nada.
// La implementación debe envolver los errores transitorios de concurrencia
// (serialization failure, deadlock, lock timeout) en domain.ErrContention.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockLevelRepository,
		poRepo repository.PurchaseOrderRepository,
		soRepo repository.SalesOrderRepository,
	) error) error
}
