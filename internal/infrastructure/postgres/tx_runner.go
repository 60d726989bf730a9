package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/ims-ledger/internal/application/ledger"
	"github.com/tu-usuario/ims-ledger/internal/domain"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con lock_timeout
// acotado, de modo que una espera de bloqueo no cuelga la operación: vence y se
// reporta como domain.ErrContention (reintentable).
type TxRunner struct {
	pool          *pgxpool.Pool
	lockTimeoutMS int
}

// NewTxRunner construye el runner con el pool y el lock_timeout por transacción.
func NewTxRunner(pool *pgxpool.Pool, lockTimeoutMS int) *TxRunner {
	if lockTimeoutMS <= 0 {
		lockTimeoutMS = 2000
	}
	return &TxRunner{pool: pool, lockTimeoutMS: lockTimeoutMS}
}

// Run inicia una transacción, fija lock_timeout, ejecuta fn con repos atados a la tx
// y hace Commit o Rollback. Los conflictos transitorios salen envueltos en ErrContention.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockLevelRepository,
	poRepo repository.PurchaseOrderRepository,
	soRepo repository.SalesOrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL aplica solo a esta transacción
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMS)); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	movRepo := NewInventoryMovementRepository(tx)
	stockRepo := NewStockLevelRepository(tx)
	poRepo := NewPurchaseOrderRepository(tx)
	soRepo := NewSalesOrderRepository(tx)

	if err := fn(movRepo, stockRepo, poRepo, soRepo); err != nil {
		if isRetryableConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrContention, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryableConflict(err) {
			return fmt.Errorf("%w: %v", domain.ErrContention, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
