package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/ims-ledger/internal/domain"
	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
	"github.com/tu-usuario/ims-ledger/internal/domain/inventory"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
	"github.com/tu-usuario/ims-ledger/pkg/logger"
)

// UseCase es el motor del libro de inventario: aplica las cuatro operaciones
// mutadoras (recepción, reserva, despacho y ajuste) como transacciones atómicas
// con bloqueo de fila (SELECT FOR UPDATE) y un movimiento inmutable por operación.
//
// Las operaciones no deduplican invocaciones: repetir una llamada con los mismos
// argumentos aplica el efecto dos veces, igual que los procedimientos originales.
type UseCase struct {
	txRunner       TxRunner
	productRepo    repository.ProductRepository
	warehouseRepo  repository.WarehouseRepository
	poRepo         repository.PurchaseOrderRepository
	soRepo         repository.SalesOrderRepository
	adjustmentRepo repository.AdjustmentRepository
	log            *logger.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// Options parámetros de reintento ante contención.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// NewUseCase construye el motor. Los repositorios inyectados aquí van atados al pool
// (lecturas de validación); los que muta cada operación llegan atados a la tx vía TxRunner.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	poRepo repository.PurchaseOrderRepository,
	soRepo repository.SalesOrderRepository,
	adjustmentRepo repository.AdjustmentRepository,
	log *logger.Logger,
	opts Options,
) *UseCase {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &UseCase{
		txRunner:       txRunner,
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		poRepo:         poRepo,
		soRepo:         soRepo,
		adjustmentRepo: adjustmentRepo,
		log:            log,
		maxRetries:     opts.MaxRetries,
		retryBackoff:   opts.RetryBackoff,
	}
}

// ReceivePOItem recibe qty unidades de una línea de orden de compra en la bodega
// destino de la PO: suma OnHand, recalcula el costo promedio ponderado, avanza
// received_qty de la línea y registra un movimiento RECEIPT.
func (uc *UseCase) ReceivePOItem(ctx context.Context, poID, productID string, qty, unitCost decimal.Decimal, actedBy string) error {
	if !qty.GreaterThan(decimal.Zero) || unitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	po, err := uc.resolvePO(ctx, poID, productID)
	if err != nil {
		return err
	}

	err = uc.runWithRetry(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockLevelRepository,
		poRepo repository.PurchaseOrderRepository,
		_ repository.SalesOrderRepository,
	) error {
		// Bloquea primero la línea, luego la fila de stock (orden fijo anti-deadlock)
		item, err := poRepo.GetItemForUpdate(ctx, poID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if qty.GreaterThan(item.RemainingToReceive()) {
			return domain.ErrOverReceipt
		}

		stock, err := stockRepo.GetForUpdate(ctx, productID, po.WarehouseID)
		if err != nil {
			return err
		}
		now := time.Now()
		stock.AvgCost = inventory.WeightedAverageCost(stock.OnHand, stock.AvgCost, qty, unitCost)
		stock.OnHand = stock.OnHand.Add(qty)
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}

		item.ReceivedQty = item.ReceivedQty.Add(qty)
		if err := poRepo.UpdateItemProgress(ctx, item); err != nil {
			return err
		}

		return movRepo.Create(ctx, &entity.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: po.WarehouseID,
			Type:        entity.MovementTypeRECEIPT,
			Qty:         qty,
			UnitCost:    unitCost,
			Reference:   poID,
			ActedAt:     now,
			ActedBy:     actedBy,
		})
	})
	if err == nil {
		uc.log.Info().Str("op", "receive_po_item").Str("po_id", poID).
			Str("product_id", productID).Str("qty", qty.String()).Msg("recepción aplicada")
	}
	return err
}

// AllocateSOItem reserva qty unidades contra una línea de orden de venta.
// La reserva es blanda: incrementa Allocated sin tocar OnHand, y el disponible
// (OnHand - Allocated) nunca queda negativo. Registra un movimiento ALLOCATION
// de auditoría, sin actor.
func (uc *UseCase) AllocateSOItem(ctx context.Context, soID, productID string, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	so, err := uc.resolveSO(ctx, soID, productID)
	if err != nil {
		return err
	}

	return uc.runWithRetry(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockLevelRepository,
		_ repository.PurchaseOrderRepository,
		soRepo repository.SalesOrderRepository,
	) error {
		item, err := soRepo.GetItemForUpdate(ctx, soID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		// No se reserva más de lo que la línea tiene ordenado sin reservar
		if qty.GreaterThan(item.OrderedQty.Sub(item.AllocatedQty)) {
			return domain.ErrOverShipment
		}

		stock, err := stockRepo.GetForUpdate(ctx, productID, so.WarehouseID)
		if err != nil {
			return err
		}
		if stock.Available().LessThan(qty) {
			return domain.ErrInsufficientStock
		}
		now := time.Now()
		stock.Allocated = stock.Allocated.Add(qty)
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}

		item.AllocatedQty = item.AllocatedQty.Add(qty)
		if err := soRepo.UpdateItemProgress(ctx, item); err != nil {
			return err
		}

		return movRepo.Create(ctx, &entity.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: so.WarehouseID,
			Type:        entity.MovementTypeALLOCATION,
			Qty:         qty,
			UnitCost:    stock.AvgCost,
			Reference:   soID,
			ActedAt:     now,
		})
	})
}

// ShipSOItem despacha qty unidades de una línea de orden de venta: descuenta
// OnHand, libera la reserva correspondiente, avanza shipped_qty y registra un
// movimiento SALES_SHIPMENT con cantidad negativa. El costo promedio no cambia.
func (uc *UseCase) ShipSOItem(ctx context.Context, soID, productID string, qty decimal.Decimal, actedBy string) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	so, err := uc.resolveSO(ctx, soID, productID)
	if err != nil {
		return err
	}

	err = uc.runWithRetry(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockLevelRepository,
		_ repository.PurchaseOrderRepository,
		soRepo repository.SalesOrderRepository,
	) error {
		item, err := soRepo.GetItemForUpdate(ctx, soID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if qty.GreaterThan(item.RemainingToShip()) {
			return domain.ErrOverShipment
		}
		// Solo se despacha lo previamente reservado (modelo de reserva blanda)
		if qty.GreaterThan(item.OpenAllocation()) {
			return domain.ErrInsufficientStock
		}

		stock, err := stockRepo.GetForUpdate(ctx, productID, so.WarehouseID)
		if err != nil {
			return err
		}
		if stock.OnHand.LessThan(qty) {
			return domain.ErrInsufficientStock
		}
		now := time.Now()
		stock.OnHand = stock.OnHand.Sub(qty)
		stock.Allocated = stock.Allocated.Sub(qty)
		if stock.Allocated.IsNegative() {
			// la reserva agregada no puede quedar negativa
			stock.Allocated = decimal.Zero
		}
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}

		item.ShippedQty = item.ShippedQty.Add(qty)
		if err := soRepo.UpdateItemProgress(ctx, item); err != nil {
			return err
		}

		return movRepo.Create(ctx, &entity.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: so.WarehouseID,
			Type:        entity.MovementTypeSALESSHIPMENT,
			Qty:         qty.Neg(),
			UnitCost:    stock.AvgCost,
			Reference:   soID,
			ActedAt:     now,
			ActedBy:     actedBy,
		})
	})
	if err == nil {
		uc.log.Info().Str("op", "ship_so_item").Str("so_id", soID).
			Str("product_id", productID).Str("qty", qty.String()).Msg("despacho aplicado")
	}
	return err
}

// ApplyAdjustmentItem aplica un cambio con signo sobre OnHand en la bodega del
// documento de ajuste. Falla con ErrInsufficientStock si el resultado quedaría
// negativo. El costo promedio no cambia.
func (uc *UseCase) ApplyAdjustmentItem(ctx context.Context, adjustmentID, productID string, qtyChange decimal.Decimal, actedBy string) error {
	if qtyChange.IsZero() {
		return domain.ErrInvalidQuantity
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	adj, err := uc.adjustmentRepo.GetByID(ctx, adjustmentID)
	if err != nil {
		return err
	}
	if adj == nil {
		return domain.ErrNotFound
	}

	return uc.runWithRetry(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockLevelRepository,
		_ repository.PurchaseOrderRepository,
		_ repository.SalesOrderRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, productID, adj.WarehouseID)
		if err != nil {
			return err
		}
		newOnHand := stock.OnHand.Add(qtyChange)
		if newOnHand.IsNegative() {
			return domain.ErrInsufficientStock
		}
		now := time.Now()
		stock.OnHand = newOnHand
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}

		return movRepo.Create(ctx, &entity.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: adj.WarehouseID,
			Type:        entity.MovementTypeADJUSTMENT,
			Qty:         qtyChange,
			UnitCost:    stock.AvgCost,
			Reference:   adjustmentID,
			ActedAt:     now,
			ActedBy:     actedBy,
		})
	})
}

// resolvePO valida producto y cabecera de PO fuera de la transacción.
func (uc *UseCase) resolvePO(ctx context.Context, poID, productID string) (*entity.PurchaseOrder, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	po, err := uc.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	if wh, err := uc.warehouseRepo.GetByID(ctx, po.WarehouseID); err != nil || wh == nil {
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	return po, nil
}

// resolveSO valida producto y cabecera de SO fuera de la transacción.
func (uc *UseCase) resolveSO(ctx context.Context, soID, productID string) (*entity.SalesOrder, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	so, err := uc.soRepo.GetByID(ctx, soID)
	if err != nil {
		return nil, err
	}
	if so == nil {
		return nil, domain.ErrNotFound
	}
	return so, nil
}

// runWithRetry ejecuta la transacción y reintenta (acotado) solo ante
// domain.ErrContention. Los errores de negocio salen en el primer intento.
func (uc *UseCase) runWithRetry(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockLevelRepository,
	poRepo repository.PurchaseOrderRepository,
	soRepo repository.SalesOrderRepository,
) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = uc.txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrContention) {
			return err
		}
		if attempt >= uc.maxRetries {
			uc.log.Warn().Int("attempts", attempt+1).Msg("contención persistente, se devuelve al caller")
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uc.retryBackoff):
		}
	}
}
