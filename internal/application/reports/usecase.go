package reports

import (
	"context"

	"github.com/tu-usuario/ims-ledger/internal/application/dto"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

// Ventanas por defecto de los reportes históricos.
const (
	defaultTurnoverMonths = 12
	defaultSalesMonths    = 12
	defaultTopMonths      = 6
	defaultTopLimit       = 5
	defaultAgingMinDays   = 90
	defaultMovementLimit  = 200
)

// UseCase expone los read-models del inventario. No calcula estado: consulta el
// estado ya comprometido por el motor, de modo que cada reporte refleja la última
// transacción confirmada sin rezago de materialización.
type UseCase struct {
	reportRepo repository.ReportRepository
	movRepo    repository.InventoryMovementRepository
}

// NewUseCase construye el caso de uso de reportes.
func NewUseCase(reportRepo repository.ReportRepository, movRepo repository.InventoryMovementRepository) *UseCase {
	return &UseCase{reportRepo: reportRepo, movRepo: movRepo}
}

// CurrentStock stock actual por producto y bodega, con valor de inventario.
func (uc *UseCase) CurrentStock(ctx context.Context) ([]dto.CurrentStockDTO, error) {
	return uc.reportRepo.CurrentStock(ctx)
}

// LowStock productos activos con OnHand en o bajo su punto de reorden.
func (uc *UseCase) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	return uc.reportRepo.LowStock(ctx)
}

// Valuation valoración de inventario agregada por bodega.
func (uc *UseCase) Valuation(ctx context.Context) ([]dto.ValuationDTO, error) {
	return uc.reportRepo.Valuation(ctx)
}

// Turnover rotación por producto de los últimos 12 meses.
func (uc *UseCase) Turnover(ctx context.Context) ([]dto.TurnoverDTO, error) {
	return uc.reportRepo.Turnover(ctx, defaultTurnoverMonths)
}

// Aging pares (producto, bodega) sin movimiento hace 90 días o más (o nunca).
func (uc *UseCase) Aging(ctx context.Context) ([]dto.AgingDTO, error) {
	return uc.reportRepo.Aging(ctx, defaultAgingMinDays)
}

// FillRate porcentaje despachado/ordenado por orden de venta.
func (uc *UseCase) FillRate(ctx context.Context) ([]dto.FillRateDTO, error) {
	return uc.reportRepo.FillRate(ctx)
}

// Profitability rentabilidad por producto sobre lo despachado.
func (uc *UseCase) Profitability(ctx context.Context) ([]dto.ProfitabilityDTO, error) {
	return uc.reportRepo.Profitability(ctx)
}

// TopSuppliers top 5 proveedores por valor recibido en los últimos 6 meses.
func (uc *UseCase) TopSuppliers(ctx context.Context) ([]dto.SupplierValueDTO, error) {
	return uc.reportRepo.TopSuppliers(ctx, defaultTopMonths, defaultTopLimit)
}

// TopCustomers top 5 clientes por valor despachado en los últimos 6 meses.
func (uc *UseCase) TopCustomers(ctx context.Context) ([]dto.CustomerValueDTO, error) {
	return uc.reportRepo.TopCustomers(ctx, defaultTopMonths, defaultTopLimit)
}

// MonthlySales venta mensual de los últimos 12 meses.
func (uc *UseCase) MonthlySales(ctx context.Context) ([]dto.MonthlySalesDTO, error) {
	return uc.reportRepo.MonthlySales(ctx, defaultSalesMonths)
}

// MovementHistory historial de movimientos de un SKU, más recientes primero.
func (uc *UseCase) MovementHistory(ctx context.Context, sku string, limit int) ([]dto.MovementDTO, error) {
	if limit <= 0 || limit > defaultMovementLimit {
		limit = defaultMovementLimit
	}
	movements, err := uc.movRepo.ListBySKU(ctx, sku, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementDTO{
			ID:          m.ID,
			WarehouseID: m.WarehouseID,
			Type:        m.Type,
			Qty:         m.Qty,
			UnitCost:    m.UnitCost,
			Reference:   m.Reference,
			ActedAt:     m.ActedAt,
			ActedBy:     m.ActedBy,
		})
	}
	return out, nil
}
