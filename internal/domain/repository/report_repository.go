package repository

import (
	"context"

	"github.com/tu-usuario/ims-ledger/internal/application/dto"
)

// ReportRepository consultas de solo lectura sobre el estado comprometido del libro.
// Leen directo de las tablas del motor, sin materialización asíncrona: reflejan
// cada transacción inmediatamente después del commit.
type ReportRepository interface {
	CurrentStock(ctx context.Context) ([]dto.CurrentStockDTO, error)
	LowStock(ctx context.Context) ([]dto.LowStockDTO, error)
	Valuation(ctx context.Context) ([]dto.ValuationDTO, error)
	Turnover(ctx context.Context, months int) ([]dto.TurnoverDTO, error)
	Aging(ctx context.Context, minDays int) ([]dto.AgingDTO, error)
	FillRate(ctx context.Context) ([]dto.FillRateDTO, error)
	Profitability(ctx context.Context) ([]dto.ProfitabilityDTO, error)
	TopSuppliers(ctx context.Context, months, limit int) ([]dto.SupplierValueDTO, error)
	TopCustomers(ctx context.Context, months, limit int) ([]dto.CustomerValueDTO, error)
	MonthlySales(ctx context.Context, months int) ([]dto.MonthlySalesDTO, error)
}
