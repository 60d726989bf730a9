package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/ims-ledger/internal/application/reports"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger  LedgerService
	Reports *reports.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Operaciones mutadoras del libro de inventario
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledgerGroup.Post("/receipts", ledgerHandler.ReceivePOItem)
	ledgerGroup.Post("/allocations", ledgerHandler.AllocateSOItem)
	ledgerGroup.Post("/shipments", ledgerHandler.ShipSOItem)
	ledgerGroup.Post("/adjustments", ledgerHandler.ApplyAdjustmentItem)

	// Read-models (reflejan estado comprometido, sin rezago)
	reportHandler := NewReportHandler(deps.Reports)
	ledgerGroup.Get("/movements", reportHandler.MovementHistory)

	reportGroup := api.Group("/reports")
	reportGroup.Get("/current-stock", reportHandler.CurrentStock)
	reportGroup.Get("/low-stock", reportHandler.LowStock)
	reportGroup.Get("/valuation", reportHandler.Valuation)
	reportGroup.Get("/turnover", reportHandler.Turnover)
	reportGroup.Get("/aging", reportHandler.Aging)
	reportGroup.Get("/fill-rate", reportHandler.FillRate)
	reportGroup.Get("/profitability", reportHandler.Profitability)
	reportGroup.Get("/top-suppliers", reportHandler.TopSuppliers)
	reportGroup.Get("/top-customers", reportHandler.TopCustomers)
	reportGroup.Get("/monthly-sales", reportHandler.MonthlySales)
}
