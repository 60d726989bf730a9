package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/ims-ledger/internal/application/dto"
	"github.com/tu-usuario/ims-ledger/internal/application/reports"
)

// ReportHandler maneja las consultas de read-models del inventario.
type ReportHandler struct {
	uc *reports.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func respondList[T any](c *fiber.Ctx, list []T, err error) error {
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if list == nil {
		list = []T{}
	}
	return c.JSON(fiber.Map{"total": len(list), "rows": list})
}

// CurrentStock godoc
// @Summary  Stock actual por producto y bodega
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.CurrentStockDTO
// @Router   /api/reports/current-stock [get]
func (h *ReportHandler) CurrentStock(c *fiber.Ctx) error {
	list, err := h.uc.CurrentStock(c.Context())
	return respondList(c, list, err)
}

// LowStock godoc
// @Summary  Alertas de stock bajo (on_hand <= punto de reorden)
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.LowStockDTO
// @Router   /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.Context())
	return respondList(c, list, err)
}

// Valuation godoc
// @Summary  Valoración de inventario por bodega
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.ValuationDTO
// @Router   /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	list, err := h.uc.Valuation(c.Context())
	return respondList(c, list, err)
}

// Turnover godoc
// @Summary  Rotación de inventario (12 meses)
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.TurnoverDTO
// @Router   /api/reports/turnover [get]
func (h *ReportHandler) Turnover(c *fiber.Ctx) error {
	list, err := h.uc.Turnover(c.Context())
	return respondList(c, list, err)
}

// Aging godoc
// @Summary  Antigüedad de stock (>= 90 días sin movimiento)
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.AgingDTO
// @Router   /api/reports/aging [get]
func (h *ReportHandler) Aging(c *fiber.Ctx) error {
	list, err := h.uc.Aging(c.Context())
	return respondList(c, list, err)
}

// FillRate godoc
// @Summary  Fill rate por orden de venta
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.FillRateDTO
// @Router   /api/reports/fill-rate [get]
func (h *ReportHandler) FillRate(c *fiber.Ctx) error {
	list, err := h.uc.FillRate(c.Context())
	return respondList(c, list, err)
}

// Profitability godoc
// @Summary  Rentabilidad por producto
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.ProfitabilityDTO
// @Router   /api/reports/profitability [get]
func (h *ReportHandler) Profitability(c *fiber.Ctx) error {
	list, err := h.uc.Profitability(c.Context())
	return respondList(c, list, err)
}

// TopSuppliers godoc
// @Summary  Top 5 proveedores por valor recibido (6 meses)
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.SupplierValueDTO
// @Router   /api/reports/top-suppliers [get]
func (h *ReportHandler) TopSuppliers(c *fiber.Ctx) error {
	list, err := h.uc.TopSuppliers(c.Context())
	return respondList(c, list, err)
}

// TopCustomers godoc
// @Summary  Top 5 clientes por valor despachado (6 meses)
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.CustomerValueDTO
// @Router   /api/reports/top-customers [get]
func (h *ReportHandler) TopCustomers(c *fiber.Ctx) error {
	list, err := h.uc.TopCustomers(c.Context())
	return respondList(c, list, err)
}

// MonthlySales godoc
// @Summary  Venta mensual (12 meses)
// @Tags     reports
// @Produce  json
// @Success  200  {array}  dto.MonthlySalesDTO
// @Router   /api/reports/monthly-sales [get]
func (h *ReportHandler) MonthlySales(c *fiber.Ctx) error {
	list, err := h.uc.MonthlySales(c.Context())
	return respondList(c, list, err)
}

// MovementHistory godoc
// @Summary  Historial de movimientos por SKU
// @Tags     ledger
// @Produce  json
// @Param    sku    query  string  true   "SKU del producto"
// @Param    limit  query  int     false  "Máximo de filas (default 200)"
// @Success  200  {array}   dto.MovementDTO
// @Failure  400  {object}  dto.ErrorResponse
// @Router   /api/ledger/movements [get]
func (h *ReportHandler) MovementHistory(c *fiber.Ctx) error {
	sku := c.Query("sku")
	if sku == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sku es obligatorio"})
	}
	list, err := h.uc.MovementHistory(c.Context(), sku, c.QueryInt("limit"))
	return respondList(c, list, err)
}
