package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/ims-ledger/internal/application/dto"
	"github.com/tu-usuario/ims-ledger/internal/domain"
)

// LedgerService operaciones mutadoras del motor de inventario. El orden y nombre
// de los argumentos es el contrato que consume la capa de presentación.
type LedgerService interface {
	ReceivePOItem(ctx context.Context, poID, productID string, qty, unitCost decimal.Decimal, actedBy string) error
	AllocateSOItem(ctx context.Context, soID, productID string, qty decimal.Decimal) error
	ShipSOItem(ctx context.Context, soID, productID string, qty decimal.Decimal, actedBy string) error
	ApplyAdjustmentItem(ctx context.Context, adjustmentID, productID string, qtyChange decimal.Decimal, actedBy string) error
}

// LedgerHandler maneja las peticiones HTTP de las operaciones del libro.
type LedgerHandler struct {
	svc LedgerService
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(svc LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// mapLedgerError traduce los errores de dominio al status y código de la API.
func mapLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrOverReceipt):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_RECEIPT", Message: err.Error()})
	case errors.Is(err, domain.ErrOverShipment):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_SHIPMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrContention):
		// Transitorio: el motor ya agotó sus reintentos, el caller puede volver a intentar
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONTENTION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// ReceivePOItem godoc
// @Summary      Recibir línea de orden de compra
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceivePOItemRequest  true  "po_id, product_id, qty, unit_cost, acted_by"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/receipts [post]
func (h *LedgerHandler) ReceivePOItem(c *fiber.Ctx) error {
	var in dto.ReceivePOItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.ReceivePOItem(c.Context(), in.POID, in.ProductID, in.Qty, in.UnitCost, in.ActedBy); err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "recepción aplicada"})
}

// AllocateSOItem godoc
// @Summary      Reservar línea de orden de venta (reserva blanda)
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateSOItemRequest  true  "so_id, product_id, qty"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/allocations [post]
func (h *LedgerHandler) AllocateSOItem(c *fiber.Ctx) error {
	var in dto.AllocateSOItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.AllocateSOItem(c.Context(), in.SOID, in.ProductID, in.Qty); err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "reserva aplicada"})
}

// ShipSOItem godoc
// @Summary      Despachar línea de orden de venta
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShipSOItemRequest  true  "so_id, product_id, qty, acted_by"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/shipments [post]
func (h *LedgerHandler) ShipSOItem(c *fiber.Ctx) error {
	var in dto.ShipSOItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.ShipSOItem(c.Context(), in.SOID, in.ProductID, in.Qty, in.ActedBy); err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "despacho aplicado"})
}

// ApplyAdjustmentItem godoc
// @Summary      Aplicar línea de ajuste (qty_change con signo)
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyAdjustmentItemRequest  true  "adjustment_id, product_id, qty_change, acted_by"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/adjustments [post]
func (h *LedgerHandler) ApplyAdjustmentItem(c *fiber.Ctx) error {
	var in dto.ApplyAdjustmentItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.svc.ApplyAdjustmentItem(c.Context(), in.AdjustmentID, in.ProductID, in.QtyChange, in.ActedBy); err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ajuste aplicado"})
}
