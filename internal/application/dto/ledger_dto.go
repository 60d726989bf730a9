package dto

import "github.com/shopspring/decimal"

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReceivePOItemRequest body para POST /api/ledger/receipts.
type ReceivePOItemRequest struct {
	POID      string          `json:"po_id"`
	ProductID string          `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	ActedBy   string          `json:"acted_by"`
}

// AllocateSOItemRequest body para POST /api/ledger/allocations.
// La reserva es blanda: no registra actor ni descuenta stock físico.
type AllocateSOItemRequest struct {
	SOID      string          `json:"so_id"`
	ProductID string          `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
}

// ShipSOItemRequest body para POST /api/ledger/shipments.
type ShipSOItemRequest struct {
	SOID      string          `json:"so_id"`
	ProductID string          `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	ActedBy   string          `json:"acted_by"`
}

// ApplyAdjustmentItemRequest body para POST /api/ledger/adjustments.
// QtyChange con signo: negativo para merma, positivo para stock encontrado.
type ApplyAdjustmentItemRequest struct {
	AdjustmentID string          `json:"adjustment_id"`
	ProductID    string          `json:"product_id"`
	QtyChange    decimal.Decimal `json:"qty_change"`
	ActedBy      string          `json:"acted_by"`
}
