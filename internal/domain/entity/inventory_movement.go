package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeRECEIPT       = "RECEIPT"        // recepción de orden de compra (qty positivo)
	MovementTypeALLOCATION    = "ALLOCATION"     // reserva blanda contra orden de venta (qty positivo, no toca OnHand)
	MovementTypeSALESSHIPMENT = "SALES_SHIPMENT" // despacho de orden de venta (qty negativo)
	MovementTypeADJUSTMENT    = "ADJUSTMENT"     // ajuste manual (qty con signo)
)

// InventoryMovement registro inmutable de auditoría: exactamente uno por operación
// mutadora exitosa, nunca se actualiza ni se borra. Es la única entrada de los
// read-models de rotación, antigüedad y valoración.
type InventoryMovement struct {
	ID          string
	ProductID   string
	WarehouseID string
	Type        string
	Qty         decimal.Decimal // signo según tipo
	UnitCost    decimal.Decimal // costo unitario aplicado (recepción) o promedio vigente
	Reference   string          // id de PO, SO o ajuste
	ActedAt     time.Time
	ActedBy     string // vacío en ALLOCATION (la reserva no registra actor)
}
