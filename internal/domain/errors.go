package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El motor los devuelve de forma síncrona; solo ErrContention es reintentable.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverReceipt       = errors.New("la recepción excede la cantidad ordenada pendiente")
	ErrOverShipment      = errors.New("el despacho excede la cantidad ordenada pendiente")
	ErrContention        = errors.New("conflicto de concurrencia sobre la fila de stock")
)
