package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentStockDTO fila del reporte de stock actual por producto y bodega.
type CurrentStockDTO struct {
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	WarehouseCode string          `json:"warehouse_code"`
	OnHand        decimal.Decimal `json:"on_hand"`
	Allocated     decimal.Decimal `json:"allocated"`
	Available     decimal.Decimal `json:"available"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	StockValue    decimal.Decimal `json:"stock_value"` // on_hand × avg_cost
}

// LowStockDTO fila de la alerta de stock bajo (on_hand <= punto de reorden).
type LowStockDTO struct {
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	WarehouseCode string          `json:"warehouse_code"`
	OnHand        decimal.Decimal `json:"on_hand"`
	ReorderPoint  decimal.Decimal `json:"reorder_point"`
}

// ValuationDTO valoración de inventario agregada por bodega.
type ValuationDTO struct {
	WarehouseCode string          `json:"warehouse_code"`
	TotalUnits    decimal.Decimal `json:"total_units"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// MovementDTO fila del historial de movimientos de un SKU.
type MovementDTO struct {
	ID          string          `json:"id"`
	WarehouseID string          `json:"warehouse_id"`
	Type        string          `json:"type"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Reference   string          `json:"reference"`
	ActedAt     time.Time       `json:"acted_at"`
	ActedBy     string          `json:"acted_by,omitempty"`
}

// TurnoverDTO rotación de inventario por producto (últimos 12 meses).
// TurnoverRatio = salidas por despacho / stock promedio.
type TurnoverDTO struct {
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	TotalOutflow  decimal.Decimal `json:"total_outflow"`
	AvgStock      decimal.Decimal `json:"avg_stock"`
	TurnoverRatio decimal.Decimal `json:"turnover_ratio"`
}

// AgingDTO antigüedad de stock: días desde el último movimiento por (producto, bodega).
// LastMovementAt nil significa que la fila de stock nunca registró movimiento.
type AgingDTO struct {
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	WarehouseCode    string          `json:"warehouse_code"`
	OnHand           decimal.Decimal `json:"on_hand"`
	LastMovementAt   *time.Time      `json:"last_movement_at"`
	DaysSinceLastMov int             `json:"days_since_last_movement"`
}

// FillRateDTO porcentaje despachado/ordenado por orden de venta.
type FillRateDTO struct {
	SOID         string          `json:"so_id"`
	CustomerName string          `json:"customer_name"`
	FillRatePct  decimal.Decimal `json:"fill_rate_percent"`
}

// ProfitabilityDTO rentabilidad por producto sobre lo despachado, al costo promedio vigente.
type ProfitabilityDTO struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
}

// SupplierValueDTO top de proveedores por valor recibido (últimos 6 meses).
type SupplierValueDTO struct {
	SupplierName       string          `json:"supplier_name"`
	TotalPurchaseValue decimal.Decimal `json:"total_purchase_value"`
}

// CustomerValueDTO top de clientes por valor despachado (últimos 6 meses).
type CustomerValueDTO struct {
	CustomerName    string          `json:"customer_name"`
	TotalSalesValue decimal.Decimal `json:"total_sales_value"`
}

// MonthlySalesDTO venta mensual (valor despachado) de los últimos 12 meses.
type MonthlySalesDTO struct {
	Month        string          `json:"sales_month"` // formato YYYY-MM
	MonthlySales decimal.Decimal `json:"monthly_sales"`
}
