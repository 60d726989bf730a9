package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/ims-ledger/internal/application/dto"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura sobre el estado comprometido del libro.
// Leen las mismas tablas que escribe el motor, sin vistas materializadas: cada
// reporte refleja la última transacción confirmada.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// CurrentStock stock actual por producto y bodega, con disponible y valor.
func (r *ReportRepo) CurrentStock(ctx context.Context) ([]dto.CurrentStockDTO, error) {
	const query = `
	SELECT p.sku, p.name, w.code,
	       s.on_hand, s.allocated,
	       s.on_hand - s.allocated AS available,
	       s.avg_cost,
	       s.on_hand * s.avg_cost  AS stock_value
	FROM stock_levels s
	JOIN products   p ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
	ORDER BY p.sku, w.code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports.CurrentStock: %w", err)
	}
	defer rows.Close()

	var results []dto.CurrentStockDTO
	for rows.Next() {
		var row dto.CurrentStockDTO
		if err := rows.Scan(&row.SKU, &row.ProductName, &row.WarehouseCode,
			&row.OnHand, &row.Allocated, &row.Available, &row.AvgCost, &row.StockValue); err != nil {
			return nil, fmt.Errorf("reports.CurrentStock scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// LowStock productos activos con OnHand en o bajo su punto de reorden.
func (r *ReportRepo) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	const query = `
	SELECT p.sku, p.name, w.code, s.on_hand, p.reorder_point
	FROM stock_levels s
	JOIN products   p ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
	WHERE p.is_active AND s.on_hand <= p.reorder_point
	ORDER BY s.on_hand - p.reorder_point, p.sku`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports.LowStock: %w", err)
	}
	defer rows.Close()

	var results []dto.LowStockDTO
	for rows.Next() {
		var row dto.LowStockDTO
		if err := rows.Scan(&row.SKU, &row.ProductName, &row.WarehouseCode,
			&row.OnHand, &row.ReorderPoint); err != nil {
			return nil, fmt.Errorf("reports.LowStock scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Valuation valoración de inventario agregada por bodega.
func (r *ReportRepo) Valuation(ctx context.Context) ([]dto.ValuationDTO, error) {
	const query = `
	SELECT w.code,
	       COALESCE(SUM(s.on_hand), 0)              AS total_units,
	       COALESCE(SUM(s.on_hand * s.avg_cost), 0) AS total_value
	FROM warehouses w
	LEFT JOIN stock_levels s ON s.warehouse_id = w.id
	GROUP BY w.code
	ORDER BY total_value DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports.Valuation: %w", err)
	}
	defer rows.Close()

	var results []dto.ValuationDTO
	for rows.Next() {
		var row dto.ValuationDTO
		if err := rows.Scan(&row.WarehouseCode, &row.TotalUnits, &row.TotalValue); err != nil {
			return nil, fmt.Errorf("reports.Valuation scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Turnover rotación por producto: salidas por despacho (qty negativo en el libro)
// sobre el stock promedio, en la ventana indicada.
func (r *ReportRepo) Turnover(ctx context.Context, months int) ([]dto.TurnoverDTO, error) {
	const query = `
	SELECT p.sku, p.name,
	       SUM(-m.qty)      AS total_outflow,
	       AVG(s.on_hand)   AS avg_stock,
	       CASE WHEN AVG(s.on_hand) > 0
	            THEN ROUND(SUM(-m.qty) / AVG(s.on_hand), 2)
	            ELSE 0 END  AS turnover_ratio
	FROM inventory_movements m
	JOIN products     p ON p.id = m.product_id
	JOIN stock_levels s ON s.product_id = p.id AND s.warehouse_id = m.warehouse_id
	WHERE m.movement_type = 'SALES_SHIPMENT'
	  AND m.acted_at >= now() - make_interval(months => $1)
	GROUP BY p.sku, p.name
	ORDER BY turnover_ratio DESC`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("reports.Turnover: %w", err)
	}
	defer rows.Close()

	var results []dto.TurnoverDTO
	for rows.Next() {
		var row dto.TurnoverDTO
		if err := rows.Scan(&row.SKU, &row.ProductName, &row.TotalOutflow,
			&row.AvgStock, &row.TurnoverRatio); err != nil {
			return nil, fmt.Errorf("reports.Turnover scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Aging días desde el último movimiento por (producto, bodega); incluye filas
// que nunca registraron movimiento (last_movement_at NULL).
func (r *ReportRepo) Aging(ctx context.Context, minDays int) ([]dto.AgingDTO, error) {
	const query = `
	SELECT p.sku, p.name, w.code, s.on_hand,
	       MAX(m.acted_at) AS last_movement_at,
	       COALESCE(EXTRACT(DAY FROM now() - MAX(m.acted_at))::INT, 0) AS days_since_last_movement
	FROM stock_levels s
	JOIN products   p ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
	LEFT JOIN inventory_movements m
	       ON m.product_id = s.product_id AND m.warehouse_id = s.warehouse_id
	GROUP BY p.sku, p.name, w.code, s.on_hand
	HAVING MAX(m.acted_at) IS NULL
	    OR EXTRACT(DAY FROM now() - MAX(m.acted_at)) >= $1
	ORDER BY days_since_last_movement DESC`

	rows, err := r.pool.Query(ctx, query, minDays)
	if err != nil {
		return nil, fmt.Errorf("reports.Aging: %w", err)
	}
	defer rows.Close()

	var results []dto.AgingDTO
	for rows.Next() {
		var row dto.AgingDTO
		if err := rows.Scan(&row.SKU, &row.ProductName, &row.WarehouseCode,
			&row.OnHand, &row.LastMovementAt, &row.DaysSinceLastMov); err != nil {
			return nil, fmt.Errorf("reports.Aging scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// FillRate porcentaje despachado/ordenado por orden de venta.
func (r *ReportRepo) FillRate(ctx context.Context) ([]dto.FillRateDTO, error) {
	const query = `
	SELECT so.id, c.name,
	       COALESCE(ROUND(SUM(soi.shipped_qty) / NULLIF(SUM(soi.ordered_qty), 0) * 100, 2), 0) AS fill_rate_percent
	FROM sales_orders so
	JOIN sales_order_items soi ON soi.so_id = so.id
	JOIN customers c ON c.id = so.customer_id
	GROUP BY so.id, c.name
	ORDER BY fill_rate_percent DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports.FillRate: %w", err)
	}
	defer rows.Close()

	var results []dto.FillRateDTO
	for rows.Next() {
		var row dto.FillRateDTO
		if err := rows.Scan(&row.SOID, &row.CustomerName, &row.FillRatePct); err != nil {
			return nil, fmt.Errorf("reports.FillRate scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Profitability rentabilidad por producto: ingreso de lo despachado contra el
// costo promedio vigente en la bodega de la orden.
func (r *ReportRepo) Profitability(ctx context.Context) ([]dto.ProfitabilityDTO, error) {
	const query = `
	SELECT p.sku, p.name,
	       SUM(soi.shipped_qty * soi.unit_price)                                   AS revenue,
	       SUM(soi.shipped_qty * s.avg_cost)                                       AS cost,
	       SUM(soi.shipped_qty * soi.unit_price - soi.shipped_qty * s.avg_cost)    AS profit
	FROM sales_order_items soi
	JOIN sales_orders so ON so.id = soi.so_id
	JOIN products     p  ON p.id = soi.product_id
	JOIN stock_levels s  ON s.product_id = p.id AND s.warehouse_id = so.warehouse_id
	GROUP BY p.sku, p.name
	ORDER BY profit DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports.Profitability: %w", err)
	}
	defer rows.Close()

	var results []dto.ProfitabilityDTO
	for rows.Next() {
		var row dto.ProfitabilityDTO
		if err := rows.Scan(&row.SKU, &row.ProductName, &row.Revenue, &row.Cost, &row.Profit); err != nil {
			return nil, fmt.Errorf("reports.Profitability scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// TopSuppliers proveedores con mayor valor recibido en la ventana indicada.
func (r *ReportRepo) TopSuppliers(ctx context.Context, months, limit int) ([]dto.SupplierValueDTO, error) {
	const query = `
	SELECT s.name,
	       SUM(poi.received_qty * poi.unit_cost) AS total_purchase_value
	FROM purchase_order_items poi
	JOIN purchase_orders po ON po.id = poi.po_id
	JOIN suppliers s ON s.id = po.supplier_id
	WHERE po.created_at >= now() - make_interval(months => $1)
	GROUP BY s.name
	ORDER BY total_purchase_value DESC
	LIMIT $2`

	rows, err := r.pool.Query(ctx, query, months, limit)
	if err != nil {
		return nil, fmt.Errorf("reports.TopSuppliers: %w", err)
	}
	defer rows.Close()

	var results []dto.SupplierValueDTO
	for rows.Next() {
		var row dto.SupplierValueDTO
		if err := rows.Scan(&row.SupplierName, &row.TotalPurchaseValue); err != nil {
			return nil, fmt.Errorf("reports.TopSuppliers scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// TopCustomers clientes con mayor valor despachado en la ventana indicada.
func (r *ReportRepo) TopCustomers(ctx context.Context, months, limit int) ([]dto.CustomerValueDTO, error) {
	const query = `
	SELECT c.name,
	       SUM(soi.shipped_qty * soi.unit_price) AS total_sales_value
	FROM sales_order_items soi
	JOIN sales_orders so ON so.id = soi.so_id
	JOIN customers c ON c.id = so.customer_id
	WHERE so.created_at >= now() - make_interval(months => $1)
	GROUP BY c.name
	ORDER BY total_sales_value DESC
	LIMIT $2`

	rows, err := r.pool.Query(ctx, query, months, limit)
	if err != nil {
		return nil, fmt.Errorf("reports.TopCustomers: %w", err)
	}
	defer rows.Close()

	var results []dto.CustomerValueDTO
	for rows.Next() {
		var row dto.CustomerValueDTO
		if err := rows.Scan(&row.CustomerName, &row.TotalSalesValue); err != nil {
			return nil, fmt.Errorf("reports.TopCustomers scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// MonthlySales valor despachado por mes (YYYY-MM) en la ventana indicada.
func (r *ReportRepo) MonthlySales(ctx context.Context, months int) ([]dto.MonthlySalesDTO, error) {
	const query = `
	SELECT to_char(so.created_at, 'YYYY-MM')       AS sales_month,
	       SUM(soi.shipped_qty * soi.unit_price)   AS monthly_sales
	FROM sales_order_items soi
	JOIN sales_orders so ON so.id = soi.so_id
	WHERE so.created_at >= now() - make_interval(months => $1)
	GROUP BY sales_month
	ORDER BY sales_month`

	rows, err := r.pool.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("reports.MonthlySales: %w", err)
	}
	defer rows.Close()

	var results []dto.MonthlySalesDTO
	for rows.Next() {
		var row dto.MonthlySalesDTO
		if err := rows.Scan(&row.Month, &row.MonthlySales); err != nil {
			return nil, fmt.Errorf("reports.MonthlySales scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
