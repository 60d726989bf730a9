package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/ims-ledger/internal/application/ledger"
	"github.com/tu-usuario/ims-ledger/internal/domain"
	"github.com/tu-usuario/ims-ledger/internal/domain/entity"
	"github.com/tu-usuario/ims-ledger/internal/domain/repository"
	"github.com/tu-usuario/ims-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID   = "00000000-0000-0000-0000-00000000000a"
	testWarehouseID = "00000000-0000-0000-0000-00000000000b"
	testPOID        = "00000000-0000-0000-0000-0000000000c1"
	testSOID        = "00000000-0000-0000-0000-0000000000c2"
	testAdjID       = "00000000-0000-0000-0000-0000000000c3"
	testActor       = "tester@example.com"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// memStore estado compartido de los fakes. El mutex serializa transacciones
// completas, imitando el bloqueo de fila del motor real.
type memStore struct {
	mu sync.Mutex

	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	pos         map[string]*entity.PurchaseOrder
	poItems     map[string]*entity.PurchaseOrderItem // clave po_id|product_id
	sos         map[string]*entity.SalesOrder
	soItems     map[string]*entity.SalesOrderItem // clave so_id|product_id
	adjustments map[string]*entity.Adjustment
	stock       map[string]*entity.StockLevel // clave product_id|warehouse_id
	movements   []*entity.InventoryMovement
}

func newMemStore() *memStore {
	return &memStore{
		products:    map[string]*entity.Product{},
		warehouses:  map[string]*entity.Warehouse{},
		pos:         map[string]*entity.PurchaseOrder{},
		poItems:     map[string]*entity.PurchaseOrderItem{},
		sos:         map[string]*entity.SalesOrder{},
		soItems:     map[string]*entity.SalesOrderItem{},
		adjustments: map[string]*entity.Adjustment{},
		stock:       map[string]*entity.StockLevel{},
	}
}

func key2(a, b string) string { return a + "|" + b }

type storeSnapshot struct {
	poItems   map[string]entity.PurchaseOrderItem
	soItems   map[string]entity.SalesOrderItem
	stock     map[string]entity.StockLevel
	movements int
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		poItems:   map[string]entity.PurchaseOrderItem{},
		soItems:   map[string]entity.SalesOrderItem{},
		stock:     map[string]entity.StockLevel{},
		movements: len(s.movements),
	}
	for k, v := range s.poItems {
		snap.poItems[k] = *v
	}
	for k, v := range s.soItems {
		snap.soItems[k] = *v
	}
	for k, v := range s.stock {
		snap.stock[k] = *v
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.poItems = map[string]*entity.PurchaseOrderItem{}
	for k, v := range snap.poItems {
		item := v
		s.poItems[k] = &item
	}
	s.soItems = map[string]*entity.SalesOrderItem{}
	for k, v := range snap.soItems {
		item := v
		s.soItems[k] = &item
	}
	s.stock = map[string]*entity.StockLevel{}
	for k, v := range snap.stock {
		level := v
		s.stock[k] = &level
	}
	s.movements = s.movements[:snap.movements]
}

// ── Fakes de repositorios ─────────────────────────────────────────────────────

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.s.products[id], nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

type fakeWarehouseRepo struct{ s *memStore }

func (r *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return r.s.warehouses[id], nil
}

type fakeAdjustmentRepo struct{ s *memStore }

func (r *fakeAdjustmentRepo) GetByID(_ context.Context, id string) (*entity.Adjustment, error) {
	return r.s.adjustments[id], nil
}

type fakePORepo struct{ s *memStore }

func (r *fakePORepo) GetByID(_ context.Context, poID string) (*entity.PurchaseOrder, error) {
	return r.s.pos[poID], nil
}

func (r *fakePORepo) GetItemForUpdate(_ context.Context, poID, productID string) (*entity.PurchaseOrderItem, error) {
	item, ok := r.s.poItems[key2(poID, productID)]
	if !ok {
		return nil, nil
	}
	copia := *item
	return &copia, nil
}

func (r *fakePORepo) UpdateItemProgress(_ context.Context, item *entity.PurchaseOrderItem) error {
	k := key2(item.POID, item.ProductID)
	if _, ok := r.s.poItems[k]; !ok {
		return fmt.Errorf("línea de compra inexistente: %w", domain.ErrNotFound)
	}
	copia := *item
	r.s.poItems[k] = &copia
	return nil
}

type fakeSORepo struct{ s *memStore }

func (r *fakeSORepo) GetByID(_ context.Context, soID string) (*entity.SalesOrder, error) {
	return r.s.sos[soID], nil
}

func (r *fakeSORepo) GetItemForUpdate(_ context.Context, soID, productID string) (*entity.SalesOrderItem, error) {
	item, ok := r.s.soItems[key2(soID, productID)]
	if !ok {
		return nil, nil
	}
	copia := *item
	return &copia, nil
}

func (r *fakeSORepo) UpdateItemProgress(_ context.Context, item *entity.SalesOrderItem) error {
	k := key2(item.SOID, item.ProductID)
	if _, ok := r.s.soItems[k]; !ok {
		return fmt.Errorf("línea de venta inexistente: %w", domain.ErrNotFound)
	}
	copia := *item
	r.s.soItems[k] = &copia
	return nil
}

type fakeStockRepo struct{ s *memStore }

func (r *fakeStockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	if level, ok := r.s.stock[key2(productID, warehouseID)]; ok {
		copia := *level
		return &copia, nil
	}
	// fila perezosa: todavía no existe, se devuelve en cero
	return &entity.StockLevel{ProductID: productID, WarehouseID: warehouseID}, nil
}

func (r *fakeStockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLevel, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *fakeStockRepo) Upsert(_ context.Context, level *entity.StockLevel) error {
	copia := *level
	r.s.stock[key2(level.ProductID, level.WarehouseID)] = &copia
	return nil
}

type fakeMovementRepo struct{ s *memStore }

func (r *fakeMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	copia := *movement
	r.s.movements = append(r.s.movements, &copia)
	return nil
}

func (r *fakeMovementRepo) ListBySKU(_ context.Context, sku string, limit int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, p := range r.s.products {
		if p.SKU != sku {
			continue
		}
		for i := len(r.s.movements) - 1; i >= 0 && len(out) < limit; i-- {
			if r.s.movements[i].ProductID == p.ID {
				out = append(out, r.s.movements[i])
			}
		}
	}
	return out, nil
}

// fakeTxRunner serializa las transacciones con el mutex del store y restaura el
// snapshot si fn falla (rollback). Puede inyectar errores de contención antes de
// ejecutar fn para ejercitar los reintentos del motor.
type fakeTxRunner struct {
	s *memStore

	contentionLeft int // intentos que fallarán con ErrContention antes de permitir fn
	attempts       int
}

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockLevelRepository,
	poRepo repository.PurchaseOrderRepository,
	soRepo repository.SalesOrderRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	t.attempts++
	if t.contentionLeft > 0 {
		t.contentionLeft--
		return fmt.Errorf("%w: could not serialize access", domain.ErrContention)
	}

	snap := t.s.snapshot()
	err := fn(&fakeMovementRepo{t.s}, &fakeStockRepo{t.s}, &fakePORepo{t.s}, &fakeSORepo{t.s})
	if err != nil {
		t.s.restore(snap)
	}
	return err
}

// fixture arma un store con un producto, una bodega, una PO, una SO y un ajuste.
func fixture() *memStore {
	s := newMemStore()
	s.products[testProductID] = &entity.Product{ID: testProductID, SKU: "SKU-001", Name: "Tornillo M8", IsActive: true}
	s.warehouses[testWarehouseID] = &entity.Warehouse{ID: testWarehouseID, Code: "BOD-01", Name: "Principal"}
	s.pos[testPOID] = &entity.PurchaseOrder{ID: testPOID, WarehouseID: testWarehouseID}
	s.sos[testSOID] = &entity.SalesOrder{ID: testSOID, WarehouseID: testWarehouseID}
	s.adjustments[testAdjID] = &entity.Adjustment{ID: testAdjID, WarehouseID: testWarehouseID, Reason: "conteo físico"}
	return s
}

func buildUseCase(s *memStore, opts ledger.Options) (*ledger.UseCase, *fakeTxRunner) {
	tx := &fakeTxRunner{s: s}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	uc := ledger.NewUseCase(tx, &fakeProductRepo{s}, &fakeWarehouseRepo{s}, &fakePORepo{s}, &fakeSORepo{s}, &fakeAdjustmentRepo{s}, log, opts)
	return uc, tx
}

func stockOf(s *memStore) *entity.StockLevel {
	if level, ok := s.stock[key2(testProductID, testWarehouseID)]; ok {
		return level
	}
	return &entity.StockLevel{ProductID: testProductID, WarehouseID: testWarehouseID}
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceivePOItem
// ──────────────────────────────────────────────────────────────────────────────

func TestReceivePOItem_ActualizaStockYCostoPromedio(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("100"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})
	ctx := context.Background()

	// 5 unidades a 10.00 sobre stock en cero
	require.NoError(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("5"), dec("10.00"), testActor))
	// 10 unidades a 5.00
	require.NoError(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("10"), dec("5.00"), testActor))

	stock := stockOf(s)
	assert.True(t, stock.OnHand.Equal(dec("15")), "on_hand esperado 15, got %s", stock.OnHand)
	assert.Equal(t, "6.67", stock.AvgCost.Round(2).String(), "promedio ponderado (5*10 + 10*5) / 15")

	item := s.poItems[key2(testPOID, testProductID)]
	assert.True(t, item.ReceivedQty.Equal(dec("15")))

	require.Len(t, s.movements, 2)
	for _, m := range s.movements {
		assert.Equal(t, entity.MovementTypeRECEIPT, m.Type)
		assert.True(t, m.Qty.IsPositive())
		assert.Equal(t, testPOID, m.Reference)
		assert.Equal(t, testActor, m.ActedBy)
	}
	assert.True(t, s.movements[0].UnitCost.Equal(dec("10.00")))
	assert.True(t, s.movements[1].UnitCost.Equal(dec("5.00")))
}

func TestReceivePOItem_CantidadInvalida(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("10"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})
	ctx := context.Background()

	assert.ErrorIs(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("0"), dec("1"), testActor), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("-3"), dec("1"), testActor), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("1"), dec("-0.01"), testActor), domain.ErrInvalidQuantity)
	assert.Empty(t, s.movements)
}

func TestReceivePOItem_SobreRecepcion(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("10"), ReceivedQty: dec("4"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ReceivePOItem(context.Background(), testPOID, testProductID, dec("7"), dec("1"), testActor)
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	// nada quedó aplicado
	assert.True(t, stockOf(s).OnHand.IsZero())
	assert.True(t, s.poItems[key2(testPOID, testProductID)].ReceivedQty.Equal(dec("4")))
	assert.Empty(t, s.movements)
}

func TestReceivePOItem_ReferenciasInexistentes(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("10"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})
	ctx := context.Background()

	assert.ErrorIs(t, uc.ReceivePOItem(ctx, "po-fantasma", testProductID, dec("1"), dec("1"), testActor), domain.ErrNotFound)
	assert.ErrorIs(t, uc.ReceivePOItem(ctx, testPOID, "prod-fantasma", dec("1"), dec("1"), testActor), domain.ErrNotFound)
	assert.Empty(t, s.movements)
}

// Repetir la misma llamada aplica el efecto dos veces: el motor no deduplica
// invocaciones, igual que los procedimientos que reemplaza.
func TestReceivePOItem_ReinvocacionDuplicaEfecto(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("20"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})
	ctx := context.Background()

	require.NoError(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("5"), dec("2"), testActor))
	require.NoError(t, uc.ReceivePOItem(ctx, testPOID, testProductID, dec("5"), dec("2"), testActor))

	assert.True(t, stockOf(s).OnHand.Equal(dec("10")))
	assert.True(t, s.poItems[key2(testPOID, testProductID)].ReceivedQty.Equal(dec("10")))
	assert.Len(t, s.movements, 2)
}

// Dos primeras recepciones concurrentes sobre un par (producto, bodega) sin fila
// de stock deben sumar ambas: el bloqueo por par aplica también a la creación.
func TestReceivePOItem_PrimerasRecepcionesConcurrentesSuman(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("100"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, qty := range []decimal.Decimal{dec("5"), dec("10")} {
		wg.Add(1)
		go func(q decimal.Decimal) {
			defer wg.Done()
			errs <- uc.ReceivePOItem(context.Background(), testPOID, testProductID, q, dec("1"), testActor)
		}(qty)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, stockOf(s).OnHand.Equal(dec("15")), "ninguna recepción se pierde")
	assert.Len(t, s.movements, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// AllocateSOItem
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocateSOItem_ReservaBlandaNoTocaOnHand(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("10"), AvgCost: dec("3"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("8"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	require.NoError(t, uc.AllocateSOItem(context.Background(), testSOID, testProductID, dec("4")))

	stock := stockOf(s)
	assert.True(t, stock.OnHand.Equal(dec("10")), "la reserva no descuenta OnHand")
	assert.True(t, stock.Allocated.Equal(dec("4")))
	assert.True(t, stock.Available().Equal(dec("6")))
	assert.True(t, s.soItems[key2(testSOID, testProductID)].AllocatedQty.Equal(dec("4")))

	require.Len(t, s.movements, 1)
	assert.Equal(t, entity.MovementTypeALLOCATION, s.movements[0].Type)
	assert.True(t, s.movements[0].Qty.Equal(dec("4")))
	assert.Empty(t, s.movements[0].ActedBy, "la reserva no registra actor")
}

func TestAllocateSOItem_DisponibleInsuficiente(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("10"), Allocated: dec("8"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("8"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.AllocateSOItem(context.Background(), testSOID, testProductID, dec("3"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, stockOf(s).Allocated.Equal(dec("8")))
	assert.Empty(t, s.movements)
}

func TestAllocateSOItem_ExcedeLoOrdenado(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("100"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("5"), AllocatedQty: dec("4"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.AllocateSOItem(context.Background(), testSOID, testProductID, dec("2"))
	assert.ErrorIs(t, err, domain.ErrOverShipment)
	assert.Empty(t, s.movements)
}

// Bajo concurrencia, el disponible nunca queda negativo: con 10 unidades y 20
// reservas de 1, exactamente 10 tienen éxito.
func TestAllocateSOItem_ConcurrenciaAgotaDisponible(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("10"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("20"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	const callers = 20
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- uc.AllocateSOItem(context.Background(), testSOID, testProductID, dec("1"))
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, insufficient)

	stock := stockOf(s)
	assert.True(t, stock.Allocated.Equal(dec("10")))
	assert.True(t, stock.Available().IsZero())
	assert.Len(t, s.movements, 10)
}

// ──────────────────────────────────────────────────────────────────────────────
// ShipSOItem
// ──────────────────────────────────────────────────────────────────────────────

func TestShipSOItem_DescuentaYLiberaReserva(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID,
		OnHand: dec("10"), Allocated: dec("6"), AvgCost: dec("6.67"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("6"), AllocatedQty: dec("6"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	require.NoError(t, uc.ShipSOItem(context.Background(), testSOID, testProductID, dec("4"), testActor))

	stock := stockOf(s)
	assert.True(t, stock.OnHand.Equal(dec("6")))
	assert.True(t, stock.Allocated.Equal(dec("2")), "el despacho consume la reserva")
	assert.True(t, stock.AvgCost.Equal(dec("6.67")), "el despacho no cambia el costo promedio")
	assert.True(t, s.soItems[key2(testSOID, testProductID)].ShippedQty.Equal(dec("4")))

	require.Len(t, s.movements, 1)
	m := s.movements[0]
	assert.Equal(t, entity.MovementTypeSALESSHIPMENT, m.Type)
	assert.True(t, m.Qty.Equal(dec("-4")), "el despacho registra cantidad negativa")
	assert.True(t, m.UnitCost.Equal(dec("6.67")))
	assert.Equal(t, testActor, m.ActedBy)
}

func TestShipSOItem_SinReservaSuficiente(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("10"), Allocated: dec("2"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("10"), AllocatedQty: dec("2"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ShipSOItem(context.Background(), testSOID, testProductID, dec("5"), testActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, stockOf(s).OnHand.Equal(dec("10")))
	assert.Empty(t, s.movements)
}

func TestShipSOItem_ExcedeLoOrdenado(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("100"), Allocated: dec("10"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("10"), AllocatedQty: dec("10"), ShippedQty: dec("8"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ShipSOItem(context.Background(), testSOID, testProductID, dec("3"), testActor)
	assert.ErrorIs(t, err, domain.ErrOverShipment)
	assert.Empty(t, s.movements)
}

func TestShipSOItem_FallaDejaEstadoIntacto(t *testing.T) {
	s := fixture()
	// reserva viva mayor al físico: el chequeo de OnHand dentro de la tx frena el despacho
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("3"), Allocated: dec("5"),
	}
	s.soItems[key2(testSOID, testProductID)] = &entity.SalesOrderItem{
		SOID: testSOID, ProductID: testProductID, OrderedQty: dec("5"), AllocatedQty: dec("5"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ShipSOItem(context.Background(), testSOID, testProductID, dec("4"), testActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stock := stockOf(s)
	assert.True(t, stock.OnHand.Equal(dec("3")))
	assert.True(t, stock.Allocated.Equal(dec("5")))
	assert.True(t, s.soItems[key2(testSOID, testProductID)].ShippedQty.IsZero())
	assert.Empty(t, s.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyAdjustmentItem
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyAdjustmentItem_CambioConSigno(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("5"), AvgCost: dec("2.50"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})
	ctx := context.Background()

	require.NoError(t, uc.ApplyAdjustmentItem(ctx, testAdjID, testProductID, dec("3"), testActor))
	require.NoError(t, uc.ApplyAdjustmentItem(ctx, testAdjID, testProductID, dec("-2"), testActor))

	stock := stockOf(s)
	assert.True(t, stock.OnHand.Equal(dec("6")))
	assert.True(t, stock.AvgCost.Equal(dec("2.50")), "el ajuste no cambia el costo promedio")

	require.Len(t, s.movements, 2)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, s.movements[0].Type)
	assert.True(t, s.movements[0].Qty.Equal(dec("3")))
	assert.True(t, s.movements[1].Qty.Equal(dec("-2")))
	assert.Equal(t, testAdjID, s.movements[0].Reference)
}

func TestApplyAdjustmentItem_NoDejaStockNegativo(t *testing.T) {
	s := fixture()
	s.stock[key2(testProductID, testWarehouseID)] = &entity.StockLevel{
		ProductID: testProductID, WarehouseID: testWarehouseID, OnHand: dec("5"),
	}
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ApplyAdjustmentItem(context.Background(), testAdjID, testProductID, dec("-1000"), testActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, stockOf(s).OnHand.Equal(dec("5")))
	assert.Empty(t, s.movements)
}

func TestApplyAdjustmentItem_CambioCero(t *testing.T) {
	s := fixture()
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ApplyAdjustmentItem(context.Background(), testAdjID, testProductID, dec("0"), testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestApplyAdjustmentItem_AjusteInexistente(t *testing.T) {
	s := fixture()
	uc, _ := buildUseCase(s, ledger.Options{})

	err := uc.ApplyAdjustmentItem(context.Background(), "adj-fantasma", testProductID, dec("1"), testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante contención
// ──────────────────────────────────────────────────────────────────────────────

func TestContencion_ReintentaYTieneExito(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("10"),
	}
	uc, tx := buildUseCase(s, ledger.Options{MaxRetries: 3})
	tx.contentionLeft = 2 // los dos primeros intentos fallan

	err := uc.ReceivePOItem(context.Background(), testPOID, testProductID, dec("5"), dec("1"), testActor)
	require.NoError(t, err)
	assert.Equal(t, 3, tx.attempts)
	assert.True(t, stockOf(s).OnHand.Equal(dec("5")))
	assert.Len(t, s.movements, 1)
}

func TestContencion_ReintentosAgotados(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("10"),
	}
	uc, tx := buildUseCase(s, ledger.Options{MaxRetries: 2})
	tx.contentionLeft = 100 // nunca deja pasar

	err := uc.ReceivePOItem(context.Background(), testPOID, testProductID, dec("5"), dec("1"), testActor)
	assert.ErrorIs(t, err, domain.ErrContention)
	assert.Equal(t, 3, tx.attempts, "intento inicial + 2 reintentos")
	assert.True(t, stockOf(s).OnHand.IsZero())
	assert.Empty(t, s.movements)
}

// Los errores de negocio no se reintentan: salen en el primer intento.
func TestContencion_ErroresDeNegocioNoReintentan(t *testing.T) {
	s := fixture()
	s.poItems[key2(testPOID, testProductID)] = &entity.PurchaseOrderItem{
		POID: testPOID, ProductID: testProductID, OrderedQty: dec("2"),
	}
	uc, tx := buildUseCase(s, ledger.Options{MaxRetries: 5})

	err := uc.ReceivePOItem(context.Background(), testPOID, testProductID, dec("3"), dec("1"), testActor)
	assert.ErrorIs(t, err, domain.ErrOverReceipt)
	assert.Equal(t, 1, tx.attempts)
}
