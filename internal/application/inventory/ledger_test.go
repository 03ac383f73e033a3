package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/erp-core/internal/application/inventory"
	"github.com/jortega/erp-core/internal/domain"
	"github.com/jortega/erp-core/internal/domain/entity"
	"github.com/jortega/erp-core/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica transaccional (commit/rollback por snapshot).
// El mutex serializa las transacciones igual que lo haría el bloqueo de fila.
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodA = "11111111-1111-1111-1111-111111111111"
	whA   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	whB   = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

type memStore struct {
	mu         sync.Mutex
	stock      map[string]*entity.Stock
	movements  []*entity.StockMovement
	warehouses map[string]*entity.Warehouse
}

func newMemStore() *memStore {
	return &memStore{
		stock: make(map[string]*entity.Stock),
		warehouses: map[string]*entity.Warehouse{
			whA: {ID: whA, Name: "Bodega Norte"},
			whB: {ID: whB, Name: "Bodega Sur"},
		},
	}
}

func stockKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

func (s *memStore) snapshot() (map[string]*entity.Stock, []*entity.StockMovement) {
	stockCopy := make(map[string]*entity.Stock, len(s.stock))
	for k, v := range s.stock {
		c := *v
		stockCopy[k] = &c
	}
	movCopy := make([]*entity.StockMovement, len(s.movements))
	copy(movCopy, s.movements)
	return stockCopy, movCopy
}

// quantityOf devuelve la cantidad actual del par (0 si no existe).
func (s *memStore) quantityOf(productID, warehouseID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stock[stockKey(productID, warehouseID)]; ok {
		return st.Quantity
	}
	return 0
}

// sumDeltas reconstruye la cantidad del par sumando los deltas del log.
func (s *memStore) sumDeltas(productID, warehouseID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, m := range s.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum += m.Quantity
		}
	}
	return sum
}

func (s *memStore) movementsOf(productID, warehouseID string) []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			out = append(out, m)
		}
	}
	return out
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	st, ok := r.s.stock[stockKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	c := *st
	return &c, nil
}

func (r *memStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(productID, warehouseID)
}

func (r *memStockRepo) Upsert(stock *entity.Stock) error {
	c := *stock
	r.s.stock[stockKey(stock.ProductID, stock.WarehouseID)] = &c
	return nil
}

func (r *memStockRepo) AddQuantity(productID, warehouseID string, delta int64) (*entity.Stock, error) {
	key := stockKey(productID, warehouseID)
	st, ok := r.s.stock[key]
	if !ok {
		st = &entity.Stock{ProductID: productID, WarehouseID: warehouseID}
		r.s.stock[key] = st
	}
	st.Quantity += delta
	c := *st
	return &c, nil
}

func (r *memStockRepo) SetMinimum(productID, warehouseID string, minimum int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stock[stockKey(productID, warehouseID)]
	if !ok {
		return domain.ErrNotFound
	}
	st.MinimumStock = minimum
	return nil
}

func (r *memStockRepo) ListByProduct(productID string) ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Stock
	for _, st := range r.s.stock {
		if st.ProductID == productID {
			c := *st
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memStockRepo) ListByWarehouse(warehouseID string) ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Stock
	for _, st := range r.s.stock {
		if st.WarehouseID == warehouseID {
			c := *st
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memStockRepo) ListLowStock() ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Stock
	for _, st := range r.s.stock {
		if st.Quantity <= st.MinimumStock {
			c := *st
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memStockRepo) HasStock(productID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.stock {
		if st.ProductID == productID && st.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	c := *m
	r.s.movements = append(r.s.movements, &c)
	return nil
}

func (r *memMovementRepo) ListByProduct(productID string, warehouseID *string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.ProductID != productID {
			continue
		}
		if warehouseID != nil && m.WarehouseID != *warehouseID {
			continue
		}
		out = append(out, m)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memWarehouseRepo struct{ s *memStore }

func (r *memWarehouseRepo) Create(w *entity.Warehouse) error {
	r.s.warehouses[w.ID] = w
	return nil
}

func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *memWarehouseRepo) Update(w *entity.Warehouse) error { return nil }
func (r *memWarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	return nil, nil
}
func (r *memWarehouseRepo) Delete(id string) error { return nil }

// memTxRunner serializa las transacciones y aplica rollback por snapshot si
// el callback falla, imitando Begin/Commit/Rollback.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	stockSnap, movSnap := t.s.snapshot()
	err := fn(&memMovementRepo{s: t.s}, &memStockRepo{s: t.s})
	if err != nil {
		t.s.stock = stockSnap
		t.s.movements = movSnap
		return err
	}
	return nil
}

func newLedger(s *memStore) *inventory.LedgerUseCase {
	return inventory.NewLedgerUseCase(
		&memTxRunner{s: s},
		&memWarehouseRepo{s: s},
		&memStockRepo{s: s},
		&memMovementRepo{s: s},
		nil,
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_CreaExistenciaYMovimiento(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	stock, err := uc.Receive(context.Background(), prodA, whA, 10, "compra inicial")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock.Quantity)

	movs := s.movementsOf(prodA, whA)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindReceive, movs[0].Kind)
	assert.Equal(t, int64(10), movs[0].Quantity, "el delta de Receive debe ser positivo")
	assert.Equal(t, "compra inicial", movs[0].Reason)
}

func TestReceive_AcumulaSobreExistenciaPrevia(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)
	stock, err := uc.Receive(context.Background(), prodA, whA, 5, "")
	require.NoError(t, err)

	assert.Equal(t, int64(15), stock.Quantity)
	assert.Len(t, s.movementsOf(prodA, whA), 2)
}

func TestReceive_CantidadCeroONegativa_Rechazada(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Receive(context.Background(), prodA, whA, -3, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, s.movementsOf(prodA, whA), "una operación rechazada no debe dejar movimientos")
}

func TestReceive_BodegaInexistente_Rechazada(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, "99999999-9999-9999-9999-999999999999", 5, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Issue
// ──────────────────────────────────────────────────────────────────────────────

func TestIssue_DescuentaYAnexaDeltaNegativo(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)

	stock, err := uc.Issue(context.Background(), prodA, whA, 4, "venta mostrador")
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock.Quantity)

	movs := s.movementsOf(prodA, whA)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindIssue, movs[1].Kind)
	assert.Equal(t, int64(-4), movs[1].Quantity, "el delta de Issue debe ser negativo")
}

func TestIssue_StockInsuficiente_ErrorTipadoSinEfectos(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 5, "")
	require.NoError(t, err)

	_, err = uc.Issue(context.Background(), prodA, whA, 8, "")
	require.Error(t, err)

	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(8), insufficientErr.Requested)
	assert.Equal(t, int64(5), insufficientErr.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), s.quantityOf(prodA, whA), "la cantidad no debe cambiar tras un rechazo")
	assert.Len(t, s.movementsOf(prodA, whA), 1, "el rechazo no debe anexar movimiento")
}

func TestIssue_ParInexistente_NotFound(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Issue(context.Background(), prodA, whA, 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos salidas concurrentes de 7 sobre una existencia de 10: exactamente una
// debe pasar y la otra debe rechazarse por insuficiencia, nunca quedar
// cantidad negativa.
func TestIssue_ConcurrenciaNoSobrevende(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Issue(context.Background(), prodA, whA, 7, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, failed int
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, ok, "exactamente una salida debe completarse")
	assert.Equal(t, 1, failed, "la otra debe rechazarse")
	assert.Equal(t, int64(3), s.quantityOf(prodA, whA))
	assert.GreaterOrEqual(t, s.quantityOf(prodA, whA), int64(0), "la cantidad nunca puede ser negativa")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveYAnexaDosMovimientos(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)

	err = uc.Transfer(context.Background(), prodA, whA, whB, 4, "rebalanceo")
	require.NoError(t, err)

	assert.Equal(t, int64(6), s.quantityOf(prodA, whA))
	assert.Equal(t, int64(4), s.quantityOf(prodA, whB))

	outMovs := s.movementsOf(prodA, whA)
	inMovs := s.movementsOf(prodA, whB)
	require.Len(t, outMovs, 2) // Receive + Transfer
	require.Len(t, inMovs, 1)
	assert.Equal(t, entity.MovementKindTransfer, outMovs[1].Kind)
	assert.Equal(t, int64(-4), outMovs[1].Quantity, "origen registra delta negativo")
	assert.Equal(t, entity.MovementKindTransfer, inMovs[0].Kind)
	assert.Equal(t, int64(4), inMovs[0].Quantity, "destino registra delta positivo")
}

func TestTransfer_MismaBodega_Rechazado(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	err := uc.Transfer(context.Background(), prodA, whA, whA, 4, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_OrigenInsuficiente_SinEfectos(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 3, "")
	require.NoError(t, err)

	err = uc.Transfer(context.Background(), prodA, whA, whB, 5, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(3), s.quantityOf(prodA, whA), "origen intacto tras el rechazo")
	assert.Equal(t, int64(0), s.quantityOf(prodA, whB), "destino intacto tras el rechazo")
	assert.Empty(t, s.movementsOf(prodA, whB))
}

func TestTransfer_DestinoInexistente_Rechazado(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)

	err = uc.Transfer(context.Background(), prodA, whA, "99999999-9999-9999-9999-999999999999", 2, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(10), s.quantityOf(prodA, whA))
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_FijaCantidadYRegistraDelta(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)

	stock, err := uc.Adjust(context.Background(), prodA, whA, 7, "conteo físico")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stock.Quantity)

	movs := s.movementsOf(prodA, whA)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindAdjust, movs[1].Kind)
	assert.Equal(t, int64(-3), movs[1].Quantity, "delta = nueva cantidad - anterior")
}

func TestAdjust_SinCambio_RegistraDeltaCero(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Receive(context.Background(), prodA, whA, 10, "")
	require.NoError(t, err)

	_, err = uc.Adjust(context.Background(), prodA, whA, 10, "conteo sin diferencias")
	require.NoError(t, err)

	movs := s.movementsOf(prodA, whA)
	require.Len(t, movs, 2, "el ajuste siempre anexa movimiento, aun con delta cero")
	assert.Equal(t, int64(0), movs[1].Quantity)
}

func TestAdjust_NegativoRechazado(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	_, err := uc.Adjust(context.Background(), prodA, whA, -1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante de reconstrucción: la suma de deltas del log reproduce la
// cantidad actual de cada par, tras una secuencia mixta de operaciones.
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_SumaDeDeltasReconstruyeCantidad(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)
	ctx := context.Background()

	_, err := uc.Receive(ctx, prodA, whA, 20, "")
	require.NoError(t, err)
	_, err = uc.Issue(ctx, prodA, whA, 6, "")
	require.NoError(t, err)
	require.NoError(t, uc.Transfer(ctx, prodA, whA, whB, 5, ""))
	_, err = uc.Adjust(ctx, prodA, whA, 10, "")
	require.NoError(t, err)
	_, err = uc.Receive(ctx, prodA, whB, 3, "")
	require.NoError(t, err)

	assert.Equal(t, s.quantityOf(prodA, whA), s.sumDeltas(prodA, whA),
		"la suma de deltas debe reconstruir la existencia en la bodega A")
	assert.Equal(t, s.quantityOf(prodA, whB), s.sumDeltas(prodA, whB),
		"la suma de deltas debe reconstruir la existencia en la bodega B")
}

// ──────────────────────────────────────────────────────────────────────────────
// SetMinimumStock y consulta de stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestSetMinimumStock_YLowStock(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)
	ctx := context.Background()

	_, err := uc.Receive(ctx, prodA, whA, 10, "")
	require.NoError(t, err)

	require.NoError(t, uc.SetMinimumStock(ctx, prodA, whA, 4))

	low, err := uc.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low, "con 10 unidades y mínimo 4 no hay stock bajo")

	_, err = uc.Issue(ctx, prodA, whA, 6, "")
	require.NoError(t, err)

	low, err = uc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1, "con 4 unidades y mínimo 4 el par ya es stock bajo")
	assert.Equal(t, prodA, low[0].ProductID)
	assert.True(t, low[0].IsLow())
}

func TestSetMinimumStock_ParInexistente_NotFound(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	err := uc.SetMinimumStock(context.Background(), prodA, whA, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetMinimumStock_NegativoRechazado(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)

	err := uc.SetMinimumStock(context.Background(), prodA, whA, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// History
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_MasRecientePrimeroYFiltroPorBodega(t *testing.T) {
	s := newMemStore()
	uc := newLedger(s)
	ctx := context.Background()

	_, err := uc.Receive(ctx, prodA, whA, 10, "primero")
	require.NoError(t, err)
	_, err = uc.Receive(ctx, prodA, whB, 5, "segundo")
	require.NoError(t, err)
	_, err = uc.Issue(ctx, prodA, whA, 2, "tercero")
	require.NoError(t, err)

	all, err := uc.History(ctx, prodA, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tercero", all[0].Reason, "el más reciente va primero")

	wh := whA
	onlyA, err := uc.History(ctx, prodA, &wh, 10, 0)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	for _, m := range onlyA {
		assert.Equal(t, whA, m.WarehouseID)
	}
}
