package orders_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Sastreria-api/internal/application/authz"
	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/internal/domain"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con transacciones simuladas
// ──────────────────────────────────────────────────────────────────────────────

// memDB guarda pedidos, líneas e historial. RunOrders toma txLock durante toda la
// transacción (equivale al bloqueo de fila) y restaura la instantánea si fn falla.
type memDB struct {
	txLock sync.Mutex
	mu     sync.Mutex

	orders  map[string]entity.TailoringOrder
	lines   map[string]entity.TailoringOrderLine
	history []entity.OrderStateHistory
	seq     int64

	failHistoryAppend bool
	updates           int

	// conns limita las conexiones como un pool; nil = sin límite.
	conns chan struct{}
}

// withPool limita memDB y authorizer a n conexiones compartidas.
func withPool(db *memDB, az *fakeAuthorizer, n int) {
	conns := make(chan struct{}, n)
	db.conns = conns
	az.conns = conns
}

// acquireConn toma una conexión del pool o falla cuando vence ctx.
func acquireConn(ctx context.Context, conns chan struct{}) (func(), error) {
	if conns == nil {
		return func() {}, nil
	}
	select {
	case conns <- struct{}{}:
		return func() { <-conns }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newMemDB() *memDB {
	return &memDB{
		orders: map[string]entity.TailoringOrder{},
		lines:  map[string]entity.TailoringOrderLine{},
	}
}

type memSnapshot struct {
	orders  map[string]entity.TailoringOrder
	lines   map[string]entity.TailoringOrderLine
	history []entity.OrderStateHistory
	seq     int64
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		orders:  make(map[string]entity.TailoringOrder, len(db.orders)),
		lines:   make(map[string]entity.TailoringOrderLine, len(db.lines)),
		history: append([]entity.OrderStateHistory(nil), db.history...),
		seq:     db.seq,
	}
	for k, v := range db.orders {
		s.orders[k] = v
	}
	for k, v := range db.lines {
		s.lines[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.orders, db.lines, db.history, db.seq = s.orders, s.lines, s.history, s.seq
}

func (db *memDB) RunOrders(ctx context.Context, fn func(
	orderRepo repository.TailoringOrderRepository,
	historyRepo repository.OrderStateHistoryRepository,
) error) error {
	release, err := acquireConn(ctx, db.conns)
	if err != nil {
		return err
	}
	defer release()

	// El bloqueo de fila se espera con la conexión ya tomada.
	db.txLock.Lock()
	defer db.txLock.Unlock()
	snap := db.snapshot()
	if err := fn(&memOrderRepo{db: db}, &memHistoryRepo{db: db}); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

// seedOrder inserta un pedido con sus líneas y la fila inicial de historial.
func (db *memDB) seedOrder(id, storeID string, lineIDs ...string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db.orders[id] = entity.TailoringOrder{
		ID: id, OrderNumber: "SA-2026-" + id, Status: entity.StatusCreated, StoreID: storeID,
		OrderType: entity.OrderTypeArtesanal, RecipientType: entity.RecipientCliente, CreatedAt: now, UpdatedAt: now,
	}
	for _, lid := range lineIDs {
		db.lines[lid] = entity.TailoringOrderLine{ID: lid, OrderID: id, GarmentType: "traje", Status: entity.StatusCreated}
	}
	db.history = append(db.history, entity.OrderStateHistory{
		ID: "h-" + id, OrderID: id, NewStatus: entity.StatusCreated, ChangedBy: "seed", ChangedAt: now,
	})
}

func (db *memDB) orderStatus(id string) entity.OrderStatus {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.orders[id].Status
}

func (db *memDB) lineStatus(id string) entity.OrderStatus {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.lines[id].Status
}

func (db *memDB) historyOf(orderID string) []entity.OrderStateHistory {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []entity.OrderStateHistory
	for _, h := range db.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

type memOrderRepo struct{ db *memDB }

var _ repository.TailoringOrderRepository = (*memOrderRepo)(nil)

func (r *memOrderRepo) Create(_ context.Context, o *entity.TailoringOrder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.orders {
		if existing.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *o
	cp.Lines = nil
	r.db.orders[o.ID] = cp
	return nil
}

func (r *memOrderRepo) CreateLine(_ context.Context, l *entity.TailoringOrderLine) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.orders[l.OrderID]; !ok {
		return fmt.Errorf("fk: pedido %s inexistente", l.OrderID)
	}
	r.db.lines[l.ID] = *l
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*entity.TailoringOrder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	for _, l := range r.db.lines {
		if l.OrderID == id {
			cp := l
			o.Lines = append(o.Lines, &cp)
		}
	}
	sort.Slice(o.Lines, func(i, j int) bool { return o.Lines[i].ID < o.Lines[j].ID })
	return &o, nil
}

func (r *memOrderRepo) GetForUpdate(_ context.Context, id string) (*entity.TailoringOrder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memOrderRepo) GetLineForUpdate(_ context.Context, lineID string) (*entity.TailoringOrderLine, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.lines[lineID]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, orderID string, status entity.OrderStatus, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status, o.UpdatedAt = status, at
	r.db.orders[orderID] = o
	r.db.updates++
	return nil
}

func (r *memOrderRepo) UpdateLineStatus(_ context.Context, lineID string, status entity.OrderStatus, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.lines[lineID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Status, l.UpdatedAt = status, at
	r.db.lines[lineID] = l
	r.db.updates++
	return nil
}

func (r *memOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.TailoringOrder, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	allowed := map[string]bool{}
	for _, s := range f.StoreIDs {
		allowed[s] = true
	}
	var all []*entity.TailoringOrder
	for _, o := range r.db.orders {
		if len(f.StoreIDs) > 0 && !allowed[o.StoreID] {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		cp := o
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if f.Offset >= total {
		return []*entity.TailoringOrder{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

func (r *memOrderRepo) NextOrderNumber(context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.seq++
	return r.db.seq, nil
}

type memHistoryRepo struct{ db *memDB }

var _ repository.OrderStateHistoryRepository = (*memHistoryRepo)(nil)

func (r *memHistoryRepo) Append(_ context.Context, e *entity.OrderStateHistory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failHistoryAppend {
		return errors.New("insert order_state_history: disco lleno")
	}
	r.db.history = append(r.db.history, *e)
	return nil
}

func (r *memHistoryRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OrderStateHistory, error) {
	var out []*entity.OrderStateHistory
	for _, h := range r.db.historyOf(orderID) {
		cp := h
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización, auditoría, tiendas, clientes y PDF
// ──────────────────────────────────────────────────────────────────────────────

type fakeAuthorizer struct {
	perms  map[string][]string // userID -> permisos
	stores map[string][]string // userID -> tiendas
	conns  chan struct{}       // cada consulta ocupa una conexión, como el resolver real
}

var _ orders.Authorizer = (*fakeAuthorizer)(nil)

func newFakeAuthorizer() *fakeAuthorizer {
	return &fakeAuthorizer{perms: map[string][]string{}, stores: map[string][]string{}}
}

func (f *fakeAuthorizer) grant(userID string, storeIDs []string, perms ...string) {
	f.perms[userID] = perms
	f.stores[userID] = storeIDs
}

func (f *fakeAuthorizer) has(userID, code string) bool {
	for _, p := range f.perms[userID] {
		if p == code {
			return true
		}
	}
	return false
}

// query simula la ida a la base de datos del resolver.
func (f *fakeAuthorizer) query(ctx context.Context) error {
	release, err := acquireConn(ctx, f.conns)
	if err != nil {
		return err
	}
	release()
	return nil
}

func (f *fakeAuthorizer) RequirePermission(ctx context.Context, userID, code string) error {
	if err := f.query(ctx); err != nil {
		return err
	}
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if !f.has(userID, code) {
		return fmt.Errorf("%w: falta el permiso %s", domain.ErrForbidden, code)
	}
	return nil
}

func (f *fakeAuthorizer) RequireStoreAccess(ctx context.Context, userID, storeID string) error {
	scope, err := f.StoreScope(ctx, userID)
	if err != nil {
		return err
	}
	if !scope.Allows(storeID) {
		return fmt.Errorf("%w: sin acceso a la tienda %s", domain.ErrForbidden, storeID)
	}
	return nil
}

func (f *fakeAuthorizer) StoreScope(ctx context.Context, userID string) (authz.StoreScope, error) {
	if err := f.query(ctx); err != nil {
		return authz.StoreScope{}, err
	}
	if userID == "" {
		return authz.StoreScope{}, domain.ErrUnauthorized
	}
	if f.has(userID, entity.PermStoresAll) {
		return authz.StoreScope{All: true}, nil
	}
	return authz.StoreScope{StoreIDs: f.stores[userID]}, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []entity.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, e entity.AuditLog) {
	f.mu.Lock()
	f.entries = append(f.entries, e)
	f.mu.Unlock()
}

func (f *fakeAudit) all() []entity.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.AuditLog(nil), f.entries...)
}

type fakeStoreRepo struct{ stores map[string]*entity.Store }

func (f *fakeStoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	return f.stores[id], nil
}

type fakeClientRepo struct{ clients map[string]*entity.Client }

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	return f.clients[id], nil
}

type fakeSheetGenerator struct{ got orders.OrderSheetData }

func (f *fakeSheetGenerator) GenerateOrderSheet(_ context.Context, data orders.OrderSheetData) ([]byte, error) {
	f.got = data
	return []byte("%PDF-1.4 fake"), nil
}
