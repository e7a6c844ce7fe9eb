package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
)

// errQueue отдаёт заранее заданные ошибки по одной на вызов.
type errQueue []error

func (q *errQueue) next() error {
	if len(*q) == 0 {
		return nil
	}
	err := (*q)[0]
	*q = (*q)[1:]
	return err
}

func notFound(path string) error {
	return &e.RemoteError{Method: "GET", Path: path, Status: 404, Body: "not found"}
}

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]*domain.Product
	seq   int

	getCalls int
	setCalls int
	setErrs  errQueue
	// applyOnErr: запись применяется, но ответ теряется
	applyOnErr bool
	// rereadErr отдаётся первым GetByID после неудачной записи остатка
	rereadErr  error
	pendingErr error
	// onSet вызывается перед каждой записью остатка
	onSet func()
}

func newFakeProducts(products ...domain.Product) *fakeProducts {
	f := &fakeProducts{items: make(map[string]*domain.Product)}
	for _, p := range products {
		f.items[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) quantity(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Quantity
}

func (f *fakeProducts) List(_ context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	if err := f.pendingErr; err != nil {
		f.pendingErr = nil
		return nil, err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, notFound("/productos/" + id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	cp := *product
	cp.ID = fmt.Sprintf("prod-%d", f.seq)
	f.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeProducts) Update(_ context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.items[product.ID]
	if !ok {
		return notFound("/productos/" + product.ID)
	}
	qty := p.Quantity
	cp := *product
	cp.Quantity = qty
	f.items[product.ID] = &cp
	return nil
}

func (f *fakeProducts) SetQuantity(_ context.Context, id string, quantity int64) error {
	if f.onSet != nil {
		f.onSet()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.setCalls++
	p, ok := f.items[id]
	if !ok {
		return notFound("/productos/" + id)
	}
	if err := f.setErrs.next(); err != nil {
		if f.applyOnErr {
			p.Quantity = quantity
		}
		f.pendingErr = f.rereadErr
		return err
	}
	p.Quantity = quantity
	return nil
}

type fakePurchases struct {
	mu    sync.Mutex
	items map[string]*domain.Purchase
	order []string
	seq   int

	listCalls  int
	createErrs errQueue
	updateErrs errQueue
	deleteErrs errQueue
	// applyOnErr и rereadErr работают как у fakeProducts
	applyOnErr bool
	rereadErr  error
	pendingErr error
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{items: make(map[string]*domain.Purchase)}
}

func (f *fakePurchases) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakePurchases) get(id string) (domain.Purchase, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return domain.Purchase{}, false
	}
	return *p, true
}

func (f *fakePurchases) List(_ context.Context) ([]domain.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	out := make([]domain.Purchase, 0, len(f.order))
	for _, id := range f.order {
		if p, ok := f.items[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePurchases) GetByID(_ context.Context, id string) (*domain.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.pendingErr; err != nil {
		f.pendingErr = nil
		return nil, err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, notFound("/compras/" + id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePurchases) Create(_ context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.createErrs.next(); err != nil {
		return nil, err
	}
	f.seq++
	cp := *purchase
	cp.ID = fmt.Sprintf("pur-%d", f.seq)
	f.items[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
	out := cp
	return &out, nil
}

func (f *fakePurchases) Update(_ context.Context, purchase *domain.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.updateErrs.next(); err != nil {
		if _, ok := f.items[purchase.ID]; ok && f.applyOnErr {
			cp := *purchase
			f.items[purchase.ID] = &cp
		}
		f.pendingErr = f.rereadErr
		return err
	}
	if _, ok := f.items[purchase.ID]; !ok {
		return notFound("/compras/" + purchase.ID)
	}
	cp := *purchase
	f.items[purchase.ID] = &cp
	return nil
}

func (f *fakePurchases) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.deleteErrs.next(); err != nil {
		f.pendingErr = f.rereadErr
		return err
	}
	if _, ok := f.items[id]; !ok {
		return notFound("/compras/" + id)
	}
	delete(f.items, id)
	return nil
}

// put кладёт закупку в хранилище в обход учёта.
func (f *fakePurchases) put(p domain.Purchase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[p.ID] = &p
	f.order = append(f.order, p.ID)
}

type fakeSuppliers struct {
	items []domain.Supplier
	seq   int
}

func (f *fakeSuppliers) List(_ context.Context) ([]domain.Supplier, error) {
	return slices.Clone(f.items), nil
}

func (f *fakeSuppliers) Create(_ context.Context, s *domain.Supplier) (*domain.Supplier, error) {
	f.seq++
	cp := *s
	cp.ID = fmt.Sprintf("sup-%d", f.seq)
	f.items = append(f.items, cp)
	return &cp, nil
}

func (f *fakeSuppliers) Update(_ context.Context, s *domain.Supplier) error {
	for i := range f.items {
		if f.items[i].ID == s.ID {
			f.items[i] = *s
			return nil
		}
	}
	return notFound("/proveedores/" + s.ID)
}

func (f *fakeSuppliers) Delete(_ context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return notFound("/proveedores/" + id)
}

type fakeClients struct {
	items []domain.Client
	seq   int
}

func (f *fakeClients) List(_ context.Context) ([]domain.Client, error) {
	return slices.Clone(f.items), nil
}

func (f *fakeClients) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	f.seq++
	cp := *c
	cp.ID = fmt.Sprintf("cli-%d", f.seq)
	f.items = append(f.items, cp)
	return &cp, nil
}

func (f *fakeClients) Update(_ context.Context, c *domain.Client) error {
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return notFound("/clientes/" + c.ID)
}

func (f *fakeClients) Delete(_ context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return notFound("/clientes/" + id)
}

type fakeCache struct {
	mu        sync.Mutex
	purchases []domain.Purchase
	cached    bool
	deletes   int
}

func (f *fakeCache) GetPurchases(_ context.Context) ([]domain.Purchase, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.cached {
		return nil, false, nil
	}
	return slices.Clone(f.purchases), true, nil
}

func (f *fakeCache) SetPurchases(_ context.Context, purchases []domain.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = slices.Clone(purchases)
	f.cached = true
	return nil
}

func (f *fakeCache) DeletePurchases(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = nil
	f.cached = false
	f.deletes++
	return nil
}

type fakeJournal struct {
	mu        sync.Mutex
	movements []domain.Movement
	recs      []domain.Reconciliation
	appendErr error
}

func (f *fakeJournal) AppendMovements(_ context.Context, movements []domain.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeJournal) CreateReconciliation(_ context.Context, rec *domain.Reconciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeJournal) ListReconciliations(_ context.Context, status domain.ReconciliationStatus) ([]domain.Reconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Reconciliation{}
	for _, r := range f.recs {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeJournal) ResolveReconciliation(_ context.Context, id, note string) (*domain.Reconciliation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.recs {
		if f.recs[i].ID == id {
			now := time.Now().UTC()
			f.recs[i].Status = domain.ReconciliationResolved
			f.recs[i].Note = note
			f.recs[i].ResolvedAt = &now
			rec := f.recs[i]
			return &rec, nil
		}
	}
	return nil, e.ErrNotFound
}

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLock struct {
	locker *fakeLocker
	key    string
}

func (l *fakeLock) Release(_ context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.key)
	return nil
}

// fakeLocker отказывает, если ключ уже занят.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) Obtain(_ context.Context, key string) (Lock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] {
		return nil, e.ErrConflict
	}
	f.held[key] = true
	return &fakeLock{locker: f, key: key}, nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	partial  int
}

func (f *fakeMetrics) ObserveOperation(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = make(map[string]int)
	}
	f.outcomes[op+":"+e.Classify(err)]++
}

func (f *fakeMetrics) IncPartialFailure(_ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partial++
}

type ledgerFixture struct {
	products  *fakeProducts
	purchases *fakePurchases
	suppliers *fakeSuppliers
	cache     *fakeCache
	journal   *fakeJournal
	locker    *fakeLocker
	metrics   *fakeMetrics
	uc        *LedgerUseCase
}

func newLedgerFixture(products ...domain.Product) *ledgerFixture {
	f := &ledgerFixture{
		products:  newFakeProducts(products...),
		purchases: newFakePurchases(),
		suppliers: &fakeSuppliers{items: []domain.Supplier{
			{ID: "s1", FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Phone: "3001234567"},
			{ID: "s2", FirstName: "Luis", LastName: "Mora", Email: "luis@example.com", Phone: "3007654321"},
			{ID: "s3", FirstName: "Luis", LastName: "Pardo", Email: "lp@example.com", Phone: "3000000000"},
		}},
		cache:   &fakeCache{},
		journal: &fakeJournal{},
		locker:  newFakeLocker(),
		metrics: &fakeMetrics{},
	}
	f.uc = NewLedgerUC(
		f.products,
		f.purchases,
		f.suppliers,
		f.cache,
		f.journal,
		fakeTx{},
		f.locker,
		f.metrics,
		logger.NewNopLogger(),
	)
	return f
}

