package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// In-memory stub repositories. All maps are guarded by one mutex per stub
// so tests can hit them from multiple goroutines. DB() returns nil, which
// makes runTx execute the body directly.

// ─── stock ──────────────────────────────────────────────────────────────────

type stubStockRepo struct {
	mu     sync.Mutex
	stocks map[string]*model.Stock

	// rowMu emulates the database row lock: FindByExtIDForUpdateTx takes
	// it and SaveTx releases it. Tests that abort between the two must
	// call rollback, the way an aborted transaction would release the
	// lock. Enabled only by the concurrency tests.
	lockRows bool
	rowMu    sync.Mutex
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{stocks: map[string]*model.Stock{}}
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) put(s model.Stock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := s
	r.stocks[s.ExternalID] = &cp
}

func (r *stubStockRepo) get(extID string) model.Stock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.stocks[extID]
}

func (r *stubStockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.stocks[s.ExternalID] = &cp
	return nil
}

func (r *stubStockRepo) FindByExtID(ctx context.Context, extID string) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[extID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubStockRepo) FindByProductExtID(ctx context.Context, productExtID string) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stocks {
		if s.ProductExtID == productExtID && !s.DeletedAt.Valid {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStockRepo) FindByExtIDForUpdateTx(tx *gorm.DB, extID string) (*model.Stock, error) {
	if r.lockRows {
		r.rowMu.Lock()
	}
	r.mu.Lock()
	s, ok := r.stocks[extID]
	if !ok {
		r.mu.Unlock()
		if r.lockRows {
			r.rowMu.Unlock()
		}
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	r.mu.Unlock()
	return &cp, nil
}

func (r *stubStockRepo) SaveTx(tx *gorm.DB, s *model.Stock) error {
	r.mu.Lock()
	cp := *s
	r.stocks[s.ExternalID] = &cp
	r.mu.Unlock()
	if r.lockRows {
		r.rowMu.Unlock()
	}
	return nil
}

// rollback releases the emulated row lock the way an aborted transaction
// would.
func (r *stubStockRepo) rollback() {
	if r.lockRows {
		r.rowMu.Unlock()
	}
}

func (r *stubStockRepo) SoftDeleteTx(tx *gorm.DB, extID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stocks[extID]; ok {
		s.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		s.DeletedBy = &deletedBy
	}
	return nil
}

// ─── stock movements ────────────────────────────────────────────────────────

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uint(len(r.movements) + 1)
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(ctx context.Context, stockExtID string, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	all, err := r.ListAll(ctx, stockExtID)
	if err != nil {
		return nil, 0, err
	}
	return all, int64(len(all)), nil
}

func (r *stubMovementRepo) ListAll(ctx context.Context, stockExtID string) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.StockExtID == stockExtID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ─── products ───────────────────────────────────────────────────────────────

type stubProductRepo struct {
	mu         sync.Mutex
	products   map[string]*model.Product
	conditions map[string]*model.ProductCondition // keyed by product ext id
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:   map[string]*model.Product{},
		conditions: map[string]*model.ProductCondition{},
	}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) put(p model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.products[p.ExternalID] = &cp
}

func (r *stubProductRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ExternalID] = &cp
	return nil
}

func (r *stubProductRepo) FindByExtID(ctx context.Context, extID string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[extID]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindDuplicate(ctx context.Context, name, categoryExtID, brandExtID, excludeExtID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.DeletedAt.Valid || p.ExternalID == excludeExtID {
			continue
		}
		if p.Name == name && p.CategoryExtID == categoryExtID && p.BrandExtID == brandExtID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) Save(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ExternalID] = &cp
	return nil
}

func (r *stubProductRepo) SoftDeleteTx(tx *gorm.DB, extID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[extID]; ok {
		p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		p.DeletedBy = &deletedBy
	}
	return nil
}

func (r *stubProductRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if !p.DeletedAt.Valid {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListByConsignor(ctx context.Context, consignorExtID string, filter dto.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if !p.DeletedAt.Valid && p.ConsignorExtID != nil && *p.ConsignorExtID == consignorExtID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) CountByLookup(ctx context.Context, table, extID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.products {
		if p.DeletedAt.Valid {
			continue
		}
		switch table {
		case repository.TableCategories:
			if p.CategoryExtID == extID {
				count++
			}
		case repository.TableBrands:
			if p.BrandExtID == extID {
				count++
			}
		case repository.TableAuthenticators:
			if p.AuthExtID != nil && *p.AuthExtID == extID {
				count++
			}
		}
	}
	return count, nil
}

func (r *stubProductRepo) CreateConditionTx(tx *gorm.DB, c *model.ProductCondition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.conditions[c.ProductExtID] = &cp
	return nil
}

func (r *stubProductRepo) FindConditionByProductExtID(ctx context.Context, productExtID string) (*model.ProductCondition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conditions[productExtID]
	if !ok || c.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubProductRepo) SaveCondition(ctx context.Context, c *model.ProductCondition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.conditions[c.ProductExtID] = &cp
	return nil
}

func (r *stubProductRepo) SoftDeleteConditionTx(tx *gorm.DB, productExtID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conditions[productExtID]; ok {
		c.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		c.DeletedBy = &deletedBy
	}
	return nil
}

// ─── sales ──────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	mu       sync.Mutex
	sales    map[string]*model.Sale
	items    map[string][]model.SaleItem
	payments map[string][]model.PaymentLog
	layaways map[string]*model.SaleLayaway
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		sales:    map[string]*model.Sale{},
		items:    map[string][]model.SaleItem{},
		payments: map[string][]model.PaymentLog{},
		layaways: map[string]*model.SaleLayaway{},
	}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sales[s.ExternalID] = &cp
	return nil
}

func (r *stubSaleRepo) CreateItemsTx(tx *gorm.DB, items []model.SaleItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.SaleExtID] = append(r.items[item.SaleExtID], item)
	}
	return nil
}

func (r *stubSaleRepo) CreatePaymentTx(tx *gorm.DB, p *model.PaymentLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.SaleExtID] = append(r.payments[p.SaleExtID], *p)
	return nil
}

func (r *stubSaleRepo) CreateLayawayTx(tx *gorm.DB, l *model.SaleLayaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.layaways[l.SaleExtID] = &cp
	return nil
}

func (r *stubSaleRepo) SaveTx(tx *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sales[s.ExternalID] = &cp
	return nil
}

func (r *stubSaleRepo) SaveLayawayTx(tx *gorm.DB, l *model.SaleLayaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.layaways[l.SaleExtID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByExtID(ctx context.Context, extID string) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[extID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) FindByExtIDForUpdateTx(tx *gorm.DB, extID string) (*model.Sale, error) {
	return r.FindByExtID(context.Background(), extID)
}

func (r *stubSaleRepo) FindItems(ctx context.Context, saleExtID string) ([]model.SaleItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SaleItem(nil), r.items[saleExtID]...), nil
}

func (r *stubSaleRepo) FindPayments(ctx context.Context, saleExtID string) ([]model.PaymentLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PaymentLog(nil), r.payments[saleExtID]...), nil
}

func (r *stubSaleRepo) FindPaymentsTx(tx *gorm.DB, saleExtID string) ([]model.PaymentLog, error) {
	return r.FindPayments(context.Background(), saleExtID)
}

func (r *stubSaleRepo) FindLayaway(ctx context.Context, saleExtID string) (*model.SaleLayaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.layaways[saleExtID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubSaleRepo) FindLayawayTx(tx *gorm.DB, saleExtID string) (*model.SaleLayaway, error) {
	return r.FindLayaway(context.Background(), saleExtID)
}

func (r *stubSaleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) HasClientTransactions(ctx context.Context, clientExtID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.ClientExtID == clientExtID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSaleRepo) HasStockTransactions(ctx context.Context, stockExtID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, items := range r.items {
		for _, item := range items {
			if item.StockExtID == stockExtID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ─── clients ────────────────────────────────────────────────────────────────

type stubClientRepo struct {
	mu      sync.Mutex
	clients map[string]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: map[string]*model.Client{}}
}

func (r *stubClientRepo) put(c model.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := c
	r.clients[c.ExternalID] = &cp
}

func (r *stubClientRepo) Create(ctx context.Context, c *model.Client) error {
	r.put(*c)
	return nil
}

func (r *stubClientRepo) FindByExtID(ctx context.Context, extID string) (*model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[extID]
	if !ok || c.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClientRepo) Save(ctx context.Context, c *model.Client) error {
	r.put(*c)
	return nil
}

func (r *stubClientRepo) SoftDelete(ctx context.Context, extID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[extID]; ok {
		c.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		c.DeletedBy = &deletedBy
	}
	return nil
}

func (r *stubClientRepo) List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Client
	for _, c := range r.clients {
		if !c.DeletedAt.Valid {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

// ─── lookups ────────────────────────────────────────────────────────────────

type stubMiscRepo struct {
	mu   sync.Mutex
	rows map[string]map[string]*repository.LookupRow // table → ext id → row
}

func newStubMiscRepo() *stubMiscRepo {
	return &stubMiscRepo{rows: map[string]map[string]*repository.LookupRow{}}
}

func (r *stubMiscRepo) put(table string, row repository.LookupRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows[table] == nil {
		r.rows[table] = map[string]*repository.LookupRow{}
	}
	cp := row
	r.rows[table][row.ExternalID] = &cp
}

func (r *stubMiscRepo) Create(ctx context.Context, table string, row *repository.LookupRow) error {
	r.put(table, *row)
	return nil
}

func (r *stubMiscRepo) FindByExtID(ctx context.Context, table, extID string) (*repository.LookupRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[table][extID]
	if !ok || row.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *stubMiscRepo) NameExists(ctx context.Context, table, name, excludeExtID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows[table] {
		if !row.DeletedAt.Valid && row.Name == name && row.ExternalID != excludeExtID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMiscRepo) Save(ctx context.Context, table string, row *repository.LookupRow) error {
	r.put(table, *row)
	return nil
}

func (r *stubMiscRepo) SoftDelete(ctx context.Context, table, extID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[table][extID]; ok {
		row.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		row.DeletedBy = &deletedBy
	}
	return nil
}

func (r *stubMiscRepo) List(ctx context.Context, table, search string, page, limit int) ([]repository.LookupRow, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.LookupRow
	for _, row := range r.rows[table] {
		if !row.DeletedAt.Valid {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

// ─── users ──────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by ext id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*model.User{}}
}

func (r *stubUserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ExternalID] = &cp
	return nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByExtID(ctx context.Context, extID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[extID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

// ─── stats ──────────────────────────────────────────────────────────────────

type stubStatsRepo struct {
	totals       map[model.SaleStatus]repository.StatusTotals
	orders       []repository.CustomerOrdersRow
	productCount int64
}

func newStubStatsRepo() *stubStatsRepo {
	return &stubStatsRepo{totals: map[model.SaleStatus]repository.StatusTotals{}}
}

func (r *stubStatsRepo) SumByStatus(ctx context.Context, status model.SaleStatus, saleType model.SaleType, from, to *time.Time) (repository.StatusTotals, error) {
	return r.totals[status], nil
}

func (r *stubStatsRepo) CustomerOrders(ctx context.Context, from, to time.Time) ([]repository.CustomerOrdersRow, error) {
	var out []repository.CustomerOrdersRow
	for _, row := range r.orders {
		if !row.FirstOrder.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *stubStatsRepo) CountProducts(ctx context.Context, from, to *time.Time) (int64, error) {
	return r.productCount, nil
}
