package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/apperr"
	"stockmate/internal/mailer"
	"stockmate/internal/models"
)

// memProducts is a mutex-guarded in-memory ProductStore. ApplyDelta holds
// the lock across the check and the write, giving the same per-product
// atomicity the mongo conditional update provides.
type memProducts struct {
	mu sync.Mutex
	m  map[primitive.ObjectID]*models.Product
}

func newMemProducts() *memProducts {
	return &memProducts{m: make(map[primitive.ObjectID]*models.Product)}
}

func (s *memProducts) add(p *models.Product) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	s.m[p.ID] = &cp
	return p
}

func (s *memProducts) Create(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.add(p)
	return nil
}

func (s *memProducts) FindByID(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok || (p.IsDeleted && !includeDeleted) {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	cp := *p
	return &cp, nil
}

func (s *memProducts) inScope(p *models.Product, categories []primitive.ObjectID) bool {
	if categories == nil {
		return true
	}
	for _, c := range categories {
		if c == p.CategoryID {
			return true
		}
	}
	return false
}

func (s *memProducts) findWhere(categories []primitive.ObjectID, keep func(*models.Product) bool) []*models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Product, 0)
	for _, p := range s.m {
		if p.IsDeleted || !s.inScope(p, categories) || !keep(p) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func (s *memProducts) FindAll(ctx context.Context, categories []primitive.ObjectID, page, pageSize int) ([]*models.Product, int64, error) {
	all := s.findWhere(categories, func(*models.Product) bool { return true })
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() < all[j].ID.Hex()
	})

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *memProducts) FindLowStock(ctx context.Context, categories []primitive.ObjectID) ([]*models.Product, error) {
	return s.findWhere(categories, func(p *models.Product) bool {
		return p.Quantity <= p.LowStockThreshold
	}), nil
}

func (s *memProducts) FindExpiring(ctx context.Context, categories []primitive.ObjectID, from, to time.Time) ([]*models.Product, error) {
	return s.findWhere(categories, func(p *models.Product) bool {
		return p.ExpiryDate != nil && !p.ExpiryDate.Before(from) && !p.ExpiryDate.After(to)
	}), nil
}

func (s *memProducts) FindByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*models.Product, error) {
	return s.findWhere(nil, func(p *models.Product) bool {
		for _, v := range p.VendorIDs {
			if v == vendorID {
				return true
			}
		}
		return false
	}), nil
}

func (s *memProducts) ApplyDelta(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok || p.IsDeleted {
		return 0, apperr.New(apperr.NotFound, "product not found")
	}
	if p.Quantity+delta < 0 {
		return 0, apperr.New(apperr.InsufficientStock, "insufficient stock")
	}
	p.Quantity += delta
	return p.Quantity, nil
}

func (s *memProducts) SetQuantity(ctx context.Context, id primitive.ObjectID, quantity int64, audit models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok || p.IsDeleted {
		return apperr.New(apperr.NotFound, "product not found")
	}
	p.Quantity = quantity
	p.EditedBy = append(p.EditedBy, audit)
	return nil
}

func (s *memProducts) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch, audit models.AuditEntry) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok || p.IsDeleted {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.VendorIDs != nil {
		p.VendorIDs = patch.VendorIDs
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	if patch.Currency != nil {
		p.Currency = *patch.Currency
	}
	if patch.LowStockThreshold != nil {
		p.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.ExpiryDate != nil {
		p.ExpiryDate = patch.ExpiryDate
	}
	if patch.ClearExpiryDate {
		p.ExpiryDate = nil
	}
	if patch.Image != nil {
		p.Image = patch.Image
	}
	p.EditedBy = append(p.EditedBy, audit)
	cp := *p
	return &cp, nil
}

func (s *memProducts) SoftDelete(ctx context.Context, id primitive.ObjectID, audit models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok || p.IsDeleted {
		return apperr.New(apperr.NotFound, "product not found")
	}
	p.IsDeleted = true
	p.DeletedBy = &audit
	return nil
}

// memTransactions is an in-memory TransactionStore.
type memTransactions struct {
	mu  sync.Mutex
	txs []*models.Transaction

	failInsert error
}

func newMemTransactions() *memTransactions {
	return &memTransactions{}
}

func (s *memTransactions) Insert(ctx context.Context, tx *models.Transaction) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()
	cp := *tx
	s.txs = append(s.txs, &cp)
	return nil
}

func (s *memTransactions) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "transaction not found")
}

func (s *memTransactions) FindAll(ctx context.Context, performedBy *primitive.ObjectID) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Transaction, 0)
	for _, tx := range s.txs {
		if performedBy != nil && tx.PerformedBy.User != *performedBy {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memTransactions) Stats(ctx context.Context, from, to time.Time) (*models.SalesStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.SalesStats{
		TopProducts:     []models.ProductSales{},
		ByPaymentMethod: []models.PaymentMethodSales{},
	}
	byMethod := make(map[string]*models.PaymentMethodSales)
	for _, tx := range s.txs {
		if tx.TransactionDate.Before(from) || tx.TransactionDate.After(to) {
			continue
		}
		stats.TotalTransactions++
		stats.TotalSalesCents += tx.TotalCents
		m, ok := byMethod[tx.PaymentMethod]
		if !ok {
			m = &models.PaymentMethodSales{Method: tx.PaymentMethod}
			byMethod[tx.PaymentMethod] = m
		}
		m.Count++
		m.TotalCents += tx.TotalCents
	}
	for _, m := range byMethod {
		stats.ByPaymentMethod = append(stats.ByPaymentMethod, *m)
	}
	return stats, nil
}

// memNotifications is an in-memory NotificationStore.
type memNotifications struct {
	mu sync.Mutex
	ns []*models.Notification

	failInsert error
}

func newMemNotifications() *memNotifications {
	return &memNotifications{}
}

func (s *memNotifications) Insert(ctx context.Context, n *models.Notification) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	cp := *n
	s.ns = append(s.ns, &cp)
	return nil
}

func (s *memNotifications) FindAll(ctx context.Context) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Notification, 0, len(s.ns))
	for _, n := range s.ns {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memNotifications) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.ns {
		if n.ID == id {
			s.ns = append(s.ns[:i], s.ns[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "notification not found")
}

func (s *memNotifications) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ns)
}

// memRefs is a set-backed CategoryRef/VendorRef.
type memRefs struct {
	mu  sync.Mutex
	ids map[primitive.ObjectID]bool
}

func newMemRefs(ids ...primitive.ObjectID) *memRefs {
	r := &memRefs{ids: make(map[primitive.ObjectID]bool)}
	for _, id := range ids {
		r.ids[id] = true
	}
	return r
}

func (r *memRefs) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id], nil
}

// recordingSender captures sent mail; when fail is set, every send errors.
type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail error
}

func (s *recordingSender) Send(m mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, m)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
