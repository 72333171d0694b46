package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/m3rciful/storebot/internal/models"
)

// In-memory stores backing the service tests. They mirror the repository
// contracts without touching a live database.

type memCategories struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Category
}

func newMemCategories() *memCategories {
	return &memCategories{nextID: 1, rows: make(map[int64]models.Category)}
}

func (m *memCategories) Create(_ context.Context, cat *models.Category) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Name == cat.Name {
			return 0, errDuplicate
		}
	}
	id := m.nextID
	m.nextID++
	stored := *cat
	stored.ID = id
	stored.CreatedAt = time.Now()
	m.rows[id] = stored
	return id, nil
}

func (m *memCategories) ByID(_ context.Context, id int64) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cat, ok := m.rows[id]; ok {
		out := cat
		return &out, nil
	}
	return nil, nil
}

func (m *memCategories) ByChannel(_ context.Context, ch models.Channel) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, cat := range m.rows {
		if cat.Channel == ch {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memProducts struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Product
}

func newMemProducts() *memProducts {
	return &memProducts{nextID: 1, rows: make(map[int64]models.Product)}
}

func (m *memProducts) Create(_ context.Context, p *models.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	stored := *p
	stored.ID = id
	m.rows[id] = stored
	return id, nil
}

func (m *memProducts) ByID(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		out := p
		return &out, nil
	}
	return nil, nil
}

func (m *memProducts) ByCategory(_ context.Context, categoryID int64) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.rows {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	list, err := m.ByCategory(ctx, categoryID)
	return len(list), err
}

func (m *memProducts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memSections struct {
	mu   sync.Mutex
	rows map[string]models.Section
}

func newMemSections() *memSections {
	return &memSections{rows: make(map[string]models.Section)}
}

func (m *memSections) ByKey(_ context.Context, key string) (*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.rows[key]; ok {
		out := s
		return &out, nil
	}
	return nil, nil
}

func (m *memSections) Update(_ context.Context, key, content string, photoPath *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.rows[key]
	s.Key = key
	s.Content = content
	s.PhotoPath = photoPath
	s.UpdatedAt = time.Now()
	m.rows[key] = s
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Order
}

func newMemOrders() *memOrders {
	return &memOrders{nextID: 1, rows: make(map[int64]models.Order)}
}

func (m *memOrders) Create(_ context.Context, o *models.Order) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	stored := *o
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.rows[id] = stored
	return id, nil
}

func (m *memOrders) ByID(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.rows[id]; ok {
		out := o
		return &out, nil
	}
	return nil, nil
}

func (m *memOrders) Pending(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.rows {
		if o.Status == models.OrderStatusPending {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) MarkClosed(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok || o.Status != models.OrderStatusPending {
		return false, nil
	}
	o.Status = models.OrderStatusClosed
	m.rows[id] = o
	return true, nil
}

func (m *memOrders) ClosedBefore(_ context.Context, cutoff time.Time) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.rows {
		if o.Status == models.OrderStatusClosed && o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memPayments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]models.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{nextID: 1, rows: make(map[string]models.Payment)}
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	stored := *p
	stored.ID = id
	m.rows[p.Payload] = stored
	return id, nil
}

func (m *memPayments) ByPayload(_ context.Context, payload string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[payload]; ok {
		out := p
		return &out, nil
	}
	return nil, nil
}

func (m *memPayments) SetStatus(_ context.Context, payload, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[payload]; ok {
		p.Status = status
		m.rows[payload] = p
	}
	return nil
}

func (m *memPayments) Complete(_ context.Context, payload string, telegramChargeID, providerChargeID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[payload]; ok {
		p.Status = models.PaymentStatusCompleted
		p.TelegramChargeID = telegramChargeID
		p.ProviderChargeID = providerChargeID
		m.rows[payload] = p
	}
	return nil
}

var errDuplicate = &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}

type fakeFiles struct {
	mu      sync.Mutex
	removed []string
	fail    bool
}

func (f *fakeFiles) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("remove failed")
	}
	f.removed = append(f.removed, path)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []int64
}

func (n *fakeNotifier) NotifyNewOrder(_ context.Context, order *models.Order, _ *models.Product) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
}

type fakeInvoices struct {
	mu       sync.Mutex
	payloads []string
	fail     bool
}

func (f *fakeInvoices) SendInvoice(_ context.Context, _ int64, _ *models.Product, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("invoice rejected")
	}
	f.payloads = append(f.payloads, payload)
	return nil
}
