package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/domain/repository"
)

const firstOrderNumber int64 = 1001

// Storage keeps every record in process memory. All mutations happen under one
// mutex so the store primitives are atomic with respect to each other.
type Storage struct {
	mu sync.Mutex

	nextPendingID int64
	nextOrderID   int64
	nextNumber    int64

	pending  map[int64]model.PendingOrder
	orders   map[int64]model.Order
	byPayID  map[string]int64
	products map[int64]model.Product
	carts    map[int64]map[int64]int

	now func() time.Time
}

type pendingRepository struct{ s *Storage }
type orderRepository struct{ s *Storage }
type productRepository struct{ s *Storage }
type cartRepository struct{ s *Storage }

// New creates an empty store.
func New() *Storage {
	return &Storage{
		nextNumber: firstOrderNumber,
		pending:    make(map[int64]model.PendingOrder),
		orders:     make(map[int64]model.Order),
		byPayID:    make(map[string]int64),
		products:   make(map[int64]model.Product),
		carts:      make(map[int64]map[int64]int),
		now:        time.Now,
	}
}

func (s *Storage) Pending() repository.PendingRepository { return &pendingRepository{s: s} }
func (s *Storage) Orders() repository.OrderRepository    { return &orderRepository{s: s} }
func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{s: s}
}
func (s *Storage) Carts() repository.CartRepository { return &cartRepository{s: s} }

// HealthCheck always succeeds.
func (s *Storage) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Storage) Close() {}

// PutProduct inserts or replaces a product.
func (s *Storage) PutProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutCartItem sets quantity of a product in a user's cart.
func (s *Storage) PutCartItem(userID, productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		cart = make(map[int64]int)
		s.carts[userID] = cart
	}
	cart[productID] = qty
}

// CartSize returns number of distinct products in a user's cart.
func (s *Storage) CartSize(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[userID])
}

// OrderCount returns number of confirmed orders.
func (s *Storage) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func clonePending(p model.PendingOrder) model.PendingOrder {
	p.Items = append([]model.LineItem(nil), p.Items...)
	if p.PaymentID != nil {
		id := *p.PaymentID
		p.PaymentID = &id
	}
	if p.Delivery != nil {
		d := *p.Delivery
		p.Delivery = &d
	}
	return p
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.LineItem(nil), o.Items...)
	return o
}

func (r *pendingRepository) Create(_ context.Context, draft model.PendingDraft) (*model.PendingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextPendingID++
	p := model.PendingOrder{
		ID:        r.s.nextPendingID,
		Number:    r.s.nextNumber,
		UserID:    draft.UserID,
		Items:     draft.Items,
		Address:   draft.Address,
		Delivery:  draft.Delivery,
		Type:      draft.Type,
		CreatedAt: r.s.now(),
		Customer:  draft.Customer,
	}
	r.s.nextNumber++
	r.s.pending[p.ID] = clonePending(p)

	out := clonePending(p)
	return &out, nil
}

func (r *pendingRepository) Get(_ context.Context, id int64) (*model.PendingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pending[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := clonePending(p)
	return &out, nil
}

func (r *pendingRepository) AttachPayment(_ context.Context, id int64, paymentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pending[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if p.PaymentID != nil {
		if *p.PaymentID == paymentID {
			return nil
		}
		return domainErrors.ErrAlreadyExists
	}
	p.PaymentID = &paymentID
	r.s.pending[id] = p
	return nil
}

func (r *pendingRepository) ListAwaitingPayment(context.Context) ([]model.PendingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []model.PendingOrder
	for _, p := range r.s.pending {
		if p.HasPayment() {
			result = append(result, clonePending(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *pendingRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.pending[id]; !ok {
		return false, nil
	}
	delete(r.s.pending, id)
	return true, nil
}

func (r *orderRepository) CreateFromPending(_ context.Context, pendingID int64, now time.Time) (*model.Order, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pending[pendingID]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if !p.HasPayment() {
		return nil, false, domainErrors.ErrPaymentNotAttached
	}

	if id, exists := r.s.byPayID[*p.PaymentID]; exists {
		delete(r.s.pending, pendingID)
		out := cloneOrder(r.s.orders[id])
		return &out, false, nil
	}

	r.s.nextOrderID++
	order := model.OrderFromPending(clonePending(p), now)
	order.ID = r.s.nextOrderID
	r.s.orders[order.ID] = order
	r.s.byPayID[order.PaymentID] = order.ID
	delete(r.s.pending, pendingID)

	out := cloneOrder(order)
	return &out, true, nil
}

func (r *orderRepository) GetByPaymentID(_ context.Context, paymentID string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.byPayID[paymentID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := cloneOrder(r.s.orders[id])
	return &out, nil
}

func (r *orderRepository) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			result = append(result, cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r *productRepository) DecrementStock(_ context.Context, productID int64, qty int) (*model.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	old := p.Stock
	p.Stock = max(0, old-qty)
	r.s.products[productID] = p
	return &model.StockChange{Product: p, OldStock: old}, nil
}

func (r *productRepository) Get(_ context.Context, productID int64) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (r *cartRepository) Clear(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}
