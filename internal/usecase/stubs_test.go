package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/storebot/internal/adapter/gateway"
	"github.com/polkiloo/storebot/internal/config"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/metrics"
	"github.com/polkiloo/storebot/internal/storage/memory"
)

const adminChat int64 = 100

type sentMessage struct {
	ChatID int64
	Text   string
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[int64]error
}

func (m *recordingMessenger) SendMessage(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[chatID]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *recordingMessenger) to(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		if s.ChatID == chatID {
			out = append(out, s.Text)
		}
	}
	return out
}

func (m *recordingMessenger) containing(chatID int64, fragment string) int {
	n := 0
	for _, text := range m.to(chatID) {
		if strings.Contains(text, fragment) {
			n++
		}
	}
	return n
}

type stubGateway struct {
	mu        sync.Mutex
	disabled  bool
	statuses  map[string]model.PaymentStatus
	statusErr error
	createFn  func(model.PendingOrder) (*model.Payment, error)
	created   int
}

func (g *stubGateway) CreatePayment(_ context.Context, p model.PendingOrder) (*model.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created++
	if g.createFn != nil {
		return g.createFn(p)
	}
	return &model.Payment{ID: "pay-" + strconv.FormatInt(p.ID, 10), Status: model.PaymentStatusPending, ConfirmationURL: "https://pay.example/confirm"}, nil
}

func (g *stubGateway) GetStatus(_ context.Context, id string) (model.PaymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return "", g.statusErr
	}
	if s, ok := g.statuses[id]; ok {
		return s, nil
	}
	return model.PaymentStatusPending, nil
}

func (g *stubGateway) Enabled() bool { return !g.disabled }

var _ gateway.Client = (*stubGateway)(nil)

type stubWatcher struct {
	mu      sync.Mutex
	watched map[int64]string
}

func (w *stubWatcher) Watch(pendingID, _ int64, paymentID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched == nil {
		w.watched = make(map[int64]string)
	}
	if _, ok := w.watched[pendingID]; ok {
		return false
	}
	w.watched[pendingID] = paymentID
	return true
}

type harness struct {
	store     *memory.Storage
	messenger *recordingMessenger
	gateway   *stubGateway
	watcher   *stubWatcher
	notifier  *NotificationDispatcher
	inventory *InventoryUseCase
	finalize  *FinalizeUseCase
	payments  *PaymentUseCase
	checkout  *CheckoutUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := &harness{
		store:     memory.New(),
		messenger: &recordingMessenger{},
		gateway:   &stubGateway{statuses: map[string]model.PaymentStatus{}},
		watcher:   &stubWatcher{},
	}
	mt := metrics.New()
	h.notifier = NewNotificationDispatcher(h.messenger, &config.Config{AdminIDs: []int64{adminChat}}, mt, logger)
	h.inventory = NewInventoryUseCase(h.store.Products())
	h.finalize = NewFinalizeUseCase(h.store.Orders(), h.store.Carts(), h.inventory, h.notifier, mt, logger)
	h.payments = NewPaymentUseCase(h.gateway, h.store.Pending(), h.store.Orders(), h.finalize, h.notifier, logger)
	h.checkout = NewCheckoutUseCase(h.store.Pending(), h.gateway, h.watcher, logger)
	return h
}

func item(productID int64, qty int, price int64) model.LineItem {
	return model.LineItem{ProductID: productID, Name: "Product " + strconv.FormatInt(productID, 10), Quantity: qty, Price: decimal.NewFromInt(price)}
}

// paidPending stores a pending order with an attached payment id.
func (h *harness) paidPending(t *testing.T, userID int64, kind model.CheckoutType, paymentID string, items ...model.LineItem) model.PendingOrder {
	t.Helper()
	ctx := context.Background()
	p, err := h.store.Pending().Create(ctx, model.PendingDraft{
		UserID:   userID,
		Items:    items,
		Address:  "Moscow",
		Type:     kind,
		Customer: model.NewCustomer(userID, "@buyer", "Buyer", "+79990001122", ""),
	})
	require.NoError(t, err)
	require.NoError(t, h.store.Pending().AttachPayment(ctx, p.ID, paymentID))
	got, err := h.store.Pending().Get(ctx, p.ID)
	require.NoError(t, err)
	return *got
}

type failingOrders struct{ err error }

func (f failingOrders) CreateFromPending(context.Context, int64, time.Time) (*model.Order, bool, error) {
	return nil, false, f.err
}
func (f failingOrders) GetByPaymentID(context.Context, string) (*model.Order, error) {
	return nil, f.err
}
func (f failingOrders) ListByUser(context.Context, int64) ([]model.Order, error) { return nil, f.err }

type failingProducts struct{}

func (failingProducts) DecrementStock(context.Context, int64, int) (*model.StockChange, error) {
	return nil, errors.New("stock table locked")
}
func (failingProducts) Get(context.Context, int64) (*model.Product, error) {
	return nil, errors.New("stock table locked")
}
