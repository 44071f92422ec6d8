package test

import (
	"context"
	"strconv"
	"sync"

	"github.com/polkiloo/storebot/internal/domain/model"
)

// SentMessage is a chat message recorded by MessengerStub.
type SentMessage struct {
	ChatID int64
	Text   string
}

// MessengerStub records outgoing messages.
type MessengerStub struct {
	Err error

	mu   sync.Mutex
	sent []SentMessage
}

// SendMessage records the message and returns configured error.
func (m *MessengerStub) SendMessage(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMessage{ChatID: chatID, Text: text})
	return m.Err
}

// To returns texts sent to chatID.
func (m *MessengerStub) To(chatID int64) []string {
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

// GatewayStub serves payment statuses from a map.
type GatewayStub struct {
	Disabled  bool
	CreateErr error
	StatusErr error

	mu       sync.Mutex
	statuses map[string]model.PaymentStatus
}

// SetStatus sets gateway status of paymentID.
func (g *GatewayStub) SetStatus(paymentID string, status model.PaymentStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statuses == nil {
		g.statuses = make(map[string]model.PaymentStatus)
	}
	g.statuses[paymentID] = status
}

// CreatePayment returns a payment derived from the pending order id.
func (g *GatewayStub) CreatePayment(_ context.Context, p model.PendingOrder) (*model.Payment, error) {
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	return &model.Payment{ID: "pay-" + strconv.FormatInt(p.ID, 10), Status: model.PaymentStatusPending, ConfirmationURL: "https://pay.example/confirm"}, nil
}

// GetStatus returns stored status, pending by default.
func (g *GatewayStub) GetStatus(_ context.Context, paymentID string) (model.PaymentStatus, error) {
	if g.StatusErr != nil {
		return "", g.StatusErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.statuses[paymentID]; ok {
		return s, nil
	}
	return model.PaymentStatusPending, nil
}

// Enabled reports configured state.
func (g *GatewayStub) Enabled() bool { return !g.Disabled }
