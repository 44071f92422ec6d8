package gateway

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storebot/internal/domain/model"
)

const (
	currencyRUB           = "RUB"
	maxDescriptionRunes   = 128
	defaultItemName       = "Товар"
	paymentSubjectGoods   = "commodity"
	paymentModeFull       = "full_payment"
	receiptTypePayment    = "payment"
	confirmationRedirect  = "redirect"
	metadataSourceChatBot = "telegram_bot"
)

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type receiptItem struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Amount         amount `json:"amount"`
	VATCode        int    `json:"vat_code"`
	PaymentSubject string `json:"payment_subject"`
	PaymentMode    string `json:"payment_mode"`
}

type receiptCustomer struct {
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

type receipt struct {
	Type          string          `json:"type"`
	Items         []receiptItem   `json:"items"`
	TaxSystemCode int             `json:"tax_system_code"`
	Customer      receiptCustomer `json:"customer"`
}

// buildReceipt assembles fiscal receipt for pending order and returns it together
// with the receipt sum which must be charged as payment amount.
func buildReceipt(p model.PendingOrder, vatCode, taxSystemCode int, defaultEmail string) (*receipt, decimal.Decimal, error) {
	items := make([]receiptItem, 0, len(p.Items))
	sum := decimal.Zero
	for _, it := range p.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		if !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}
		qty = qty.Round(2)
		price := it.Price.Round(2)
		sum = sum.Add(price.Mul(qty).Round(2))

		items = append(items, receiptItem{
			Description:    itemDescription(it.Name),
			Quantity:       qty.StringFixed(2),
			Amount:         amount{Value: price.StringFixed(2), Currency: currencyRUB},
			VATCode:        vatCode,
			PaymentSubject: paymentSubjectGoods,
			PaymentMode:    paymentModeFull,
		})
	}
	if len(items) == 0 {
		return nil, decimal.Zero, &PermanentError{Err: ErrEmptyReceipt}
	}

	customer := receiptCustomer{
		Phone:    normalizePhone(p.Customer.Phone),
		Email:    p.Customer.Email,
		FullName: p.Customer.FullName,
	}
	if customer.Email == "" {
		customer.Email = strings.TrimSpace(defaultEmail)
	}
	if customer.Phone == "" && customer.Email == "" {
		return nil, decimal.Zero, &PermanentError{Err: ErrMissingContact}
	}

	return &receipt{
		Type:          receiptTypePayment,
		Items:         items,
		TaxSystemCode: taxSystemCode,
		Customer:      customer,
	}, sum, nil
}

func itemDescription(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultItemName
	}
	if utf8.RuneCountInString(name) <= maxDescriptionRunes {
		return name
	}
	return string([]rune(name)[:maxDescriptionRunes])
}

// normalizePhone keeps digits only and rewrites domestic 8XXXXXXXXXX numbers to 7XXXXXXXXXX.
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '8' {
		digits = "7" + digits[1:]
	}
	return digits
}
