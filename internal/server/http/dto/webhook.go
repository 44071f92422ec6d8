package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EventPaymentSucceeded is the only webhook event that finalizes orders.
const EventPaymentSucceeded = "payment.succeeded"

// FlexibleID decodes an identifier sent either as JSON number or string.
type FlexibleID int64

// UnmarshalJSON accepts 12, "12" and null.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*id = 0
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return err
	}
	*id = FlexibleID(v)
	return nil
}

// WebhookMetadata is the metadata set at payment creation.
type WebhookMetadata struct {
	OrderID FlexibleID `json:"order_id"`
	UserID  FlexibleID `json:"user_id"`
}

// WebhookObject is the payment object of a notification.
type WebhookObject struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Metadata WebhookMetadata `json:"metadata"`
}

// WebhookEvent is the gateway notification body.
type WebhookEvent struct {
	Event  string        `json:"event"`
	Object WebhookObject `json:"object"`
}

// WebhookResponse acknowledges a notification.
type WebhookResponse struct {
	Status string `json:"status"`
}
