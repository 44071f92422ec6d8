package model

// PaymentStatus is the gateway-side state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusWaitingForCapture PaymentStatus = "waiting_for_capture"
	PaymentStatusSucceeded         PaymentStatus = "succeeded"
	PaymentStatusCanceled          PaymentStatus = "canceled"
	PaymentStatusExpired           PaymentStatus = "expired"
)

// Terminal reports whether no further status change is expected.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s.Failed()
}

// Failed reports whether the payment will never succeed.
func (s PaymentStatus) Failed() bool {
	return s == PaymentStatusCanceled || s == PaymentStatusExpired
}

// Payment is a gateway payment created for a pending order.
type Payment struct {
	ID              string
	Status          PaymentStatus
	ConfirmationURL string
}
