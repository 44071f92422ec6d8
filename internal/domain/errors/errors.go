package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrPaymentNotAttached = errors.New("payment not attached")
	ErrInvalidCheckout    = errors.New("invalid checkout")
	ErrInvalidAPIKey      = errors.New("invalid api key")
)
