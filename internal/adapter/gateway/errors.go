package gateway

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured indicates gateway credentials are missing.
	ErrNotConfigured = errors.New("payment gateway is not configured")
	// ErrEmptyReceipt indicates checkout has no receipt items.
	ErrEmptyReceipt = errors.New("receipt is missing items")
	// ErrMissingContact indicates receipt lacks customer phone or email.
	ErrMissingContact = errors.New("receipt customer contact missing: phone or email is required")
)

// PermanentError is a failure that will not go away on retry.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent gateway error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// TransientError is a failure expected to clear on a later attempt.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("transient gateway error, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("transient gateway error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err must not be retried.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return true
	}
	var perm *PermanentError
	return errors.As(err, &perm)
}
