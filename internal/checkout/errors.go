package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState         = errors.New("illegal checkout state")
	ErrSubmissionInProgress = errors.New("an order is already being submitted")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")

	// ErrSubmitFailed wraps every failed submission; the cause is one of the
	// errors below.
	ErrSubmitFailed = errors.New("failed to place order")

	ErrNetwork          = errors.New("order endpoint unreachable")
	ErrUnexpectedStatus = errors.New("order endpoint returned non-success status")
	ErrResponseDecode   = errors.New("order endpoint returned malformed order")
)

// StatusError carries the HTTP status of a rejected submission.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
