package orders

import "errors"

var (
	// ErrNotFound: a referenced order/payment/product is missing. No retry.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: a malformed import group. Fatal for that group only.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict: a business rule was violated (wrong state for the
	// requested transition). Terminal, not retried.
	ErrConflict = errors.New("conflict")
)

// Fatal reports whether err should be dead-lettered instead of retried.
func Fatal(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConflict)
}
