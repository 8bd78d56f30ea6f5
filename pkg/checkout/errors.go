package checkout

import (
	"errors"
	"net/http"
)

var (
	ErrMethodNotAllowed = errors.New("Method not allowed")
	ErrEmptyCart        = errors.New("Cart is empty.")
	ErrInvalidPriceID   = errors.New("Invalid price ID in cart.")
)

// ProviderError is any failure reported while creating the session with
// the payment provider. Its message is returned to the caller verbatim.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StatusFor maps a checkout error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidPriceID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
