package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means the gateway credentials are missing or invalid.
	ErrConfiguration = errors.New("payment gateway configuration error")

	// ErrInvalidResponse means a provider payload failed validation.
	ErrInvalidResponse = errors.New("invalid payment gateway response")

	// ErrPaymentGateway is a local data consistency failure.
	ErrPaymentGateway = errors.New("payment gateway error")

	ErrOrderNotFound   = fmt.Errorf("%w: order not found", ErrPaymentGateway)
	ErrPaymentNotFound = errors.New("payment not found")
)

// DeclineError is a negative outcome reported by the provider. It is not a
// system fault and carries the provider detail for display to the buyer.
type DeclineError struct {
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment has been declined by the gateway (%s)", e.Code)
	}
	return fmt.Sprintf("payment has been declined by the gateway (%s): %s", e.Code, e.Message)
}

func IsDecline(err error) (*DeclineError, bool) {
	var de *DeclineError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
