package paypro

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkFailure indicates a payment-protocol or invoice endpoint
	// could not be reached or answered with an error status.
	ErrNetworkFailure = errors.New("paypro: network failure")

	// ErrInvalidResponse indicates a response body failed to decode or validate.
	ErrInvalidResponse = errors.New("paypro: invalid response")

	// ErrInvoiceGated indicates an invoice requires an unlock the user
	// could not complete.
	ErrInvoiceGated = errors.New("paypro: invoice gated")

	// ErrEmailRejected indicates the server did not accept a buyer email.
	ErrEmailRejected = errors.New("paypro: buyer email rejected")
)

// ServerError carries the status and message of a failed response.
// It unwraps to ErrNetworkFailure.
type ServerError struct {
	URL     string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s: HTTP %d: %s", ErrNetworkFailure, e.URL, e.Status, e.Message)
}

func (e *ServerError) Unwrap() error { return ErrNetworkFailure }

// Message returns a human readable message for err: the server's message
// when err carries one, the error text otherwise.
func Message(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
