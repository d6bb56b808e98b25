package uri

import "errors"

var (
	// ErrInvalidURI indicates the URI is malformed.
	ErrInvalidURI = errors.New("uri: invalid URI")

	// ErrNoPaymentProtocol indicates the string carries no payment-protocol URL.
	ErrNoPaymentProtocol = errors.New("uri: no payment protocol URL")

	// ErrNoInvoiceID indicates the URL has no /i/<id> segment.
	ErrNoInvoiceID = errors.New("uri: no invoice id")
)
