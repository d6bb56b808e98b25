package tracking

import "errors"

var (
	// ErrRecordNotFound indicates no record exists for the partner and id.
	ErrRecordNotFound = errors.New("tracking: record not found")

	// ErrUnknownPartner indicates the partner is not one of Partners.
	ErrUnknownPartner = errors.New("tracking: unknown partner")

	// ErrInvalidRecord indicates a record is nil or lacks its external id.
	ErrInvalidRecord = errors.New("tracking: invalid record")
)
