package bitpayid

import "errors"

var (
	// ErrRequestFailed indicates the identity API could not be reached or
	// answered with a non-2xx status.
	ErrRequestFailed = errors.New("bitpayid: request failed")

	// ErrAPIError indicates the identity API returned an error payload.
	ErrAPIError = errors.New("bitpayid: api error")

	// ErrInvalidResponse indicates the response body could not be decoded.
	ErrInvalidResponse = errors.New("bitpayid: invalid response")

	// ErrEmptyToken indicates a call was made without an API token.
	ErrEmptyToken = errors.New("bitpayid: empty api token")
)
