package grammar

import "errors"

var (
	// ErrMalformedInput indicates the input matched a grammar syntactically
	// but failed deeper validation (bad checksum, bad amount, missing field).
	ErrMalformedInput = errors.New("grammar: malformed input")

	// ErrUnrecognized indicates no grammar matched the input.
	ErrUnrecognized = errors.New("grammar: unrecognized input")
)
