package address

import "errors"

var (
	// ErrInvalidAddress indicates the string is not a valid address for the chain.
	ErrInvalidAddress = errors.New("address: invalid address")

	// ErrUnsupportedChain indicates no validator exists for the chain.
	ErrUnsupportedChain = errors.New("address: unsupported chain")
)
