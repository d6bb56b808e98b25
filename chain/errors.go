package chain

import "errors"

var (
	// ErrUnsupportedChain indicates the chain or currency is not known.
	ErrUnsupportedChain = errors.New("chain: unsupported chain")

	// ErrInvalidAmount indicates an amount string is not a non-negative decimal.
	ErrInvalidAmount = errors.New("chain: invalid amount")
)
