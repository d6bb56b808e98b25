package dispatch

import "errors"

var (
	// ErrProposalConstruction indicates a transaction proposal could not be built.
	ErrProposalConstruction = errors.New("dispatch: proposal construction failed")

	// ErrWalletConnectV1 indicates a pairing URI for the retired v1 protocol.
	ErrWalletConnectV1 = errors.New("dispatch: walletconnect v1 is not supported")

	// ErrNoPairer indicates a pairing URI arrived without a Pairer configured.
	ErrNoPairer = errors.New("dispatch: no walletconnect pairer configured")

	// ErrWalletNotFound indicates no wallet matches a deep link.
	ErrWalletNotFound = errors.New("dispatch: wallet not found")
)
