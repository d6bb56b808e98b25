package paypro

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/bitpayid"
	"github.com/bitfsorg/libscan-go/logging"
)

// UnlockResult is the outcome of trying to unlock a gated invoice.
type UnlockResult int

const (
	UnlockSuccess UnlockResult = iota
	NetworkMismatch
	PairingRequired
	SomethingWentWrong
	UserShopperNotFound
	InvalidInvoice
	TierNotMet
)

func (r UnlockResult) String() string {
	switch r {
	case UnlockSuccess:
		return "unlockSuccess"
	case NetworkMismatch:
		return "networkMismatch"
	case PairingRequired:
		return "pairingRequired"
	case SomethingWentWrong:
		return "somethingWentWrong"
	case UserShopperNotFound:
		return "userShopperNotFound"
	case InvalidInvoice:
		return "invalidInvoice"
	case TierNotMet:
		return "tierNotMet"
	default:
		return fmt.Sprintf("UnlockResult(%d)", int(r))
	}
}

// NeedsVerification reports whether the user must verify their BitPay ID
// before paying.
func (r UnlockResult) NeedsVerification() bool {
	return r == UserShopperNotFound || r == TierNotMet
}

// Err returns nil on success and an ErrInvoiceGated wrapper otherwise.
func (r UnlockResult) Err() error {
	if r == UnlockSuccess {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvoiceGated, r)
}

// IdentityAPI is the subset of the BitPay ID API the unlock flow uses.
type IdentityAPI interface {
	GetProductTokens(ctx context.Context, token string) ([]bitpayid.ProductToken, error)
	UnlockInvoice(ctx context.Context, token, invoiceID string) (*bitpayid.UnlockResult, error)
}

var _ IdentityAPI = (*bitpayid.Client)(nil)

// Unlocker runs the invoice unlock flow against the identity API.
type Unlocker struct {
	api     IdentityAPI
	pairing bitpayid.PairingStore
	network string
	log     *logrus.Entry
}

// NewUnlocker creates an unlocker for an app running on appNetwork.
func NewUnlocker(api IdentityAPI, pairing bitpayid.PairingStore, appNetwork string, log *logrus.Entry) *Unlocker {
	if log == nil {
		log = logging.Component(nil, "unlock")
	}
	return &Unlocker{api: api, pairing: pairing, network: appNetwork, log: log}
}

// Unlock attempts to unlock invoiceID, which lives on network. It never
// fails: every failure maps to a non-success result.
func (u *Unlocker) Unlock(ctx context.Context, invoiceID, network string) UnlockResult {
	log := u.log.WithField("invoice", invoiceID)

	if network != u.network {
		log.WithField("network", network).Info("invoice network differs from app network")
		return NetworkMismatch
	}

	token := ""
	if u.pairing != nil {
		token = u.pairing.APIToken(u.network)
	}
	if token == "" {
		return PairingRequired
	}

	tokens, err := u.api.GetProductTokens(ctx, token)
	if err != nil {
		log.WithError(err).Warn("get product tokens")
		return SomethingWentWrong
	}

	shopperToken := bitpayid.FindToken(tokens, bitpayid.FacadeUserShopper)
	if shopperToken == "" {
		return UserShopperNotFound
	}

	res, err := u.api.UnlockInvoice(ctx, shopperToken, invoiceID)
	if err != nil {
		log.WithError(err).Warn("unlock invoice")
		return InvalidInvoice
	}
	if !res.MeetsRequiredTier {
		return TierNotMet
	}
	return UnlockSuccess
}
