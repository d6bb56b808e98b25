package dispatch

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/chain"
	"github.com/bitfsorg/libscan-go/grammar"
)

// Import opens key import with an exported key blob.
func (d *Dispatcher) Import(data string) {
	d.log.Info("incoming key export")
	d.nav.Navigate(StackWallet, ScreenImport, ImportParams{ImportQRCodeData: data})
}

// Join opens the multisig join screen. With several keys the user picks
// which one joins first.
func (d *Dispatcher) Join(code string) {
	d.log.Info("incoming multisig invitation")
	keys := d.wallets.Keys()
	switch len(keys) {
	case 0:
		d.nav.Navigate(StackWallet, ScreenJoinMultisig, JoinMultisigParams{InvitationCode: code})
	case 1:
		key := keys[0]
		d.nav.Navigate(StackWallet, ScreenJoinMultisig, JoinMultisigParams{Key: &key, InvitationCode: code})
	default:
		d.nav.Navigate(StackWallet, ScreenKeyGlobalSelect, KeyGlobalSelectParams{
			OnKeySelect: func(k Key) {
				d.nav.Navigate(StackWallet, ScreenJoinMultisig, JoinMultisigParams{Key: &k, InvitationCode: code})
			},
		})
	}
}

const pairingExists = "Pairing already exists:"

// WalletConnect pairs a v2 session and opens the WalletConnect screen.
func (d *Dispatcher) WalletConnect(ctx context.Context, p *grammar.PairingIntent) {
	err := d.pair(ctx, p)
	if err == nil {
		d.nav.Navigate(StackWalletConnect, ScreenRoot, WalletConnectParams{})
		return
	}

	if d.pairer != nil && d.pairer.HasPendingProposal() && strings.Contains(err.Error(), pairingExists) {
		d.nav.Navigate(StackWalletConnect, ScreenRoot, WalletConnectParams{URI: p.URI.Raw})
		return
	}
	d.log.WithError(err).Warn("walletconnect pairing")

	msg := err.Error()
	if errors.Is(err, ErrWalletConnectV1) {
		msg = "The URI corresponds to WalletConnect v1.0, which was shut down on June 28."
	}
	d.notify.Show(Notification{
		Type:            NotificationError,
		Title:           "Uh oh, something went wrong",
		Message:         msg,
		BackdropDismiss: true,
		Actions:         []Action{{Text: "OK", Primary: true, Handler: func() {}}},
	})
}

func (d *Dispatcher) pair(ctx context.Context, p *grammar.PairingIntent) error {
	if p.URI.Version == 1 {
		return ErrWalletConnectV1
	}
	if d.pairer == nil {
		return ErrNoPairer
	}
	return d.pairer.Pair(ctx, p.URI.Raw)
}

// OpenWallet opens the wallet a push-notification link points at. Links
// for unknown wallets are ignored.
func (d *Dispatcher) OpenWallet(link *grammar.WalletDeepLinkIntent) {
	w, err := d.FindWallet(link.WalletIDHash, link.TokenAddress != "" || link.MultisigContractAddress != "")
	if err != nil {
		d.log.WithError(err).Info("wallet deep link")
		return
	}
	d.nav.Navigate(StackWallet, ScreenWalletDetails, WalletDetailsParams{WalletID: w.ID})
}

// FindWallet returns the wallet whose hex SHA-256 id hash equals idHash.
// Token and multisig links hash the id without its "-<address>" suffix.
func (d *Dispatcher) FindWallet(idHash string, stripSuffix bool) (*Wallet, error) {
	idHash = strings.ToLower(idHash)
	for _, k := range d.wallets.Keys() {
		for _, w := range k.Wallets {
			if w == nil {
				continue
			}
			id := w.ID
			if stripSuffix {
				if i := strings.LastIndexByte(id, '-'); i >= 0 {
					id = id[:i]
				} else {
					id = ""
				}
			}
			if hex.EncodeToString(bsvhash.Sha256([]byte(id))) == idHash {
				return w, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, idHash)
}

// BuyCrypto opens the buy-crypto flow preset from a deep link. The USD
// amount is shown in the user's display currency.
func (d *Dispatcher) BuyCrypto(b *grammar.BuyCryptoIntent) {
	d.log.WithField("partner", b.Partner).Info("buy crypto preset")

	params := BuyCryptoParams{
		Partner:              b.Partner,
		CurrencyAbbreviation: b.Coin,
		Chain:                b.Chain,
	}
	if b.Amount != "" {
		if amount, err := d.altFiatAmount(b.Amount); err != nil {
			d.log.WithError(err).WithField("amount", b.Amount).Warn("buy crypto amount")
		} else {
			params.Amount = &amount
		}
	}

	d.tracker.Track(analytics.EventClickedBuyCrypto, map[string]string{
		"context": "DeepLink",
		"coin":    b.Coin,
		"chain":   b.Chain,
	})

	d.nav.Reset([]Route{
		{Name: StackTabs, Screen: ScreenHome},
		{Name: StackBuyCrypto, Screen: ScreenBuyCryptoRoot, Params: params},
	})
}

func (d *Dispatcher) altFiatAmount(usd string) (decimal.Decimal, error) {
	amount, err := chain.ParseDecimal(usd)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.fiat == nil {
		return amount, nil
	}
	iso := d.fiat.AltCurrency()
	if iso == "" || strings.EqualFold(iso, "USD") {
		return amount, nil
	}
	return d.fiat.UsdToAltFiat(amount, iso)
}
