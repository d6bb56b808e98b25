package grammar

import (
	"fmt"
	"io"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/address"
	"github.com/bitfsorg/libscan-go/chain"
	"github.com/bitfsorg/libscan-go/config"
	"github.com/bitfsorg/libscan-go/uri"
)

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func malformed(kind Kind, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedInput, kind, fmt.Sprintf(format, args...))
}

// --- payment protocol ---

func extractInvoice(s string, _ ExtractContext) (Intent, error) {
	id, err := uri.InvoiceID(s)
	if err != nil {
		return nil, malformed(KindBitPayInvoice, "%v", err)
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, malformed(KindBitPayInvoice, "%v", err)
	}
	network := chain.Livenet
	if strings.Contains(s, config.TestHost) {
		network = chain.Testnet
	}
	ctxParam, _ := uri.ParameterByName("c", s)
	return &InvoiceIntent{
		URL:       s,
		InvoiceID: id,
		Host:      u.Host,
		Network:   network,
		Context:   ctxParam,
	}, nil
}

func payProIntent(source Kind, ref string) (Intent, error) {
	payProURL, err := uri.PayProURL(ref)
	if err != nil {
		return nil, malformed(source, "%v", err)
	}
	u, err := url.Parse(payProURL)
	if err != nil {
		return nil, malformed(source, "%v", err)
	}
	// Only BitPay references carry an /i/ invoice id.
	id, _ := uri.InvoiceID(payProURL)
	return &PaymentProtocolIntent{Source: source, URL: payProURL, InvoiceID: id, Host: u.Host}, nil
}

func extractPayPro(s string, _ ExtractContext) (Intent, error) {
	return payProIntent(KindPayPro, s)
}

// --- plain addresses ---

// plainAddress builds a recipient from a bare address. When the caller
// supplied a wallet whose chain accepts the address, the wallet's currency
// and chain are used so tokens and sibling EVM chains resolve correctly.
func plainAddress(kind Kind) func(string, ExtractContext) (Intent, error) {
	return func(s string, ctx ExtractContext) (Intent, error) {
		currency, chainName := kind.Chain(), kind.Chain()
		if ctx.WalletChain != "" && address.IsValid(ctx.WalletChain, s) {
			chainName = strings.ToLower(ctx.WalletChain)
			currency = strings.ToLower(ctx.WalletCurrency)
			if currency == "" {
				currency = chainName
			}
		}

		network, err := address.Validate(chainName, s)
		if err != nil {
			return nil, malformed(kind, "%v", err)
		}
		addr := s
		if chainName == chain.BCH {
			if addr, err = address.NormalizeCashAddr(s); err != nil {
				return nil, malformed(kind, "%v", err)
			}
		}
		ctx.Log.WithField("chain", chainName).Infof("incoming data: %s plain address", currency)

		recipientType := ctx.RecipientType
		if recipientType == "" {
			recipientType = "address"
		}
		return &PaymentIntent{
			Source: kind,
			Recipient: Recipient{
				Type:           recipientType,
				Currency:       currency,
				Chain:          chainName,
				Address:        addr,
				Network:        network,
				DestinationTag: ctx.DestinationTag,
				Name:           ctx.Name,
				Email:          ctx.Email,
			},
		}, nil
	}
}

// --- coin URIs ---

func addressRecipient(currency, chainName, addr, network string) Recipient {
	return Recipient{Type: "address", Currency: currency, Chain: chainName, Address: addr, Network: network}
}

// optionalAtomic converts a decimal coin amount parameter, nil when absent
// or zero so the user is asked for an amount.
func optionalAtomic(kind Kind, u *uri.URI, param string, decimals int32) (*big.Int, error) {
	if !u.Has(param) {
		return nil, nil
	}
	amount, err := chain.ToAtomic(u.Get(param), decimals)
	if err != nil {
		return nil, malformed(kind, "%s: %v", param, err)
	}
	if amount.Sign() == 0 {
		return nil, nil
	}
	return amount, nil
}

// optionalInteger parses an integer parameter already in base units.
func optionalInteger(kind Kind, u *uri.URI, param string) (*big.Int, error) {
	if !u.Has(param) {
		return nil, nil
	}
	n, err := chain.ParseAtomic(u.Get(param))
	if err != nil {
		return nil, malformed(kind, "%s: %v", param, err)
	}
	return n, nil
}

// utxoPayment finishes extraction shared by the UTXO URI grammars once the
// canonical address is known.
func utxoPayment(kind Kind, u *uri.URI, addr string) (Intent, error) {
	chainName := kind.Chain()
	network, err := address.Validate(chainName, addr)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}
	amount, err := optionalAtomic(kind, u, "amount", 8)
	if err != nil {
		return nil, err
	}
	feeRate, err := optionalInteger(kind, u, "feePerByte")
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		Source:    kind,
		Recipient: addressRecipient(chainName, chainName, addr, network),
		Amount:    amount,
		Message:   u.Get("message"),
		FeeRate:   feeRate,
	}, nil
}

func utxoURI(kind Kind) func(string, ExtractContext) (Intent, error) {
	return func(s string, ctx ExtractContext) (Intent, error) {
		u, err := uri.Parse(s)
		if err != nil {
			return nil, malformed(kind, "%v", err)
		}
		if u.Has("r") {
			return payProIntent(kind, u.Get("r"))
		}
		ctx.Log.Infof("incoming data: %s", kind)
		return utxoPayment(kind, u, u.Address)
	}
}

func extractBitcoinCashURI(s string, ctx ExtractContext) (Intent, error) {
	kind := KindBitcoinCashURI
	u, err := uri.Parse(s)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}
	if u.Has("r") {
		return payProIntent(kind, u.Get("r"))
	}
	addr, err := address.NormalizeCashAddr(u.Scheme + ":" + u.Address)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}
	ctx.Log.Infof("incoming data: %s", kind)
	return utxoPayment(kind, u, addr)
}

func extractBitcoinCashLegacyURI(s string, ctx ExtractContext) (Intent, error) {
	kind := KindBitcoinCashLegacyURI
	u, err := uri.Parse(s)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}
	addr, err := address.ToCashAddr(u.Address)
	if err != nil {
		ctx.Log.Info("could not parse Bitcoin Cash legacy address")
		return nil, malformed(kind, "%v", err)
	}
	ctx.Log.WithField("legacy", u.Address).Infof("legacy bitcoin address translated to: %s", addr)
	return utxoPayment(kind, u, addr)
}

func evmURI(kind Kind) func(string, ExtractContext) (Intent, error) {
	return func(s string, ctx ExtractContext) (Intent, error) {
		u, err := uri.Parse(s)
		if err != nil {
			return nil, malformed(kind, "%v", err)
		}
		if u.Has("r") {
			return payProIntent(kind, u.Get("r"))
		}
		addr := strings.TrimPrefix(u.Address, "pay-")
		if !address.IsValidEthereumAddress(addr) {
			return nil, malformed(kind, "invalid address %q", addr)
		}
		value, err := optionalInteger(kind, u, "value")
		if err != nil {
			return nil, err
		}
		gasPrice, err := optionalInteger(kind, u, "gasPrice")
		if err != nil {
			return nil, err
		}
		ctx.Log.Infof("incoming data: %s", kind)
		chainName := kind.Chain()
		return &PaymentIntent{
			Source:    kind,
			Recipient: addressRecipient(chainName, chainName, addr, ""),
			Amount:    value,
			FeeRate:   gasPrice,
		}, nil
	}
}

func extractRippleURI(s string, ctx ExtractContext) (Intent, error) {
	kind := KindRippleURI
	u, err := uri.Parse(s)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}
	if u.Has("r") {
		return payProIntent(kind, u.Get("r"))
	}
	if !address.IsValidRippleAddress(u.Address) {
		return nil, malformed(kind, "invalid address %q", u.Address)
	}
	amount, err := optionalAtomic(kind, u, "amount", 6)
	if err != nil {
		return nil, err
	}
	recipient := addressRecipient(chain.XRP, chain.XRP, u.Address, "")
	if u.Has("dt") {
		tag, err := strconv.ParseUint(u.Get("dt"), 10, 32)
		if err != nil {
			return nil, malformed(kind, "dt: %v", err)
		}
		t := uint32(tag)
		recipient.DestinationTag = &t
	}
	ctx.Log.Infof("incoming data: %s", kind)
	return &PaymentIntent{Source: kind, Recipient: recipient, Amount: amount}, nil
}

// --- BitPay URIs ---

func extractBitPayURI(s string, ctx ExtractContext) (Intent, error) {
	kind := KindBitPayURI
	ctx.Log.Info("incoming data: BitPay URI")

	u, err := uri.Parse(s)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}

	// Push notification deep link: bitpay://wallet?walletId=...
	if u.Address == "wallet" {
		hash := u.Get("walletId")
		if hash == "" {
			return nil, malformed(kind, "missing walletId")
		}
		return &WalletDeepLinkIntent{
			WalletIDHash:            hash,
			TokenAddress:            u.Get("tokenAddress"),
			MultisigContractAddress: u.Get("multisigContractAddress"),
		}, nil
	}

	coin := strings.ToLower(u.Get("coin"))
	if coin == "" {
		return nil, malformed(kind, "missing coin")
	}
	chainName := strings.ToLower(u.Get("chain"))
	if chainName == "" {
		chainName = strings.ToLower(ctx.WalletChain)
	}
	if chainName == "" && chain.IsSupported(coin) {
		chainName = coin
	}
	if !chain.IsSupported(chainName) {
		return nil, malformed(kind, "unknown chain %q for coin %q", chainName, coin)
	}

	network, err := address.Validate(chainName, u.Address)
	if err != nil {
		return nil, malformed(kind, "%v", err)
	}
	addr := u.Address
	if chainName == chain.BCH {
		if addr, err = address.NormalizeCashAddr(addr); err != nil {
			return nil, malformed(kind, "%v", err)
		}
	}

	var amount *big.Int
	if u.Has("amount") {
		if amount, err = chain.CurrencyToAtomic(u.Get("amount"), coin, chainName); err != nil {
			return nil, malformed(kind, "amount: %v", err)
		}
	}
	gasPrice, err := optionalInteger(kind, u, "gasPrice")
	if err != nil {
		return nil, err
	}

	return &PaymentIntent{
		Source:    kind,
		Recipient: addressRecipient(coin, chainName, addr, network),
		Amount:    amount,
		Message:   u.Get("message"),
		FeeRate:   gasPrice,
	}, nil
}

// --- side channels ---

func extractWalletConnect(s string, _ ExtractContext) (Intent, error) {
	wc, err := uri.ParseWalletConnect(s)
	if err != nil {
		return nil, malformed(KindWalletConnect, "%v", err)
	}
	return &PairingIntent{URI: wc}, nil
}

func extractBuyCrypto(s string, ctx ExtractContext) (Intent, error) {
	ctx.Log.Infof("incoming data (redirect): buy crypto pre-set: %s", s)
	res := uri.Unescape(s)
	partner, _ := uri.ParameterByName("partner", res)
	amount, _ := uri.ParameterByName("amount", res)
	coin, _ := uri.ParameterByName("coin", res)
	chainName, _ := uri.ParameterByName("chain", res)

	intent := &BuyCryptoIntent{
		Partner: strings.ToLower(partner),
		Amount:  amount,
		Coin:    strings.ToLower(coin),
		Chain:   strings.ToLower(chainName),
	}
	if intent.Coin != "" && intent.Chain == "" {
		if chain.IsUtxoCoin(intent.Coin) {
			intent.Chain = intent.Coin
		} else {
			intent.Coin = ""
		}
	}
	return intent, nil
}

func redirect(kind Kind) func(string, ExtractContext) (Intent, error) {
	return func(s string, ctx ExtractContext) (Intent, error) {
		ctx.Log.Infof("incoming data (redirect): %s URL: %s", kind, s)
		return &RedirectIntent{Source: kind, Partner: kind.Partner(), Query: s}, nil
	}
}

func extractImport(s string, ctx ExtractContext) (Intent, error) {
	ctx.Log.Info("incoming data (redirect): QR code export feature")
	return &ImportIntent{Data: s}, nil
}

func extractJoin(s string, ctx ExtractContext) (Intent, error) {
	ctx.Log.Info("incoming data (redirect): code to join a multisig wallet")
	return &JoinIntent{Code: s}, nil
}
