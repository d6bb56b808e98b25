package grammar

import (
	"math/big"

	"github.com/bitfsorg/libscan-go/uri"
)

// Intent is the result of extracting a matched input. It is one of
// *PaymentIntent, *PaymentProtocolIntent, *InvoiceIntent, *PairingIntent,
// *BuyCryptoIntent, *RedirectIntent, *WalletDeepLinkIntent, *ImportIntent
// or *JoinIntent.
type Intent interface {
	Kind() Kind
}

// Recipient is a normalized payment target.
type Recipient struct {
	Type           string  `json:"type"`
	Currency       string  `json:"currency"`
	Chain          string  `json:"chain"`
	Address        string  `json:"address"`
	Network        string  `json:"network,omitempty"`
	DestinationTag *uint32 `json:"destinationTag,omitempty"`
	Name           string  `json:"name,omitempty"`
	Email          string  `json:"email,omitempty"`
}

// PaymentIntent is a recipient plus optional amount, message and fee rate.
// A nil Amount means the user must be asked for one.
type PaymentIntent struct {
	Source    Kind
	Recipient Recipient
	Amount    *big.Int // atomic units
	Message   string
	FeeRate   *big.Int // sat/byte for UTXO chains, wei gas price for EVM
}

func (p *PaymentIntent) Kind() Kind { return p.Source }

// PaymentProtocolIntent references a payment-protocol URL.
type PaymentProtocolIntent struct {
	Source    Kind
	URL       string
	InvoiceID string // Empty outside BitPay
	Host      string
}

func (p *PaymentProtocolIntent) Kind() Kind { return p.Source }

// InvoiceIntent references a BitPay invoice that may require unlocking.
type InvoiceIntent struct {
	URL       string
	InvoiceID string
	Host      string
	Network   string
	Context   string // "c" parameter, "u" requests a buyer email
}

func (*InvoiceIntent) Kind() Kind { return KindBitPayInvoice }

// PairingIntent is a WalletConnect pairing request.
type PairingIntent struct {
	URI *uri.WalletConnectURI
}

func (*PairingIntent) Kind() Kind { return KindWalletConnect }

// BuyCryptoIntent pre-sets the buy-crypto flow.
type BuyCryptoIntent struct {
	Partner string
	Amount  string // USD
	Coin    string
	Chain   string
}

func (*BuyCryptoIntent) Kind() Kind { return KindBuyCrypto }

// RedirectIntent is an exchange partner return URL.
type RedirectIntent struct {
	Source  Kind
	Partner string
	Query   string
}

func (r *RedirectIntent) Kind() Kind { return r.Source }

// WalletDeepLinkIntent opens a wallet from a push notification link.
type WalletDeepLinkIntent struct {
	WalletIDHash            string
	TokenAddress            string
	MultisigContractAddress string
}

func (*WalletDeepLinkIntent) Kind() Kind { return KindBitPayURI }

// ImportIntent carries an exported key blob.
type ImportIntent struct {
	Data string
}

func (*ImportIntent) Kind() Kind { return KindImportPrivateKey }

// JoinIntent carries a multisig invitation code.
type JoinIntent struct {
	Code string
}

func (*JoinIntent) Kind() Kind { return KindJoinCode }
