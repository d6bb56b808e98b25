package dispatch

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libscan-go/grammar"
	"github.com/bitfsorg/libscan-go/paypro"
)

// Wallet is a single-currency wallet as the dispatcher sees it.
type Wallet struct {
	ID           string // credentials wallet id, token wallets append "-<tokenAddress>"
	KeyID        string
	Name         string
	Currency     string
	Chain        string
	Network      string
	TokenAddress string
}

// Key groups wallets derived from one seed.
type Key struct {
	ID      string
	Name    string
	Wallets []*Wallet
}

// WalletStore exposes the user's keys.
type WalletStore interface {
	Keys() []Key
}

// Route is one entry of a navigation stack reset.
type Route struct {
	Name   string
	Screen string
	Params interface{}
}

// Navigator moves the user between screens.
type Navigator interface {
	Navigate(stack, screen string, params interface{})
	Replace(stack, screen string, params interface{})
	Reset(routes []Route)
	GoBack()
}

// Notification types.
const (
	NotificationWarning = "warning"
	NotificationError   = "error"
	NotificationInfo    = "info"
)

// Action is a button on a notification.
type Action struct {
	Text    string
	Primary bool
	Handler func()
}

// Notification is a modal message shown to the user.
type Notification struct {
	Type            string
	Title           string
	Message         string
	BackdropDismiss bool
	Actions         []Action
}

// Loading indicator kinds.
const (
	LoadingFetchingPaymentInfo = "FETCHING_PAYMENT_INFO"
	LoadingCreatingTxp         = "CREATING_TXP"
)

// Notifier shows notifications and the loading indicator.
type Notifier interface {
	Show(n Notification)
	StartLoading(kind string)
	DismissLoading()
}

// ProposalRequest describes a transaction proposal to build.
type ProposalRequest struct {
	Wallet    *Wallet
	Recipient grammar.Recipient
	Amount    *big.Int
	Message   string
	FeeRate   *big.Int
	SendMax   bool
}

// Proposal is a built, unsigned transaction proposal.
type Proposal struct {
	ID     string
	Amount *big.Int
	Fee    *big.Int
}

// ProposalBuilder creates transaction proposals and renders their errors.
type ProposalBuilder interface {
	CreateProposal(ctx context.Context, req ProposalRequest) (*Proposal, error)
	ErrorMessage(err error) Notification
}

// Pairer pairs WalletConnect v2 sessions.
type Pairer interface {
	Pair(ctx context.Context, uri string) error
	HasPendingProposal() bool
}

// LinkOpener opens external URLs.
type LinkOpener interface {
	Open(url string) error
}

// FiatConverter converts USD amounts into the user's display currency.
type FiatConverter interface {
	AltCurrency() string
	UsdToAltFiat(usd decimal.Decimal, isoCode string) (decimal.Decimal, error)
}

// PayProService is the payment-protocol client surface.
type PayProService interface {
	GetOptions(ctx context.Context, ref string) (*paypro.PaymentOptions, error)
	GetInvoice(ctx context.Context, host, invoiceID string) (*paypro.Invoice, error)
	GetInvoiceData(ctx context.Context, host, invoiceID string) (*paypro.Invoice, error)
	SetBuyerProvidedEmail(ctx context.Context, host, invoiceID, email string) error
}

// InvoiceUnlocker runs the gated-invoice unlock flow.
type InvoiceUnlocker interface {
	Unlock(ctx context.Context, invoiceID, network string) paypro.UnlockResult
}

var (
	_ PayProService   = (*paypro.Client)(nil)
	_ InvoiceUnlocker = (*paypro.Unlocker)(nil)
)
