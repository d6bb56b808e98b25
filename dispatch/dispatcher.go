// Package dispatch turns extracted intents into navigation, wallet
// selection and transaction proposals.
//
// Dispatcher methods never return errors for user-facing failures: they
// show a notification instead. Every loading indicator started is
// dismissed on both success and error paths.
package dispatch

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/chain"
	"github.com/bitfsorg/libscan-go/grammar"
	"github.com/bitfsorg/libscan-go/logging"
	"github.com/bitfsorg/libscan-go/paypro"
)

// Deps wires the dispatcher to its collaborators. Missing collaborators
// fall back to inert defaults; a missing Navigator drops navigation with
// a warning.
type Deps struct {
	Navigator Navigator
	Notifier  Notifier
	Wallets   WalletStore
	Proposals ProposalBuilder
	PayPro    PayProService
	Unlocker  InvoiceUnlocker
	Pairer    Pairer
	Links     LinkOpener
	Fiat      FiatConverter
	Tracker   analytics.Tracker
	Log       *logrus.Entry
}

// Dispatcher routes intents to screens.
type Dispatcher struct {
	nav       Navigator
	notify    Notifier
	wallets   WalletStore
	proposals ProposalBuilder
	payPro    PayProService
	unlocker  InvoiceUnlocker
	pairer    Pairer
	links     LinkOpener
	fiat      FiatConverter
	tracker   analytics.Tracker
	log       *logrus.Entry
}

// New creates a dispatcher.
func New(deps Deps) *Dispatcher {
	d := &Dispatcher{
		nav:       deps.Navigator,
		notify:    deps.Notifier,
		wallets:   deps.Wallets,
		proposals: deps.Proposals,
		payPro:    deps.PayPro,
		unlocker:  deps.Unlocker,
		pairer:    deps.Pairer,
		links:     deps.Links,
		fiat:      deps.Fiat,
		tracker:   deps.Tracker,
		log:       deps.Log,
	}
	if d.notify == nil {
		d.notify = nopNotifier{}
	}
	if d.wallets == nil {
		d.wallets = StaticWalletStore(nil)
	}
	if d.payPro == nil {
		d.payPro = paypro.NewClient(nil, nil)
	}
	if d.tracker == nil {
		d.tracker = analytics.NoopTracker{}
	}
	if d.log == nil {
		d.log = logging.Component(nil, "dispatch")
	}
	if d.nav == nil {
		d.nav = DiscardNavigator(d.log)
	}
	return d
}

// Navigator returns the navigator the dispatcher drives.
func (d *Dispatcher) Navigator() Navigator { return d.nav }

// Notifier returns the notifier the dispatcher drives.
func (d *Dispatcher) Notifier() Notifier { return d.notify }

// Pay routes a payment intent: without an amount the user is asked for
// one, otherwise a proposal is built.
func (d *Dispatcher) Pay(ctx context.Context, p *grammar.PaymentIntent, w *Wallet) {
	req := PaymentRequest{
		Recipient: p.Recipient,
		Amount:    p.Amount,
		Wallet:    w,
		Message:   p.Message,
		FeeRate:   p.FeeRate,
	}
	if p.Amount == nil {
		d.GoToAmount(ctx, req)
		return
	}
	d.GoToConfirm(ctx, req)
}

// PaymentRequest carries a recipient and the optional pieces of a payment.
type PaymentRequest struct {
	Recipient grammar.Recipient
	Amount    *big.Int
	Wallet    *Wallet
	Message   string
	FeeRate   *big.Int
	SendMax   bool
}

func (d *Dispatcher) globalSelect(req PaymentRequest, withAmount bool) {
	params := GlobalSelectParams{
		Context:   GlobalSelectContextScanner,
		Recipient: req.Recipient,
		Opts: RecipientOpts{
			ShowEVMWalletsAndTokens: chain.IsBitpaySupportedEvmCoin(req.Recipient.Currency),
			Message:                 req.Message,
			FeeRate:                 req.FeeRate,
		},
	}
	if withAmount {
		params.Amount = req.Amount
	}
	d.nav.Navigate(StackWallet, ScreenGlobalSelect, params)
}

// GoToConfirm builds a proposal for req and opens the confirmation screen.
// Without a wallet the user picks one first.
func (d *Dispatcher) GoToConfirm(ctx context.Context, req PaymentRequest) {
	if req.Wallet == nil {
		d.globalSelect(req, true)
		return
	}

	d.notify.StartLoading(LoadingCreatingTxp)
	proposal, err := d.createProposal(ctx, req)
	d.notify.DismissLoading()
	if err != nil {
		d.log.WithError(err).WithField("wallet", req.Wallet.ID).Warn("create proposal")
		d.showProposalError(err)
		return
	}

	d.nav.Navigate(StackWallet, ScreenConfirm, ConfirmParams{
		Wallet:    req.Wallet,
		Recipient: req.Recipient,
		Proposal:  proposal,
		Amount:    req.Amount,
		Message:   req.Message,
		SendMax:   req.SendMax,
	})
}

func (d *Dispatcher) createProposal(ctx context.Context, req PaymentRequest) (*Proposal, error) {
	if d.proposals == nil {
		return nil, fmt.Errorf("%w: no proposal builder", ErrProposalConstruction)
	}
	proposal, err := d.proposals.CreateProposal(ctx, ProposalRequest{
		Wallet:    req.Wallet,
		Recipient: req.Recipient,
		Amount:    req.Amount,
		Message:   req.Message,
		FeeRate:   req.FeeRate,
		SendMax:   req.SendMax,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProposalConstruction, err)
	}
	return proposal, nil
}

func (d *Dispatcher) showProposalError(err error) {
	var n Notification
	if d.proposals != nil {
		n = d.proposals.ErrorMessage(err)
	} else {
		n = generalError()
	}
	n.BackdropDismiss = false
	n.Actions = []Action{{Text: "OK", Primary: true, Handler: func() {}}}
	d.notify.Show(n)
}

// GoToAmount asks the user for an amount, then continues to GoToConfirm.
// Without a wallet the user picks one first.
func (d *Dispatcher) GoToAmount(ctx context.Context, req PaymentRequest) {
	if req.Wallet == nil {
		d.globalSelect(req, false)
		return
	}
	d.nav.Navigate(StackWallet, ScreenAmount, AmountParams{
		SendMaxEnabled:             true,
		CryptoCurrencyAbbreviation: strings.ToUpper(req.Recipient.Currency),
		Chain:                      req.Recipient.Chain,
		OnAmountSelected: func(ctx context.Context, amount *big.Int, sendMax bool) {
			next := req
			next.Amount = amount
			next.SendMax = sendMax
			d.GoToConfirm(ctx, next)
		},
	})
}

func generalError() Notification {
	return Notification{
		Type:            NotificationError,
		Title:           "Something went wrong",
		Message:         "Uh oh, something went wrong. Please try again later.",
		BackdropDismiss: true,
		Actions:         []Action{{Text: "OK", Primary: true, Handler: func() {}}},
	}
}

// ShowError shows a dismissible error notification for err.
func (d *Dispatcher) ShowError(title string, err error) {
	n := generalError()
	if title != "" {
		n.Title = title
	}
	if err != nil {
		n.Message = err.Error()
	}
	d.notify.Show(n)
}

// DiscardNavigator returns a Navigator that logs and drops every call.
func DiscardNavigator(log *logrus.Entry) Navigator {
	if log == nil {
		log = logging.Component(nil, "dispatch")
	}
	return discardNavigator{log: log}
}

type discardNavigator struct {
	log *logrus.Entry
}

func (n discardNavigator) Navigate(stack, screen string, _ interface{}) {
	n.log.WithField("screen", stack+"/"+screen).Warn("navigation dropped: no navigator")
}

func (n discardNavigator) Replace(stack, screen string, _ interface{}) {
	n.log.WithField("screen", stack+"/"+screen).Warn("navigation dropped: no navigator")
}

func (n discardNavigator) Reset(routes []Route) {
	n.log.WithField("routes", len(routes)).Warn("navigation dropped: no navigator")
}

func (n discardNavigator) GoBack() {
	n.log.Warn("navigation dropped: no navigator")
}

type nopNotifier struct{}

func (nopNotifier) Show(Notification)   {}
func (nopNotifier) StartLoading(string) {}
func (nopNotifier) DismissLoading()     {}
