// Package resolver is the entry point for scanned or deep-linked text.
//
// Resolve classifies the input, extracts an intent and hands it to the
// dispatcher or the redirect handler. Classification and extraction
// failures never escape Resolve; they become a single notification.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/dispatch"
	"github.com/bitfsorg/libscan-go/grammar"
	"github.com/bitfsorg/libscan-go/logging"
	"github.com/bitfsorg/libscan-go/redirect"
)

// Options carry caller context for one resolution.
type Options struct {
	// Wallet preselects the paying wallet and disambiguates plain addresses.
	Wallet *dispatch.Wallet
	// Context is the recipient type, "address" when empty.
	Context        string
	Name           string
	Email          string
	DestinationTag *uint32
}

// Resolver routes raw input to its handler.
type Resolver struct {
	dispatcher *dispatch.Dispatcher
	redirects  *redirect.Handler
	tracker    analytics.Tracker
	log        *logrus.Entry
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRedirects sets the partner redirect handler. Without one partner
// redirects are logged and ignored.
func WithRedirects(h *redirect.Handler) Option {
	return func(r *Resolver) { r.redirects = h }
}

// WithTracker sets the tracker observing resolution latency.
func WithTracker(t analytics.Tracker) Option {
	return func(r *Resolver) { r.tracker = t }
}

// WithLogger sets the log entry.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a resolver dispatching through d.
func New(d *dispatch.Dispatcher, opts ...Option) *Resolver {
	r := &Resolver{
		dispatcher: d,
		tracker:    analytics.NoopTracker{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logging.Component(nil, "resolver")
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(dispatch.Deps{Log: r.log})
	}
	return r
}

// Resolve handles raw and reports whether it was recognized and acted
// upon. It returns once the handler finished its network calls and
// navigation.
func (r *Resolver) Resolve(ctx context.Context, raw string, opts Options) bool {
	start := time.Now()
	log := r.log.WithField("resolution", uuid.NewString())

	m := grammar.Classify(raw)
	defer func() { r.tracker.ObserveResolution(m.Kind.String(), time.Since(start)) }()
	log = log.WithField("kind", m.Kind.String())

	intent, err := m.Extract(grammar.ExtractContext{
		WalletCurrency: walletCurrency(opts.Wallet),
		WalletChain:    walletChain(opts.Wallet),
		RecipientType:  opts.Context,
		Name:           opts.Name,
		Email:          opts.Email,
		DestinationTag: opts.DestinationTag,
		Log:            log,
	})
	if err != nil {
		log.WithError(err).Warn("resolve incoming data")
		r.dispatcher.ShowError(errorTitle(err), err)
		return false
	}
	log.Debug("incoming data")

	d := r.dispatcher
	switch it := intent.(type) {
	case *grammar.PaymentIntent:
		d.Pay(ctx, it, opts.Wallet)
	case *grammar.PaymentProtocolIntent:
		d.GoToPayPro(ctx, it.URL, dispatch.PayProOptions{Wallet: opts.Wallet})
	case *grammar.InvoiceIntent:
		retryCtx := context.WithoutCancel(ctx)
		d.HandleUnlock(ctx, it, dispatch.UnlockOptions{
			Wallet: opts.Wallet,
			Retry:  func() { r.Resolve(retryCtx, raw, opts) },
		})
	case *grammar.PairingIntent:
		d.WalletConnect(ctx, it)
	case *grammar.BuyCryptoIntent:
		d.BuyCrypto(it)
	case *grammar.RedirectIntent:
		if r.redirects == nil {
			log.WithField("partner", it.Partner).Warn("no redirect handler")
			return false
		}
		return r.redirects.Handle(it.Partner, it.Query)
	case *grammar.WalletDeepLinkIntent:
		d.OpenWallet(it)
	case *grammar.ImportIntent:
		d.Import(it.Data)
	case *grammar.JoinIntent:
		d.Join(it.Code)
	default:
		log.Warnf("unhandled intent %T", intent)
		return false
	}
	return true
}

func errorTitle(err error) string {
	switch {
	case errors.Is(err, grammar.ErrUnrecognized):
		return "Unrecognized data"
	case errors.Is(err, grammar.ErrMalformedInput):
		return "Invalid data"
	default:
		return ""
	}
}

func walletCurrency(w *dispatch.Wallet) string {
	if w == nil {
		return ""
	}
	return w.Currency
}

func walletChain(w *dispatch.Wallet) string {
	if w == nil {
		return ""
	}
	return w.Chain
}
