package dispatch

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/libscan-go/paypro"
)

// Navigation operations recorded by RecordingNavigator.
const (
	OpNavigate = "navigate"
	OpReplace  = "replace"
	OpReset    = "reset"
	OpGoBack   = "goBack"
)

// NavCall is one recorded navigation.
type NavCall struct {
	Op     string
	Stack  string
	Screen string
	Params interface{}
	Routes []Route
}

// RecordingNavigator records every navigation it receives.
type RecordingNavigator struct {
	mu    sync.Mutex
	calls []NavCall
}

func (n *RecordingNavigator) record(c NavCall) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
}

func (n *RecordingNavigator) Navigate(stack, screen string, params interface{}) {
	n.record(NavCall{Op: OpNavigate, Stack: stack, Screen: screen, Params: params})
}
func (n *RecordingNavigator) Replace(stack, screen string, params interface{}) {
	n.record(NavCall{Op: OpReplace, Stack: stack, Screen: screen, Params: params})
}
func (n *RecordingNavigator) Reset(routes []Route) {
	n.record(NavCall{Op: OpReset, Routes: append([]Route(nil), routes...)})
}
func (n *RecordingNavigator) GoBack() { n.record(NavCall{Op: OpGoBack}) }

// Calls returns a copy of the recorded navigations.
func (n *RecordingNavigator) Calls() []NavCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NavCall(nil), n.calls...)
}

// Last returns the most recent navigation and whether there is one.
func (n *RecordingNavigator) Last() (NavCall, bool) {
	calls := n.Calls()
	if len(calls) == 0 {
		return NavCall{}, false
	}
	return calls[len(calls)-1], true
}

// RecordingNotifier records notifications and tracks the loading indicator.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	loading       []string
	active        int
}

func (n *RecordingNotifier) Show(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, note)
}

func (n *RecordingNotifier) StartLoading(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.loading = append(n.loading, kind)
	n.active = 1
}

func (n *RecordingNotifier) DismissLoading() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = 0
}

// Notifications returns a copy of the shown notifications.
func (n *RecordingNotifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

// LoadingKinds returns every loading kind started, in order.
func (n *RecordingNotifier) LoadingKinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.loading...)
}

// Loading reports whether a loading indicator is still shown.
func (n *RecordingNotifier) Loading() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active > 0
}

// StaticWalletStore serves a fixed set of keys.
type StaticWalletStore []Key

func (s StaticWalletStore) Keys() []Key { return s }

// MockProposalBuilder is a test double for ProposalBuilder.
type MockProposalBuilder struct {
	CreateProposalFn func(ctx context.Context, req ProposalRequest) (*Proposal, error)
	ErrorMessageFn   func(err error) Notification
}

func (m *MockProposalBuilder) CreateProposal(ctx context.Context, req ProposalRequest) (*Proposal, error) {
	return m.CreateProposalFn(ctx, req)
}
func (m *MockProposalBuilder) ErrorMessage(err error) Notification {
	if m.ErrorMessageFn == nil {
		return Notification{Type: NotificationError, Title: "Error", Message: err.Error()}
	}
	return m.ErrorMessageFn(err)
}

// MockPayProService is a test double for PayProService.
type MockPayProService struct {
	GetOptionsFn            func(ctx context.Context, ref string) (*paypro.PaymentOptions, error)
	GetInvoiceFn            func(ctx context.Context, host, invoiceID string) (*paypro.Invoice, error)
	GetInvoiceDataFn        func(ctx context.Context, host, invoiceID string) (*paypro.Invoice, error)
	SetBuyerProvidedEmailFn func(ctx context.Context, host, invoiceID, email string) error
}

func (m *MockPayProService) GetOptions(ctx context.Context, ref string) (*paypro.PaymentOptions, error) {
	return m.GetOptionsFn(ctx, ref)
}
func (m *MockPayProService) GetInvoice(ctx context.Context, host, invoiceID string) (*paypro.Invoice, error) {
	return m.GetInvoiceFn(ctx, host, invoiceID)
}
func (m *MockPayProService) GetInvoiceData(ctx context.Context, host, invoiceID string) (*paypro.Invoice, error) {
	return m.GetInvoiceDataFn(ctx, host, invoiceID)
}
func (m *MockPayProService) SetBuyerProvidedEmail(ctx context.Context, host, invoiceID, email string) error {
	return m.SetBuyerProvidedEmailFn(ctx, host, invoiceID, email)
}

// StaticUnlocker always returns Result.
type StaticUnlocker struct {
	Result paypro.UnlockResult
}

func (s StaticUnlocker) Unlock(context.Context, string, string) paypro.UnlockResult { return s.Result }

// MockPairer is a test double for Pairer.
type MockPairer struct {
	PairFn  func(ctx context.Context, uri string) error
	Pending bool
}

func (m *MockPairer) Pair(ctx context.Context, uri string) error { return m.PairFn(ctx, uri) }
func (m *MockPairer) HasPendingProposal() bool                   { return m.Pending }

// RecordingLinkOpener records opened URLs.
type RecordingLinkOpener struct {
	URLs []string
}

func (o *RecordingLinkOpener) Open(url string) error {
	o.URLs = append(o.URLs, url)
	return nil
}

// FixedRateConverter converts USD at a fixed rate into Currency.
type FixedRateConverter struct {
	Currency string
	Rate     decimal.Decimal
}

func (c FixedRateConverter) AltCurrency() string { return c.Currency }
func (c FixedRateConverter) UsdToAltFiat(usd decimal.Decimal, _ string) (decimal.Decimal, error) {
	return usd.Mul(c.Rate), nil
}

var (
	_ Navigator       = (*RecordingNavigator)(nil)
	_ Notifier        = (*RecordingNotifier)(nil)
	_ WalletStore     = StaticWalletStore(nil)
	_ ProposalBuilder = (*MockProposalBuilder)(nil)
	_ PayProService   = (*MockPayProService)(nil)
	_ InvoiceUnlocker = StaticUnlocker{}
	_ Pairer          = (*MockPairer)(nil)
	_ LinkOpener      = (*RecordingLinkOpener)(nil)
	_ FiatConverter   = FixedRateConverter{}
)
