package resolver

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/bitpayid"
	"github.com/bitfsorg/libscan-go/dispatch"
	"github.com/bitfsorg/libscan-go/paypro"
	"github.com/bitfsorg/libscan-go/redirect"
	"github.com/bitfsorg/libscan-go/tracking"
)

// routeHTTP answers paypro requests from a path → JSON body table.
type routeHTTP struct {
	routes map[string]string
	hits   map[string]int
}

func (h *routeHTTP) Do(req *http.Request) (*http.Response, error) {
	if h.hits == nil {
		h.hits = map[string]int{}
	}
	h.hits[req.URL.Path]++
	body, ok := h.routes[req.URL.Path]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = `{"error":"not found"}`
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

type harness struct {
	nav     *dispatch.RecordingNavigator
	notify  *dispatch.RecordingNotifier
	store   *tracking.MemStore
	tracker *analytics.MemoryTracker
	http    *routeHTTP
	pairing *bitpayid.MemPairingStore
	created []dispatch.ProposalRequest
	r       *Resolver
}

func newHarness(t *testing.T, routes map[string]string) *harness {
	t.Helper()
	h := &harness{
		nav:     &dispatch.RecordingNavigator{},
		notify:  &dispatch.RecordingNotifier{},
		store:   tracking.NewMemStore(),
		tracker: &analytics.MemoryTracker{},
		http:    &routeHTTP{routes: routes},
		pairing: bitpayid.NewMemPairingStore(nil),
	}
	builder := &dispatch.MockProposalBuilder{
		CreateProposalFn: func(_ context.Context, req dispatch.ProposalRequest) (*dispatch.Proposal, error) {
			h.created = append(h.created, req)
			return &dispatch.Proposal{ID: "txp", Amount: req.Amount}, nil
		},
	}
	d := dispatch.New(dispatch.Deps{
		Navigator: h.nav,
		Notifier:  h.notify,
		Proposals: builder,
		PayPro:    paypro.NewClient(h.http, nil),
		Unlocker:  paypro.NewUnlocker(bitpayid.NewClient("https://bitpay.com", 0), h.pairing, "livenet", nil),
		Tracker:   h.tracker,
	})
	h.r = New(d,
		WithRedirects(redirect.NewHandler(h.store, h.nav, redirect.WithTracker(h.tracker))),
		WithTracker(h.tracker),
	)
	return h
}

// --- End-to-end Tests ---

func TestResolve_BitcoinURIWithAmount(t *testing.T) {
	h := newHarness(t, nil)
	w := &dispatch.Wallet{ID: "w1", Currency: "btc", Chain: "btc", Network: "livenet"}

	ok := h.r.Resolve(context.Background(), "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=0.001&message=coffee", Options{Wallet: w})
	require.True(t, ok)

	require.Len(t, h.created, 1)
	req := h.created[0]
	assert.Equal(t, "btc", req.Recipient.Chain)
	assert.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", req.Recipient.Address)
	assert.Equal(t, 0, req.Amount.Cmp(big.NewInt(100000)))
	assert.Equal(t, "coffee", req.Message)

	last, ok := h.nav.Last()
	require.True(t, ok)
	assert.Equal(t, dispatch.ScreenConfirm, last.Screen)
	assert.False(t, h.notify.Loading())
	assert.Equal(t, []string{"BitcoinURI"}, h.tracker.Resolutions())
}

func TestResolve_EthereumURIWithoutValue(t *testing.T) {
	h := newHarness(t, nil)
	w := &dispatch.Wallet{ID: "w2", Currency: "eth", Chain: "eth"}

	ok := h.r.Resolve(context.Background(), "ethereum:0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", Options{Wallet: w})
	require.True(t, ok)

	assert.Empty(t, h.created)
	last, ok := h.nav.Last()
	require.True(t, ok)
	assert.Equal(t, dispatch.ScreenAmount, last.Screen)
	params := last.Params.(dispatch.AmountParams)
	assert.Equal(t, "ETH", params.CryptoCurrencyAbbreviation)
	assert.Equal(t, "eth", params.Chain)
}

func TestResolve_EmailGatedInvoice(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/invoiceData/KSj8RxTbzHaFA2uvPTQM": `{"data":{"invoice":{"id":"KSj8RxTbzHaFA2uvPTQM","status":"new","buyerProvidedInfo":{}}}}`,
	})
	raw := "https://bitpay.com/i/KSj8RxTbzHaFA2uvPTQM?c=u"

	ok := h.r.Resolve(context.Background(), raw, Options{})
	require.True(t, ok)

	calls := h.nav.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.StackWallet, calls[0].Stack)
	assert.Equal(t, dispatch.ScreenEnterBuyerProvidedEmail, calls[0].Screen)
	assert.Equal(t, dispatch.EnterBuyerProvidedEmailParams{Data: raw}, calls[0].Params)
	assert.Zero(t, h.http.hits["/i/KSj8RxTbzHaFA2uvPTQM"])
	assert.Empty(t, h.notify.Notifications())
}

func TestResolve_MoonpayRedirect(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.store.Put(&tracking.Record{
		Partner:    tracking.PartnerMoonpay,
		ExternalID: "abc123",
		Status:     tracking.StatusPaymentRequestSent,
	}))

	ok := h.r.Resolve(context.Background(), "bitpay://moonpay?externalId=abc123&transactionStatus=completed", Options{})
	require.True(t, ok)

	rec, err := h.store.Get(tracking.PartnerMoonpay, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Status)

	last, ok := h.nav.Last()
	require.True(t, ok)
	require.Len(t, last.Routes, 2)
	assert.Equal(t, dispatch.ScreenHome, last.Routes[0].Screen)
	assert.Equal(t, "MoonpaySettings", last.Routes[1].Screen)

	events := h.tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventPurchasedBuyCrypto, events[0].Name)
}

// --- Boundary Tests ---

func TestResolve_Unrecognized(t *testing.T) {
	h := newHarness(t, nil)

	assert.False(t, h.r.Resolve(context.Background(), "hello world", Options{}))

	assert.Empty(t, h.nav.Calls())
	notes := h.notify.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Unrecognized data", notes[0].Title)
	assert.Equal(t, []string{"Unrecognized"}, h.tracker.Resolutions())
}

func TestResolve_Malformed(t *testing.T) {
	h := newHarness(t, nil)

	assert.False(t, h.r.Resolve(context.Background(), "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=abc", Options{}))

	assert.Empty(t, h.nav.Calls())
	notes := h.notify.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Invalid data", notes[0].Title)
	assert.Contains(t, notes[0].Message, "malformed")
}

func TestResolve_PaymentProtocolFailureIsReported(t *testing.T) {
	h := newHarness(t, nil)

	ok := h.r.Resolve(context.Background(), "bitcoin:?r=https://bitpay.com/i/KSj8RxTbzHaFA2uvPTQM", Options{})
	require.True(t, ok)

	assert.Empty(t, h.nav.Calls())
	notes := h.notify.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Something went wrong", notes[0].Title)
	assert.Equal(t, "not found", notes[0].Message)
	assert.False(t, h.notify.Loading())
}

func TestResolve_PaymentProtocol(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/i/KSj8RxTbzHaFA2uvPTQM": `{"time":"2024-05-01T12:00:00Z","expires":"2024-05-01T12:15:00Z","memo":"Payment request","paymentUrl":"https://bitpay.com/i/KSj8RxTbzHaFA2uvPTQM","paymentId":"KSj8RxTbzHaFA2uvPTQM","paymentOptions":[{"chain":"BTC","currency":"BTC","network":"main","estimatedAmount":"10800","requiredFeeRate":"4.5","minerFee":"0","decimals":8,"selected":false}]}`,
		"/invoices/KSj8RxTbzHaFA2uvPTQM": `{"data":{"id":"KSj8RxTbzHaFA2uvPTQM","status":"new","price":"5","currency":"USD"}}`,
	})

	ok := h.r.Resolve(context.Background(), "bitcoin:?r=https://bitpay.com/i/KSj8RxTbzHaFA2uvPTQM", Options{})
	require.True(t, ok)

	last, ok := h.nav.Last()
	require.True(t, ok)
	assert.Equal(t, dispatch.ScreenPayProConfirm, last.Screen)
	params := last.Params.(dispatch.PayProConfirmParams)
	assert.Equal(t, "KSj8RxTbzHaFA2uvPTQM", params.PayProOptions.PaymentID)
	require.NotNil(t, params.Invoice)
	assert.Equal(t, "USD", params.Invoice.Currency)
	assert.Empty(t, h.notify.Notifications())
}

func TestResolve_PaymentProtocolOutsideBitPay(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/pay/abc123": `{"time":"2024-05-01T12:00:00Z","expires":"2024-05-01T12:15:00Z","memo":"Order 42","paymentUrl":"https://merchant.example.com/pay/abc123","paymentId":"abc123","paymentOptions":[{"chain":"BTC","currency":"BTC","network":"main","estimatedAmount":"10800","requiredFeeRate":"4.5","minerFee":"0","decimals":8,"selected":false}]}`,
	})

	ok := h.r.Resolve(context.Background(), "bitcoin:?r=https://merchant.example.com/pay/abc123", Options{})
	require.True(t, ok)

	last, ok := h.nav.Last()
	require.True(t, ok)
	assert.Equal(t, dispatch.ScreenPayProConfirm, last.Screen)
	params := last.Params.(dispatch.PayProConfirmParams)
	assert.Equal(t, "abc123", params.PayProOptions.PaymentID)
	assert.Nil(t, params.Invoice)
	assert.Zero(t, h.http.hits["/invoices/abc123"])
	assert.Empty(t, h.notify.Notifications())
}

func TestResolve_PairingRequiredRetriesFromRaw(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/i/KSj8RxTbzHaFA2uvPTQM":        `{"paymentUrl":"https://bitpay.com/i/KSj8RxTbzHaFA2uvPTQM","paymentId":"KSj8RxTbzHaFA2uvPTQM","paymentOptions":[{"chain":"BTC","currency":"BTC"}]}`,
		"/invoices/KSj8RxTbzHaFA2uvPTQM": `{"data":{"id":"KSj8RxTbzHaFA2uvPTQM","status":"new"}}`,
	})
	raw := "https://bitpay.com/i/KSj8RxTbzHaFA2uvPTQM"

	require.True(t, h.r.Resolve(context.Background(), raw, Options{}))

	last, ok := h.nav.Last()
	require.True(t, ok)
	require.Equal(t, dispatch.ScreenLogin, last.Screen)
	login := last.Params.(dispatch.LoginParams)

	// The retry resolves from scratch; still unpaired, so login is shown again.
	login.OnLoginSuccess()

	calls := h.nav.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, dispatch.ScreenHome, calls[1].Screen)
	assert.Equal(t, dispatch.ScreenLogin, calls[2].Screen)
	assert.Equal(t, 2, h.http.hits["/invoiceData/KSj8RxTbzHaFA2uvPTQM"])
	assert.Len(t, h.tracker.Resolutions(), 2)
}

func TestResolve_SideChannels(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.r.Resolve(context.Background(), "1|some exported key blob", Options{}))
	last, _ := h.nav.Last()
	assert.Equal(t, dispatch.ScreenImport, last.Screen)

	require.True(t, h.r.Resolve(context.Background(), "bitpay://buy?partner=moonpay&amount=50&coin=btc", Options{}))
	last, _ = h.nav.Last()
	assert.Equal(t, dispatch.OpReset, last.Op)
	assert.Equal(t, dispatch.ScreenBuyCryptoRoot, last.Routes[1].Screen)
}

func TestResolve_WithoutDispatcher(t *testing.T) {
	r := New(nil)
	assert.NotPanics(t, func() {
		assert.True(t, r.Resolve(context.Background(), "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", Options{}))
	})
}

func TestResolve_HugeValueReportsInvalidData(t *testing.T) {
	h := newHarness(t, nil)

	ok := h.r.Resolve(context.Background(), "ethereum:0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed?value=1e900000000", Options{})
	assert.False(t, ok)

	assert.Empty(t, h.nav.Calls())
	notes := h.notify.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Invalid data", notes[0].Title)
	assert.False(t, h.notify.Loading())
}

func TestResolve_RedirectWithoutHandler(t *testing.T) {
	nav := &dispatch.RecordingNavigator{}
	r := New(dispatch.New(dispatch.Deps{Navigator: nav}))

	assert.False(t, r.Resolve(context.Background(), "bitpay://moonpay?externalId=abc123&transactionStatus=completed", Options{}))
	assert.Empty(t, nav.Calls())
}
