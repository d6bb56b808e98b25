package redirect

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/dispatch"
	"github.com/bitfsorg/libscan-go/tracking"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	store   *tracking.MemStore
	nav     *dispatch.RecordingNavigator
	tracker *analytics.MemoryTracker
	h       *Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:   tracking.NewMemStore(),
		nav:     &dispatch.RecordingNavigator{},
		tracker: &analytics.MemoryTracker{},
	}
	e.h = NewHandler(e.store, e.nav, WithTracker(e.tracker), WithEnv("dev"), WithClock(func() time.Time { return fixedNow }))
	return e
}

func (e *env) seed(t *testing.T, r *tracking.Record) {
	t.Helper()
	require.NoError(t, e.store.Put(r))
}

func snapshot(t *testing.T, s tracking.Store) map[string][]*tracking.Record {
	t.Helper()
	out := map[string][]*tracking.Record{}
	for _, p := range tracking.Partners {
		recs, err := s.List(p)
		require.NoError(t, err)
		out[p] = recs
	}
	return out
}

// --- Handle Tests ---

func TestHandle_MoonpayCompleted(t *testing.T) {
	e := newEnv(t)
	e.seed(t, &tracking.Record{
		Partner:                 tracking.PartnerMoonpay,
		ExternalID:              "abc123",
		Coin:                    "btc",
		FiatTotalAmount:         decimal.RequireFromString("100.5"),
		FiatTotalAmountCurrency: "USD",
		Status:                  tracking.StatusPaymentRequestSent,
	})

	ok := e.h.Handle("moonpay", "bitpay://moonpay?externalId=abc123&transactionStatus=completed&transactionId=tx9")
	require.True(t, ok)

	rec, err := e.store.Get(tracking.PartnerMoonpay, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, "tx9", rec.TransactionID)

	calls := e.nav.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.OpReset, calls[0].Op)
	require.Len(t, calls[0].Routes, 2)
	assert.Equal(t, dispatch.StackTabs, calls[0].Routes[0].Name)
	assert.Equal(t, dispatch.ScreenHome, calls[0].Routes[0].Screen)
	assert.Equal(t, dispatch.StackExternalServicesSettings, calls[0].Routes[1].Name)
	assert.Equal(t, "MoonpaySettings", calls[0].Routes[1].Screen)
	assert.Equal(t, SettingsParams{IncomingPaymentRequest: map[string]string{
		"externalId":        "abc123",
		"transactionId":     "tx9",
		"transactionStatus": "completed",
	}}, calls[0].Routes[1].Params)

	events := e.tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventPurchasedBuyCrypto, events[0].Name)
	assert.Equal(t, map[string]string{
		"exchange":     "moonpay",
		"fiatAmount":   "100.5",
		"fiatCurrency": "USD",
		"coin":         "btc",
	}, events[0].Props)
}

func TestHandle_Idempotent(t *testing.T) {
	redirects := []struct {
		partner string
		raw     string
		id      string
	}{
		{"moonpay", "bitpay://moonpay?externalId=m1&transactionStatus=completed&transactionId=t1", "m1"},
		{"ramp", "bitpay://ramp?rampExternalId=r1&walletId=w1&status=RELEASED", "r1"},
		{"sardine", "bitpay://sardine?sardineExternalId=s1&walletId=w1&status=Complete?order_id=o1", "s1"},
		{"simplex", "bitpay://simplex?paymentId=p1&success=true&quoteId=q1&userId=u1", "p1"},
		{"wyre", "bitpay://wyre?orderId=WO_1&transferId=TF_1&status=COMPLETE&destAmount=0.01&dest=bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "WO_1"},
	}
	for _, r := range redirects {
		t.Run(r.partner, func(t *testing.T) {
			e := newEnv(t)
			if r.partner != tracking.PartnerWyre {
				e.seed(t, &tracking.Record{Partner: r.partner, ExternalID: r.id, Status: tracking.StatusPaymentRequestSent})
			}

			require.True(t, e.h.Handle(r.partner, r.raw))
			once := snapshot(t, e.store)
			require.True(t, e.h.Handle(r.partner, r.raw))
			twice := snapshot(t, e.store)

			assert.Equal(t, once, twice)
			assert.Len(t, e.nav.Calls(), 2)
		})
	}
}

func TestHandle_MissingIDIsNoop(t *testing.T) {
	redirects := map[string]string{
		"moonpay": "bitpay://moonpay?transactionStatus=completed&transactionId=t1",
		"ramp":    "bitpay://ramp?walletId=w1&status=RELEASED",
		"sardine": "bitpay://sardine?walletId=w1&status=Complete?order_id=o1",
		"simplex": "bitpay://simplex?success=true&quoteId=q1",
		"wyre":    "bitpay://wyre?transferId=TF_1&status=COMPLETE",
	}
	for partner, raw := range redirects {
		t.Run(partner, func(t *testing.T) {
			e := newEnv(t)
			e.seed(t, &tracking.Record{Partner: partner, ExternalID: "x", Status: tracking.StatusPaymentRequestSent})
			before := snapshot(t, e.store)

			assert.False(t, e.h.Handle(partner, raw))

			assert.Equal(t, before, snapshot(t, e.store))
			assert.Empty(t, e.nav.Calls())
			assert.Empty(t, e.tracker.Events())
		})
	}
}

func TestHandle_EmptyIDIsNoop(t *testing.T) {
	e := newEnv(t)
	assert.False(t, e.h.Handle("moonpay", "bitpay://moonpay?externalId=&transactionStatus=completed"))
	assert.Empty(t, e.nav.Calls())
}

func TestHandle_UnknownPartner(t *testing.T) {
	e := newEnv(t)
	assert.False(t, e.h.Handle("banxa", "bitpay://banxa?orderId=1"))
	assert.Empty(t, e.nav.Calls())
}

func TestHandle_UnknownOrderStillNavigates(t *testing.T) {
	e := newEnv(t)

	require.True(t, e.h.Handle("ramp", "bitpay://ramp?rampExternalId=r9&status=RELEASED"))

	_, err := e.store.Get(tracking.PartnerRamp, "r9")
	assert.ErrorIs(t, err, tracking.ErrRecordNotFound)
	assert.Len(t, e.nav.Calls(), 1)
	events := e.tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "", events[0].Props["coin"])
	assert.Equal(t, "ramp", events[0].Props["exchange"])
}

func TestHandle_Sardine(t *testing.T) {
	e := newEnv(t)
	e.seed(t, &tracking.Record{Partner: tracking.PartnerSardine, ExternalID: "s1", Coin: "USDC", Chain: "ETH", FiatTotalAmountCurrency: "EUR"})

	require.True(t, e.h.Handle("sardine", "bitpay://sardine?sardineExternalId=s1&status=Complete?order_id=o1&cryptoAmount=12.5&transactionId=0xabc"))

	rec, err := e.store.Get(tracking.PartnerSardine, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Complete", rec.Status)
	assert.Equal(t, "o1", rec.OrderID)
	assert.Equal(t, "12.5", rec.CryptoAmount)
	assert.Equal(t, "0xabc", rec.TransactionID)

	events := e.tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "usdc", events[0].Props["coin"])
	assert.Equal(t, "eth", events[0].Props["chain"])

	last, _ := e.nav.Last()
	assert.Equal(t, "SardineSettings", last.Routes[1].Screen)
	assert.Equal(t, "o1", last.Routes[1].Params.(SettingsParams).IncomingPaymentRequest["order_id"])
}

func TestHandle_SardineWithoutOrderSkipsAnalytics(t *testing.T) {
	e := newEnv(t)
	e.seed(t, &tracking.Record{Partner: tracking.PartnerSardine, ExternalID: "s1"})

	require.True(t, e.h.Handle("sardine", "bitpay://sardine?sardineExternalId=s1&status=Pending"))

	assert.Empty(t, e.tracker.Events())
	assert.Len(t, e.nav.Calls(), 1)
}

func TestHandle_Simplex(t *testing.T) {
	tests := []struct {
		success string
		want    string
	}{
		{"true", tracking.StatusSuccess},
		{"false", tracking.StatusFailed},
		{"", tracking.StatusFailed},
	}
	for _, tt := range tests {
		e := newEnv(t)
		e.seed(t, &tracking.Record{Partner: tracking.PartnerSimplex, ExternalID: "p1", Coin: "BTC", Chain: "BTC"})

		require.True(t, e.h.Handle("simplex", "bitpay://simplex?paymentId=p1&success="+tt.success))

		rec, err := e.store.Get(tracking.PartnerSimplex, "p1")
		require.NoError(t, err)
		assert.Equal(t, tt.want, rec.Status, "success=%q", tt.success)
		assert.Equal(t, "btc", e.tracker.Events()[0].Props["chain"])
	}
}

func TestHandle_WyreInserts(t *testing.T) {
	e := newEnv(t)

	require.True(t, e.h.Handle("wyre", "bitpay://wyre?orderId=WO_1&transferId=TF_1&accountId=AC_1&status=RUNNING_CHECKS&destCurrency=BTC&destAmount=0.01&dest=bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))

	rec, err := e.store.Get(tracking.PartnerWyre, "WO_1")
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusPaymentRequestSent, rec.Status)
	assert.Equal(t, "WO_1", rec.OrderID)
	assert.Equal(t, "TF_1", rec.TransactionID)
	assert.Equal(t, "AC_1", rec.UserID)
	assert.Equal(t, "btc", rec.Coin)
	assert.Equal(t, "0.01", rec.CryptoAmount)
	assert.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", rec.Address)
	assert.Equal(t, "dev", rec.Env)
	assert.True(t, fixedNow.Equal(rec.CreatedOn))

	require.True(t, e.h.Handle("wyre", "bitpay://wyre?orderId=WO_1&status=COMPLETED"))
	rec, err = e.store.Get(tracking.PartnerWyre, "WO_1")
	require.NoError(t, err)
	assert.Equal(t, tracking.StatusSuccess, rec.Status)
	assert.Equal(t, "TF_1", rec.TransactionID)

	last, _ := e.nav.Last()
	assert.Equal(t, "WyreSettings", last.Routes[1].Screen)
}

func TestHandle_HTMLEscapedQuery(t *testing.T) {
	e := newEnv(t)
	e.seed(t, &tracking.Record{Partner: tracking.PartnerMoonpay, ExternalID: "abc123"})

	require.True(t, e.h.Handle("moonpay", "bitpay://moonpay?externalId=abc123&amp;transactionStatus=failed"))

	rec, err := e.store.Get(tracking.PartnerMoonpay, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "failed", rec.Status)
}

func TestHandle_BoltStore(t *testing.T) {
	store, err := tracking.OpenBoltStore(t.TempDir() + "/tracking.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	nav := &dispatch.RecordingNavigator{}
	h := NewHandler(store, nav)

	require.NoError(t, store.Put(&tracking.Record{Partner: tracking.PartnerRamp, ExternalID: "r1"}))
	require.True(t, h.Handle("RAMP", "bitpay://ramp?rampExternalId=r1&status=RELEASED"))

	rec, err := store.Get(tracking.PartnerRamp, "r1")
	require.NoError(t, err)
	assert.Equal(t, "RELEASED", rec.Status)
}

func TestSettingsScreen(t *testing.T) {
	assert.Equal(t, "MoonpaySettings", SettingsScreen("moonpay"))
	assert.Equal(t, "SimplexSettings", SettingsScreen("simplex"))
	assert.Equal(t, "", SettingsScreen(""))
}
