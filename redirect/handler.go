// Package redirect handles buy-crypto partners returning the user to the
// app after checkout.
//
// Each partner redirect updates the matching tracking record, emits a
// purchase event and resets navigation to the partner's settings screen.
// A redirect without the partner's order id is logged and ignored.
package redirect

import (
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/dispatch"
	"github.com/bitfsorg/libscan-go/logging"
	"github.com/bitfsorg/libscan-go/tracking"
	"github.com/bitfsorg/libscan-go/uri"
)

// SettingsParams opens a partner settings screen with the redirect data.
type SettingsParams struct {
	IncomingPaymentRequest map[string]string
}

// idParams names the query key carrying each partner's order id.
var idParams = map[string]string{
	tracking.PartnerMoonpay: "externalId",
	tracking.PartnerRamp:    "rampExternalId",
	tracking.PartnerSardine: "sardineExternalId",
	tracking.PartnerSimplex: "paymentId",
	tracking.PartnerWyre:    "orderId",
}

// incomingParams lists the query keys forwarded to the settings screen.
var incomingParams = map[string][]string{
	tracking.PartnerMoonpay: {"externalId", "transactionId", "transactionStatus"},
	tracking.PartnerRamp:    {"rampExternalId", "walletId", "status"},
	tracking.PartnerSardine: {"sardineExternalId", "walletId", "status", "order_id"},
	tracking.PartnerSimplex: {"success", "paymentId", "quoteId", "userId"},
	tracking.PartnerWyre:    {"orderId", "transferId", "accountId", "dest", "destCurrency", "destAmount", "fees", "status"},
}

// Handler applies partner redirects.
type Handler struct {
	store   tracking.Store
	nav     dispatch.Navigator
	tracker analytics.Tracker
	log     *logrus.Entry
	env     string
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithTracker sets the analytics tracker.
func WithTracker(t analytics.Tracker) Option {
	return func(h *Handler) { h.tracker = t }
}

// WithLogger sets the log entry.
func WithLogger(log *logrus.Entry) Option {
	return func(h *Handler) { h.log = log }
}

// WithEnv sets the environment recorded on inserted orders.
func WithEnv(env string) Option {
	return func(h *Handler) { h.env = env }
}

// WithClock overrides the time source for inserted orders.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a handler writing to store and navigating with nav.
func NewHandler(store tracking.Store, nav dispatch.Navigator, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		nav:     nav,
		tracker: analytics.NoopTracker{},
		env:     "prod",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logging.Component(nil, "redirect")
	}
	if h.nav == nil {
		h.nav = dispatch.DiscardNavigator(h.log)
	}
	return h
}

// Handle applies the redirect raw for partner and reports whether it was
// acted upon.
func (h *Handler) Handle(partner, raw string) bool {
	partner = strings.ToLower(partner)
	log := h.log.WithField("partner", partner)

	idKey, ok := idParams[partner]
	if !ok {
		log.Warn("unknown redirect partner")
		return false
	}

	if partner == tracking.PartnerSardine {
		raw = strings.Replace(raw, "?order_id", "&order_id", 1)
	}
	raw = uri.Unescape(raw)
	log.WithField("data", raw).Info("incoming redirect")

	id, _ := uri.ParameterByName(idKey, raw)
	if id == "" {
		log.Warnf("no %s present, ignoring redirect", idKey)
		return false
	}
	log = log.WithField("id", id)

	incoming := make(map[string]string)
	for _, key := range incomingParams[partner] {
		if v, ok := uri.ParameterByName(key, raw); ok {
			incoming[key] = v
		}
	}

	if partner == tracking.PartnerWyre {
		h.saveWyre(id, incoming, log)
	} else {
		h.update(partner, id, partnerUpdate(partner, raw, incoming), log)
	}

	if partner != tracking.PartnerSardine || incoming["order_id"] != "" {
		h.trackPurchase(partner, id, log)
	}

	h.nav.Reset([]dispatch.Route{
		{Name: dispatch.StackTabs, Screen: dispatch.ScreenHome},
		{
			Name:   dispatch.StackExternalServicesSettings,
			Screen: SettingsScreen(partner),
			Params: SettingsParams{IncomingPaymentRequest: incoming},
		},
	})
	return true
}

// SettingsScreen returns the settings screen name of partner.
func SettingsScreen(partner string) string {
	if partner == "" {
		return ""
	}
	return strings.ToUpper(partner[:1]) + partner[1:] + "Settings"
}

func partnerUpdate(partner, raw string, incoming map[string]string) tracking.Update {
	switch partner {
	case tracking.PartnerMoonpay:
		return tracking.Update{Status: incoming["transactionStatus"], TransactionID: incoming["transactionId"]}
	case tracking.PartnerRamp:
		return tracking.Update{Status: incoming["status"]}
	case tracking.PartnerSardine:
		cryptoAmount, _ := uri.ParameterByName("cryptoAmount", raw)
		transactionID, _ := uri.ParameterByName("transactionId", raw)
		return tracking.Update{
			Status:        incoming["status"],
			OrderID:       incoming["order_id"],
			CryptoAmount:  cryptoAmount,
			TransactionID: transactionID,
		}
	case tracking.PartnerSimplex:
		status := tracking.StatusFailed
		if incoming["success"] == "true" {
			status = tracking.StatusSuccess
		}
		return tracking.Update{Status: status}
	}
	return tracking.Update{}
}

// update changes a stored order. Redirects for orders this device never
// created leave the store untouched.
func (h *Handler) update(partner, id string, u tracking.Update, log *logrus.Entry) {
	if u.IsEmpty() {
		return
	}
	_, err := h.store.Update(partner, id, u)
	switch {
	case errors.Is(err, tracking.ErrRecordNotFound):
		log.Info("no stored order for redirect")
	case err != nil:
		log.WithError(err).Warn("update order")
	}
}

func (h *Handler) saveWyre(orderID string, incoming map[string]string, log *logrus.Entry) {
	rec, err := h.store.Get(tracking.PartnerWyre, orderID)
	if err != nil {
		if !errors.Is(err, tracking.ErrRecordNotFound) {
			log.WithError(err).Warn("load order")
			return
		}
		rec = &tracking.Record{
			Partner:    tracking.PartnerWyre,
			ExternalID: orderID,
			Env:        h.env,
			CreatedOn:  h.now(),
		}
	}

	rec.OrderID = orderID
	if v := incoming["status"]; v != "" {
		rec.Status = tracking.WyreStatus(v)
	}
	if v := incoming["transferId"]; v != "" {
		rec.TransactionID = v
	}
	if v := incoming["destAmount"]; v != "" {
		rec.CryptoAmount = v
	}
	if v := incoming["destCurrency"]; v != "" {
		rec.Coin = strings.ToLower(v)
	}
	if v := incoming["accountId"]; v != "" {
		rec.UserID = v
	}
	if v := incoming["dest"]; v != "" {
		if _, addr, ok := strings.Cut(v, ":"); ok {
			v = addr
		}
		rec.Address = v
	}

	if err := h.store.Put(rec); err != nil {
		log.WithError(err).Warn("save order")
	}
}

func (h *Handler) trackPurchase(partner, id string, log *logrus.Entry) {
	props := map[string]string{
		"exchange":     partner,
		"fiatAmount":   "",
		"fiatCurrency": "",
		"coin":         "",
	}
	withChain := partner == tracking.PartnerSardine || partner == tracking.PartnerSimplex
	if withChain {
		props["chain"] = ""
	}

	rec, err := h.store.Get(partner, id)
	switch {
	case err == nil:
		if !rec.FiatTotalAmount.IsZero() {
			props["fiatAmount"] = rec.FiatTotalAmount.String()
		}
		props["fiatCurrency"] = rec.FiatTotalAmountCurrency
		props["coin"] = rec.Coin
		if withChain {
			props["coin"] = strings.ToLower(rec.Coin)
			props["chain"] = strings.ToLower(rec.Chain)
		}
	case !errors.Is(err, tracking.ErrRecordNotFound):
		log.WithError(err).Warn("load order for analytics")
	}

	h.tracker.Track(analytics.EventPurchasedBuyCrypto, props)
}
