// Package tracking persists buy-crypto orders placed with exchange partners
// so that redirects returning from a partner can update their status.
//
// Records are keyed by partner and the partner's external order id.
// Two stores are provided: MemStore for tests and short-lived processes,
// and BoltStore backed by a bbolt file.
package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Exchange partners that redirect back into the wallet.
const (
	PartnerMoonpay = "moonpay"
	PartnerRamp    = "ramp"
	PartnerSardine = "sardine"
	PartnerSimplex = "simplex"
	PartnerWyre    = "wyre"
)

// Partners lists every partner with a tracking table.
var Partners = []string{PartnerMoonpay, PartnerRamp, PartnerSardine, PartnerSimplex, PartnerWyre}

// IsPartner reports whether name is a known partner.
func IsPartner(name string) bool {
	for _, p := range Partners {
		if p == name {
			return true
		}
	}
	return false
}

// Record is one buy-crypto order.
type Record struct {
	Partner                 string
	ExternalID              string
	Address                 string
	Chain                   string
	Coin                    string
	CryptoAmount            string
	FiatBaseAmount          decimal.Decimal
	FiatTotalAmount         decimal.Decimal
	FiatTotalAmountCurrency string
	Env                     string
	Status                  string
	TransactionID           string
	OrderID                 string
	UserID                  string
	WalletID                string
	CreatedOn               time.Time
}

// Update carries the fields a partner redirect may change. Empty fields
// leave the stored value untouched.
type Update struct {
	Status        string
	TransactionID string
	OrderID       string
	CryptoAmount  string
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u == Update{}
}

func (r *Record) apply(u Update) {
	if u.Status != "" {
		r.Status = u.Status
	}
	if u.TransactionID != "" {
		r.TransactionID = u.TransactionID
	}
	if u.OrderID != "" {
		r.OrderID = u.OrderID
	}
	if u.CryptoAmount != "" {
		r.CryptoAmount = u.CryptoAmount
	}
}

func (r *Record) clone() *Record {
	c := *r
	return &c
}

func validateRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: nil", ErrInvalidRecord)
	}
	if !IsPartner(r.Partner) {
		return fmt.Errorf("%w: %q", ErrUnknownPartner, r.Partner)
	}
	if r.ExternalID == "" {
		return fmt.Errorf("%w: empty external id", ErrInvalidRecord)
	}
	return nil
}

func checkPartner(partner string) error {
	if !IsPartner(partner) {
		return fmt.Errorf("%w: %q", ErrUnknownPartner, partner)
	}
	return nil
}

// Wyre order statuses as stored.
const (
	StatusPaymentRequestSent = "paymentRequestSent"
	StatusSuccess            = "success"
	StatusFailed             = "failed"
)

// WyreStatus maps a Wyre transfer status to the stored status.
// Unknown values are lower-cased and kept.
func WyreStatus(status string) string {
	switch strings.ToUpper(status) {
	case "RUNNING_CHECKS", "PENDING", "PROCESSING":
		return StatusPaymentRequestSent
	case "COMPLETE", "COMPLETED":
		return StatusSuccess
	case "FAILED", "CANCELLED", "EXPIRED":
		return StatusFailed
	default:
		return strings.ToLower(status)
	}
}
