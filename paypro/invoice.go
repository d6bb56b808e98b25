package paypro

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	StatusNew       = "new"
	StatusPaid      = "paid"
	StatusConfirmed = "confirmed"
	StatusComplete  = "complete"
	StatusExpired   = "expired"
	StatusInvalid   = "invalid"
)

// BuyerProvidedInfo holds data the buyer entered on the invoice.
type BuyerProvidedInfo struct {
	Name                        string `json:"name,omitempty"`
	EmailAddress                string `json:"emailAddress,omitempty"`
	PhoneNumber                 string `json:"phoneNumber,omitempty"`
	SelectedTransactionCurrency string `json:"selectedTransactionCurrency,omitempty"`
	SelectedWallet              string `json:"selectedWallet,omitempty"`
}

// Invoice is a BitPay invoice as returned by /invoices/{id}.
type Invoice struct {
	ID                 string                     `json:"id" validate:"required"`
	URL                string                     `json:"url"`
	Status             string                     `json:"status"`
	Price              decimal.Decimal            `json:"price"`
	Currency           string                     `json:"currency"`
	MerchantName       string                     `json:"merchantName,omitempty"`
	ItemDesc           string                     `json:"itemDesc,omitempty"`
	BuyerProvidedEmail string                     `json:"buyerProvidedEmail,omitempty"`
	BuyerProvidedInfo  BuyerProvidedInfo          `json:"buyerProvidedInfo"`
	InvoiceTime        int64                      `json:"invoiceTime"`    // Unix milliseconds
	ExpirationTime     int64                      `json:"expirationTime"` // Unix milliseconds
	PaymentTotals      map[string]decimal.Decimal `json:"paymentTotals,omitempty"`
	PaymentSubtotals   map[string]decimal.Decimal `json:"paymentSubtotals,omitempty"`
}

// IsExpired reports whether the invoice expired at now. An invoice without
// an expiration time never expires.
func (inv *Invoice) IsExpired(now time.Time) bool {
	return inv.ExpirationTime > 0 && now.UnixMilli() >= inv.ExpirationTime
}

// ExpiresAt returns the expiration time, zero when unset.
func (inv *Invoice) ExpiresAt() time.Time {
	if inv.ExpirationTime <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(inv.ExpirationTime)
}

// NeedsBuyerEmail reports whether a new invoice still lacks a buyer email.
func (inv *Invoice) NeedsBuyerEmail() bool {
	return inv.BuyerProvidedInfo.EmailAddress == "" && inv.BuyerProvidedEmail == "" && inv.Status == StatusNew
}

// PaymentOption is one currency the invoice can be paid with.
type PaymentOption struct {
	Chain           string          `json:"chain" validate:"required"`
	Currency        string          `json:"currency" validate:"required"`
	Network         string          `json:"network"`
	EstimatedAmount decimal.Decimal `json:"estimatedAmount"`
	RequiredFeeRate decimal.Decimal `json:"requiredFeeRate"`
	MinerFee        decimal.Decimal `json:"minerFee"`
	Decimals        int32           `json:"decimals"`
	Selected        bool            `json:"selected"`
}

// PaymentOptions is the payment-options response of a payment-protocol URL.
type PaymentOptions struct {
	Time           string          `json:"time"`
	Expires        string          `json:"expires"`
	Memo           string          `json:"memo"`
	PaymentURL     string          `json:"paymentUrl" validate:"required,url"`
	PaymentID      string          `json:"paymentId" validate:"required"`
	PaymentOptions []PaymentOption `json:"paymentOptions" validate:"min=1,dive"`
}

// Selected returns the option the merchant preselected, if any.
func (o *PaymentOptions) Selected() (PaymentOption, bool) {
	for _, opt := range o.PaymentOptions {
		if opt.Selected {
			return opt, true
		}
	}
	return PaymentOption{}, false
}

// Find returns the option for currency on chain.
func (o *PaymentOptions) Find(currency, chainName string) (PaymentOption, bool) {
	for _, opt := range o.PaymentOptions {
		if equalFold(opt.Currency, currency) && equalFold(opt.Chain, chainName) {
			return opt, true
		}
	}
	return PaymentOption{}, false
}
