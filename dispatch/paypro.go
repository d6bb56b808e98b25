package dispatch

import (
	"context"
	"fmt"

	"github.com/bitfsorg/libscan-go/grammar"
	"github.com/bitfsorg/libscan-go/paypro"
	"github.com/bitfsorg/libscan-go/uri"
)

// PayProOptions tune GoToPayPro.
type PayProOptions struct {
	// Replace swaps the current screen instead of pushing a new one.
	Replace bool
	// Invoice skips the invoice fetch when already known.
	Invoice *paypro.Invoice
	Wallet  *Wallet
}

// GoToPayPro fetches payment options and the invoice behind ref and opens
// the payment-protocol confirmation. Failures show a dismissible warning
// carrying the server's message when there is one.
func (d *Dispatcher) GoToPayPro(ctx context.Context, ref string, opts PayProOptions) {
	d.notify.DismissLoading()
	log := d.log.WithField("ref", ref)
	log.Info("payment protocol request")

	d.notify.StartLoading(LoadingFetchingPaymentInfo)
	options, invoice, err := d.fetchPayPro(ctx, ref, opts.Invoice)
	d.notify.DismissLoading()
	if err != nil {
		log.WithError(err).Warn("fetch payment protocol data")
		d.notify.Show(Notification{
			Type:            NotificationWarning,
			Title:           "Something went wrong",
			Message:         paypro.Message(err),
			BackdropDismiss: true,
			Actions:         []Action{{Text: "OK", Primary: true, Handler: func() {}}},
		})
		return
	}

	params := PayProConfirmParams{
		PayProOptions: options,
		Invoice:       invoice,
		Wallet:        opts.Wallet,
	}
	if opts.Replace {
		d.nav.Replace(StackWallet, ScreenPayProConfirm, params)
		return
	}
	d.nav.Navigate(StackWallet, ScreenPayProConfirm, params)
}

func (d *Dispatcher) fetchPayPro(ctx context.Context, ref string, invoice *paypro.Invoice) (*paypro.PaymentOptions, *paypro.Invoice, error) {
	options, err := d.payPro.GetOptions(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if invoice != nil {
		return options, invoice, nil
	}

	// Payment-protocol URLs outside BitPay carry no invoice id.
	invoiceID, err := uri.InvoiceID(ref)
	if err != nil {
		return options, nil, nil
	}
	host, err := uri.PayProHost(ref)
	if err != nil {
		return nil, nil, err
	}
	invoice, err = d.payPro.GetInvoice(ctx, host, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return options, invoice, nil
}

// UnlockOptions tune HandleUnlock.
type UnlockOptions struct {
	Wallet *Wallet
	// Retry restarts resolution of the original input after login.
	Retry func()
}

// HandleUnlock runs the unlock flow for a BitPay invoice and continues to
// payment, email collection, login or account verification.
func (d *Dispatcher) HandleUnlock(ctx context.Context, inv *grammar.InvoiceIntent, opts UnlockOptions) {
	log := d.log.WithField("invoice", inv.InvoiceID)

	result := paypro.SomethingWentWrong
	if d.unlocker != nil {
		result = d.unlocker.Unlock(ctx, inv.InvoiceID, inv.Network)
	}
	log.WithField("result", result.String()).Debug("unlock invoice")

	if result == paypro.UnlockSuccess {
		d.GoToPayPro(ctx, inv.URL, PayProOptions{Wallet: opts.Wallet})
		return
	}

	invoice, err := d.payPro.GetInvoiceData(ctx, inv.Host, inv.InvoiceID)
	if err == nil {
		switch {
		case inv.Context != "u":
			d.GoToPayPro(ctx, inv.URL, PayProOptions{Invoice: invoice, Wallet: opts.Wallet})
		case invoice.NeedsBuyerEmail():
			d.nav.Navigate(StackWallet, ScreenEnterBuyerProvidedEmail, EnterBuyerProvidedEmailParams{Data: inv.URL})
		default:
			d.GoToPayPro(ctx, inv.URL, PayProOptions{Wallet: opts.Wallet})
		}
		return
	}
	log.WithError(err).Debug("invoice data unavailable")

	switch {
	case result == paypro.PairingRequired:
		d.nav.Navigate(StackAuth, ScreenLogin, LoginParams{
			OnLoginSuccess: func() {
				d.nav.Navigate(StackTabs, ScreenHome, nil)
				if opts.Retry != nil {
					opts.Retry()
				}
			},
		})
	case result.NeedsVerification():
		verifyURL := fmt.Sprintf("https://%s/id/verify?context=unlockv&id=%s", inv.Host, inv.InvoiceID)
		d.notify.Show(Notification{
			Type:            NotificationWarning,
			Title:           "Verification Required",
			Message:         "To complete this payment please verify your account.",
			BackdropDismiss: false,
			Actions: []Action{
				{Text: "Verify", Handler: func() { d.openLink(verifyURL) }},
				{Text: "Cancel", Handler: func() {}},
			},
		})
	default:
		log.WithError(result.Err()).Warn("invoice locked")
		d.notify.Show(generalError())
	}
}

// SetBuyerProvidedEmail attaches email to the invoice at invoiceURL and
// replaces the email screen with the payment-protocol confirmation.
func (d *Dispatcher) SetBuyerProvidedEmail(ctx context.Context, invoiceURL, email string) error {
	invoiceID, err := uri.InvoiceID(invoiceURL)
	if err != nil {
		return err
	}
	host, err := uri.PayProHost(invoiceURL)
	if err != nil {
		return err
	}
	if err := d.payPro.SetBuyerProvidedEmail(ctx, host, invoiceID, email); err != nil {
		return err
	}
	d.GoToPayPro(ctx, invoiceURL, PayProOptions{Replace: true})
	return nil
}

func (d *Dispatcher) openLink(url string) {
	if d.links == nil {
		d.log.WithField("url", url).Warn("no link opener")
		return
	}
	if err := d.links.Open(url); err != nil {
		d.log.WithError(err).WithField("url", url).Warn("open link")
	}
}
