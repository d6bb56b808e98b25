// Package paypro fetches BitPay payment-protocol options and invoices and
// runs the unlock flow for invoices gated behind a BitPay ID.
package paypro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/logging"
	"github.com/bitfsorg/libscan-go/uri"
)

// HTTPClient defines the interface for HTTP requests.
// This allows tests to mock HTTP calls.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient is the production HTTP client.
var DefaultHTTPClient HTTPClient = &http.Client{Timeout: 30 * time.Second}

// maxResponseSize bounds response bodies read into memory.
const maxResponseSize = 4 << 20

var validate = validator.New()

// Client talks to payment-protocol and invoice endpoints.
type Client struct {
	http HTTPClient
	log  *logrus.Entry
}

// NewClient creates a client. A nil httpClient uses DefaultHTTPClient and
// a nil log discards output.
func NewClient(httpClient HTTPClient, log *logrus.Entry) *Client {
	if httpClient == nil {
		httpClient = DefaultHTTPClient
	}
	if log == nil {
		log = logging.Component(nil, "paypro")
	}
	return &Client{http: httpClient, log: log}
}

// GetOptions fetches the payment options behind a payment-protocol
// reference. ref may be the URL itself or a coin URI carrying r=.
func (c *Client) GetOptions(ctx context.Context, ref string) (*PaymentOptions, error) {
	payProURL, err := uri.PayProURL(ref)
	if err != nil {
		return nil, err
	}
	c.log.WithField("url", payProURL).Info("fetching payment options")

	headers := map[string]string{
		"Accept":           "application/payment-options",
		"x-paypro-version": "2",
	}
	var opts PaymentOptions
	if err := c.do(ctx, http.MethodGet, payProURL, headers, nil, &opts); err != nil {
		return nil, err
	}
	if err := validate.Struct(&opts); err != nil {
		return nil, fmt.Errorf("%w: payment options: %w", ErrInvalidResponse, err)
	}
	return &opts, nil
}

type invoiceResponse struct {
	Data *Invoice `json:"data"`
}

// GetInvoice fetches https://host/invoices/{id}.
func (c *Client) GetInvoice(ctx context.Context, host, invoiceID string) (*Invoice, error) {
	var resp invoiceResponse
	if err := c.do(ctx, http.MethodGet, endpoint(host, "invoices", invoiceID), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: invoice %s: missing data", ErrInvalidResponse, invoiceID)
	}
	if err := validate.Struct(resp.Data); err != nil {
		return nil, fmt.Errorf("%w: invoice %s: %w", ErrInvalidResponse, invoiceID, err)
	}
	return resp.Data, nil
}

type invoiceDataResponse struct {
	Data *struct {
		Invoice *Invoice `json:"invoice"`
	} `json:"data"`
	Invoice *Invoice `json:"invoice"`
}

// GetInvoiceData fetches https://host/invoiceData/{id}, the public view of
// an invoice that does not require unlocking.
func (c *Client) GetInvoiceData(ctx context.Context, host, invoiceID string) (*Invoice, error) {
	var resp invoiceDataResponse
	if err := c.do(ctx, http.MethodGet, endpoint(host, "invoiceData", invoiceID), nil, nil, &resp); err != nil {
		return nil, err
	}
	inv := resp.Invoice
	if resp.Data != nil && resp.Data.Invoice != nil {
		inv = resp.Data.Invoice
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: invoice data %s: missing invoice", ErrInvalidResponse, invoiceID)
	}
	return inv, nil
}

type buyerEmailRequest struct {
	BuyerProvidedEmail string `json:"buyerProvidedEmail" validate:"required,email"`
	InvoiceID          string `json:"invoiceId" validate:"required"`
}

// SetBuyerProvidedEmail attaches the buyer's email to an invoice.
func (c *Client) SetBuyerProvidedEmail(ctx context.Context, host, invoiceID, email string) error {
	body := buyerEmailRequest{BuyerProvidedEmail: email, InvoiceID: invoiceID}
	if err := validate.Struct(&body); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailRejected, err)
	}
	var resp struct {
		Status string `json:"status"`
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if err := c.do(ctx, http.MethodPost, endpoint(host, "invoiceData", "setBuyerProvidedEmail"), headers, body, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("%w: status %q", ErrEmailRejected, resp.Status)
	}
	return nil
}

func endpoint(host string, parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return "https://" + host + "/" + strings.Join(escaped, "/")
}

// do sends a request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, target string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paypro: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("paypro: create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetworkFailure, method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ServerError{URL: target, Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrInvalidResponse, target, err)
	}
	return nil
}

// serverMessage extracts the error text of a failed response, which BitPay
// sends either as JSON {"error"|"message": ...} or as plain text.
func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }
