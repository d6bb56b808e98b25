// Package bitpayid talks to the BitPay ID identity API, which issues the
// product tokens needed to unlock gated invoices.
//
// Every call is a POST to {base}/api/v2/{token} with a JSON body
// {"method": ..., "params": "<json>"} and answers {"data": ..., "error": ...}.
package bitpayid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	resty "github.com/go-resty/resty/v2"
)

// Facade names carried by product tokens.
const FacadeUserShopper = "userShopper"

// ProductToken is an API token scoped to one facade.
type ProductToken struct {
	Facade string `json:"facade" validate:"required"`
	Token  string `json:"token" validate:"required"`
	Name   string `json:"name"`
}

// UnlockResult is the answer to unlockInvoice.
type UnlockResult struct {
	MeetsRequiredTier bool `json:"meetsRequiredTier"`
}

type request struct {
	Method string `json:"method"`
	Params string `json:"params"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

var validate = validator.New()

// Client is an identity API client.
type Client struct {
	r *resty.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{r: r}
}

// Request invokes method with the given token and decodes the data field
// of the response into result. A nil params sends "{}".
func (c *Client) Request(ctx context.Context, method, token string, params interface{}, result interface{}) error {
	if token == "" {
		return ErrEmptyToken
	}
	if params == nil {
		params = struct{}{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("bitpayid: marshal params: %w", err)
	}

	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(request{Method: method, Params: string(encoded)}).
		Post("/api/v2/" + token)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, method, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		body := resp.String()
		if len(body) > 1024 {
			body = body[:1024]
		}
		return fmt.Errorf("%w: %s: HTTP %d: %s", ErrRequestFailed, method, resp.StatusCode(), body)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, method, err)
	}
	if env.Error != "" {
		return fmt.Errorf("%w: %s: %s", ErrAPIError, method, env.Error)
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidResponse, method, err)
		}
	}
	return nil
}

// GetProductTokens lists the product tokens of the paired user. Entries
// without a facade or token are dropped.
func (c *Client) GetProductTokens(ctx context.Context, token string) ([]ProductToken, error) {
	var raw []ProductToken
	if err := c.Request(ctx, "getProductTokens", token, nil, &raw); err != nil {
		return nil, err
	}
	tokens := raw[:0]
	for _, t := range raw {
		if validate.Struct(&t) == nil {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

// UnlockInvoice asks the API to unlock invoiceID for the user owning the
// userShopper token.
func (c *Client) UnlockInvoice(ctx context.Context, token, invoiceID string) (*UnlockResult, error) {
	var res UnlockResult
	params := map[string]string{"invoiceId": invoiceID}
	if err := c.Request(ctx, "unlockInvoice", token, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FindToken returns the token for facade, or "" when none is present.
func FindToken(tokens []ProductToken, facade string) string {
	for _, t := range tokens {
		if t.Facade == facade {
			return t.Token
		}
	}
	return ""
}

// PairingStore yields the identity API token the user paired per network.
type PairingStore interface {
	APIToken(network string) string
}

// MemPairingStore is an in-memory PairingStore.
type MemPairingStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemPairingStore creates a store seeded with network→token pairs.
func NewMemPairingStore(tokens map[string]string) *MemPairingStore {
	s := &MemPairingStore{tokens: make(map[string]string, len(tokens))}
	for k, v := range tokens {
		s.tokens[k] = v
	}
	return s
}

// APIToken returns the token paired on network, or "".
func (s *MemPairingStore) APIToken(network string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[network]
}

// SetAPIToken records a token for network. An empty token unpairs.
func (s *MemPairingStore) SetAPIToken(network, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		delete(s.tokens, network)
		return
	}
	s.tokens[network] = token
}
