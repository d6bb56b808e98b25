// Package uri parses the payment URIs, payment-protocol references and
// query strings that arrive as scanned or deep-linked text.
//
// Coin URIs have the shape scheme:address[@chainId][?key=value&...].
// The standard library URL parser is not used for them since opaque
// schemes with addresses containing ':' (CashAddr) confuse it.
package uri

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URI holds a parsed coin payment URI.
type URI struct {
	Scheme  string     // Lower-cased scheme without ':'
	Address string     // Address component, may be empty
	ChainID string     // EIP-681 chain id after '@', if any
	Params  url.Values // Query parameters
	Raw     string     // Original input
}

// Parse splits a coin URI into its components. Both "scheme:addr" and
// "scheme://addr" forms are accepted.
func Parse(raw string) (*URI, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrInvalidURI)
	}

	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return nil, fmt.Errorf("%w: missing scheme", ErrInvalidURI)
	}
	scheme := strings.ToLower(s[:idx])
	for _, c := range scheme {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return nil, fmt.Errorf("%w: bad scheme %q", ErrInvalidURI, scheme)
		}
	}

	rest := strings.TrimPrefix(s[idx+1:], "//")
	query := ""
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		query = rest[q+1:]
		rest = rest[:q]
	}

	result := &URI{Scheme: scheme, Raw: raw}
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		result.ChainID = rest[at+1:]
		rest = rest[:at]
	}
	result.Address = rest

	params, err := url.ParseQuery(strings.ReplaceAll(query, "&amp;", "&"))
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrInvalidURI, err)
	}
	result.Params = params
	return result, nil
}

// Get returns the first value of a query parameter.
func (u *URI) Get(name string) string {
	return u.Params.Get(name)
}

// Has reports whether a query parameter is present and non-empty.
func (u *URI) Has(name string) bool {
	return u.Params.Get(name) != ""
}

// ParameterByName looks up name in the query portion of raw, which may be
// a full URL, a coin URI or a bare query string. The second result is
// false when the key is absent. A key present without '=' yields "".
func ParameterByName(name, raw string) (string, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '?' && raw[i] != '&' {
			continue
		}
		rest, ok := strings.CutPrefix(raw[i+1:], name)
		if !ok {
			continue
		}
		if rest == "" || rest[0] == '&' || rest[0] == '#' {
			return "", true
		}
		if rest[0] != '=' {
			continue
		}
		v := rest[1:]
		if end := strings.IndexAny(v, "&#"); end >= 0 {
			v = v[:end]
		}
		if v == "" {
			return "", true
		}
		decoded, err := url.QueryUnescape(v)
		if err != nil {
			return strings.ReplaceAll(v, "+", " "), true
		}
		return decoded, true
	}
	return "", false
}

// Unescape converts HTML-escaped ampersands left by some redirect sources.
func Unescape(raw string) string {
	return strings.ReplaceAll(raw, "&amp;", "&")
}

var (
	amountRE      = regexp.MustCompile(`(?i)[?&]amount=(\d+([,.]\d+)?)`)
	coinSlashesRE = regexp.MustCompile(`(?i)^(bitcoin|bitcoincash|bchtest|ethereum|matic|ripple|xrp|dogecoin|litecoin):\/\/`)
)

// Sanitize trims whitespace, normalizes a comma decimal separator in the
// amount parameter and collapses "scheme://" to "scheme:" for coin schemes.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	if loc := amountRE.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + strings.Replace(s[loc[0]:loc[1]], ",", ".", 1) + s[loc[1]:]
	}
	return coinSlashesRE.ReplaceAllString(s, "$1:")
}

var payProPrefixRE = regexp.MustCompile(`(?i)^(bitcoin(cash)?|bchtest|ethereum|ripple|xrp|matic|dogecoin|litecoin|bitpay):\?r=`)

// PayProURL returns the payment-protocol URL referenced by raw: either the
// decoded r= target of a coin URI or raw itself when it is already an
// http(s) URL.
func PayProURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if loc := payProPrefixRE.FindStringIndex(s); loc != nil {
		decoded, err := url.QueryUnescape(s[loc[1]:])
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoPaymentProtocol, err)
		}
		s = decoded
	} else if u, err := Parse(s); err == nil && u.Has("r") && u.Scheme != "https" && u.Scheme != "http" {
		s = u.Get("r")
	}

	parsed, err := url.Parse(s)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoPaymentProtocol, raw)
	}
	return s, nil
}

// PayProHost returns the host serving the payment-protocol URL of raw.
func PayProHost(raw string) (string, error) {
	s, err := PayProURL(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPaymentProtocol, err)
	}
	return u.Host, nil
}

// InvoiceID returns the id following "/i/" up to any query string.
func InvoiceID(raw string) (string, error) {
	_, after, ok := strings.Cut(raw, "/i/")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoInvoiceID, raw)
	}
	id, _, _ := strings.Cut(after, "?")
	id = strings.TrimSuffix(id, "/")
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrNoInvoiceID, raw)
	}
	return id, nil
}

// ExtractAddress returns the address component of a coin URI, dropping
// the scheme, any EIP-681 chain id and the query.
func ExtractAddress(raw string) string {
	u, err := Parse(raw)
	if err != nil {
		return ""
	}
	return u.Address
}
