package uri

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// WalletConnectURI holds a parsed wc: pairing URI.
type WalletConnectURI struct {
	Topic         string
	Version       int
	RelayProtocol string // v2 relay-protocol
	SymKey        string // v2 symKey
	Bridge        string // v1 bridge
	Key           string // v1 key
	Raw           string
}

var walletConnectRE = regexp.MustCompile(`^wc:[0-9a-zA-Z-]+@\d+`)

// IsWalletConnect reports whether raw looks like a wc: pairing URI.
func IsWalletConnect(raw string) bool {
	return walletConnectRE.MatchString(strings.TrimSpace(raw))
}

// ParseWalletConnect parses wc:topic@version?params.
func ParseWalletConnect(raw string) (*WalletConnectURI, error) {
	s := strings.TrimSpace(raw)
	if !IsWalletConnect(s) {
		return nil, fmt.Errorf("%w: not a WalletConnect URI", ErrInvalidURI)
	}

	body := strings.TrimPrefix(s, "wc:")
	query := ""
	if q := strings.IndexByte(body, '?'); q >= 0 {
		query = body[q+1:]
		body = body[:q]
	}
	topic, versionStr, _ := strings.Cut(body, "@")
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q", ErrInvalidURI, versionStr)
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrInvalidURI, err)
	}

	return &WalletConnectURI{
		Topic:         topic,
		Version:       version,
		RelayProtocol: params.Get("relay-protocol"),
		SymKey:        params.Get("symKey"),
		Bridge:        params.Get("bridge"),
		Key:           params.Get("key"),
		Raw:           raw,
	}, nil
}
