package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Parse Tests ---

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		scheme  string
		address string
		chainID string
		params  map[string]string
	}{
		{
			name:    "bitcoin with amount",
			raw:     "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=0.001&message=coffee",
			scheme:  "bitcoin",
			address: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
			params:  map[string]string{"amount": "0.001", "message": "coffee"},
		},
		{
			name:    "upper-case scheme",
			raw:     "BITCOIN:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
			scheme:  "bitcoin",
			address: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		},
		{
			name:    "ethereum chain id",
			raw:     "ethereum:0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed@1?value=1e18",
			scheme:  "ethereum",
			address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
			chainID: "1",
			params:  map[string]string{"value": "1e18"},
		},
		{
			name:    "double slash",
			raw:     "litecoin://LUEweDxDA4WhvWiNXXSxjM9CYzHPJv4QQF?amount=1",
			scheme:  "litecoin",
			address: "LUEweDxDA4WhvWiNXXSxjM9CYzHPJv4QQF",
			params:  map[string]string{"amount": "1"},
		},
		{
			name:    "html escaped ampersand",
			raw:     "ripple:rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh?amount=5&amp;dt=123",
			scheme:  "ripple",
			address: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
			params:  map[string]string{"amount": "5", "dt": "123"},
		},
		{
			name:   "no address",
			raw:    "bitcoin:?r=https://bitpay.com/i/abc",
			scheme: "bitcoin",
			params: map[string]string{"r": "https://bitpay.com/i/abc"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.scheme, u.Scheme)
			assert.Equal(t, tc.address, u.Address)
			assert.Equal(t, tc.chainID, u.ChainID)
			for k, v := range tc.params {
				assert.Equal(t, v, u.Get(k), k)
				assert.True(t, u.Has(k), k)
			}
			assert.Equal(t, tc.raw, u.Raw)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{"", "   ", "noscheme", ":addr", "bit coin:addr", "bitcoin:addr?a=%zz"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidURI, raw)
	}
}

// --- ParameterByName Tests ---

func TestParameterByName(t *testing.T) {
	raw := "bitpay://moonpay?externalId=abc123&transactionStatus=completed&note=hello+world%21&flag"

	v, ok := ParameterByName("externalId", raw)
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)

	v, ok = ParameterByName("note", raw)
	assert.True(t, ok)
	assert.Equal(t, "hello world!", v)

	v, ok = ParameterByName("flag", raw)
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = ParameterByName("missing", raw)
	assert.False(t, ok)

	_, ok = ParameterByName("externalId", "")
	assert.False(t, ok)
}

func TestParameterByName_NoPartialKeyMatch(t *testing.T) {
	_, ok := ParameterByName("Id", "?externalId=abc")
	assert.False(t, ok)
}

func TestParameterByName_SkipsLongerKeys(t *testing.T) {
	v, ok := ParameterByName("order", "https://x.example/r?order_id=5&order=7#frag")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	v, ok = ParameterByName("order_id", "https://x.example/r?order_id=5#order_id=9")
	assert.True(t, ok)
	assert.Equal(t, "5", v)

	v, ok = ParameterByName("flag", "?flag#x")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "?a=1&b=2", Unescape("?a=1&amp;b=2"))
}

// --- Sanitize Tests ---

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  bitcoin:1abc?amount=0,001  ", "bitcoin:1abc?amount=0.001"},
		{"bitcoin://1abc?amount=1", "bitcoin:1abc?amount=1"},
		{"https://bitpay.com/i/abc", "https://bitpay.com/i/abc"},
		{"bitcoin:1abc?message=a,b", "bitcoin:1abc?message=a,b"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Sanitize(tc.in), tc.in)
	}
}

// --- PayPro Tests ---

func TestPayProURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bitcoin:?r=https://bitpay.com/i/KSj8Rx", "https://bitpay.com/i/KSj8Rx"},
		{"bitcoincash:?r=https%3A%2F%2Fbitpay.com%2Fi%2FKSj8Rx", "https://bitpay.com/i/KSj8Rx"},
		{"ethereum:?r=https://test.bitpay.com/i/abc", "https://test.bitpay.com/i/abc"},
		{"bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=1&r=https%3A%2F%2Fbitpay.com%2Fi%2Fxyz", "https://bitpay.com/i/xyz"},
		{"https://bitpay.com/i/KSj8Rx", "https://bitpay.com/i/KSj8Rx"},
	}
	for _, tc := range tests {
		got, err := PayProURL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "bitcoin:?r=ftp://x/i/1", "hello"} {
		_, err := PayProURL(in)
		assert.ErrorIs(t, err, ErrNoPaymentProtocol, in)
	}
}

func TestPayProHost(t *testing.T) {
	host, err := PayProHost("bitcoin:?r=https://test.bitpay.com/i/abc")
	require.NoError(t, err)
	assert.Equal(t, "test.bitpay.com", host)
}

func TestInvoiceID(t *testing.T) {
	id, err := InvoiceID("https://bitpay.com/i/KSj8Rx?c=u")
	require.NoError(t, err)
	assert.Equal(t, "KSj8Rx", id)

	id, err = InvoiceID("bitcoin:?r=https://bitpay.com/i/XYZ")
	require.NoError(t, err)
	assert.Equal(t, "XYZ", id)

	for _, in := range []string{"https://bitpay.com/invoice?id=1", "https://bitpay.com/i/"} {
		_, err := InvoiceID(in)
		assert.ErrorIs(t, err, ErrNoInvoiceID, in)
	}
}

func TestExtractAddress(t *testing.T) {
	assert.Equal(t, "0xabc", ExtractAddress("ethereum:0xabc@137?value=1"))
	assert.Equal(t, "qpm2qs", ExtractAddress("bitcoincash:qpm2qs?amount=1"))
	assert.Equal(t, "", ExtractAddress("garbage"))
}

// --- WalletConnect Tests ---

func TestParseWalletConnect_V2(t *testing.T) {
	raw := "wc:7f6e504bfad60b485450578e05678ed3e8e8c4751d3c6160be17160d63ec90f9@2?relay-protocol=irn&symKey=587d5484ce2a2a6ee3ba1962fdd7e8588e06200c46823bd18fbd67def96ad303"
	require.True(t, IsWalletConnect(raw))

	wc, err := ParseWalletConnect(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, wc.Version)
	assert.Equal(t, "7f6e504bfad60b485450578e05678ed3e8e8c4751d3c6160be17160d63ec90f9", wc.Topic)
	assert.Equal(t, "irn", wc.RelayProtocol)
	assert.Equal(t, "587d5484ce2a2a6ee3ba1962fdd7e8588e06200c46823bd18fbd67def96ad303", wc.SymKey)
}

func TestParseWalletConnect_V1(t *testing.T) {
	raw := "wc:8a5e5bdc-a0e4-4702-ba63-8f1a5655744f@1?bridge=https%3A%2F%2Fbridge.walletconnect.org&key=41791102999c339c844880b23950704cc43aa840f3739e365323cda4dfa89e7a"
	wc, err := ParseWalletConnect(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, wc.Version)
	assert.Equal(t, "https://bridge.walletconnect.org", wc.Bridge)
}

func TestParseWalletConnect_Invalid(t *testing.T) {
	for _, raw := range []string{"wc:", "wc:topic", "bitcoin:abc", "wc:topic@x"} {
		assert.False(t, IsWalletConnect(raw), raw)
		_, err := ParseWalletConnect(raw)
		assert.ErrorIs(t, err, ErrInvalidURI, raw)
	}
}
