// Package grammar classifies scanned text into one of the recognized input
// grammars and extracts a normalized intent from it.
//
// Classification walks an ordered rule table; the first predicate that
// accepts the input wins. Predicates are purely syntactic and never perform
// I/O. The order is significant because grammars overlap: a legacy Bitcoin
// address is also a valid legacy Bitcoin Cash address, an Ethereum address
// is also a valid Polygon address, and any coin URI with r= is a
// payment-protocol reference.
package grammar

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/libscan-go/address"
	"github.com/bitfsorg/libscan-go/uri"
)

// ExtractContext carries caller-supplied context into extraction.
type ExtractContext struct {
	WalletCurrency string
	WalletChain    string
	RecipientType  string
	Name           string
	Email          string
	DestinationTag *uint32
	Log            *logrus.Entry
}

// Rule pairs a predicate with the extractor for its grammar.
type Rule struct {
	Kind    Kind
	Match   func(s string) bool
	Extract func(s string, ctx ExtractContext) (Intent, error)
}

// Rules is the classification table in priority order.
var Rules = []Rule{
	{KindBitPayInvoice, isBitPayInvoice, extractInvoice},
	{KindPayPro, isPayPro, extractPayPro},
	{KindBitcoinAddress, address.IsValidBitcoinAddress, plainAddress(KindBitcoinAddress)},
	{KindBitcoinCashAddress, address.IsValidBitcoinCashAddress, plainAddress(KindBitcoinCashAddress)},
	{KindEthereumAddress, address.IsValidEthereumAddress, plainAddress(KindEthereumAddress)},
	{KindMaticAddress, address.IsValidMaticAddress, plainAddress(KindMaticAddress)},
	{KindRippleAddress, address.IsValidRippleAddress, plainAddress(KindRippleAddress)},
	{KindDogecoinAddress, address.IsValidDogecoinAddress, plainAddress(KindDogecoinAddress)},
	{KindLitecoinAddress, address.IsValidLitecoinAddress, plainAddress(KindLitecoinAddress)},
	{KindBitcoinURI, schemeURI("bitcoin"), utxoURI(KindBitcoinURI)},
	{KindBitcoinCashURI, isBitcoinCashURI, extractBitcoinCashURI},
	{KindBitcoinCashLegacyURI, isBitcoinCashLegacyURI, extractBitcoinCashLegacyURI},
	{KindEthereumURI, schemeURI("ethereum"), evmURI(KindEthereumURI)},
	{KindMaticURI, schemeURI("matic"), evmURI(KindMaticURI)},
	{KindRippleURI, schemeURI("ripple", "xrp"), extractRippleURI},
	{KindDogecoinURI, schemeURI("dogecoin"), utxoURI(KindDogecoinURI)},
	{KindLitecoinURI, schemeURI("litecoin"), utxoURI(KindLitecoinURI)},
	{KindWalletConnect, uri.IsWalletConnect, extractWalletConnect},
	{KindBuyCrypto, deepLink("buy"), extractBuyCrypto},
	{KindMoonpay, partnerLink("moonpay", "externalId"), redirect(KindMoonpay)},
	{KindRamp, partnerLink("ramp", "rampExternalId"), redirect(KindRamp)},
	{KindSardine, partnerLink("sardine", "sardineExternalId"), redirect(KindSardine)},
	{KindSimplex, partnerLink("simplex", "paymentId"), redirect(KindSimplex)},
	{KindWyre, partnerLink("wyre", ""), redirect(KindWyre)},
	{KindBitPayURI, isBitPayURI, extractBitPayURI},
	{KindImportPrivateKey, isImportPrivateKey, extractImport},
	{KindJoinCode, isJoinCode, extractJoin},
}

// Order returns the kinds in classification priority order.
func Order() []Kind {
	kinds := make([]Kind, len(Rules))
	for i, r := range Rules {
		kinds[i] = r.Kind
	}
	return kinds
}

// Match is the outcome of classification.
type Match struct {
	Kind  Kind
	Input string // normalized input the rule accepted
	rule  *Rule
}

// Classify normalizes raw and returns the first matching grammar.
// Unmatched input yields KindUnrecognized.
func Classify(raw string) Match {
	s := Normalize(raw)
	for i := range Rules {
		if Rules[i].Match(s) {
			return Match{Kind: Rules[i].Kind, Input: s, rule: &Rules[i]}
		}
	}
	return Match{Kind: KindUnrecognized, Input: s}
}

// Extract runs the extractor of the matched grammar.
func (m Match) Extract(ctx ExtractContext) (Intent, error) {
	if m.rule == nil {
		return nil, ErrUnrecognized
	}
	if ctx.Log == nil {
		ctx.Log = logrus.NewEntry(discardLogger)
	}
	return m.rule.Extract(m.Input, ctx)
}

var (
	invoiceWebURLRE = regexp.MustCompile(`^(https://(?:www\.)?(?:test\.|staging\.)?bitpay\.com)/invoice\?(?:.*&)?id=([\w-]+)`)
	bitPayInvoiceRE = regexp.MustCompile(`^https://(www\.)?(test\.|staging\.)?bitpay\.com/i/\w+`)
	payProURLRE     = regexp.MustCompile(`^https?://[^/?#\s]+/i/\w+`)
	payProSchemeRE  = regexp.MustCompile(`(?i)^(bitcoin|bitcoincash|bchtest|ethereum|ripple|xrp|matic|dogecoin|litecoin|bitpay)?:\?r=\S+`)
	importRE        = regexp.MustCompile(`^[123]\|\S`)
	joinCodeRE      = regexp.MustCompile(`^copay:[1-9A-HJ-NP-Za-km-z]{70,80}$`)
)

// Normalize sanitizes raw and rewrites a BitPay invoice web URL
// (https://bitpay.com/invoice?id=X) into its short form (https://bitpay.com/i/X).
func Normalize(raw string) string {
	s := uri.Sanitize(raw)
	if m := invoiceWebURLRE.FindStringSubmatch(s); m != nil {
		return m[1] + "/i/" + m[2]
	}
	return s
}

func isBitPayInvoice(s string) bool {
	return bitPayInvoiceRE.MatchString(s)
}

func isPayPro(s string) bool {
	return payProSchemeRE.MatchString(s) || payProURLRE.MatchString(s)
}

// schemeURI matches any URI with one of the given schemes that carries an
// address or an r= reference.
func schemeURI(schemes ...string) func(string) bool {
	return func(s string) bool {
		u, err := uri.Parse(s)
		if err != nil {
			return false
		}
		for _, sc := range schemes {
			if u.Scheme == sc {
				return u.Address != "" || u.Has("r")
			}
		}
		return false
	}
}

func bitcoinCashURI(s string) (*uri.URI, bool) {
	u, err := uri.Parse(s)
	if err != nil || (u.Scheme != "bitcoincash" && u.Scheme != "bchtest") {
		return nil, false
	}
	return u, u.Address != "" || u.Has("r")
}

func isBitcoinCashURI(s string) bool {
	u, ok := bitcoinCashURI(s)
	return ok && (u.Has("r") || !address.IsLegacyBitcoinCashAddress(u.Address))
}

func isBitcoinCashLegacyURI(s string) bool {
	u, ok := bitcoinCashURI(s)
	return ok && address.IsLegacyBitcoinCashAddress(u.Address)
}

const deepLinkPrefix = "bitpay://"

// deepLink matches bitpay://<path>.
func deepLink(path string) func(string) bool {
	return func(s string) bool {
		rest, ok := cutPrefixFold(s, deepLinkPrefix)
		if !ok {
			return false
		}
		return rest == path || strings.HasPrefix(rest, path+"?") || strings.HasPrefix(rest, path+"/")
	}
}

// partnerLink matches bitpay://<partner> deep links, and http(s) or bitpay
// URLs carrying the partner's required id key.
func partnerLink(partner, key string) func(string) bool {
	isLink := deepLink(partner)
	return func(s string) bool {
		if isLink(s) {
			return true
		}
		if key == "" {
			return false
		}
		lower := strings.ToLower(s)
		if !strings.HasPrefix(lower, deepLinkPrefix) && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "http://") {
			return false
		}
		_, found := uri.ParameterByName(key, uri.Unescape(s))
		return found
	}
}

func isBitPayURI(s string) bool {
	rest, ok := cutPrefixFold(s, "bitpay:")
	return ok && strings.TrimPrefix(rest, "//") != ""
}

func isImportPrivateKey(s string) bool {
	return importRE.MatchString(s)
}

func isJoinCode(s string) bool {
	return joinCodeRE.MatchString(s)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
