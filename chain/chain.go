// Package chain describes the coins and chains the resolver understands:
// their decimal precision, account model and URI schemes.
package chain

import (
	"fmt"
	"strings"
)

// Chain identifiers. Currency codes for native coins share these values.
const (
	BTC   = "btc"
	BCH   = "bch"
	ETH   = "eth"
	MATIC = "matic"
	XRP   = "xrp"
	DOGE  = "doge"
	LTC   = "ltc"
)

// Network names.
const (
	Livenet = "livenet"
	Testnet = "testnet"
)

// Info describes a native coin.
type Info struct {
	Chain    string
	Name     string
	Decimals int32
	UTXO     bool
	EVM      bool
	Schemes  []string
}

// Supported lists every native chain in classification order.
var Supported = []string{BTC, BCH, ETH, MATIC, XRP, DOGE, LTC}

var predefined = map[string]*Info{
	BTC:   {Chain: BTC, Name: "Bitcoin", Decimals: 8, UTXO: true, Schemes: []string{"bitcoin"}},
	BCH:   {Chain: BCH, Name: "Bitcoin Cash", Decimals: 8, UTXO: true, Schemes: []string{"bitcoincash", "bchtest"}},
	ETH:   {Chain: ETH, Name: "Ethereum", Decimals: 18, EVM: true, Schemes: []string{"ethereum"}},
	MATIC: {Chain: MATIC, Name: "Polygon", Decimals: 18, EVM: true, Schemes: []string{"matic"}},
	XRP:   {Chain: XRP, Name: "XRP", Decimals: 6, Schemes: []string{"ripple", "xrp"}},
	DOGE:  {Chain: DOGE, Name: "Dogecoin", Decimals: 8, UTXO: true, Schemes: []string{"dogecoin"}},
	LTC:   {Chain: LTC, Name: "Litecoin", Decimals: 8, UTXO: true, Schemes: []string{"litecoin"}},
}

// tokenDecimals holds precision for EVM tokens BitPay invoices can carry.
var tokenDecimals = map[string]int32{
	"usdc":  6,
	"usdt":  6,
	"pyusd": 6,
	"euroc": 6,
	"gusd":  2,
	"dai":   18,
	"busd":  18,
	"usdp":  18,
	"pax":   18,
	"shib":  18,
	"ape":   18,
	"wbtc":  8,
	"weth":  18,
}

// bitpaySupportedEvmCoins are the EVM currencies selectable from the
// global wallet picker.
var bitpaySupportedEvmCoins = map[string]bool{
	ETH: true, MATIC: true,
	"usdc": true, "usdt": true, "pyusd": true, "euroc": true, "gusd": true,
	"dai": true, "busd": true, "usdp": true, "pax": true, "shib": true,
	"ape": true, "wbtc": true, "weth": true,
}

// Get returns the descriptor for a native chain.
func Get(name string) (*Info, error) {
	if info, ok := predefined[strings.ToLower(name)]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, name)
}

// IsSupported reports whether name is a native chain.
func IsSupported(name string) bool {
	_, ok := predefined[strings.ToLower(name)]
	return ok
}

// IsUtxoCoin reports whether coin is a native UTXO chain.
func IsUtxoCoin(coin string) bool {
	info, ok := predefined[strings.ToLower(coin)]
	return ok && info.UTXO
}

// IsEVMChain reports whether name is an EVM chain.
func IsEVMChain(name string) bool {
	info, ok := predefined[strings.ToLower(name)]
	return ok && info.EVM
}

// IsBitpaySupportedEvmCoin reports whether currency lives on an EVM chain
// BitPay supports, either natively or as a token.
func IsBitpaySupportedEvmCoin(currency string) bool {
	return bitpaySupportedEvmCoins[strings.ToLower(currency)]
}

// Decimals returns the precision of currency. Native coins are looked up
// by their own code; tokens by symbol. chainName disambiguates tokens but
// native codes always win.
func Decimals(currency, chainName string) (int32, error) {
	c := strings.ToLower(currency)
	if info, ok := predefined[c]; ok {
		return info.Decimals, nil
	}
	if d, ok := tokenDecimals[c]; ok && IsEVMChain(chainName) {
		return d, nil
	}
	return 0, fmt.Errorf("%w: currency %q on %q", ErrUnsupportedChain, currency, chainName)
}

// ChainForScheme maps a URI scheme to its chain.
func ChainForScheme(scheme string) (string, bool) {
	s := strings.ToLower(scheme)
	for _, name := range Supported {
		for _, sc := range predefined[name].Schemes {
			if sc == s {
				return name, true
			}
		}
	}
	return "", false
}
