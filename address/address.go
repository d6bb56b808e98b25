// Package address validates plain cryptocurrency addresses for every
// supported chain and infers the network they belong to.
//
// UTXO chains (btc, bch, ltc, doge) report "livenet" or "testnet".
// EVM chains and XRP never report a network: their address shape carries
// none.
package address

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bitfsorg/libscan-go/chain"
)

// utxoNet pairs a network name with its address parameters.
type utxoNet struct {
	network string
	params  *chaincfg.Params
}

var (
	bitcoinNets = []utxoNet{
		{chain.Livenet, &chaincfg.MainNetParams},
		{chain.Testnet, &chaincfg.TestNet3Params},
	}
	litecoinNets = []utxoNet{
		{chain.Livenet, &litecoinMainNetParams},
		{chain.Testnet, &litecoinTestNetParams},
	}
	dogecoinNets = []utxoNet{
		{chain.Livenet, &dogecoinMainNetParams},
		{chain.Testnet, &dogecoinTestNetParams},
	}
)

// Validate reports whether addr is a valid plain address on chainName and
// returns the inferred network ("" for EVM and XRP).
func Validate(chainName, addr string) (string, error) {
	var (
		network string
		ok      bool
	)
	switch strings.ToLower(chainName) {
	case chain.BTC:
		network, ok = decodeUTXO(addr, bitcoinNets)
	case chain.BCH:
		network, ok = bitcoinCashNetwork(addr)
	case chain.LTC:
		network, ok = decodeUTXO(addr, litecoinNets)
	case chain.DOGE:
		network, ok = decodeUTXO(addr, dogecoinNets)
	case chain.ETH, chain.MATIC:
		ok = IsValidEthereumAddress(addr)
	case chain.XRP:
		ok = IsValidRippleAddress(addr)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, chainName)
	}
	if !ok {
		return "", fmt.Errorf("%w: %q on %s", ErrInvalidAddress, addr, chainName)
	}
	return network, nil
}

// IsValid reports whether addr is a valid plain address on chainName.
func IsValid(chainName, addr string) bool {
	_, err := Validate(chainName, addr)
	return err == nil
}

// IsValidBitcoinAddress accepts base58 and bech32/bech32m addresses on
// mainnet or testnet.
func IsValidBitcoinAddress(addr string) bool {
	_, ok := decodeUTXO(addr, bitcoinNets)
	return ok
}

// IsValidBitcoinCashAddress accepts CashAddr with or without prefix.
func IsValidBitcoinCashAddress(addr string) bool {
	_, ok := bitcoinCashNetwork(addr)
	return ok
}

// IsValidLitecoinAddress accepts base58 and bech32 Litecoin addresses.
func IsValidLitecoinAddress(addr string) bool {
	_, ok := decodeUTXO(addr, litecoinNets)
	return ok
}

// IsValidDogecoinAddress accepts base58 Dogecoin addresses.
func IsValidDogecoinAddress(addr string) bool {
	_, ok := decodeUTXO(addr, dogecoinNets)
	return ok
}

// IsValidMaticAddress shares the Ethereum address format.
func IsValidMaticAddress(addr string) bool {
	return IsValidEthereumAddress(addr)
}

// decodeUTXO returns the first network addr decodes on.
func decodeUTXO(addr string, nets []utxoNet) (string, bool) {
	if addr == "" || strings.ContainsAny(addr, ":?/ ") {
		return "", false
	}
	for _, n := range nets {
		decoded, err := btcutil.DecodeAddress(addr, n.params)
		if err != nil {
			continue
		}
		switch decoded.(type) {
		case *btcutil.AddressPubKey:
			// Raw public keys are not payable addresses.
			continue
		}
		if decoded.IsForNet(n.params) {
			return n.network, true
		}
	}
	return "", false
}

var hexAddressRE = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValidEthereumAddress requires a 0x prefix. Mixed-case addresses must
// carry a valid EIP-55 checksum.
func IsValidEthereumAddress(addr string) bool {
	if !hexAddressRE.MatchString(addr) || !common.IsHexAddress(addr) {
		return false
	}
	body := addr[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(addr).Hex() == addr
}

// ChecksumEthereumAddress returns the EIP-55 form of addr.
func ChecksumEthereumAddress(addr string) (string, error) {
	if !IsValidEthereumAddress(addr) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

const (
	rippleAlphabet  = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"
	bitcoinAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

var rippleToBitcoin = strings.NewReplacer(func() []string {
	pairs := make([]string, 0, 2*len(rippleAlphabet))
	for i := range rippleAlphabet {
		pairs = append(pairs, rippleAlphabet[i:i+1], bitcoinAlphabet[i:i+1])
	}
	return pairs
}()...)

// IsValidRippleAddress validates a classic XRP account address: base58check
// in the Ripple alphabet with account version 0 and a 20-byte payload.
func IsValidRippleAddress(addr string) bool {
	if len(addr) < 25 || len(addr) > 35 || addr[0] != 'r' {
		return false
	}
	for _, c := range addr {
		if !strings.ContainsRune(rippleAlphabet, c) {
			return false
		}
	}
	payload, version, err := base58.CheckDecode(rippleToBitcoin.Replace(addr))
	return err == nil && version == 0 && len(payload) == 20
}
