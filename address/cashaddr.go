package address

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	btcchaincfg "github.com/btcsuite/btcd/chaincfg"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
	"github.com/gcash/bchutil"

	"github.com/bitfsorg/libscan-go/chain"
)

// cashNet pairs a network with its CashAddr parameters and the Bitcoin
// parameters sharing its legacy version bytes.
type cashNet struct {
	network string
	params  *bchchaincfg.Params
	legacy  *btcchaincfg.Params
}

var bitcoinCashNets = []cashNet{
	{chain.Livenet, &bchchaincfg.MainNetParams, &btcchaincfg.MainNetParams},
	{chain.Testnet, &bchchaincfg.TestNet3Params, &btcchaincfg.TestNet3Params},
}

// splitCashPrefix separates an optional "prefix:" from the payload.
func splitCashPrefix(addr string) (string, string) {
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		return strings.ToLower(addr[:i]), addr[i+1:]
	}
	return "", addr
}

// decodeCashAddr decodes addr on the first network whose prefix matches.
func decodeCashAddr(addr string) (bchutil.Address, cashNet, bool) {
	prefix, payload := splitCashPrefix(addr)
	if payload == "" || strings.ContainsAny(payload, "?/ ") {
		return nil, cashNet{}, false
	}
	if payload == strings.ToUpper(payload) {
		payload = strings.ToLower(payload)
	}
	for _, n := range bitcoinCashNets {
		if prefix != "" && prefix != n.params.CashAddressPrefix {
			continue
		}
		decoded, err := bchutil.DecodeAddress(n.params.CashAddressPrefix+":"+payload, n.params)
		if err != nil {
			continue
		}
		switch decoded.(type) {
		case *bchutil.AddressPubKeyHash, *bchutil.AddressScriptHash:
			return decoded, n, true
		}
	}
	return nil, cashNet{}, false
}

// bitcoinCashNetwork validates a CashAddr string and returns its network.
func bitcoinCashNetwork(addr string) (string, bool) {
	_, n, ok := decodeCashAddr(addr)
	return n.network, ok
}

// IsLegacyBitcoinCashAddress reports whether addr is a base58 P2PKH or
// P2SH address usable as a legacy Bitcoin Cash address.
func IsLegacyBitcoinCashAddress(addr string) bool {
	_, _, err := decodeLegacy(addr)
	return err == nil
}

func decodeLegacy(addr string) (btcutil.Address, cashNet, error) {
	for _, n := range bitcoinCashNets {
		decoded, err := btcutil.DecodeAddress(addr, n.legacy)
		if err != nil || !decoded.IsForNet(n.legacy) {
			continue
		}
		switch decoded.(type) {
		case *btcutil.AddressPubKeyHash, *btcutil.AddressScriptHash:
			return decoded, n, nil
		}
	}
	return nil, cashNet{}, fmt.Errorf("%w: %q is not a legacy address", ErrInvalidAddress, addr)
}

// ToCashAddr translates a legacy base58 address to prefixed CashAddr form,
// e.g. "bitcoincash:qp..." or "bchtest:qp...".
func ToCashAddr(legacy string) (string, error) {
	decoded, n, err := decodeLegacy(legacy)
	if err != nil {
		return "", err
	}

	var cash bchutil.Address
	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash:
		cash, err = bchutil.NewAddressPubKeyHash(decoded.ScriptAddress(), n.params)
	default:
		cash, err = bchutil.NewAddressScriptHashFromHash(decoded.ScriptAddress(), n.params)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return withCashPrefix(cash.EncodeAddress(), n.params.CashAddressPrefix), nil
}

// NormalizeCashAddr returns addr in prefixed lower-case CashAddr form.
func NormalizeCashAddr(addr string) (string, error) {
	decoded, n, ok := decodeCashAddr(addr)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a CashAddr", ErrInvalidAddress, addr)
	}
	return withCashPrefix(decoded.EncodeAddress(), n.params.CashAddressPrefix), nil
}

func withCashPrefix(encoded, prefix string) string {
	return prefix + ":" + strings.TrimPrefix(encoded, prefix+":")
}
