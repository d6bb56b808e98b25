package chain

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAtomicDigits bounds the integer digits of any atomic amount. A
// uint256 has at most 78 decimal digits.
const MaxAtomicDigits = 78

var decimalAmountRE = regexp.MustCompile(`^(\d+)(?:\.(\d+))?$`)

// ParseDecimal parses a plain non-negative decimal such as "0.01" or
// "0,01". Exponent notation is rejected and the integer part is limited
// to MaxAtomicDigits digits.
func ParseDecimal(amount string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(amount, ",", "."))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Decimal{}, fmt.Errorf("%w: negative %q", ErrInvalidAmount, amount)
	}
	m := decimalAmountRE.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if len(strings.TrimLeft(m[1], "0")) > MaxAtomicDigits || len(m[2]) > MaxAtomicDigits {
		return decimal.Decimal{}, fmt.Errorf("%w: too large %q", ErrInvalidAmount, amount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return d, nil
}

// ToAtomic converts a decimal coin amount into atomic units with the given
// precision, rounding half away from zero. Input follows ParseDecimal.
func ToAtomic(amount string, decimals int32) (*big.Int, error) {
	d, err := ParseDecimal(amount)
	if err != nil {
		return nil, err
	}
	if len(d.Truncate(0).String())+int(decimals) > MaxAtomicDigits {
		return nil, fmt.Errorf("%w: too large %q", ErrInvalidAmount, amount)
	}
	return d.Shift(decimals).Round(0).BigInt(), nil
}

// CurrencyToAtomic converts amount of currency on chainName to atomic units.
func CurrencyToAtomic(amount, currency, chainName string) (*big.Int, error) {
	dec, err := Decimals(currency, chainName)
	if err != nil {
		return nil, err
	}
	return ToAtomic(amount, dec)
}

// ParseAtomic parses an integer string already expressed in atomic units,
// such as a wei "value" parameter. Scientific notation is accepted when it
// resolves to an integer of at most MaxAtomicDigits digits.
func ParseAtomic(value string) (*big.Int, error) {
	s := strings.TrimSpace(value)
	// Leaves room for a decimal point and an exponent suffix.
	if len(s) > MaxAtomicDigits+8 {
		return nil, fmt.Errorf("%w: too large %q", ErrInvalidAmount, value)
	}
	if n, ok := new(big.Int).SetString(s, 10); ok {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative %q", ErrInvalidAmount, value)
		}
		if len(n.String()) > MaxAtomicDigits {
			return nil, fmt.Errorf("%w: too large %q", ErrInvalidAmount, value)
		}
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	exp := int(d.Exponent())
	if exp < -MaxAtomicDigits || len(d.Coefficient().String())+exp > MaxAtomicDigits {
		return nil, fmt.Errorf("%w: too large %q", ErrInvalidAmount, value)
	}
	if !d.Equal(d.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return d.BigInt(), nil
}

// FromAtomic renders atomic units as a decimal string.
func FromAtomic(atomic *big.Int, decimals int32) string {
	if atomic == nil {
		return "0"
	}
	return decimal.NewFromBigInt(atomic, -decimals).String()
}
