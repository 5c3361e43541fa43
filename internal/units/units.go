// Package units converts between human readable decimal amount strings and
// the integer base unit representation used on chain. All arithmetic is done
// on big.Int so no precision is lost to floating point intermediates.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrMalformedAmount is returned when an amount string is not a valid
// non-negative decimal number.
var ErrMalformedAmount = errors.New("malformed amount")

// ToBaseUnits converts a decimal amount string to base units for a token with
// the given number of decimals. "1.5" with 18 decimals yields
// 1500000000000000000. Negative, empty, and non-numeric input is rejected, as
// is a fractional part longer than decimals allows.
func ToBaseUnits(display string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(display)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrMalformedAmount)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: negative amount %q", ErrMalformedAmount, display)
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, display)
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, display)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits",
			ErrMalformedAmount, display, decimals)
	}

	// Right-pad the fractional part to decimals digits and parse the
	// concatenation as a single integer.
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))

	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, display)
	}

	return out, nil
}

// ToDisplay converts a base unit amount to a decimal string for a token with
// the given number of decimals. Trailing fractional zeros are trimmed, so the
// result is canonical: ToDisplay(1500000000000000000, 18) == "1.5".
func ToDisplay(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}

	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(raw, div, new(big.Int))

	if rem.Sign() == 0 {
		return quo.String()
	}

	remStr := rem.String()
	if pad := int(decimals) - len(remStr); pad > 0 {
		remStr = strings.Repeat("0", pad) + remStr
	}

	return quo.String() + "." + strings.TrimRight(remStr, "0")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
