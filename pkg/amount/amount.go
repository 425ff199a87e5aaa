// Package amount converts between human decimal strings and atomic units.
// All amounts in the payment pipeline are int64 counts of the smallest
// denomination (7 decimal places, matching Stellar asset precision);
// decimal strings exist only at the formatting boundary.
package amount

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed scale of atomic units.
const Decimals = 7

// Parse converts a non-negative decimal string into atomic units. Fraction
// digits beyond the supported scale are truncated, never rounded up, so a
// parsed amount can never overstate what the user typed.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	atomic := d.Shift(Decimals).Truncate(0)
	bi := atomic.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("amount %q overflows atomic units", s)
	}
	return bi.Int64(), nil
}

// Format renders atomic units as a decimal string. The conversion is exact;
// trailing zeros are dropped.
func Format(n int64) string {
	return decimal.New(n, -Decimals).String()
}

// MustParse is Parse for static values known to be valid.
func MustParse(s string) int64 {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}
