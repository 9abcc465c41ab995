// Package fixedpoint holds the scaled-integer arithmetic the ledger runs on.
// Share quantities are int64 scaled by 10,000 (2.5 shares = 25000), money is
// int64 cents. Decimal strings at the HTTP boundary are converted exactly;
// no float ever carries a share or money value.
package fixedpoint

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ShareScale is the fixed-point denominator for share quantities.
const ShareScale = 10_000

var (
	ErrNotDecimal = errors.New("value is not a decimal number")
	ErrTooPrecise = errors.New("value has more precision than the ledger stores")
	ErrOutOfRange = errors.New("value out of range")
)

// ParseShares converts a decimal string like "12.5" to fixed-point units.
// At most four fractional digits are accepted.
func ParseShares(s string) (int64, error) {
	return parseScaled(s, 4)
}

// ParseCents converts a decimal dollar string like "100.00" to cents.
func ParseCents(s string) (int64, error) {
	return parseScaled(s, 2)
}

func parseScaled(s string, places int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotDecimal
	}
	scaled := d.Shift(places)
	if !scaled.IsInteger() {
		return 0, ErrTooPrecise
	}
	if !scaled.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return scaled.IntPart(), nil
}

// FormatShares renders fixed-point share units back to a decimal string.
func FormatShares(v int64) string {
	return decimal.New(v, -4).String()
}

// FormatCents renders cents as a dollar string with two decimal places.
func FormatCents(v int64) string {
	return decimal.New(v, -2).StringFixed(2)
}

// DivRound divides num by den, rounding half away from zero.
// den must be positive.
func DivRound(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

// MulDivRound computes v*num/den with a single rounding on the final
// division. Used for split rescaling, where ratio components are small.
func MulDivRound(v, num, den int64) int64 {
	return DivRound(v*num, den)
}
