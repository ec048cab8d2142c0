package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// ErrBadUnits reports an amount that cannot be expressed in base units.
var ErrBadUnits = errors.New("invalid token amount")

// FormatUnits renders a base-unit amount with the given number of decimals,
// trimming trailing zeros: 1500000 with 6 decimals is "1.5".
func FormatUnits(v *uint256.Int, decimals uint8) string {
	if v == nil {
		v = new(uint256.Int)
	}
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals)).String()
}

// FormatAmount is FormatUnits followed by the ticker.
func FormatAmount(v *uint256.Int, decimals uint8, ticker string) string {
	if ticker == "" {
		return FormatUnits(v, decimals)
	}
	return FormatUnits(v, decimals) + " " + ticker
}

// ParseUnits converts a decimal token amount into base units. It rejects
// negative values, fractions finer than decimals allow and anything that
// does not fit in 256 bits.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadUnits, s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w %q: negative", ErrBadUnits, s)
	}
	base := d.Shift(int32(decimals))
	if !base.Equal(base.Truncate(0)) {
		return nil, fmt.Errorf("%w %q: more than %d decimal places", ErrBadUnits, s, decimals)
	}
	v, overflow := uint256.FromBig(base.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w %q: exceeds 256 bits", ErrBadUnits, s)
	}
	return v, nil
}
