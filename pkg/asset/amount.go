package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrExcessPrecision = errors.New("amount has more fractional digits than the token supports")
)

// ToAtomic converts a human-readable decimal string into integer atomic units.
// Amounts carrying more fractional digits than decimals are rejected rather than rounded.
func ToAtomic(human string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return DecimalToAtomic(d, decimals)
}

// DecimalToAtomic is ToAtomic for an already parsed value.
func DecimalToAtomic(d decimal.Decimal, decimals int32) (*big.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d)
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrExcessPrecision, d, decimals)
	}
	return shifted.BigInt(), nil
}

// FromAtomic converts atomic units back into a decimal value.
func FromAtomic(atomic *big.Int, decimals int32) decimal.Decimal {
	if atomic == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(atomic, -decimals)
}

// FormatAtomic renders atomic units as a fixed-point string.
func FormatAtomic(atomic *big.Int, decimals int32) string {
	return FromAtomic(atomic, decimals).StringFixed(decimals)
}
