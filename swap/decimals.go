package swap

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/cardex-labs/cardex/core"
)

// ToBaseUnits converts a human-readable amount to the asset's smallest
// indivisible units, flooring any fractional remainder.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, core.ErrInvalidAmount
	}
	return amount.Shift(decimals).Floor().BigInt(), nil
}

// FromBaseUnits converts base units back to a human-readable amount.
func FromBaseUnits(units *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, 0).Shift(-decimals)
}

// ParseAmount parses a user-supplied decimal amount string.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, core.ErrInvalidAmount)
	}
	return amount, nil
}
