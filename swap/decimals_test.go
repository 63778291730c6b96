package swap

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardex-labs/cardex/core"
)

func TestToBaseUnits(t *testing.T) {
	amount, err := ParseAmount("1.5")
	require.NoError(t, err)

	units, err := ToBaseUnits(amount, core.BaseDecimals)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000), units)
}

func TestToBaseUnitsFloorsDust(t *testing.T) {
	amount := decimal.RequireFromString("0.0000019")

	units, err := ToBaseUnits(amount, core.BaseDecimals)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), units)
}

func TestToBaseUnitsZeroDecimals(t *testing.T) {
	amount := decimal.RequireFromString("42.9")

	units, err := ToBaseUnits(amount, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), units)
}

func TestToBaseUnitsRejectsNegative(t *testing.T) {
	_, err := ToBaseUnits(decimal.RequireFromString("-1"), core.BaseDecimals)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestFromBaseUnitsRoundTrip(t *testing.T) {
	units := big.NewInt(19644)
	human := FromBaseUnits(units, core.BaseDecimals)
	assert.Equal(t, "0.019644", human.String())

	back, err := ToBaseUnits(human, core.BaseDecimals)
	require.NoError(t, err)
	assert.Equal(t, units, back)
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	_, err := ParseAmount("ten")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}
