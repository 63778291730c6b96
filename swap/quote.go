package swap

import (
	"errors"
	"math"
	"math/big"

	"github.com/cardex-labs/cardex/core"
)

// ErrNoLiquidity is returned when a pool reserve is zero or missing.
var ErrNoLiquidity = errors.New("pool has no liquidity")

var (
	feeNumerator   = big.NewInt(997) // 0.3% swap fee
	feeDenominator = big.NewInt(1000)
	slippageScale  = big.NewInt(1000)
)

// AmountOut prices amountIn against the reserves using the constant-product
// formula with the 0.3% fee. All arithmetic is integer; every division
// floors, matching the on-chain computation.
func AmountOut(reserveIn, reserveOut, amountIn *big.Int) *big.Int {
	amountInWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	amountInWithFee.Quo(amountInWithFee, feeDenominator)

	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Add(reserveIn, amountInWithFee)
	return numerator.Quo(numerator, denominator)
}

// MinimumOut applies the slippage tolerance to amountOut. The percentage is
// scaled to thousandths and floored before the integer multiply, so
// MinimumOut never exceeds amountOut.
func MinimumOut(amountOut *big.Int, slippagePercent float64) *big.Int {
	multiplier := big.NewInt(int64(math.Floor((1 - slippagePercent/100) * 1000)))
	min := new(big.Int).Mul(amountOut, multiplier)
	return min.Quo(min, slippageScale)
}

// Compute returns the expected and minimum acceptable output for a swap.
func Compute(reserveIn, reserveOut, amountIn *big.Int, slippagePercent float64) (amountOut, amountOutMin *big.Int, err error) {
	if slippagePercent < 0 || slippagePercent > 100 {
		return nil, nil, core.ErrInvalidSlippage
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, nil, core.ErrInvalidAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, nil, ErrNoLiquidity
	}

	amountOut = AmountOut(reserveIn, reserveOut, amountIn)
	amountOutMin = MinimumOut(amountOut, slippagePercent)
	return amountOut, amountOutMin, nil
}
