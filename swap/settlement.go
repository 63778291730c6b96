package swap

import (
	"time"

	"github.com/cardex-labs/cardex/core"
)

const (
	// minAssetAttach is the base-currency quantity attached to any output
	// carrying a non-base asset, satisfying the ledger's minimum-value rule.
	minAssetAttach = "2000000"

	// ValidityWindow is how long a prepared transaction stays acceptable.
	ValidityWindow = 10 * time.Minute

	// Mainnet Shelley era reference point for wall-clock to slot conversion.
	shelleyStartUnix = 1596059091
	shelleyStartSlot = 4492800
)

// TimeToSlot converts a wall-clock time to a mainnet slot number.
func TimeToSlot(t time.Time) uint64 {
	return uint64(t.Unix() - shelleyStartUnix + shelleyStartSlot)
}

// SettlementBuilder turns a confirmed quote into transaction outputs and a
// validity window. Signing and broadcast stay with the external wallet; the
// builder never holds signing material.
type SettlementBuilder struct {
	now func() time.Time
}

// NewSettlementBuilder creates a builder using the system clock.
func NewSettlementBuilder() *SettlementBuilder {
	return &SettlementBuilder{now: time.Now}
}

// NewSettlementBuilderWithClock creates a builder with a fixed time source.
func NewSettlementBuilderWithClock(now func() time.Time) *SettlementBuilder {
	return &SettlementBuilder{now: now}
}

// Build assembles the settlement outputs for a quote.
//
// The pool-facing output echoes the current reserves unmodified. This is a
// simplified reserve placeholder, not a verified AMM-contract interaction:
// the prepared transaction is an approximation of the swap, not a settlement
// guarantee.
func (b *SettlementBuilder) Build(quote *core.Quote, pool *core.Pool, reserves *core.Reserves, destination string) (*core.PreparedTransaction, error) {
	if quote == nil || pool == nil || reserves == nil {
		return nil, core.ErrInvalidAmount
	}

	userValues := []core.AssetValue{
		{Unit: quote.ToAsset, Quantity: quote.AmountOutMin.String()},
	}
	if quote.ToAsset != core.Lovelace {
		userValues = append(userValues, core.AssetValue{
			Unit:     core.Lovelace,
			Quantity: minAssetAttach,
		})
	}

	poolValues := []core.AssetValue{
		{Unit: quote.FromAsset, Quantity: reserves.A.String()},
		{Unit: quote.ToAsset, Quantity: reserves.B.String()},
	}

	return &core.PreparedTransaction{
		Outputs: []core.TxOutput{
			{Address: destination, Values: userValues},
			{Address: pool.Address, Values: poolValues},
		},
		ValidUntilSlot: TimeToSlot(b.now().Add(ValidityWindow)),
	}, nil
}
