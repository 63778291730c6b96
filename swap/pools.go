package swap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/core"
)

// PoolSource discovers a liquidity pool for an unordered asset pair. Sources
// report core.ErrPoolNotFound when they have no pool for the pair.
type PoolSource interface {
	PoolByPair(ctx context.Context, assetA, assetB string) (*core.Pool, error)
}

// Locator chains pool sources in order: the live index first, then the
// static snapshot that covers older long-tail pools the index lags behind.
// The first source that yields a pool wins.
type Locator struct {
	sources []PoolSource
	logger  *zap.Logger
}

// NewLocator creates a locator over the given sources, queried in order.
func NewLocator(logger *zap.Logger, sources ...PoolSource) *Locator {
	return &Locator{sources: sources, logger: logger}
}

// FindPool returns the first pool any source reports for the pair.
// core.ErrPoolNotFound advances to the next source; any other failure
// propagates immediately.
func (l *Locator) FindPool(ctx context.Context, assetA, assetB string) (*core.Pool, error) {
	for i, src := range l.sources {
		pool, err := src.PoolByPair(ctx, assetA, assetB)
		if err == nil {
			return pool, nil
		}
		if errors.Is(err, core.ErrPoolNotFound) {
			l.logger.Debug("pool source miss, trying next tier",
				zap.Int("tier", i+1),
				zap.String("asset_a", assetA),
				zap.String("asset_b", assetB))
			continue
		}
		return nil, fmt.Errorf("pool lookup failed: %w", err)
	}
	return nil, core.ErrPoolNotFound
}
