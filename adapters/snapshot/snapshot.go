package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/swap"
)

var _ swap.PoolSource = (*Source)(nil)

// Source resolves pools from a directory of JSON snapshot files. Each file
// holds an array of pool records; files are scanned in name order and the
// first record matching the pair, in either orientation, wins. Pairs absent
// from every file report ErrPoolNotFound so a later tier can be consulted.
type Source struct {
	dir    string
	logger *zap.Logger
}

// New creates a snapshot source over the given directory.
func New(dir string, logger *zap.Logger) *Source {
	return &Source{dir: dir, logger: logger}
}

// PoolByPair scans the snapshot files for a pool holding the asset pair.
func (s *Source) PoolByPair(ctx context.Context, assetA, assetB string) (*core.Pool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot directory: %v", core.ErrStorageFailure, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.dir, entry.Name())
		pools, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrStorageFailure, err)
		}

		for i := range pools {
			if matches(&pools[i], assetA, assetB) {
				s.logger.Debug("pool resolved from snapshot",
					zap.String("file", entry.Name()),
					zap.String("pool", pools[i].Address))
				return &pools[i], nil
			}
		}
	}

	return nil, core.ErrPoolNotFound
}

func loadFile(path string) ([]core.Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var pools []core.Pool
	if err := json.Unmarshal(data, &pools); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return pools, nil
}

func matches(pool *core.Pool, assetA, assetB string) bool {
	if pool.AssetA == assetA && pool.AssetB == assetB {
		return true
	}
	return pool.AssetA == assetB && pool.AssetB == assetA
}
