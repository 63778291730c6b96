package ports

import (
	"context"

	"github.com/cardex-labs/cardex/core"
)

// LedgerQuery is the external ledger-query service. Calls are synchronous
// network calls; adapters apply timeout, rate limiting and bounded retry, and
// report exhaustion as core.ErrNetworkFailure.
type LedgerQuery interface {
	// AddressUTXOs lists unspent outputs at an address.
	AddressUTXOs(ctx context.Context, address string) ([]core.UTXO, error)

	// AssetDecimals returns the declared decimal count for an asset,
	// defaulting to 0 when the metadata carries none.
	AssetDecimals(ctx context.Context, unit string) (int32, error)

	// PoolReserves reads a pool's current holdings from its address.
	PoolReserves(ctx context.Context, poolAddress string) (*core.Reserves, error)
}
