package ports

import (
	"context"

	"github.com/cardex-labs/cardex/core"
)

// AccountDirectory is the external account store. Only the create-or-get
// contract matters here; the schema behind it is not ours.
type AccountDirectory interface {
	// CreateOrGet returns the account for the wallet address, creating it on
	// first sight. Failures other than "not found" surface as
	// core.ErrStorageFailure.
	CreateOrGet(ctx context.Context, walletAddress string) (*core.Account, error)

	// Exists reports whether an account row already exists for the address.
	Exists(ctx context.Context, walletAddress string) (bool, error)
}
