package ports

import (
	"context"
	"math/big"

	"github.com/cardex-labs/cardex/core"
)

// Wallet is the external wallet capability. It holds all signing material;
// nothing in this repository ever sees a private key.
type Wallet interface {
	Enable(ctx context.Context) error
	UsedAddresses(ctx context.Context) ([]string, error)

	// SignData signs a hex-encoded message with the key controlling address.
	SignData(ctx context.Context, address, messageHex string) (*core.SignaturePackage, error)

	// SignTx signs a prepared transaction and returns the serialized signed
	// transaction.
	SignTx(ctx context.Context, tx *core.PreparedTransaction) (string, error)

	// SubmitTx broadcasts a signed transaction and returns its hash.
	SubmitTx(ctx context.Context, signedTx string) (string, error)

	UTXOs(ctx context.Context) ([]core.UTXO, error)
	Balance(ctx context.Context) (*big.Int, error)
	ChangeAddress(ctx context.Context) (string, error)
}
