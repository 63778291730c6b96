package verify

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
)

var _ ports.SignatureVerifier = (*EthereumVerifier)(nil)

// EthereumVerifier checks personal-sign signatures from EVM-compatible
// wallets by recovering the signing key and comparing it to the address the
// wallet reported. Used in hardened mode; the default deployment trusts the
// wallet-reported key.
type EthereumVerifier struct{}

// NewEthereumVerifier creates a verifier for personal-sign signatures.
func NewEthereumVerifier() *EthereumVerifier {
	return &EthereumVerifier{}
}

// Verify recovers the signer of pkg.Message and checks it matches pkg.Key.
func (EthereumVerifier) Verify(pkg *core.SignaturePackage) error {
	sig, err := hexutil.Decode(pkg.Signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature encoding: %v", core.ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature must be %d bytes, got %d", core.ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}

	// Wallets return V as 27/28; recovery expects 0/1.
	recovery := make([]byte, len(sig))
	copy(recovery, sig)
	if recovery[crypto.RecoveryIDOffset] >= 27 {
		recovery[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(pkg.Message))
	pubKey, err := crypto.SigToPub(hash, recovery)
	if err != nil {
		return fmt.Errorf("%w: key recovery failed: %v", core.ErrInvalidSignature, err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	if !strings.EqualFold(recovered.Hex(), pkg.Key) {
		return fmt.Errorf("%w: recovered signer %s does not match %s", core.ErrInvalidSignature, recovered.Hex(), pkg.Key)
	}
	return nil
}
