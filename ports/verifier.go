package ports

import "github.com/cardex-labs/cardex/core"

// SignatureVerifier cryptographically checks that a signature package was
// produced over the challenge message by the key controlling the address.
// The default deployment does not verify signatures at all; implementations
// of this port are opt-in hardening behind configuration.
type SignatureVerifier interface {
	Verify(pkg *core.SignaturePackage) error
}
