package ports

import "github.com/cardex-labs/cardex/core"

// SessionTokenizer converts sessions to and from opaque signed tokens.
// Verification is stateless: a function of the token bytes and a server-held
// key only.
type SessionTokenizer interface {
	Issue(session *core.Session) (string, error)
	Verify(token string) (*core.Session, error)
}
