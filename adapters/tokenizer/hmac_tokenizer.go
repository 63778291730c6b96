package tokenizer

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
)

const audienceSession = "user:session"

// HMACTokenizer implements the SessionTokenizer interface with HS256 JWTs.
// Verification is a pure function of the token bytes and the server-held
// secret; there is no session table behind it.
type HMACTokenizer struct {
	secret []byte
}

// NewHMACTokenizer creates a tokenizer over the given signing secret.
func NewHMACTokenizer(secret []byte) ports.SessionTokenizer {
	return &HMACTokenizer{secret: secret}
}

// Issue converts a session to a signed token.
func (t *HMACTokenizer) Issue(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Address,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			Audience:  jwt.ClaimStrings{audienceSession},
		},
		UserID: session.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the session it carries.
// Expired, tampered or foreign tokens all map to core.ErrSessionInvalid.
func (t *HMACTokenizer) Verify(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithAudience(audienceSession))

	if err != nil || !token.Valid {
		return nil, core.ErrSessionInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrSessionInvalid
	}

	return &core.Session{
		UserID:    claims.UserID,
		Address:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
