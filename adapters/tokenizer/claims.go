package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the account identifier.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}
