package core

import "errors"

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrMessageMismatch        = errors.New("message mismatch")
	ErrSignatureReused        = errors.New("signature has already been used")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrUnknownAsset           = errors.New("unknown asset")
	ErrPoolNotFound           = errors.New("pool not found")
	ErrSessionInvalid         = errors.New("session is invalid or expired")
	ErrStorageFailure         = errors.New("storage failure")
	ErrNetworkFailure         = errors.New("network failure")
	ErrInvalidSlippage        = errors.New("slippage must be between 0 and 100")
	ErrInvalidAmount          = errors.New("amount must be positive")
)
