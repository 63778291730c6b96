package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/ports"
	"github.com/cardex-labs/cardex/replay"
)

const (
	// SessionExpiry is the fixed session lifetime, applied uniformly to the
	// token expiry and the cookie Max-Age.
	SessionExpiry = 24 * time.Hour

	// SignatureTTL is how long a consumed login signature stays blocked in
	// the replay guard.
	SignatureTTL = 5 * time.Minute

	challengeTemplate = "Sign this message to login to the app.\nNonce: %s\nTimestamp: %d\nAddress: %s"
)

// AuthService handles wallet-signature authentication: challenge issuance,
// verification, session issuance and silent re-authentication.
type AuthService struct {
	guard     *replay.Guard
	directory ports.AccountDirectory
	tokenizer ports.SessionTokenizer
	eventPub  ports.EventPublisher
	verifier  ports.SignatureVerifier
	logger    *zap.Logger

	sessionTTL   time.Duration
	signatureTTL time.Duration
	now          func() time.Time
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithSignatureVerifier turns on cryptographic verification of the signature
// package. Without it, only string-level message matching and single-use
// enforcement gate a login. Enabling this is a hardening decision, not the
// default.
func WithSignatureVerifier(v ports.SignatureVerifier) AuthOption {
	return func(s *AuthService) { s.verifier = v }
}

// WithAuthClock overrides the time source.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	guard *replay.Guard,
	directory ports.AccountDirectory,
	tokenizer ports.SessionTokenizer,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		guard:        guard,
		directory:    directory,
		tokenizer:    tokenizer,
		eventPub:     eventPub,
		logger:       logger,
		sessionTTL:   SessionExpiry,
		signatureTTL: SignatureTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginChallenge composes the message a wallet must sign to authenticate.
// The nonce is 16 cryptographically random bytes, hex-encoded.
func (s *AuthService) BeginChallenge(address string) (*core.Challenge, error) {
	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)

	now := s.now()
	return &core.Challenge{
		Address:  address,
		Nonce:    nonce,
		IssuedAt: now,
		Message:  fmt.Sprintf(challengeTemplate, nonce, now.UnixMilli(), address),
	}, nil
}

// VerifySignature checks a signed challenge and, on success, creates or
// fetches the account and issues a session token.
//
// Without a configured verifier this does not prove the signature was
// produced by the key controlling the address; it enforces exact message
// matching and single use of the signature value only.
func (s *AuthService) VerifySignature(ctx context.Context, message string, pkg *core.SignaturePackage) (*core.Session, string, error) {
	if pkg.Message != message {
		return nil, "", core.ErrMessageMismatch
	}

	if !s.guard.Admit(pkg.Signature, pkg.Key, s.signatureTTL) {
		return nil, "", core.ErrSignatureReused
	}

	if s.verifier != nil {
		if err := s.verifier.Verify(pkg); err != nil {
			return nil, "", fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
		}
	}

	account, err := s.directory.CreateOrGet(ctx, pkg.Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create or get account: %w", err)
	}

	session, token, err := s.issueSession(account.ID, pkg.Key)
	if err != nil {
		return nil, "", err
	}

	if err := s.eventPub.PublishLogin(ctx, account.ID, pkg.Key); err != nil {
		// The session is already issued; event delivery is best-effort.
		s.logger.Warn("failed to publish login event", zap.Error(err))
	}

	return session, token, nil
}

// CheckAuth verifies a session token. Any failure yields a nil principal
// rather than an error, driving the caller back to the sign-in state.
func (s *AuthService) CheckAuth(token string) *core.Session {
	if token == "" {
		return nil
	}
	session, err := s.tokenizer.Verify(token)
	if err != nil {
		return nil
	}
	return session
}

// SilentReauthenticate issues a fresh session for an address that already
// has an account, without a new signature challenge.
//
// This trusts the wallet-reported address once any prior account row exists.
// It is a deliberate trade-off, not an oversight: the signature ceremony is
// skipped entirely on this path.
func (s *AuthService) SilentReauthenticate(ctx context.Context, address string) (*core.Session, string, error) {
	exists, err := s.directory.Exists(ctx, address)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return nil, "", nil
	}

	// The account exists, so this fetches rather than creates.
	account, err := s.directory.CreateOrGet(ctx, address)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch account: %w", err)
	}

	session, token, err := s.issueSession(account.ID, address)
	if err != nil {
		return nil, "", err
	}
	if err := s.eventPub.PublishLogin(ctx, account.ID, address); err != nil {
		s.logger.Warn("failed to publish login event", zap.Error(err))
	}
	return session, token, nil
}

// SignOut publishes a logout event. The cookie deletion happens at the
// transport; there is no server-side revocation list, so an already issued
// token stays structurally valid until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, session *core.Session) {
	if session == nil {
		return
	}
	if err := s.eventPub.PublishLogout(ctx, session.UserID, session.Address); err != nil {
		s.logger.Warn("failed to publish logout event", zap.Error(err))
	}
}

// SessionTTL returns the fixed session lifetime, for the cookie Max-Age.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) issueSession(userID, address string) (*core.Session, string, error) {
	now := s.now()
	session := &core.Session{
		UserID:    userID,
		Address:   address,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.Issue(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return session, token, nil
}
