package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardex-labs/cardex/core"
	"github.com/cardex-labs/cardex/replay"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeDirectory, *fakeTokenizer, *fakeEvents) {
	t.Helper()
	directory := newFakeDirectory()
	tokenizer := newFakeTokenizer()
	events := &fakeEvents{}
	guard := replay.NewGuard(zap.NewNop())
	return NewAuthService(guard, directory, tokenizer, events, zap.NewNop()), directory, tokenizer, events
}

func signedPackage(challenge *core.Challenge, signature string) *core.SignaturePackage {
	return &core.SignaturePackage{
		Signature: signature,
		Key:       challenge.Address,
		Message:   challenge.Message,
	}
}

func TestBeginChallengeMessageShape(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	challenge, err := svc.BeginChallenge("addr1qxyz")
	require.NoError(t, err)

	assert.Len(t, challenge.Nonce, 32, "16 random bytes, hex-encoded")

	lines := strings.Split(challenge.Message, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Sign this message to login to the app.", lines[0])
	assert.Equal(t, "Nonce: "+challenge.Nonce, lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Timestamp: "))
	assert.Equal(t, "Address: addr1qxyz", lines[3])
}

func TestBeginChallengeNoncesAreUnique(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	a, err := svc.BeginChallenge("addr")
	require.NoError(t, err)
	b, err := svc.BeginChallenge("addr")
	require.NoError(t, err)
	assert.NotEqual(t, a.Nonce, b.Nonce)
}

func TestVerifySignatureHappyPath(t *testing.T) {
	svc, directory, _, events := newTestAuthService(t)
	ctx := context.Background()

	challenge, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)

	session, token, err := svc.VerifySignature(ctx, challenge.Message, signedPackage(challenge, "sig-a"))
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, token)
	assert.Equal(t, "addr1", session.Address)
	assert.Equal(t, 1, directory.created)
	assert.Equal(t, 1, events.logins)

	// CheckAuth accepts the issued token.
	principal := svc.CheckAuth(token)
	require.NotNil(t, principal)
	assert.Equal(t, session.UserID, principal.UserID)
}

func TestVerifySignatureMessageMismatch(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	challenge, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)

	pkg := signedPackage(challenge, "sig-a")
	pkg.Message = challenge.Message + " tampered"

	_, _, err = svc.VerifySignature(context.Background(), challenge.Message, pkg)
	assert.ErrorIs(t, err, core.ErrMessageMismatch)
}

func TestVerifySignatureReplayRejected(t *testing.T) {
	svc, directory, _, _ := newTestAuthService(t)
	ctx := context.Background()

	challenge, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)
	pkg := signedPackage(challenge, "sig-once")

	_, _, err = svc.VerifySignature(ctx, challenge.Message, pkg)
	require.NoError(t, err)

	_, _, err = svc.VerifySignature(ctx, challenge.Message, pkg)
	assert.ErrorIs(t, err, core.ErrSignatureReused)
	assert.Equal(t, 1, directory.created, "replayed signature must not touch the directory")
}

func TestVerifySignatureExistingAccountReused(t *testing.T) {
	svc, directory, _, _ := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)
	s1, _, err := svc.VerifySignature(ctx, first.Message, signedPackage(first, "sig-1"))
	require.NoError(t, err)

	second, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)
	s2, _, err := svc.VerifySignature(ctx, second.Message, signedPackage(second, "sig-2"))
	require.NoError(t, err)

	assert.Equal(t, s1.UserID, s2.UserID)
	assert.Equal(t, 1, directory.created)
}

type rejectingVerifier struct{}

func (rejectingVerifier) Verify(pkg *core.SignaturePackage) error {
	return fmt.Errorf("recovered key does not match %s", pkg.Key)
}

func TestVerifySignatureHardenedMode(t *testing.T) {
	directory := newFakeDirectory()
	guard := replay.NewGuard(zap.NewNop())
	svc := NewAuthService(guard, directory, newFakeTokenizer(), &fakeEvents{}, zap.NewNop(),
		WithSignatureVerifier(rejectingVerifier{}))

	challenge, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)

	_, _, err = svc.VerifySignature(context.Background(), challenge.Message, signedPackage(challenge, "sig"))
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
	assert.Equal(t, 0, directory.created)
}

func TestCheckAuthRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	assert.Nil(t, svc.CheckAuth(""))
	assert.Nil(t, svc.CheckAuth("not-a-token"))
}

func TestSilentReauthenticateKnownAddress(t *testing.T) {
	svc, _, _, events := newTestAuthService(t)
	ctx := context.Background()

	// Authenticate once so the account row exists.
	challenge, err := svc.BeginChallenge("addr1")
	require.NoError(t, err)
	_, _, err = svc.VerifySignature(ctx, challenge.Message, signedPackage(challenge, "sig-1"))
	require.NoError(t, err)

	session, token, err := svc.SilentReauthenticate(ctx, "addr1")
	require.NoError(t, err)
	require.NotNil(t, session, "known address gets a session without a challenge")
	assert.NotEmpty(t, token)
	assert.Equal(t, 2, events.logins)
}

func TestSilentReauthenticateUnknownAddress(t *testing.T) {
	svc, directory, _, _ := newTestAuthService(t)

	session, token, err := svc.SilentReauthenticate(context.Background(), "addr-unknown")
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Empty(t, token)
	assert.Equal(t, 0, directory.created, "silent re-auth must never create accounts")
}

func TestSignOutPublishesLogout(t *testing.T) {
	svc, _, _, events := newTestAuthService(t)

	svc.SignOut(context.Background(), &core.Session{UserID: "acct-1", Address: "addr1"})
	assert.Equal(t, 1, events.logouts)

	svc.SignOut(context.Background(), nil)
	assert.Equal(t, 1, events.logouts)
}
