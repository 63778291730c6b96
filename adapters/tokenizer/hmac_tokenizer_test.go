package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardex-labs/cardex/core"
)

func testSession(expiresIn time.Duration) *core.Session {
	now := time.Now()
	return &core.Session{
		UserID:    "acct-1",
		Address:   "addr1qxyz",
		IssuedAt:  now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	tk := NewHMACTokenizer([]byte("test-secret"))

	token, err := tk.Issue(testSession(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := tk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", session.UserID)
	assert.Equal(t, "addr1qxyz", session.Address)
}

func TestVerifyExpiredToken(t *testing.T) {
	tk := NewHMACTokenizer([]byte("test-secret"))

	token, err := tk.Issue(testSession(-time.Minute))
	require.NoError(t, err)

	_, err = tk.Verify(token)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestVerifyForeignKey(t *testing.T) {
	issuer := NewHMACTokenizer([]byte("secret-a"))
	verifier := NewHMACTokenizer([]byte("secret-b"))

	token, err := issuer.Issue(testSession(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}

func TestVerifyTamperedToken(t *testing.T) {
	tk := NewHMACTokenizer([]byte("test-secret"))

	token, err := tk.Issue(testSession(time.Hour))
	require.NoError(t, err)

	_, err = tk.Verify(token + "x")
	assert.ErrorIs(t, err, core.ErrSessionInvalid)

	_, err = tk.Verify("")
	assert.ErrorIs(t, err, core.ErrSessionInvalid)
}
