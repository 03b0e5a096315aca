package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", 30*time.Minute, 7*24*time.Hour)
}

func TestIssueAndDecodeAccessToken(t *testing.T) {
	mgr := newTestManager()
	subject := uuid.New()

	token, err := mgr.Issue(subject, TokenKindAccess, map[string]any{"email": "reader@example.com"})
	require.NoError(t, err)

	claims, err := mgr.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, TokenKindAccess, claims.Kind)
	assert.Equal(t, "reader@example.com", claims.Extra["email"])
	assert.NoError(t, RequireKind(claims, TokenKindAccess))
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.Expiry, 5*time.Second)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	mgr := newTestManager()
	subject := uuid.New()

	access, refresh, err := mgr.IssuePair(subject, "reader@example.com")
	require.NoError(t, err)

	accessClaims, err := mgr.Decode(access)
	require.NoError(t, err)
	refreshClaims, err := mgr.Decode(refresh)
	require.NoError(t, err)

	assert.ErrorIs(t, RequireKind(accessClaims, TokenKindRefresh), ErrWrongTokenKind)
	assert.ErrorIs(t, RequireKind(refreshClaims, TokenKindAccess), ErrWrongTokenKind)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	mgr := NewTokenManager("test-secret", -time.Minute, -time.Minute)

	token, err := mgr.Issue(uuid.New(), TokenKindAccess, nil)
	require.NoError(t, err)

	_, err = mgr.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("other-secret", time.Minute, time.Minute).
		Issue(uuid.New(), TokenKindAccess, nil)
	require.NoError(t, err)

	_, err = newTestManager().Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	mgr := newTestManager()
	for _, input := range []string{"", "not.a.jwt", "a.b.c"} {
		_, err := mgr.Decode(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword("s3cret-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
	assert.False(t, CheckPassword("s3cret-password", "not-a-bcrypt-hash"))
}

func TestRandomPasswordIsUnique(t *testing.T) {
	assert.NotEqual(t, RandomPassword(), RandomPassword())
}

func TestRequireVerifiedEmail(t *testing.T) {
	assert.ErrorIs(t, RequireVerifiedEmail(&GoogleClaims{}), ErrMissingEmailClaim)
	assert.ErrorIs(t,
		RequireVerifiedEmail(&GoogleClaims{Email: "a@b.com"}), ErrUnverifiedEmail)
	assert.NoError(t,
		RequireVerifiedEmail(&GoogleClaims{Email: "a@b.com", EmailVerified: true}))
}
