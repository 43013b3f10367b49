package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndVerify(t *testing.T) {
	tok, err := Issue(Claims{"authenticated": true}, testSecret, time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, ok := Verify(tok, testSecret)
	require.True(t, ok)
	assert.Equal(t, true, claims["authenticated"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := Issue(Claims{"authenticated": true}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, ok := Verify(tok, "other-secret")
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestVerifyTamperedPayload(t *testing.T) {
	tok, err := Issue(Claims{"role": "viewer"}, testSecret, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	parts[1] = encoding.EncodeToString([]byte(`{"role":"admin","exp":99999999999}`))
	tampered := strings.Join(parts, ".")

	_, ok := Verify(tampered, testSecret)
	assert.False(t, ok)
}

func TestVerifyWrongPartCount(t *testing.T) {
	for _, tok := range []string{"", "one", "one.two", "one.two.three.four"} {
		_, ok := Verify(tok, testSecret)
		assert.False(t, ok, "token %q should not verify", tok)
	}
}

func TestVerifyGarbageParts(t *testing.T) {
	_, ok := Verify("!!.!!.!!", testSecret)
	assert.False(t, ok)
}

func TestZeroTTLIsAlreadyExpired(t *testing.T) {
	tok, err := Issue(Claims{"authenticated": true}, testSecret, 0)
	require.NoError(t, err)

	_, ok := Verify(tok, testSecret)
	assert.False(t, ok)
}

func TestExpiryBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok, err := issueAt(Claims{}, testSecret, time.Minute, now)
	require.NoError(t, err)

	_, ok := verifyAt(tok, testSecret, now.Add(30*time.Second))
	assert.True(t, ok)

	// exp at or before now is invalid
	_, ok = verifyAt(tok, testSecret, now.Add(time.Minute))
	assert.False(t, ok)

	_, ok = verifyAt(tok, testSecret, now.Add(2*time.Minute))
	assert.False(t, ok)
}
