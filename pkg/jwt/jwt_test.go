package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", "linkbio-test", 1)

	token, err := m.GenerateToken(42, "alice", "user")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestTokenManager_RejectsForeignToken(t *testing.T) {
	issuer := NewManager("secret-a", "linkbio-test", 1)
	verifier := NewManager("secret-b", "linkbio-test", 1)

	token, err := issuer.GenerateToken(1, "bob", "user")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewManager("secret", "linkbio-test", -1)

	token, err := m.GenerateToken(1, "carol", "user")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
