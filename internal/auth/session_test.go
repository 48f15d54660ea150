package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Init()

	id := uuid.New().String()
	token, err := CreateIdentityToken(id)
	require.NoError(t, err)

	got, err := VerifyIdentityToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	Init()

	_, err := VerifyIdentityToken("not-a-token")
	assert.Error(t, err)
}

func TestVerifyRejectsTokenFromOtherKey(t *testing.T) {
	Init()
	token, err := CreateIdentityToken(uuid.New().String())
	require.NoError(t, err)

	// Rotating the key pair must invalidate previously issued tokens.
	Init()
	_, err = VerifyIdentityToken(token)
	assert.Error(t, err)
}
