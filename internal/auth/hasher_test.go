package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman/videotube-backend/internal/auth"
)

func TestHasher_HashAndVerify(t *testing.T) {
	hasher := auth.NewHasher()

	digest, err := hasher.Hash("p@ss1234")
	require.NoError(t, err)
	assert.NotEqual(t, "p@ss1234", digest)

	ok, err := hasher.Verify("p@ss1234", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_VerifyMismatch(t *testing.T) {
	hasher := auth.NewHasher()

	digest, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	ok, err := hasher.Verify("wrongpassword", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_VerifyCorruptDigest(t *testing.T) {
	hasher := auth.NewHasher()

	// A corrupt digest must surface as an error, never as "wrong password".
	ok, err := hasher.Verify("anything", "not-a-bcrypt-digest")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestHasher_DistinctSalts(t *testing.T) {
	hasher := auth.NewHasher()

	first, err := hasher.Hash("samepassword")
	require.NoError(t, err)
	second, err := hasher.Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
