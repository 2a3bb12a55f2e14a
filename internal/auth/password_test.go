package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_FreshSalt(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("pw1")
	require.NoError(t, err)
	second, err := HashPassword("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("pw1", first))
	assert.True(t, VerifyPassword("pw1", second))
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.False(t, VerifyPassword("battery staple", digest))
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("pw", ""))
	assert.False(t, VerifyPassword("pw", "not-a-bcrypt-hash"))
}
