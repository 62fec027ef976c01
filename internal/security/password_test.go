package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/api/internal/security"
)

var fastParams = security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	hasher := security.NewArgon2Hasher(fastParams)

	digest, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$t=1,m=1024,p=1$"))

	assert.True(t, hasher.Verify("correct horse", digest))
	assert.False(t, hasher.Verify("wrong horse", digest))
}

func TestArgon2Hasher_SaltsEachHash(t *testing.T) {
	hasher := security.NewArgon2Hasher(fastParams)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same-password", first))
	assert.True(t, hasher.Verify("same-password", second))
}

func TestArgon2Hasher_EmptyPassword(t *testing.T) {
	_, err := security.NewArgon2Hasher(fastParams).Hash("")
	assert.ErrorIs(t, err, security.ErrEmptyPassword)
}

func TestArgon2Hasher_VerifyMalformedDigest(t *testing.T) {
	hasher := security.NewArgon2Hasher(fastParams)

	for _, digest := range []string{
		"",
		"plaintext",
		"$2a$10$bcryptlookingvalue",
		"$argon2id$v=19$t=1,m=1024,p=1$!!notbase64$AAAA",
		"$argon2id$v=19$t=1,m=1024,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=18$t=1,m=1024,p=1$c2FsdA$aGFzaA",
		"$argon2i$v=19$t=1,m=1024,p=1$c2FsdA$aGFzaA",
	} {
		assert.False(t, hasher.Verify("anything", digest), digest)
	}
}
