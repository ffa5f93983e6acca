package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "argon2id$v=19$m=65536,t=1,p=4$"))

	assert.NoError(t, VerifyPassword(encoded, "correct-horse"))
	assert.ErrorIs(t, VerifyPassword(encoded, "battery-staple"), ErrPasswordMismatch)
	assert.False(t, NeedsRehash(encoded))

	again, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again, "salt must differ between hashes")
}

func TestVerifyPasswordMalformed(t *testing.T) {
	valid, err := HashPassword("pw-12345")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	cases := map[string]string{
		"empty":         "",
		"bcrypt":        "$2a$10$abcdefghijklmnopqrstuv",
		"wrong version": strings.Join([]string{parts[0], "v=16", parts[2], parts[3], parts[4]}, "$"),
		"zero threads":  strings.Join([]string{parts[0], parts[1], "m=65536,t=1,p=0", parts[3], parts[4]}, "$"),
		"huge memory":   strings.Join([]string{parts[0], parts[1], "m=4194304,t=1,p=4", parts[3], parts[4]}, "$"),
		"bad salt":      strings.Join([]string{parts[0], parts[1], parts[2], "!!!", parts[4]}, "$"),
		"empty key":     strings.Join([]string{parts[0], parts[1], parts[2], parts[3], ""}, "$"),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, VerifyPassword(encoded, "pw-12345"), ErrMalformedHash)
			assert.True(t, NeedsRehash(encoded))
		})
	}
}

func TestNeedsRehashWeakerParams(t *testing.T) {
	weak := PasswordParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}
	encoded, err := weak.Hash("pw-12345")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(encoded, "pw-12345"))
	assert.True(t, NeedsRehash(encoded))
}
