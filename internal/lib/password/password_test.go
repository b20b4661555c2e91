package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	plains := []string{"Secr3t!", "", "пароль-с-юникодом", "a very long passphrase with spaces"}

	for _, p := range plains {
		hash, err := Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, []byte(p), hash)

		ok, err := Verify(hash, p)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify against its own hash", p)

		ok, err = Verify(hash, p+"x")
		require.NoError(t, err)
		assert.False(t, ok, "password %q must not verify with a suffix", p)
	}
}

func TestHash_Salted(t *testing.T) {
	a, err := Hash("same")
	require.NoError(t, err)

	b, err := Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_CorruptHash(t *testing.T) {
	ok, err := Verify([]byte("not-a-bcrypt-hash"), "whatever")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = Hash(strings.Repeat("a", MaxBytes))
	assert.NoError(t, err)
}
