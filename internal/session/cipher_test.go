package session

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher([]byte(testKey), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return c
}

func TestNewCipher_RejectsShortKey(t *testing.T) {
	_, err := NewCipher([]byte("short"), slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	for _, plain := range []string{"ghp_abc", "exactly-16-bytes", strings.Repeat("k", 100)} {
		enc, err := c.Encrypt(plain)
		require.NoError(t, err)

		iv, ct, ok := strings.Cut(enc, ":")
		require.True(t, ok)
		assert.Len(t, iv, 32)
		assert.Zero(t, len(ct)%32)
		assert.Equal(t, plain, c.Decrypt(enc))
	}
}

func TestCipher_FreshIVPerCall(t *testing.T) {
	c := newTestCipher(t)
	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipher_DecryptMalformedIsEmpty(t *testing.T) {
	c := newTestCipher(t)
	valid, err := c.Encrypt("secret")
	require.NoError(t, err)
	iv, _, _ := strings.Cut(valid, ":")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no separator", "abcdef"},
		{"bad hex", "zz:zz"},
		{"short iv", "abcd:" + strings.Repeat("00", 16)},
		{"partial block", iv + ":" + strings.Repeat("00", 5)},
		{"bad padding", badPadding(t, c)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, c.Decrypt(tt.input))
		})
	}

	_, err = c.Encrypt("")
	require.NoError(t, err)
}

// badPadding encrypts a zero block, whose final byte is not valid PKCS#7 padding.
func badPadding(t *testing.T, c *Cipher) string {
	t.Helper()
	iv := make([]byte, aes.BlockSize)
	ct := make([]byte, aes.BlockSize)
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ct, make([]byte, aes.BlockSize))
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct)
}
