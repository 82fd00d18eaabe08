// Package session resolves the credentials used for one request and protects
// the secrets stored in user profiles.
package session

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// KeySize is the required length of the encryption key in bytes (AES-256).
const KeySize = 32

var errMalformed = errors.New("malformed ciphertext")

// Cipher encrypts profile secrets with AES-256-CBC. Encoded values have the
// form hex(iv):hex(ciphertext).
type Cipher struct {
	block  cipher.Block
	logger *slog.Logger
}

// NewCipher creates a Cipher from a 32 byte key.
func NewCipher(key []byte, logger *slog.Logger) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Cipher{block: block, logger: logger}, nil
}

// Encrypt returns the encoded ciphertext of plain. An empty input stays empty.
func (c *Cipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}
	padded := pad([]byte(plain))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Malformed or tampered input yields an empty string.
func (c *Cipher) Decrypt(encoded string) string {
	if encoded == "" {
		return ""
	}
	plain, err := c.decrypt(encoded)
	if err != nil {
		c.logger.Warn("failed to decrypt stored secret", "error", err)
		return ""
	}
	return plain
}

func (c *Cipher) decrypt(encoded string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return "", errMalformed
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", errMalformed
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errMalformed
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ct)
	plain, err := unpad(out)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// pad applies PKCS#7 padding.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errMalformed
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errMalformed
		}
	}
	return b[:len(b)-n], nil
}
