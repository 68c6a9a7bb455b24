// Package cipherbox encrypts individual text fields with XChaCha20-Poly1305.
//
// Ciphertext is base64(nonce || sealed). The key is owned by the caller; losing it
// makes every stored ciphertext unrecoverable.
package cipherbox

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/and161185/passbox/internal/errs"
)

// KeyLen is the required key size in bytes.
const KeyLen = chacha20poly1305.KeySize

// Box encrypts and decrypts text fields with a fixed key.
type Box struct {
	aead cipher.AEAD
}

// New constructs a Box for a 32-byte key.
func New(key []byte) (*Box, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("cipherbox: key must be %d bytes, got %d", KeyLen, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead}, nil
}

// GenerateKey returns a fresh random key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext under a random nonce and returns base64 text.
func (b *Box) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(plaintext)+b.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Malformed or tampered input yields errs.ErrDecode.
func (b *Box) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("cipherbox: base64: %w", errs.ErrDecode)
	}
	if len(raw) < chacha20poly1305.NonceSizeX+b.aead.Overhead() {
		return "", fmt.Errorf("cipherbox: ciphertext too short: %w", errs.ErrDecode)
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	pt, err := b.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("cipherbox: open: %w", errs.ErrDecode)
	}
	return string(pt), nil
}
