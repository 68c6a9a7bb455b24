// Package keysource loads the key that seals vault item fields.
package keysource

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/and161185/passbox/internal/crypto/cipherbox"
)

// Source selects where the cipher key comes from.
type Source string

const (
	SourceConfig    Source = "config"
	SourceKeyring   Source = "keyring"
	SourceEphemeral Source = "ephemeral"
)

const (
	keyringService = "passbox"
	keyringUser    = "cipher-key"
)

// Load returns a cipherbox.KeyLen key from src.
// For SourceConfig, encoded holds the base64 key. SourceKeyring generates and
// stores a key on first use.
func Load(src Source, encoded string, log *zap.Logger) ([]byte, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch src {
	case SourceConfig:
		if encoded == "" {
			return nil, errors.New("cipher key is not configured")
		}
		return decode(encoded)
	case SourceKeyring:
		return fromKeyring(log)
	case SourceEphemeral:
		log.Warn("using ephemeral cipher key; stored items cannot be opened after restart")
		return cipherbox.GenerateKey()
	}
	return nil, fmt.Errorf("unknown key source %q", src)
}

func decode(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("cipher key: %w", err)
	}
	if len(key) != cipherbox.KeyLen {
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d", cipherbox.KeyLen, len(key))
	}
	return key, nil
}

func fromKeyring(log *zap.Logger) ([]byte, error) {
	stored, err := keyring.Get(keyringService, keyringUser)
	if err == nil {
		return decode(stored)
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("keyring: %w", err)
	}
	key, err := cipherbox.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := keyring.Set(keyringService, keyringUser, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("keyring: %w", err)
	}
	log.Info("generated cipher key and stored it in the OS keyring")
	return key, nil
}
