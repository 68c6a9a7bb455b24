// Package passcode generates random passwords and PINs.
package passcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/and161185/passbox/internal/errs"
)

// Character sets and length bounds.
const (
	charsetLowercase = "abcdefghijklmnopqrstuvwxyz"
	charsetUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetDigits    = "0123456789"
	charsetSymbols   = "~`!@#$%^&*()-=_+[{]};:',<.>/?"

	PasswordCharset = charsetLowercase + charsetUppercase + charsetDigits + charsetSymbols
	PINCharset      = charsetDigits

	MinLength = 1
	MaxLength = 30

	// DefaultPasswordLength is used when a LoginInfo is saved without a password.
	DefaultPasswordLength = 16
)

// Generator produces passcodes of an exact length.
type Generator interface {
	// Password returns a string drawn from PasswordCharset.
	Password(length int) (string, error)
	// PIN returns a string of decimal digits.
	PIN(length int) (string, error)
}

// Random draws every character independently from crypto/rand.
type Random struct{}

// NewRandom returns the default Generator.
func NewRandom() Random { return Random{} }

// Password implements Generator.
func (Random) Password(length int) (string, error) {
	return generate(PasswordCharset, length)
}

// PIN implements Generator.
func (Random) PIN(length int) (string, error) {
	return generate(PINCharset, length)
}

// ParseLength validates a user-supplied length string.
func ParseLength(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("length is empty: %w", errs.ErrInvalidPasscodeLength)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("length %q is not a number: %w", s, errs.ErrInvalidPasscodeLength)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("length %q: %w", s, errs.ErrInvalidPasscodeLength)
	}
	if err := CheckLength(n); err != nil {
		return 0, err
	}
	return n, nil
}

// CheckLength enforces MinLength..MaxLength inclusive.
func CheckLength(n int) error {
	if n < MinLength || n > MaxLength {
		return fmt.Errorf("length must be between %d and %d, got %d: %w",
			MinLength, MaxLength, n, errs.ErrInvalidPasscodeLength)
	}
	return nil
}

func generate(charset string, length int) (string, error) {
	if err := CheckLength(length); err != nil {
		return "", err
	}
	charsetLen := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}
