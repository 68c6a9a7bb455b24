// Package card validates payment card fields.
package card

import (
	"fmt"

	"github.com/and161185/passbox/internal/errs"
)

// MaxNumberLen is the longest accepted card number.
const MaxNumberLen = 19

// Valid reports whether digits passes the Luhn checksum.
// The caller guarantees digits is non-empty and contains only '0'-'9'.
func Valid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateNumber checks a card number: digits only, at most MaxNumberLen, Luhn-valid.
func ValidateNumber(number string) error {
	if err := ValidateDigits("card number", number); err != nil {
		return err
	}
	if number == "" {
		return fmt.Errorf("card number is empty: %w", errs.ErrInvalidArgument)
	}
	if len(number) > MaxNumberLen {
		return fmt.Errorf("card number longer than %d digits: %w", MaxNumberLen, errs.ErrInvalidArgument)
	}
	if !Valid(number) {
		return fmt.Errorf("card number fails checksum: %w", errs.ErrInvalidArgument)
	}
	return nil
}

// ValidateDigits accepts an empty value or a string of decimal digits.
func ValidateDigits(field, value string) error {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return fmt.Errorf("%s must contain digits only: %w", field, errs.ErrInvalidArgument)
		}
	}
	return nil
}
