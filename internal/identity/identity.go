// Package identity validates and normalizes national identity numbers.
// A number is eleven digits: nine base digits followed by two check
// digits computed with a weighted modulo-11 scheme. The canonical
// representation is "###.###.###-##".
package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidIdentityNumber is returned when a number fails structural
// or checksum validation.
var ErrInvalidIdentityNumber = errors.New("invalid identity number")

const (
	numberLength = 11
	baseLength   = 9
)

// Validate checks raw against the checksum rules and returns the
// canonical punctuated form. It is a pure function: identical input
// always produces identical output or identical failure.
func Validate(raw string) (string, error) {
	digits := stripFormatting(raw)

	if len(digits) != numberLength {
		return "", fmt.Errorf("%w: expected %d digits, got %d", ErrInvalidIdentityNumber, numberLength, len(digits))
	}

	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: non-digit character", ErrInvalidIdentityNumber)
		}
	}

	// Sequences of a single repeated digit satisfy the checksum
	// arithmetic but are known-invalid sentinel values.
	if allSameDigit(digits) {
		return "", fmt.Errorf("%w: repeated-digit sequence", ErrInvalidIdentityNumber)
	}

	first := checkDigit(digits[:baseLength])
	second := checkDigit(digits[:baseLength+1])

	if int(digits[9]-'0') != first || int(digits[10]-'0') != second {
		return "", fmt.Errorf("%w: checksum mismatch", ErrInvalidIdentityNumber)
	}

	return Format(digits), nil
}

// IsValid reports whether raw passes validation.
func IsValid(raw string) bool {
	_, err := Validate(raw)
	return err == nil
}

// Format renders an 11-digit sequence in the canonical "###.###.###-##"
// representation. The input is assumed to be digits only.
func Format(digits string) string {
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
}

// Generate produces a random, checksum-valid identity number in
// canonical form. Intended for sample data and tests.
func Generate() string {
	for {
		var b strings.Builder
		for i := 0; i < baseLength; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(10))
			if err != nil {
				panic(err) // crypto/rand failure is not recoverable here
			}
			b.WriteByte(byte('0' + n.Int64()))
		}
		base := b.String()
		withFirst := base + string(byte('0'+checkDigit(base)))
		digits := withFirst + string(byte('0'+checkDigit(withFirst)))

		if allSameDigit(digits) {
			continue
		}
		return Format(digits)
	}
}

// checkDigit computes a weighted modulo-11 check digit over digits.
// Weights start at len(digits)+1 and decrease to 2. A remainder below
// 2 yields 0, otherwise 11 minus the remainder.
func checkDigit(digits string) int {
	sum := 0
	weight := len(digits) + 1
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weight
		weight--
	}

	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// stripFormatting removes the punctuation used by the canonical
// representation, leaving the bare digit sequence.
func stripFormatting(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		switch c {
		case '.', '-', ' ':
			continue
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// allSameDigit reports whether every character equals the first one.
func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
