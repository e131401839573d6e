// Package otp generates numeric one-time codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Length is the number of digits in a generated code.
const Length = 6

// Pattern matches a well-formed code.
var Pattern = regexp.MustCompile(`^[0-9]{6}$`)

var space = big.NewInt(1_000_000)

// New returns a zero-padded 6-digit code drawn uniformly from crypto/rand.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, space)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Valid reports whether code has the generated format.
func Valid(code string) bool {
	return Pattern.MatchString(code)
}
