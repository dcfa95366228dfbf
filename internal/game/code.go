package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ValidSecret reports whether candidate is a legal secret: exactly 4 ASCII
// digits, all distinct. It never panics on any input.
func ValidSecret(candidate string) bool {
	if !isDigits(candidate) {
		return false
	}
	var seen [10]bool
	for i := 0; i < len(candidate); i++ {
		d := candidate[i] - '0'
		if seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// ParseSecret validates candidate and returns it as a Secret.
func ParseSecret(candidate string) (Secret, error) {
	if !ValidSecret(candidate) {
		return "", fmt.Errorf("%w: secret must be %d unique digits (0-9)", ErrValidation, CodeLength)
	}
	return Secret(candidate), nil
}

// ParseGuess validates the guess format. Repeated digits are allowed.
func ParseGuess(text string) (Guess, error) {
	if !isDigits(text) {
		return "", fmt.Errorf("%w: guess must be %d digits", ErrValidation, CodeLength)
	}
	return Guess(text), nil
}

// RandomSecret returns a crypto-random valid secret.
func RandomSecret() Secret {
	digits := []byte("0123456789")
	// Partial Fisher-Yates: only the first CodeLength picks matter.
	for i := 0; i < CodeLength; i++ {
		j := i + randIntn(len(digits)-i)
		digits[i], digits[j] = digits[j], digits[i]
	}
	return Secret(digits[:CodeLength])
}

func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// isDigits checks for exactly CodeLength ASCII digits.
func isDigits(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
