package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidSecret(t *testing.T) {
	cases := []struct {
		s  string
		ok bool
	}{
		{"1234", true},
		{"0123", true},
		{"9870", true},
		{"1123", false},
		{"0000", false},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"-123", false},
		{" 123", false},
		{"１２３４", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidSecret(tc.s); got != tc.ok {
			t.Errorf("ValidSecret(%q) = %v, want %v", tc.s, got, tc.ok)
		}
	}
}

func TestValidSecretExhaustive(t *testing.T) {
	for n := 0; n < 10000; n++ {
		s := fmt.Sprintf("%04d", n)
		distinct := map[byte]bool{}
		for i := 0; i < len(s); i++ {
			distinct[s[i]] = true
		}
		want := len(distinct) == 4
		if got := ValidSecret(s); got != want {
			t.Fatalf("ValidSecret(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseGuess(t *testing.T) {
	for _, s := range []string{"1111", "0000", "1234", "9909"} {
		if _, err := ParseGuess(s); err != nil {
			t.Errorf("ParseGuess(%q) error: %v", s, err)
		}
	}
	for _, s := range []string{"", "123", "12345", "12x4", "12 4"} {
		_, err := ParseGuess(s)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("ParseGuess(%q) err = %v, want ErrValidation", s, err)
		}
	}
}

func TestParseSecretRejectsDuplicates(t *testing.T) {
	_, err := ParseSecret("1123")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRandomSecretIsValid(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := RandomSecret()
		if !ValidSecret(string(s)) {
			t.Fatalf("RandomSecret() = %q, not a valid secret", s)
		}
	}
}
