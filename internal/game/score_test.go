package game

import (
	"fmt"
	"reflect"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		secret, guess string
		bulls, cows   int
		bullPos       []int
		cowPos        []int
	}{
		{"two bulls two cows", "1234", "1243", 2, 2, []int{1, 2}, []int{3, 4}},
		{"all cows", "0123", "3210", 0, 4, []int{}, []int{1, 2, 3, 4}},
		{"exact", "5678", "5678", 4, 0, []int{1, 2, 3, 4}, []int{}},
		{"nothing", "1234", "5678", 0, 0, []int{}, []int{}},
		{"repeated guess digit on a bull", "1234", "1111", 1, 0, []int{1}, []int{}},
		{"repeated guess digit as cow", "1234", "2222", 1, 0, []int{2}, []int{}},
		{"repeated digit off position", "1234", "5511", 0, 1, []int{}, []int{3}},
		{"single cow", "1234", "4999", 0, 1, []int{}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := Score(Secret(tt.secret), Guess(tt.guess))
			if fb.Bulls != tt.bulls || fb.Cows != tt.cows {
				t.Fatalf("Score(%s, %s) = %d bulls, %d cows; want %d, %d",
					tt.secret, tt.guess, fb.Bulls, fb.Cows, tt.bulls, tt.cows)
			}
			if !reflect.DeepEqual(fb.BullPositions, tt.bullPos) {
				t.Errorf("BullPositions = %v, want %v", fb.BullPositions, tt.bullPos)
			}
			if !reflect.DeepEqual(fb.CowPositions, tt.cowPos) {
				t.Errorf("CowPositions = %v, want %v", fb.CowPositions, tt.cowPos)
			}
		})
	}
}

// Every valid secret against a sample of guesses, and a sample of secrets
// against every guess, checking the count invariants.
func TestScoreInvariants(t *testing.T) {
	secrets := []Secret{"0123", "1234", "9876", "5038", "4710"}
	for _, sec := range secrets {
		for n := 0; n < 10000; n++ {
			g := Guess(fmt.Sprintf("%04d", n))
			fb := Score(sec, g)
			if fb.Bulls < 0 || fb.Bulls > 4 || fb.Cows < 0 || fb.Cows > 4 {
				t.Fatalf("Score(%s, %s) out of range: %+v", sec, g, fb)
			}
			if fb.Bulls+fb.Cows > 4 {
				t.Fatalf("Score(%s, %s) bulls+cows > 4: %+v", sec, g, fb)
			}
			if fb.Bulls != len(fb.BullPositions) || fb.Cows != len(fb.CowPositions) {
				t.Fatalf("Score(%s, %s) counts disagree with positions: %+v", sec, g, fb)
			}
			if (fb.Bulls == 4) != (string(g) == string(sec)) {
				t.Fatalf("Score(%s, %s) bulls == 4 mismatch: %+v", sec, g, fb)
			}
		}
	}
}

// For guesses without repeated digits, cow positions are exactly the
// positions whose digit is in the secret but not at that spot.
func TestScoreCowPositionsUniqueGuess(t *testing.T) {
	sec := Secret("2580")
	for n := 0; n < 10000; n++ {
		g := fmt.Sprintf("%04d", n)
		if !ValidSecret(g) {
			continue
		}
		var want []int
		for i := 0; i < 4; i++ {
			if g[i] != sec[i] && containsByte(string(sec), g[i]) {
				want = append(want, i+1)
			}
		}
		got := Score(sec, Guess(g)).CowPositions
		if len(got) != len(want) {
			t.Fatalf("Score(%s, %s).CowPositions = %v, want %v", sec, g, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("Score(%s, %s).CowPositions = %v, want %v", sec, g, got, want)
			}
		}
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func TestFeedbackString(t *testing.T) {
	fb := Score("1234", "1243")
	want := "Bulls: 2 (positions: [1, 2]), Cows: 2 (positions: [3, 4])"
	if got := fb.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
