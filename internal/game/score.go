package game

// Score compares a guess against a secret.
//
// Bulls are exact positional matches. The cow count is the multiset
// overlap of digits, sum over d of min(count in secret, count in guess),
// minus the bulls. Cow positions come from a two-pass scan:
//
// Pass 1:
//   - Record bull positions.
//   - Count the secret digits left over at non-bull positions.
//
// Pass 2:
//   - For each non-bull guess digit, left to right: if an unmatched
//     occurrence remains, it is a cow position and the count is consumed.
//
// The second pass yields exactly Cows positions even when the guess repeats
// a digit. Both inputs must already be 4-digit codes.
func Score(secret Secret, guess Guess) Feedback {
	fb := Feedback{BullPositions: []int{}, CowPositions: []int{}}

	var remaining [10]int
	for i := 0; i < CodeLength; i++ {
		if secret[i] == guess[i] {
			fb.BullPositions = append(fb.BullPositions, i+1)
		} else {
			remaining[secret[i]-'0']++
		}
	}
	fb.Bulls = len(fb.BullPositions)

	var inSecret, inGuess [10]int
	for i := 0; i < CodeLength; i++ {
		inSecret[secret[i]-'0']++
		inGuess[guess[i]-'0']++
	}
	overlap := 0
	for d := 0; d < 10; d++ {
		overlap += min(inSecret[d], inGuess[d])
	}
	fb.Cows = overlap - fb.Bulls

	for i := 0; i < CodeLength; i++ {
		if secret[i] == guess[i] {
			continue
		}
		if d := guess[i] - '0'; remaining[d] > 0 {
			fb.CowPositions = append(fb.CowPositions, i+1)
			remaining[d]--
		}
	}
	return fb
}
