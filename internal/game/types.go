// internal/game/types.go
//
// Core type definitions for the Cows & Bulls engine.
// Defines:
//   - Slot: which of the two players something belongs to.
//   - Phase: the coarse state of a game (awaiting secrets, in play, over).
//   - Secret / Guess: validated 4-digit codes.
//   - Feedback: bulls/cows counts plus the positions behind them.
//   - HistoryEntry / Outcome: what a guess produced.

package game

import (
	"errors"
	"fmt"
	"strings"
)

// CodeLength is the number of digits in every secret and guess.
const CodeLength = 4

// Errors returned by engine operations. Every error the engine produces
// wraps exactly one of these; classify with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrIllegalState = errors.New("illegal state")
)

// Slot identifies player 1 or player 2.
type Slot int

const (
	NoSlot  Slot = 0
	Player1 Slot = 1
	Player2 Slot = 2
)

// Valid reports whether s names one of the two players.
func (s Slot) Valid() bool { return s == Player1 || s == Player2 }

// Opponent returns the other player's slot.
func (s Slot) Opponent() Slot {
	if s == Player1 {
		return Player2
	}
	return Player1
}

func (s Slot) String() string {
	switch s {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	}
	return "none"
}

// index maps a valid slot to 0 or 1 for array-backed per-player state.
func (s Slot) index() int { return int(s) - 1 }

// Phase is the state machine position of a game.
type Phase int

const (
	AwaitingSecrets Phase = iota
	InPlay
	GameOver
)

func (p Phase) String() string {
	switch p {
	case AwaitingSecrets:
		return "awaiting_secrets"
	case InPlay:
		return "in_play"
	case GameOver:
		return "game_over"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Secret is a code of 4 pairwise distinct ASCII digits.
// Only ParseSecret produces one, so a non-empty Secret is always valid.
type Secret string

// Guess is a code of 4 ASCII digits; digits may repeat.
type Guess string

// Feedback is the result of scoring a guess against a secret.
// Positions are 1-based and ascending.
type Feedback struct {
	Bulls         int   `json:"bulls"`
	Cows          int   `json:"cows"`
	BullPositions []int `json:"bullPositions"`
	CowPositions  []int `json:"cowPositions"`
}

// Solved reports whether every digit was a bull.
func (f Feedback) Solved() bool { return f.Bulls == CodeLength }

// String renders feedback the way the terminal history shows it.
func (f Feedback) String() string {
	return fmt.Sprintf("Bulls: %d (positions: %s), Cows: %d (positions: %s)",
		f.Bulls, positions(f.BullPositions), f.Cows, positions(f.CowPositions))
}

func positions(ps []int) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// HistoryEntry records one guess and its feedback.
type HistoryEntry struct {
	Guess    Guess    `json:"guess"`
	Feedback Feedback `json:"feedback"`
}

// Outcome is returned by a successful SubmitGuess.
type Outcome struct {
	Feedback Feedback `json:"feedback"`
	IsWin    bool     `json:"isWin"`
}
