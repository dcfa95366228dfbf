// internal/game/engine.go
//
// Turn engine for a single two-player Cows & Bulls session.
// Responsibilities:
//   - Register each player's secret while the game awaits secrets.
//   - Start play once both secrets are set (player 1 moves first).
//   - Validate, score and record guesses; alternate turns.
//   - Detect the win: awaiting_secrets → in_play → game_over.
//
// Notes:
//   - The engine does no I/O and holds no locks; one caller drives it.
//   - Failed operations never change state.
//   - Reset discards the whole state and starts over.
package game

import "fmt"

// State is the complete mutable aggregate for one game.
type State struct {
	Secrets [2]Secret
	Phase   Phase
	Turn    Slot
	Winner  Slot
	History History
}

func initialState() State {
	return State{Phase: AwaitingSecrets, Turn: Player1, Winner: NoSlot}
}

// Engine owns and mutates a State.
type Engine struct {
	st State
}

// New returns an engine awaiting both secrets.
func New() *Engine {
	return &Engine{st: initialState()}
}

// SetSecret stores slot's secret. Allowed only while awaiting secrets; a
// slot may overwrite its own secret until the game starts.
func (e *Engine) SetSecret(slot Slot, candidate string) error {
	if e.st.Phase != AwaitingSecrets {
		return fmt.Errorf("%w: secrets can only be set before the game starts", ErrIllegalState)
	}
	if !slot.Valid() {
		return fmt.Errorf("%w: unknown player %d", ErrValidation, int(slot))
	}
	s, err := ParseSecret(candidate)
	if err != nil {
		return err
	}
	e.st.Secrets[slot.index()] = s
	return nil
}

// Start moves a game with both secrets set into play.
func (e *Engine) Start() error {
	if e.st.Phase != AwaitingSecrets {
		return fmt.Errorf("%w: game already started", ErrIllegalState)
	}
	if !e.SecretsSet() {
		return fmt.Errorf("%w: both secrets must be set before starting", ErrIllegalState)
	}
	e.st.Phase = InPlay
	e.st.Turn = Player1
	return nil
}

// SubmitGuess scores slot's guess against the opponent's secret.
//
// Rules:
//   - The game must be in play and it must be slot's turn.
//   - The guess must be exactly 4 digits.
//
// State transitions:
//   - 4 bulls → winner = slot, phase = game_over, turn unchanged.
//   - otherwise the turn passes to the opponent.
func (e *Engine) SubmitGuess(slot Slot, text string) (Outcome, error) {
	if e.st.Phase != InPlay {
		return Outcome{}, fmt.Errorf("%w: game is %s", ErrIllegalState, e.st.Phase)
	}
	if slot != e.st.Turn {
		return Outcome{}, fmt.Errorf("%w: it is %s's turn", ErrIllegalState, e.st.Turn)
	}
	guess, err := ParseGuess(text)
	if err != nil {
		return Outcome{}, err
	}

	fb := Score(e.st.Secrets[slot.Opponent().index()], guess)
	e.st.History.Append(slot, HistoryEntry{Guess: guess, Feedback: fb})

	if fb.Solved() {
		e.st.Winner = slot
		e.st.Phase = GameOver
		return Outcome{Feedback: copyFeedback(fb), IsWin: true}, nil
	}
	e.st.Turn = slot.Opponent()
	return Outcome{Feedback: copyFeedback(fb), IsWin: false}, nil
}

// Reset replaces the state with a fresh one. Always succeeds.
func (e *Engine) Reset() {
	e.st = initialState()
}

// Phase reports the current phase.
func (e *Engine) Phase() Phase { return e.st.Phase }

// Turn reports whose move it is.
func (e *Engine) Turn() Slot { return e.st.Turn }

// Winner returns the winning slot, if any.
func (e *Engine) Winner() (Slot, bool) {
	return e.st.Winner, e.st.Winner != NoSlot
}

// SecretSet reports whether slot has registered a secret.
func (e *Engine) SecretSet(slot Slot) bool {
	return slot.Valid() && e.st.Secrets[slot.index()] != ""
}

// SecretsSet reports whether both secrets are registered.
func (e *Engine) SecretsSet() bool {
	return e.SecretSet(Player1) && e.SecretSet(Player2)
}

// SecretsIdentical is advisory: both players chose the same code.
func (e *Engine) SecretsIdentical() bool {
	return e.SecretsSet() && e.st.Secrets[0] == e.st.Secrets[1]
}

// SecretOf returns slot's secret. Presentation layers should only reveal
// it once the game is over.
func (e *Engine) SecretOf(slot Slot) (Secret, bool) {
	if !e.SecretSet(slot) {
		return "", false
	}
	return e.st.Secrets[slot.index()], true
}

// History returns slot's guesses in submission order.
func (e *Engine) History(slot Slot) []HistoryEntry { return e.st.History.EntriesFor(slot) }

// GuessCount returns how many guesses slot has made.
func (e *Engine) GuessCount(slot Slot) int { return e.st.History.CountFor(slot) }
