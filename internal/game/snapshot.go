package game

import "fmt"

// Snapshot is the serializable form of an engine's state, used by stores.
// It contains both secrets in the clear; stores are expected to protect it.
type Snapshot struct {
	Phase   string                    `json:"phase"`
	Turn    int                       `json:"turn"`
	Winner  int                       `json:"winner"`
	Secrets map[string]string         `json:"secrets"`
	History map[string][]HistoryEntry `json:"history"`
}

// Snapshot captures the engine's current state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:   e.st.Phase.String(),
		Turn:    int(e.st.Turn),
		Winner:  int(e.st.Winner),
		Secrets: map[string]string{},
		History: map[string][]HistoryEntry{},
	}
	for _, s := range []Slot{Player1, Player2} {
		if sec, ok := e.SecretOf(s); ok {
			snap.Secrets[s.String()] = string(sec)
		}
		snap.History[s.String()] = e.History(s)
	}
	return snap
}

// Restore rebuilds an engine from a snapshot, checking every field so a
// corrupt record cannot produce an engine that breaks its invariants.
func Restore(snap Snapshot) (*Engine, error) {
	st := initialState()

	switch snap.Phase {
	case AwaitingSecrets.String():
		st.Phase = AwaitingSecrets
	case InPlay.String():
		st.Phase = InPlay
	case GameOver.String():
		st.Phase = GameOver
	default:
		return nil, fmt.Errorf("restore: unknown phase %q", snap.Phase)
	}

	st.Turn = Slot(snap.Turn)
	if !st.Turn.Valid() {
		return nil, fmt.Errorf("restore: bad turn %d", snap.Turn)
	}
	st.Winner = Slot(snap.Winner)
	if st.Winner != NoSlot && !st.Winner.Valid() {
		return nil, fmt.Errorf("restore: bad winner %d", snap.Winner)
	}
	if (st.Phase == GameOver) != (st.Winner != NoSlot) {
		return nil, fmt.Errorf("restore: winner %d inconsistent with phase %s", snap.Winner, snap.Phase)
	}

	for _, s := range []Slot{Player1, Player2} {
		if raw, ok := snap.Secrets[s.String()]; ok {
			sec, err := ParseSecret(raw)
			if err != nil {
				return nil, fmt.Errorf("restore %s secret: %w", s, err)
			}
			st.Secrets[s.index()] = sec
		}
		for _, entry := range snap.History[s.String()] {
			if _, err := ParseGuess(string(entry.Guess)); err != nil {
				return nil, fmt.Errorf("restore %s history: %w", s, err)
			}
			st.History.Append(s, HistoryEntry{Guess: entry.Guess, Feedback: copyFeedback(entry.Feedback)})
		}
	}
	if st.Phase != AwaitingSecrets && (st.Secrets[0] == "" || st.Secrets[1] == "") {
		return nil, fmt.Errorf("restore: phase %s without both secrets", snap.Phase)
	}
	return &Engine{st: st}, nil
}

// Clone returns an independent copy of e.
func (e *Engine) Clone() *Engine {
	c, err := Restore(e.Snapshot())
	if err != nil {
		// A snapshot of a live engine always restores.
		panic(err)
	}
	return c
}
