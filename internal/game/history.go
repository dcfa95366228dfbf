package game

// History is the append-only record of guesses for both players.
// The zero value is empty and ready to use.
type History struct {
	entries [2][]HistoryEntry
}

// Append records entry for slot. Guess counts derive from the log length.
func (h *History) Append(slot Slot, entry HistoryEntry) {
	i := slot.index()
	h.entries[i] = append(h.entries[i], entry)
}

// EntriesFor returns slot's entries in append order. The returned slice is
// a copy; changing it does not affect the log.
func (h *History) EntriesFor(slot Slot) []HistoryEntry {
	if !slot.Valid() {
		return nil
	}
	src := h.entries[slot.index()]
	out := make([]HistoryEntry, len(src))
	for i, e := range src {
		out[i] = HistoryEntry{Guess: e.Guess, Feedback: copyFeedback(e.Feedback)}
	}
	return out
}

// CountFor returns how many guesses slot has submitted.
func (h *History) CountFor(slot Slot) int {
	if !slot.Valid() {
		return 0
	}
	return len(h.entries[slot.index()])
}

func copyFeedback(f Feedback) Feedback {
	f.BullPositions = append([]int{}, f.BullPositions...)
	f.CowPositions = append([]int{}, f.CowPositions...)
	return f
}
