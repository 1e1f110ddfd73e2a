package shell

import (
	"slices"
	"sync"
	"time"
)

// HistoryEntry is one input recorded by [Shell.Exec].
type HistoryEntry struct {
	Input string
	Time  time.Time
}

// history is a bounded list of inputs, newest first, with a navigation cursor.
type history struct {
	mu     sync.Mutex
	max    int
	items  []HistoryEntry
	cursor int
}

func (h *history) record(input string, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.max == 0 {
		return
	}
	h.items = slices.Insert(h.items, 0, HistoryEntry{Input: input, Time: now})
	if len(h.items) > h.max {
		h.items = h.items[:h.max]
	}
	h.cursor = 0
}

// History returns up to count of the most recent inputs, newest first. A count of zero or less
// returns the whole history.
func (s *Shell) History(count int) []HistoryEntry {
	h := &s.history
	h.mu.Lock()
	defer h.mu.Unlock()
	if count <= 0 || count > len(h.items) {
		count = len(h.items)
	}
	return slices.Clone(h.items[:count])
}

// PriorCommand moves the history cursor n entries back in time and returns the input there.
// The cursor starts at the most recent input after every [Shell.Exec], so PriorCommand(0)
// returns the latest input. A negative n moves forward, like [Shell.NextCommand]. The boolean is
// false when the history is empty.
func (s *Shell) PriorCommand(n int) (string, bool) {
	if n < 0 {
		return s.NextCommand(-n)
	}
	h := &s.history
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.items) == 0 {
		return "", false
	}
	h.cursor = min(h.cursor+n, len(h.items)-1)
	return h.items[h.cursor].Input, true
}

// NextCommand moves the history cursor n entries forward in time and returns the input there.
// Moving past the most recent input returns false and leaves the cursor on the most recent
// input.
func (s *Shell) NextCommand(n int) (string, bool) {
	if n < 0 {
		return s.PriorCommand(-n)
	}
	h := &s.history
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor -= n
	if h.cursor < 0 || len(h.items) == 0 {
		h.cursor = 0
		return "", false
	}
	return h.items[h.cursor].Input, true
}

// ClearHistory forgets every recorded input.
func (s *Shell) ClearHistory() {
	h := &s.history
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
	h.cursor = 0
}
