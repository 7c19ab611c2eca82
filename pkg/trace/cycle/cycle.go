// Package cycle assigns each token the ordinal of the control cycle it
// belongs to. A new cycle opens when the phase sequence wraps from the last
// phase back to the first.
package cycle

// Tracker walks a classified token sequence and numbers its cycles. It is
// stateful per run; call Reset between folios.
type Tracker struct {
	index     map[string]int
	n         int
	current   int
	lastKnown int
}

// NewTracker creates a tracker for phases given in cycle order.
func NewTracker(phases []string) *Tracker {
	index := make(map[string]int, len(phases))
	for i, p := range phases {
		index[p] = i
	}
	return &Tracker{
		index:     index,
		n:         len(phases),
		lastKnown: -1,
	}
}

// Reset clears state so the tracker can number a new sequence.
func (t *Tracker) Reset() {
	t.current = 0
	t.lastKnown = -1
}

// Next consumes the next token's class and returns its cycle ordinal.
// Unclassified tokens inherit the current cycle; tokens seen before the
// first first-phase token carry cycle 0.
func (t *Tracker) Next(class string) int {
	idx, known := t.index[class]
	if !known {
		return t.current
	}

	if idx == 0 {
		if t.current == 0 || t.lastKnown == t.n-1 {
			t.current++
		}
	}
	t.lastKnown = idx
	return t.current
}

// Count returns the number of cycles opened so far.
func (t *Tracker) Count() int {
	return t.current
}
