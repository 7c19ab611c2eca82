// Package hazard flags anomalous transitions between adjacent classified
// tokens. With phases in cycle order, the legal steps are staying in the
// current phase (up to a stall tolerance) and advancing by one, wrapping
// from the last phase back to the first. Everything else is a hazard.
package hazard

import "fmt"

// Kind tags the shape of a hazardous transition.
type Kind string

const (
	// KindSkip marks a forward jump of two or more phases.
	KindSkip Kind = "SKIP"
	// KindRegress marks any backward step in the cycle.
	KindRegress Kind = "REGRESS"
	// KindStall marks a same-phase run longer than the stall tolerance.
	KindStall Kind = "STALL"
	// KindBreak marks a transition into or out of an unclassified token.
	KindBreak Kind = "BREAK"
)

// Signal is the hazard assessment of one adjacent transition.
type Signal struct {
	Flagged   bool
	Kind      Kind
	FromClass string
	ToClass   string
	Note      string
}

// Config controls hazard detection thresholds.
type Config struct {
	// MaxStall is how many consecutive same-phase tokens are tolerated
	// before the run is flagged. Default: 2.
	MaxStall int

	// FlagUnknownEntry flags transitions that cross the boundary between
	// classified and unclassified tokens. Default: true.
	FlagUnknownEntry bool
}

// DefaultConfig returns the thresholds used for the sub007 traces.
func DefaultConfig() Config {
	return Config{
		MaxStall:         2,
		FlagUnknownEntry: true,
	}
}

// Detector walks a classified token sequence and scores each adjacent
// transition. It is stateful per run; call Reset between folios.
type Detector struct {
	index    map[string]int
	n        int
	cfg      Config
	started  bool
	prev     string
	stallRun int
}

// NewDetector creates a detector for phases given in cycle order.
func NewDetector(phases []string, cfg Config) *Detector {
	if cfg.MaxStall < 1 {
		cfg.MaxStall = 1
	}
	index := make(map[string]int, len(phases))
	for i, p := range phases {
		index[p] = i
	}
	return &Detector{
		index: index,
		n:     len(phases),
		cfg:   cfg,
	}
}

// Reset clears transition state so the detector can score a new sequence.
func (d *Detector) Reset() {
	d.started = false
	d.prev = ""
	d.stallRun = 0
}

// Next consumes the next token's class and scores the transition from the
// previous one. The first token of a sequence is never flagged.
func (d *Detector) Next(class string) Signal {
	sig := Signal{FromClass: d.prev, ToClass: class}

	if !d.started {
		d.started = true
		d.prev = class
		d.stallRun = 1
		sig.FromClass = ""
		return sig
	}

	prevIdx, prevKnown := d.index[d.prev]
	curIdx, curKnown := d.index[class]

	switch {
	case !prevKnown && !curKnown:
		// Still inside an unclassified stretch, nothing to score.
		d.stallRun = 1

	case prevKnown != curKnown:
		d.stallRun = 1
		if d.cfg.FlagUnknownEntry {
			sig.Flagged = true
			sig.Kind = KindBreak
			sig.Note = fmt.Sprintf("break %s>%s", orUnknown(d.prev), orUnknown(class))
		}

	case curIdx == prevIdx:
		d.stallRun++
		if d.stallRun > d.cfg.MaxStall {
			sig.Flagged = true
			sig.Kind = KindStall
			sig.Note = fmt.Sprintf("stall %s x%d", class, d.stallRun)
		}

	default:
		d.stallRun = 1
		forward := (curIdx - prevIdx + d.n) % d.n
		if forward == 1 {
			// Legal advance, wrap included.
			break
		}
		if curIdx < prevIdx {
			sig.Flagged = true
			sig.Kind = KindRegress
			sig.Note = fmt.Sprintf("regress %s>%s", d.prev, class)
		} else {
			sig.Flagged = true
			sig.Kind = KindSkip
			sig.Note = fmt.Sprintf("skip %s>%s", d.prev, class)
		}
	}

	d.prev = class
	return sig
}

func orUnknown(class string) string {
	if class == "" {
		return "UNKNOWN"
	}
	return class
}
