// Package lexicon holds the phase vocabulary: the ordered control phases and
// the exemplar words observed for each. The classifier measures every folio
// token against these exemplar sets.
package lexicon

import (
	"fmt"
	"strings"

	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
)

// Phase is one control phase with its exemplar word set.
type Phase struct {
	Name      string
	Exemplars []string
}

// Lexicon is an ordered set of phases with fast membership lookup.
type Lexicon struct {
	phases  []Phase
	members map[string]map[string]struct{} // phase -> word set
	index   map[string]int                 // phase -> cycle position
}

// New builds a lexicon from ordered phases. Phase order is cycle order and
// is significant for hazard and cycle detection downstream.
func New(phases []Phase) (*Lexicon, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("no phases: %w", internalerr.ErrInvalidConfig)
	}

	lex := &Lexicon{
		members: make(map[string]map[string]struct{}, len(phases)),
		index:   make(map[string]int, len(phases)),
	}
	for i, p := range phases {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("phase %d has no name: %w", i, internalerr.ErrInvalidConfig)
		}
		if _, dup := lex.index[name]; dup {
			return nil, fmt.Errorf("duplicate phase %q: %w", name, internalerr.ErrInvalidConfig)
		}
		if len(p.Exemplars) == 0 {
			return nil, fmt.Errorf("phase %q has no exemplars: %w", name, internalerr.ErrInvalidConfig)
		}

		set := make(map[string]struct{}, len(p.Exemplars))
		cleaned := make([]string, 0, len(p.Exemplars))
		for _, w := range p.Exemplars {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			if _, ok := set[w]; ok {
				continue
			}
			set[w] = struct{}{}
			cleaned = append(cleaned, w)
		}
		if len(cleaned) == 0 {
			return nil, fmt.Errorf("phase %q has no usable exemplars: %w", name, internalerr.ErrInvalidConfig)
		}

		lex.phases = append(lex.phases, Phase{Name: name, Exemplars: cleaned})
		lex.members[name] = set
		lex.index[name] = i
	}
	return lex, nil
}

// Phases returns phase names in cycle order.
func (l *Lexicon) Phases() []string {
	out := make([]string, len(l.phases))
	for i, p := range l.phases {
		out[i] = p.Name
	}
	return out
}

// Exemplars returns the exemplar words for a phase, or nil if unknown.
func (l *Lexicon) Exemplars(phase string) []string {
	i, ok := l.index[phase]
	if !ok {
		return nil
	}
	return l.phases[i].Exemplars
}

// Contains reports whether word is an exact exemplar of phase.
func (l *Lexicon) Contains(phase, word string) bool {
	set, ok := l.members[phase]
	if !ok {
		return false
	}
	_, ok = set[word]
	return ok
}

// Index returns the cycle position of a phase, or -1 if unknown.
func (l *Lexicon) Index(phase string) int {
	if i, ok := l.index[phase]; ok {
		return i
	}
	return -1
}

// Default returns the sub007 four-phase lexicon for Currier B folios.
// Exemplar sets come from the hand-curated phase assignments used for the
// f105v control trace.
func Default() *Lexicon {
	lex, err := New([]Phase{
		{Name: "ENGAGE", Exemplars: []string{
			"qokeedy", "qokedy", "qokeey", "qokey", "qokaiin", "qokain", "qokal", "qokar",
		}},
		{Name: "MODULATE", Exemplars: []string{
			"chedy", "shedy", "chey", "shey", "cheey", "sheey", "chdy", "shdy",
		}},
		{Name: "RELEASE", Exemplars: []string{
			"daiin", "dain", "aiin", "ain", "dar", "dal", "dy", "dam",
		}},
		{Name: "RESET", Exemplars: []string{
			"ol", "or", "al", "ar", "okar", "otar", "okal", "otal",
		}},
	})
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return lex
}
