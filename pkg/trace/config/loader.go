package config

import (
	"fmt"

	"github.com/epilectrik/voynich-sub007/pkg/trace/classify"
	"github.com/epilectrik/voynich-sub007/pkg/trace/hazard"
	"github.com/epilectrik/voynich-sub007/pkg/trace/lexicon"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	ConfigPath string
}

// Components holds all loaded configuration components
type Components struct {
	Lexicon  *lexicon.Lexicon
	Classify classify.Config
	Hazard   hazard.Config
}

// Load reads the configuration and returns initialized components.
// An empty ConfigPath yields the built-in defaults.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{
		Lexicon:  lexicon.Default(),
		Classify: classify.DefaultConfig(),
		Hazard:   hazard.DefaultConfig(),
	}
	if l.ConfigPath == "" {
		return comp, nil
	}

	f, err := Load(l.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(f.Phases) > 0 {
		phases := make([]lexicon.Phase, len(f.Phases))
		for i, p := range f.Phases {
			phases[i] = lexicon.Phase{Name: p.Name, Exemplars: p.Exemplars}
		}
		lex, err := lexicon.New(phases)
		if err != nil {
			return nil, fmt.Errorf("build lexicon: %w", err)
		}
		comp.Lexicon = lex
	}

	if f.Classify.MaxMatchDist != nil {
		comp.Classify.MaxMatchDist = *f.Classify.MaxMatchDist
	}
	if f.Hazard.MaxStall != nil {
		comp.Hazard.MaxStall = *f.Hazard.MaxStall
	}
	if f.Hazard.FlagUnknownEntry != nil {
		comp.Hazard.FlagUnknownEntry = *f.Hazard.FlagUnknownEntry
	}

	return comp, nil
}
