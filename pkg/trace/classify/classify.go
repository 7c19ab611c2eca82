// Package classify maps folio tokens to control-phase labels. A token is
// scored against every phase's exemplar set; the closest phase wins when it
// is within the match threshold, otherwise the token is UNKNOWN.
package classify

import (
	"github.com/epilectrik/voynich-sub007/pkg/trace/distance"
	"github.com/epilectrik/voynich-sub007/pkg/trace/lexicon"
	"github.com/epilectrik/voynich-sub007/pkg/trace/transcript"
)

// Unknown is the class assigned to tokens that match no phase.
const Unknown = "UNKNOWN"

// Result is the classification of a single token.
type Result struct {
	Word      string
	Class     string // phase name or Unknown
	Distances []int  // one entry per phase, lexicon order
	MinDist   int    // minimum of Distances
	Nearest   string // exemplar that produced MinDist
}

// Config controls classification thresholds.
type Config struct {
	// MaxMatchDist is the largest edit distance at which a token still
	// takes the nearest phase's label. Default: 2.
	MaxMatchDist int
}

// DefaultConfig returns the thresholds used for the sub007 traces.
func DefaultConfig() Config {
	return Config{MaxMatchDist: 2}
}

// Classifier scores tokens against a phase lexicon.
type Classifier struct {
	lex    *lexicon.Lexicon
	calc   *distance.Calculator
	phases []string
	cfg    Config
}

// New creates a classifier. A nil calculator gets an unbounded one.
func New(lex *lexicon.Lexicon, calc *distance.Calculator, cfg Config) *Classifier {
	if calc == nil {
		calc = distance.NewCalculator(0)
	}
	if cfg.MaxMatchDist < 0 {
		cfg.MaxMatchDist = 0
	}
	return &Classifier{
		lex:    lex,
		calc:   calc,
		phases: lex.Phases(),
		cfg:    cfg,
	}
}

// Phases returns the phase names in lexicon order, matching the layout of
// Result.Distances.
func (c *Classifier) Phases() []string {
	return c.phases
}

// Classify scores one word against every phase.
func (c *Classifier) Classify(word string) Result {
	res := Result{
		Word:      word,
		Class:     Unknown,
		Distances: make([]int, len(c.phases)),
	}

	minDist := -1
	argmin := -1
	for i, phase := range c.phases {
		nearest, d := c.calc.Nearest(word, c.lex.Exemplars(phase))
		res.Distances[i] = d
		if minDist < 0 || d < minDist {
			minDist = d
			argmin = i
			res.Nearest = nearest
		}
	}

	res.MinDist = minDist
	if minDist >= 0 && minDist <= c.cfg.MaxMatchDist {
		res.Class = c.phases[argmin]
	}
	return res
}

// ClassifyAll classifies an ordered token sequence.
func (c *Classifier) ClassifyAll(tokens []transcript.Token) []Result {
	out := make([]Result, len(tokens))
	for i, tok := range tokens {
		out[i] = c.Classify(tok.Text)
	}
	return out
}
