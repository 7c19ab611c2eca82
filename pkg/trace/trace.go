// Package trace orchestrates the control-trace pipeline: an ordered token
// sequence is classified against the phase lexicon, every adjacent
// transition is scored for hazards, tokens are assigned cycle ordinals, and
// the resulting rows are summarized and optionally persisted.
package trace

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/epilectrik/voynich-sub007/pkg/trace/analytics"
	"github.com/epilectrik/voynich-sub007/pkg/trace/classify"
	"github.com/epilectrik/voynich-sub007/pkg/trace/cycle"
	"github.com/epilectrik/voynich-sub007/pkg/trace/hazard"
	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
	"github.com/epilectrik/voynich-sub007/pkg/trace/lexicon"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store"
	"github.com/epilectrik/voynich-sub007/pkg/trace/transcript"
)

// Row is one output record of the trace: a token with its classification,
// distance vector, hazard assessment, and cycle ordinal. Rows are immutable
// once computed.
type Row struct {
	Position   int
	Token      string
	Class      string
	Distances  []int // one per phase, lexicon order
	MinDist    int
	Hazard     bool
	HazardKind string
	Cycle      int
	Notes      string
}

// Trace is the full result of one pipeline run over a folio.
type Trace struct {
	RunID       string
	FolioID     string
	GeneratedAt time.Time
	PhaseNames  []string
	Rows        []Row
	Summary     analytics.Summary
}

// Options configures a Tracer instance
type Options struct {
	// Store persists runs when set; a nil store keeps runs in memory only.
	Store store.Store

	// Lexicon defaults to lexicon.Default() when nil.
	Lexicon *lexicon.Lexicon

	Classify classify.Config
	Hazard   hazard.Config

	// Now overrides the run timestamp source, for tests.
	Now func() time.Time
}

// Tracer is the pipeline facade
type Tracer struct {
	store      store.Store
	classifier *classify.Classifier
	hazardCfg  hazard.Config
	phases     []string
	now        func() time.Time
	entropy    *ulid.MonotonicEntropy
}

// New creates a Tracer with the given dependencies
func New(opts Options) *Tracer {
	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Tracer{
		store:      opts.Store,
		classifier: classify.New(lex, nil, opts.Classify),
		hazardCfg:  opts.Hazard,
		phases:     lex.Phases(),
		now:        now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// Close cleanly shuts down the Tracer instance
func (t *Tracer) Close() error {
	if t.store == nil {
		return nil
	}
	return t.store.Close()
}

// Run executes the full pipeline over a parsed folio and persists the run
// when a store is configured.
func (t *Tracer) Run(ctx context.Context, folio transcript.Folio) (Trace, error) {
	if len(folio.Tokens) == 0 {
		return Trace{}, fmt.Errorf("folio %s: %w", folio.ID, internalerr.ErrEmptyFolio)
	}

	detector := hazard.NewDetector(t.phases, t.hazardCfg)
	tracker := cycle.NewTracker(t.phases)
	agg := analytics.NewAggregator()

	rows := make([]Row, 0, len(folio.Tokens))
	for _, tok := range folio.Tokens {
		res := t.classifier.Classify(tok.Text)
		sig := detector.Next(res.Class)
		cyc := tracker.Next(res.Class)

		row := Row{
			Position:   tok.Position,
			Token:      tok.Text,
			Class:      res.Class,
			Distances:  res.Distances,
			MinDist:    res.MinDist,
			Hazard:     sig.Flagged,
			HazardKind: string(sig.Kind),
			Cycle:      cyc,
			Notes:      buildNotes(tok, res, sig),
		}
		rows = append(rows, row)
		agg.Add(analytics.Row{
			Class:      row.Class,
			MinDist:    row.MinDist,
			Hazard:     row.Hazard,
			HazardKind: row.HazardKind,
			Cycle:      row.Cycle,
		})
	}

	generatedAt := t.now().UTC()
	tr := Trace{
		RunID:       ulid.MustNew(ulid.Timestamp(generatedAt), t.entropy).String(),
		FolioID:     folio.ID,
		GeneratedAt: generatedAt,
		PhaseNames:  t.phases,
		Rows:        rows,
		Summary:     agg.Snapshot(),
	}

	if t.store != nil {
		if err := t.persist(ctx, tr); err != nil {
			return Trace{}, err
		}
	}
	return tr, nil
}

// LoadRun rebuilds a previously persisted trace.
func (t *Tracer) LoadRun(ctx context.Context, runID string) (Trace, error) {
	if t.store == nil {
		return Trace{}, fmt.Errorf("no store configured: %w", internalerr.ErrInvalidInput)
	}

	run, found, err := t.store.GetRun(ctx, runID)
	if err != nil {
		return Trace{}, err
	}
	if !found {
		return Trace{}, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	storeRows, err := t.store.GetRows(ctx, runID)
	if err != nil {
		return Trace{}, err
	}

	rows := make([]Row, len(storeRows))
	for i, r := range storeRows {
		rows[i] = Row{
			Position:   r.Position,
			Token:      r.Token,
			Class:      r.Class,
			Distances:  r.Distances,
			MinDist:    r.MinDist,
			Hazard:     r.Hazard,
			HazardKind: r.HazardKind,
			Cycle:      r.Cycle,
			Notes:      r.Notes,
		}
	}

	return Trace{
		RunID:       run.ID,
		FolioID:     run.FolioID,
		GeneratedAt: run.GeneratedAt,
		PhaseNames:  run.Phases,
		Rows:        rows,
		Summary:     run.Summary,
	}, nil
}

func (t *Tracer) persist(ctx context.Context, tr Trace) error {
	run := store.Run{
		ID:          tr.RunID,
		FolioID:     tr.FolioID,
		GeneratedAt: tr.GeneratedAt,
		Phases:      tr.PhaseNames,
		Summary:     tr.Summary,
	}
	if err := t.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	storeRows := make([]store.Row, len(tr.Rows))
	for i, r := range tr.Rows {
		storeRows[i] = store.Row{
			Position:   r.Position,
			Token:      r.Token,
			Class:      r.Class,
			Distances:  r.Distances,
			MinDist:    r.MinDist,
			Hazard:     r.Hazard,
			HazardKind: r.HazardKind,
			Cycle:      r.Cycle,
			Notes:      r.Notes,
		}
	}
	if err := t.store.SaveRows(ctx, tr.RunID, storeRows); err != nil {
		return fmt.Errorf("save rows: %w", err)
	}
	return nil
}

// buildNotes assembles the deterministic Notes column for a row.
func buildNotes(tok transcript.Token, res classify.Result, sig hazard.Signal) string {
	var parts []string
	if tok.Uncertain {
		parts = append(parts, "uncertain glyphs")
	}
	if res.Class == classify.Unknown && res.Nearest != "" {
		parts = append(parts, fmt.Sprintf("nearest %s d=%d", res.Nearest, res.MinDist))
	}
	if sig.Note != "" {
		parts = append(parts, sig.Note)
	}
	return strings.Join(parts, "; ")
}
