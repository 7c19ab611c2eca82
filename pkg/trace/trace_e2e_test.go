package trace_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace"
	"github.com/epilectrik/voynich-sub007/pkg/trace/classify"
	"github.com/epilectrik/voynich-sub007/pkg/trace/hazard"
	"github.com/epilectrik/voynich-sub007/pkg/trace/report"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store/memstore"
	"github.com/epilectrik/voynich-sub007/pkg/trace/transcript"
)

// Exercises the full pipeline: transcription text in, rendered report out,
// report parsed back and checked for internal consistency, run reloaded
// from the store.
func TestEndToEnd(t *testing.T) {
	input := `# f105v paragraph transcription
<f105v.P.1;H> qokeedy.chedy.daiin.ol-
<f105v.P.2;H> qokedy.shedy.chedy.dain.or-
<f105v.P.3;H> qokeey.pchofar.daiin.ol=
`

	folio, err := transcript.Parse("f105v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse transcript: %v", err)
	}
	if len(folio.Tokens) != 13 {
		t.Fatalf("expected 13 tokens, got %d", len(folio.Tokens))
	}

	st := memstore.New()
	tracer := trace.New(trace.Options{
		Store:    st,
		Classify: classify.DefaultConfig(),
		Hazard:   hazard.DefaultConfig(),
		Now: func() time.Time {
			return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		},
	})
	defer tracer.Close()

	ctx := context.Background()
	tr, err := tracer.Run(ctx, folio)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if tr.Summary.TotalTokens != 13 {
		t.Errorf("TotalTokens = %d", tr.Summary.TotalTokens)
	}
	if tr.Summary.UnknownTokens == 0 {
		t.Error("pchofar should be UNKNOWN")
	}
	if tr.Summary.HazardTokens == 0 {
		t.Error("the UNKNOWN boundary should produce hazards")
	}
	if tr.Summary.CycleCount < 2 {
		t.Errorf("expected at least 2 cycles, got %d", tr.Summary.CycleCount)
	}

	// Render and re-parse: the report must describe itself consistently.
	var buf bytes.Buffer
	if err := report.Render(&buf, tr); err != nil {
		t.Fatalf("render: %v", err)
	}
	rep, err := report.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if mismatches := report.Verify(rep); len(mismatches) != 0 {
		t.Errorf("rendered report should verify clean: %v", mismatches)
	}
	if len(rep.Rows) != len(tr.Rows) {
		t.Errorf("parsed %d rows, want %d", len(rep.Rows), len(tr.Rows))
	}

	// Reload from the store and confirm the rendered artifact is identical.
	loaded, err := tracer.LoadRun(ctx, tr.RunID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	var reloaded bytes.Buffer
	if err := report.Render(&reloaded, loaded); err != nil {
		t.Fatalf("render loaded: %v", err)
	}
	if reloaded.String() != buf.String() {
		t.Error("report rendered from the stored run should match the original")
	}
}
