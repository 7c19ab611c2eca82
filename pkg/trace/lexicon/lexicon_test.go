package lexicon

import (
	"errors"
	"testing"

	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
)

func TestNew_OrderPreserved(t *testing.T) {
	lex, err := New([]Phase{
		{Name: "A", Exemplars: []string{"x"}},
		{Name: "B", Exemplars: []string{"y"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	phases := lex.Phases()
	if len(phases) != 2 || phases[0] != "A" || phases[1] != "B" {
		t.Errorf("phase order not preserved: %v", phases)
	}
	if lex.Index("A") != 0 || lex.Index("B") != 1 {
		t.Error("indexes should follow declaration order")
	}
	if lex.Index("C") != -1 {
		t.Error("unknown phase should index -1")
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]Phase{
		{Name: "A", Exemplars: []string{"x"}},
		{Name: "A", Exemplars: []string{"y"}},
	})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_RejectsEmptyExemplars(t *testing.T) {
	_, err := New([]Phase{{Name: "A"}})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_NormalizesExemplars(t *testing.T) {
	lex, err := New([]Phase{{Name: "A", Exemplars: []string{" Daiin ", "daiin", "ol"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lex.Exemplars("A"); len(got) != 2 {
		t.Errorf("exemplars should be deduped and trimmed: %v", got)
	}
	if !lex.Contains("A", "daiin") {
		t.Error("lowercased exemplar should be a member")
	}
}

func TestDefault(t *testing.T) {
	lex := Default()
	phases := lex.Phases()
	want := []string{"ENGAGE", "MODULATE", "RELEASE", "RESET"}
	if len(phases) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(phases))
	}
	for i, p := range phases {
		if p != want[i] {
			t.Errorf("phase %d: expected %s, got %s", i, want[i], p)
		}
	}
	if !lex.Contains("RELEASE", "daiin") {
		t.Error("daiin should be a RELEASE exemplar")
	}
	if lex.Contains("ENGAGE", "daiin") {
		t.Error("daiin should not be an ENGAGE exemplar")
	}
}
