package transcript

import (
	"errors"
	"strings"
	"testing"

	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
)

func TestParse_BasicLine(t *testing.T) {
	input := "<f105v.P.1;H> pchedy.qokeey.daiin-"
	folio, err := Parse("f105v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"pchedy", "qokeey", "daiin"}
	if len(folio.Tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(folio.Tokens))
	}
	for i, tok := range folio.Tokens {
		if tok.Text != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tok.Text)
		}
		if tok.Position != i+1 {
			t.Errorf("token %d: expected position %d, got %d", i, i+1, tok.Position)
		}
	}
	if !folio.Tokens[0].LineStart {
		t.Error("first token should be marked LineStart")
	}
	if !folio.Tokens[2].LineEnd {
		t.Error("last token should be marked LineEnd")
	}
}

func TestParse_PositionsIncreaseAcrossLines(t *testing.T) {
	input := `<f105v.P.1;H> qokeedy.chedy-
<f105v.P.2;H> daiin.ol=
`
	folio, err := Parse("f105v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(folio.Tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(folio.Tokens))
	}
	for i, tok := range folio.Tokens {
		if tok.Position != i+1 {
			t.Errorf("token %d: position %d", i, tok.Position)
		}
	}
	if folio.Lines != 2 {
		t.Errorf("expected 2 lines, got %d", folio.Lines)
	}
	last := folio.Tokens[3]
	if !last.ParagraphEnd {
		t.Error("token before '=' should be marked ParagraphEnd")
	}
}

func TestParse_SkipsOtherFolios(t *testing.T) {
	input := `<f104r.P.1;H> otedy.qotedy-
<f105v.P.1;H> daiin-
`
	folio, err := Parse("f105v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folio.Tokens) != 1 || folio.Tokens[0].Text != "daiin" {
		t.Fatalf("expected only f105v tokens, got %+v", folio.Tokens)
	}
}

func TestParse_CommentsAndPadding(t *testing.T) {
	input := `# transcriber note
<f105v.P.1;H> qok!eedy.{crease}shedy,ol-
`
	folio, err := Parse("f105v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"qokeedy", "shedy", "ol"}
	if len(folio.Tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(folio.Tokens), folio.Tokens)
	}
	for i, tok := range folio.Tokens {
		if tok.Text != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], tok.Text)
		}
	}
}

func TestParse_UncertainGlyphs(t *testing.T) {
	input := "<f105v.P.1;H> qo?eedy.???-"
	folio, err := Parse("f105v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(folio.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(folio.Tokens))
	}
	if !folio.Tokens[0].Uncertain {
		t.Error("token with ? glyph should be flagged uncertain")
	}
	if folio.Tokens[0].Text != "qo?eedy" {
		t.Errorf("uncertain glyph should be kept in text, got %q", folio.Tokens[0].Text)
	}
	if !folio.Tokens[1].Uncertain || folio.Tokens[1].Text != "???" {
		t.Errorf("fully uncertain word should survive, got %+v", folio.Tokens[1])
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse("f105v", strings.NewReader(""))
	if !errors.Is(err, internalerr.ErrEmptyFolio) {
		t.Fatalf("expected ErrEmptyFolio, got %v", err)
	}
}

func TestParse_UppercaseNormalized(t *testing.T) {
	folio, err := Parse("f105v", strings.NewReader("<f105v.P.1;H> Daiin.QOKEEDY-"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folio.Tokens[0].Text != "daiin" || folio.Tokens[1].Text != "qokeedy" {
		t.Errorf("tokens should be lowercased: %+v", folio.Tokens)
	}
}
