// Package transcript reads EVA-style interlinear transcriptions and turns
// them into an ordered token sequence. Positions are verbatim ordinals over
// the whole folio: nothing is dropped, merged, or reordered, because the
// downstream trace must line up with the manuscript word for word.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
)

// Token is one transcribed word with its position metadata.
type Token struct {
	Position     int    // 1-based ordinal over the folio
	Text         string // lowercased EVA word, "?" glyphs retained
	Line         int    // 1-based locus line the word appeared on
	LineStart    bool
	LineEnd      bool
	ParagraphEnd bool // word closes a paragraph ("=" terminator)
	Uncertain    bool // word contained at least one "?" glyph
}

// Folio is the parsed token sequence for one manuscript page.
type Folio struct {
	ID     string
	Tokens []Token
	Lines  int
}

// Parse reads interlinear transcription text for the given folio id.
//
// Recognized syntax:
//
//	<f105v.P.1;H>  locus tag (lines tagged for another folio are skipped)
//	.  ,           word separators
//	-              line terminator
//	=              paragraph terminator
//	{...}          inline comment, dropped
//	!  %           layout padding, dropped
//	?              uncertain glyph (word kept, flagged)
//	#              comment line
func Parse(id string, r io.Reader) (Folio, error) {
	folio := Folio{ID: id}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		body, ok := stripLocus(raw, id)
		if !ok {
			continue
		}

		lineNo++
		words, paragraphEnd := splitWords(body)
		if len(words) == 0 {
			continue
		}

		for i, w := range words {
			folio.Tokens = append(folio.Tokens, Token{
				Position:     len(folio.Tokens) + 1,
				Text:         w.text,
				Line:         lineNo,
				LineStart:    i == 0,
				LineEnd:      i == len(words)-1,
				ParagraphEnd: i == len(words)-1 && paragraphEnd,
				Uncertain:    w.uncertain,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return Folio{}, fmt.Errorf("read transcript: %w", err)
	}

	if len(folio.Tokens) == 0 {
		return Folio{}, fmt.Errorf("folio %s: %w", id, internalerr.ErrEmptyFolio)
	}
	folio.Lines = lineNo
	return folio, nil
}

// ParseFile reads a transcription file from disk.
func ParseFile(id, path string) (Folio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Folio{}, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return Parse(id, f)
}

// stripLocus removes a leading <folio.unit;transcriber> tag. It returns the
// remaining line body and whether the line belongs to the requested folio.
// Untagged lines are accepted as-is.
func stripLocus(line, id string) (string, bool) {
	if !strings.HasPrefix(line, "<") {
		return line, true
	}
	end := strings.Index(line, ">")
	if end < 0 {
		// Dangling tag, treat the whole line as a tag and skip it.
		return "", false
	}
	tag := line[1:end]
	if id != "" && !strings.HasPrefix(tag, id+".") && tag != id {
		return "", false
	}
	return line[end+1:], true
}

type word struct {
	text      string
	uncertain bool
}

// splitWords walks the line body rune by rune, accumulating words between
// separators. The second result reports whether the line ended a paragraph.
func splitWords(body string) ([]word, bool) {
	var words []word
	var current strings.Builder
	uncertain := false
	paragraphEnd := false
	inComment := false

	flush := func() {
		if current.Len() > 0 {
			words = append(words, word{text: current.String(), uncertain: uncertain})
			current.Reset()
		}
		uncertain = false
	}

	for _, r := range body {
		if inComment {
			if r == '}' {
				inComment = false
			}
			continue
		}
		switch {
		case r == '{':
			inComment = true
		case r == '.' || r == ',' || unicode.IsSpace(r):
			flush()
		case r == '-':
			flush()
		case r == '=':
			flush()
			paragraphEnd = true
		case r == '!' || r == '%':
			// layout padding, not part of the word
		case r == '?':
			uncertain = true
			current.WriteRune('?')
		case unicode.IsLetter(r):
			current.WriteRune(unicode.ToLower(r))
		}
	}
	flush()

	return words, paragraphEnd
}
