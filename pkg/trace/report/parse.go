package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace"
	"github.com/epilectrik/voynich-sub007/pkg/trace/analytics"
	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
)

// Report is a parsed control-trace report: the table rows plus the summary
// block exactly as written.
type Report struct {
	RunID       string
	FolioID     string
	GeneratedAt time.Time
	Phases      []string
	Rows        []trace.Row
	Summary     analytics.Summary
}

// Parse reads a rendered report back into rows and summary. The phase set
// is derived from the D_ columns of the table header.
func Parse(r io.Reader) (Report, error) {
	rep := Report{
		Summary: analytics.Summary{
			ClassCounts: make(map[string]int),
			HazardKinds: make(map[string]int),
		},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	inSummary := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "## Summary"):
			inSummary = true

		case strings.HasPrefix(line, "# "):
			// Title line; folio id is restated in the metadata block.

		case strings.HasPrefix(line, "- **"):
			if !inSummary {
				return Report{}, parseErr(lineNo, "summary bullet outside summary section")
			}
			if err := parseSummaryLine(line, &rep.Summary); err != nil {
				return Report{}, parseErr(lineNo, err.Error())
			}

		case strings.HasPrefix(line, "- "):
			if err := parseMetaLine(line, &rep); err != nil {
				return Report{}, parseErr(lineNo, err.Error())
			}

		case strings.HasPrefix(line, "|"):
			cells := splitTableLine(line)
			if header == nil {
				header = cells
				phases, err := phasesFromHeader(cells)
				if err != nil {
					return Report{}, parseErr(lineNo, err.Error())
				}
				if len(rep.Phases) == 0 {
					rep.Phases = phases
				}
				continue
			}
			if isSeparator(cells) {
				continue
			}
			row, err := parseRow(cells, len(rep.Phases))
			if err != nil {
				return Report{}, parseErr(lineNo, err.Error())
			}
			rep.Rows = append(rep.Rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}

	if header == nil {
		return Report{}, fmt.Errorf("no trace table found: %w", internalerr.ErrBadReport)
	}
	return rep, nil
}

func parseErr(line int, msg string) error {
	return fmt.Errorf("line %d: %s: %w", line, msg, internalerr.ErrBadReport)
}

func parseMetaLine(line string, rep *Report) error {
	body := strings.TrimPrefix(line, "- ")
	key, value, ok := strings.Cut(body, ":")
	if !ok {
		return fmt.Errorf("metadata line without separator")
	}
	value = strings.TrimSpace(value)

	switch strings.TrimSpace(key) {
	case "Run":
		rep.RunID = value
	case "Folio":
		rep.FolioID = value
	case "Generated":
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return fmt.Errorf("bad timestamp %q", value)
		}
		rep.GeneratedAt = t
	case "Phases":
		var phases []string
		for _, p := range strings.Split(value, ">") {
			if p = strings.TrimSpace(p); p != "" {
				phases = append(phases, p)
			}
		}
		rep.Phases = phases
	}
	return nil
}

func parseSummaryLine(line string, s *analytics.Summary) error {
	body := strings.TrimPrefix(line, "- **")
	label, value, ok := strings.Cut(body, "**:")
	if !ok {
		return fmt.Errorf("summary bullet without label")
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("summary value %q is not a count", strings.TrimSpace(value))
	}

	switch {
	case label == labelTotal:
		s.TotalTokens = n
	case label == labelUnknown:
		s.UnknownTokens = n
	case label == labelMinDistLE1:
		s.MinDistLE1 = n
	case label == labelHazard:
		s.HazardTokens = n
	case label == labelCycles:
		s.CycleCount = n
	case strings.HasPrefix(label, hazardPrefix):
		s.HazardKinds[strings.TrimPrefix(label, hazardPrefix)] = n
	case strings.HasPrefix(label, classPrefix):
		s.ClassCounts[strings.TrimPrefix(label, classPrefix)] = n
	}
	return nil
}

func splitTableLine(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, ":-") != "" {
			return false
		}
	}
	return true
}

func phasesFromHeader(cells []string) ([]string, error) {
	var phases []string
	for _, c := range cells {
		if strings.HasPrefix(c, "D_") {
			phases = append(phases, strings.TrimPrefix(c, "D_"))
		}
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("table header has no distance columns")
	}
	return phases, nil
}

func parseRow(cells []string, phaseCount int) (trace.Row, error) {
	want := phaseCount + 8
	if len(cells) != want {
		return trace.Row{}, fmt.Errorf("expected %d cells, got %d", want, len(cells))
	}

	var row trace.Row
	var err error
	if row.Position, err = strconv.Atoi(cells[0]); err != nil {
		return trace.Row{}, fmt.Errorf("bad position %q", cells[0])
	}
	row.Token = cells[1]
	row.Class = cells[2]

	row.Distances = make([]int, phaseCount)
	for i := 0; i < phaseCount; i++ {
		if row.Distances[i], err = strconv.Atoi(cells[3+i]); err != nil {
			return trace.Row{}, fmt.Errorf("bad distance %q", cells[3+i])
		}
	}

	base := 3 + phaseCount
	if row.MinDist, err = strconv.Atoi(cells[base]); err != nil {
		return trace.Row{}, fmt.Errorf("bad min dist %q", cells[base])
	}
	switch cells[base+1] {
	case "Y":
		row.Hazard = true
	case "N":
		row.Hazard = false
	default:
		return trace.Row{}, fmt.Errorf("bad hazard flag %q", cells[base+1])
	}
	if cells[base+2] != emptyCell {
		row.HazardKind = cells[base+2]
	}
	if row.Cycle, err = strconv.Atoi(cells[base+3]); err != nil {
		return trace.Row{}, fmt.Errorf("bad cycle %q", cells[base+3])
	}
	if cells[base+4] != emptyCell {
		row.Notes = cells[base+4]
	}
	return row, nil
}
