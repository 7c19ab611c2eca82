// Package report renders control traces as markdown and parses rendered
// reports back. The table schema is the one interface downstream consumers
// see, so rendering is deterministic and Parse accepts exactly what Render
// emits.
package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace"
)

// Summary bullet labels. Parse matches on these, so they are fixed.
const (
	labelTotal      = "Total tokens"
	labelUnknown    = "UNKNOWN tokens"
	labelMinDistLE1 = "Rows with Min_Dist <= 1"
	labelHazard     = "Hazard_Adj = Y"
	labelCycles     = "Cycles"

	classPrefix  = "Class "
	hazardPrefix = "Hazard "
)

const emptyCell = "-"

// Render writes the control-trace markdown report for a trace.
func Render(w io.Writer, tr trace.Trace) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s control trace\n\n", tr.FolioID)
	fmt.Fprintf(bw, "- Run: %s\n", tr.RunID)
	fmt.Fprintf(bw, "- Folio: %s\n", tr.FolioID)
	fmt.Fprintf(bw, "- Generated: %s\n", tr.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "- Phases: %s\n\n", strings.Join(tr.PhaseNames, " > "))

	header := make([]string, 0, len(tr.PhaseNames)+9)
	header = append(header, "Position", "Token", "Class")
	for _, p := range tr.PhaseNames {
		header = append(header, "D_"+p)
	}
	header = append(header, "Min_Dist", "Hazard_Adj", "Hazard_Kind", "Cycle", "Notes")

	fmt.Fprintf(bw, "| %s |\n", strings.Join(header, " | "))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintf(bw, "| %s |\n", strings.Join(sep, " | "))

	for _, row := range tr.Rows {
		cells := make([]string, 0, len(header))
		cells = append(cells,
			fmt.Sprintf("%d", row.Position),
			row.Token,
			row.Class,
		)
		for _, d := range row.Distances {
			cells = append(cells, fmt.Sprintf("%d", d))
		}
		cells = append(cells,
			fmt.Sprintf("%d", row.MinDist),
			yn(row.Hazard),
			orDash(row.HazardKind),
			fmt.Sprintf("%d", row.Cycle),
			orDash(row.Notes),
		)
		fmt.Fprintf(bw, "| %s |\n", strings.Join(cells, " | "))
	}

	fmt.Fprintf(bw, "\n## Summary\n\n")
	fmt.Fprintf(bw, "- **%s**: %d\n", labelTotal, tr.Summary.TotalTokens)
	fmt.Fprintf(bw, "- **%s**: %d\n", labelUnknown, tr.Summary.UnknownTokens)
	fmt.Fprintf(bw, "- **%s**: %d\n", labelMinDistLE1, tr.Summary.MinDistLE1)
	fmt.Fprintf(bw, "- **%s**: %d\n", labelHazard, tr.Summary.HazardTokens)
	for _, kind := range sortedKeys(tr.Summary.HazardKinds) {
		fmt.Fprintf(bw, "- **%s%s**: %d\n", hazardPrefix, kind, tr.Summary.HazardKinds[kind])
	}
	fmt.Fprintf(bw, "- **%s**: %d\n", labelCycles, tr.Summary.CycleCount)
	for _, phase := range tr.PhaseNames {
		if n, ok := tr.Summary.ClassCounts[phase]; ok {
			fmt.Fprintf(bw, "- **%s%s**: %d\n", classPrefix, phase, n)
		}
	}

	return bw.Flush()
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func orDash(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
