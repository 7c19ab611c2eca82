package report

import (
	"fmt"
	"sort"

	"github.com/epilectrik/voynich-sub007/pkg/trace/analytics"
)

// Mismatch records one summary field that disagrees with the table.
type Mismatch struct {
	Field    string
	Reported int
	Computed int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: reported %d, computed %d", m.Field, m.Reported, m.Computed)
}

// Verify recomputes the summary from the parsed rows and returns every field
// where the written summary disagrees. An empty result means the report is
// internally consistent.
func Verify(rep Report) []Mismatch {
	rows := make([]analytics.Row, len(rep.Rows))
	for i, r := range rep.Rows {
		rows[i] = analytics.Row{
			Class:      r.Class,
			MinDist:    r.MinDist,
			Hazard:     r.Hazard,
			HazardKind: r.HazardKind,
			Cycle:      r.Cycle,
		}
	}
	computed := analytics.Summarize(rows)

	var out []Mismatch
	check := func(field string, reported, got int) {
		if reported != got {
			out = append(out, Mismatch{Field: field, Reported: reported, Computed: got})
		}
	}

	check(labelTotal, rep.Summary.TotalTokens, computed.TotalTokens)
	check(labelUnknown, rep.Summary.UnknownTokens, computed.UnknownTokens)
	check(labelMinDistLE1, rep.Summary.MinDistLE1, computed.MinDistLE1)
	check(labelHazard, rep.Summary.HazardTokens, computed.HazardTokens)
	check(labelCycles, rep.Summary.CycleCount, computed.CycleCount)

	for _, kind := range unionKeys(rep.Summary.HazardKinds, computed.HazardKinds) {
		check(hazardPrefix+kind, rep.Summary.HazardKinds[kind], computed.HazardKinds[kind])
	}
	for _, class := range unionKeys(rep.Summary.ClassCounts, computed.ClassCounts) {
		check(classPrefix+class, rep.Summary.ClassCounts[class], computed.ClassCounts[class])
	}
	return out
}

func unionKeys(a, b map[string]int) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		set[k] = struct{}{}
	}
	for k := range b {
		set[k] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
