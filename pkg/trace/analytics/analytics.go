// Package analytics aggregates trace rows into the summary statistics the
// report publishes. Every summary field is re-derivable from the rows; the
// verifier relies on that.
package analytics

// Summary holds the counts published in a control-trace report.
type Summary struct {
	TotalTokens   int
	UnknownTokens int
	MinDistLE1    int // rows with MinDist <= 1
	HazardTokens  int // rows with the hazard flag set
	CycleCount    int // highest cycle ordinal observed
	ClassCounts   map[string]int
	HazardKinds   map[string]int
}

// Row is the subset of trace row fields the aggregator needs. It mirrors
// the trace row columns without importing the trace package.
type Row struct {
	Class      string
	MinDist    int
	Hazard     bool
	HazardKind string
	Cycle      int
}

// Aggregator accumulates rows one at a time.
type Aggregator struct {
	summary Summary
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		summary: Summary{
			ClassCounts: make(map[string]int),
			HazardKinds: make(map[string]int),
		},
	}
}

// Add consumes one row.
func (a *Aggregator) Add(r Row) {
	s := &a.summary
	s.TotalTokens++
	if r.Class == "" || r.Class == "UNKNOWN" {
		s.UnknownTokens++
	} else {
		s.ClassCounts[r.Class]++
	}
	if r.MinDist <= 1 {
		s.MinDistLE1++
	}
	if r.Hazard {
		s.HazardTokens++
		if r.HazardKind != "" {
			s.HazardKinds[r.HazardKind]++
		}
	}
	if r.Cycle > s.CycleCount {
		s.CycleCount = r.Cycle
	}
}

// Snapshot returns a copy of the accumulated summary.
func (a *Aggregator) Snapshot() Summary {
	out := a.summary
	out.ClassCounts = make(map[string]int, len(a.summary.ClassCounts))
	for k, v := range a.summary.ClassCounts {
		out.ClassCounts[k] = v
	}
	out.HazardKinds = make(map[string]int, len(a.summary.HazardKinds))
	for k, v := range a.summary.HazardKinds {
		out.HazardKinds[k] = v
	}
	return out
}

// Summarize aggregates a full row slice in one call.
func Summarize(rows []Row) Summary {
	agg := NewAggregator()
	for _, r := range rows {
		agg.Add(r)
	}
	return agg.Snapshot()
}
