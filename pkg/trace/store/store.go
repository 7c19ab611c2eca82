package store

import (
	"context"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace/analytics"
)

// Store is the main interface for persisting and querying trace runs
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	// ListRuns returns run metadata newest first. An empty folioID
	// matches all folios; a non-positive limit means no limit.
	ListRuns(ctx context.Context, folioID string, limit int) ([]RunMeta, error)
	DeleteRun(ctx context.Context, id string) error
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Rows
	SaveRows(ctx context.Context, runID string, rows []Row) error
	GetRows(ctx context.Context, runID string) ([]Row, error)
}

// Run represents a stored pipeline run
type Run struct {
	ID          string
	FolioID     string
	GeneratedAt time.Time
	Phases      []string
	Summary     analytics.Summary
}

// RunMeta is the listing view of a run
type RunMeta struct {
	ID          string
	FolioID     string
	GeneratedAt time.Time
	TotalTokens int
}

// Row represents a stored trace row
type Row struct {
	Position   int
	Token      string
	Class      string
	Distances  []int
	MinDist    int
	Hazard     bool
	HazardKind string
	Cycle      int
	Notes      string
}
