package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
	rows map[string][]store.Row
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs: make(map[string]store.Run),
		rows: make(map[string][]store.Row),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun inserts or replaces a run, keyed by ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id empty: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.runs[id]; ok {
		return copyRun(r), true, nil
	}
	return store.Run{}, false, nil
}

// ListRuns returns run metadata, newest first. An empty folioID matches all.
func (s *Store) ListRuns(ctx context.Context, folioID string, limit int) ([]store.RunMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []store.RunMeta
	for _, r := range s.runs {
		if folioID != "" && r.FolioID != folioID {
			continue
		}
		metas = append(metas, store.RunMeta{
			ID:          r.ID,
			FolioID:     r.FolioID,
			GeneratedAt: r.GeneratedAt,
			TotalTokens: r.Summary.TotalTokens,
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].GeneratedAt.Equal(metas[j].GeneratedAt) {
			return metas[i].ID > metas[j].ID
		}
		return metas[i].GeneratedAt.After(metas[j].GeneratedAt)
	})
	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}
	return metas, nil
}

// DeleteRun removes a run and its rows.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.runs, id)
	delete(s.rows, id)
	return nil
}

// DeleteRunsBefore removes all runs generated before the cutoff.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, r := range s.runs {
		if r.GeneratedAt.Before(cutoff) {
			delete(s.runs, id)
			delete(s.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

// SaveRows replaces the row set of a run.
func (s *Store) SaveRows(ctx context.Context, runID string, rows []store.Row) error {
	if runID == "" {
		return fmt.Errorf("run id empty: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]store.Row, len(rows))
	for i, r := range rows {
		copied[i] = copyRow(r)
	}
	s.rows[runID] = copied
	return nil
}

// GetRows returns a run's rows in position order.
func (s *Store) GetRows(ctx context.Context, runID string) ([]store.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.rows[runID]
	if !ok {
		return nil, nil
	}
	out := make([]store.Row, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func copyRun(r store.Run) store.Run {
	out := r
	out.Phases = append([]string(nil), r.Phases...)
	out.Summary.ClassCounts = copyCounts(r.Summary.ClassCounts)
	out.Summary.HazardKinds = copyCounts(r.Summary.HazardKinds)
	return out
}

func copyRow(r store.Row) store.Row {
	out := r
	out.Distances = append([]int(nil), r.Distances...)
	return out
}

func copyCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
