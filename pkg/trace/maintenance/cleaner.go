package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace/store"
)

// Cleaner prunes old trace runs from a store.
type Cleaner struct {
	Store store.Store

	// KeepLatest retains the newest N runs per folio. Zero disables
	// count-based pruning.
	KeepLatest int

	// MaxAge deletes runs older than this. Zero disables age-based pruning.
	MaxAge time.Duration
}

// Result summarizes the pruning run.
type Result struct {
	Deleted int
}

// Clean applies the retention policy and returns how many runs were removed.
func (c *Cleaner) Clean(ctx context.Context) (Result, error) {
	var res Result
	if c.Store == nil {
		return res, errors.New("cleaner: invalid configuration")
	}

	if c.MaxAge > 0 {
		n, err := c.Store.DeleteRunsBefore(ctx, time.Now().Add(-c.MaxAge))
		if err != nil {
			return res, err
		}
		res.Deleted += n
	}

	if c.KeepLatest > 0 {
		deleted, err := c.pruneByCount(ctx)
		if err != nil {
			return res, err
		}
		res.Deleted += deleted
	}

	return res, nil
}

// pruneByCount deletes everything past the KeepLatest newest runs per folio.
func (c *Cleaner) pruneByCount(ctx context.Context) (int, error) {
	metas, err := c.Store.ListRuns(ctx, "", 0)
	if err != nil {
		return 0, err
	}

	perFolio := make(map[string]int)
	deleted := 0
	for _, m := range metas { // newest first
		perFolio[m.FolioID]++
		if perFolio[m.FolioID] <= c.KeepLatest {
			continue
		}
		if err := c.Store.DeleteRun(ctx, m.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
