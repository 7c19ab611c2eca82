package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/epilectrik/voynich-sub007/pkg/trace/store"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store/memstore"
)

func seedRuns(t *testing.T, s store.Store, folio string, ids []string, base time.Time) {
	t.Helper()
	for i, id := range ids {
		err := s.SaveRun(context.Background(), store.Run{
			ID:          id,
			FolioID:     folio,
			GeneratedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
}

func TestClean_KeepLatest(t *testing.T) {
	s := memstore.New()
	base := time.Now().Add(-10 * time.Hour)
	seedRuns(t, s, "f105v", []string{"a", "b", "c", "d"}, base)

	cleaner := Cleaner{Store: s, KeepLatest: 2}
	res, err := cleaner.Clean(context.Background())
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if res.Deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", res.Deleted)
	}

	metas, _ := s.ListRuns(context.Background(), "f105v", 0)
	if len(metas) != 2 || metas[0].ID != "d" || metas[1].ID != "c" {
		t.Errorf("newest two should survive: %+v", metas)
	}
}

func TestClean_KeepLatestIsPerFolio(t *testing.T) {
	s := memstore.New()
	base := time.Now().Add(-10 * time.Hour)
	seedRuns(t, s, "f105v", []string{"a1", "a2"}, base)
	seedRuns(t, s, "f104r", []string{"b1", "b2"}, base.Add(time.Minute))

	cleaner := Cleaner{Store: s, KeepLatest: 1}
	res, err := cleaner.Clean(context.Background())
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if res.Deleted != 2 {
		t.Errorf("expected one deletion per folio, got %d", res.Deleted)
	}
	for _, folio := range []string{"f105v", "f104r"} {
		metas, _ := s.ListRuns(context.Background(), folio, 0)
		if len(metas) != 1 {
			t.Errorf("folio %s: expected 1 survivor, got %d", folio, len(metas))
		}
	}
}

func TestClean_MaxAge(t *testing.T) {
	s := memstore.New()
	seedRuns(t, s, "f105v", []string{"old"}, time.Now().Add(-48*time.Hour))
	seedRuns(t, s, "f105v", []string{"new"}, time.Now())

	cleaner := Cleaner{Store: s, MaxAge: 24 * time.Hour}
	res, err := cleaner.Clean(context.Background())
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if res.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", res.Deleted)
	}
	if _, found, _ := s.GetRun(context.Background(), "new"); !found {
		t.Error("recent run should survive")
	}
}

func TestClean_NoStore(t *testing.T) {
	cleaner := Cleaner{}
	if _, err := cleaner.Clean(context.Background()); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestClean_NoPolicyIsNoop(t *testing.T) {
	s := memstore.New()
	seedRuns(t, s, "f105v", []string{"a"}, time.Now())

	cleaner := Cleaner{Store: s}
	res, err := cleaner.Clean(context.Background())
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if res.Deleted != 0 {
		t.Errorf("no policy should delete nothing, got %d", res.Deleted)
	}
}
