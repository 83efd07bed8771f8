package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/zipforce/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		id, err := st.InsertRun(ctx, model.Run{
			StartedAt:   start,
			EndedAt:     start.Add(2 * time.Second),
			ArchivePath: "a.zip",
			Members:     []string{"a.txt", "my notes.txt"},
			Mode:        model.ModeAlphabet,
			Alphabet:    "ab",
			MaxLength:   3,
			Status:      model.StatusExhausted,
			Attempts:    14,
			DurationMs:  2000,
		})
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		if id == "" {
			t.Fatalf("expected generated id")
		}
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %s %s", runs[0].ID, runs[1].ID)
	}
	got := runs[0]
	if !reflect.DeepEqual(got.Members, []string{"a.txt", "my notes.txt"}) {
		t.Fatalf("unexpected members %q", got.Members)
	}
	if got.Mode != model.ModeAlphabet || got.Status != model.StatusExhausted || got.Attempts != 14 {
		t.Fatalf("unexpected run %+v", got)
	}
	if !got.StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected start %v", got.StartedAt)
	}

	all, err := st.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list all runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestInsertRunKeepsExplicitID(t *testing.T) {
	st := openStore(t)
	id, err := st.InsertRun(context.Background(), model.Run{ID: "fixed", Members: []string{"a"}, Status: model.StatusFound, Password: "pw"})
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if id != "fixed" {
		t.Fatalf("expected explicit id, got %q", id)
	}
}
