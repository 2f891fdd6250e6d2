package bench

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testRun() *Run {
	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &Run{
		ID:          "run-1",
		StartedAt:   started,
		CompletedAt: started.Add(90 * time.Second),
		Samples: []Sample{
			{
				ID:            "sample-1",
				RunID:         "run-1",
				Policy:        "slow_link",
				Interface:     "eth1",
				StartedAt:     started,
				Duration:      30 * time.Second,
				Bytes:         37500000,
				ThroughputBps: 10000000,
			},
			{
				ID:        "sample-2",
				RunID:     "run-1",
				Policy:    "lossy",
				Interface: "eth1",
				StartedAt: started.Add(40 * time.Second),
				Error:     "drive failed: connection reset",
			},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "bench.db"), nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveRun(ctx, testRun()); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}

	if len(got.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(got.Samples))
	}
	first := got.Samples[0]
	if first.Policy != "slow_link" || first.Bytes != 37500000 {
		t.Errorf("unexpected first sample: %+v", first)
	}
	if first.Duration != 30*time.Second {
		t.Errorf("duration = %v, want 30s", first.Duration)
	}
	if first.ThroughputBps != 10000000 {
		t.Errorf("throughput = %f, want 10000000", first.ThroughputBps)
	}
	if got.Samples[1].Error != "drive failed: connection reset" {
		t.Errorf("failed sample error not persisted: %+v", got.Samples[1])
	}
}

func TestStore_GetRun_Missing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetRun(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestStore_ListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testRun()
	second := testRun()
	second.ID = "run-2"
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.Samples = nil

	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}
	if err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Errorf("first listed run = %s, want newest", runs[0].ID)
	}
}
