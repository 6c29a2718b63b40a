package storage

import (
	"context"
	"testing"
	"time"

	"memtopo/internal/eval"
	"memtopo/internal/region"
)

func sampleReport(id string, createdAt time.Time) eval.Report {
	return eval.Report{
		RunID:     id,
		HelixLen:  21,
		CreatedAt: createdAt,
		Total:     2,
		Evaluated: 2,
		Correct:   1,
		Accuracy:  0.5,
		Results: []eval.SequenceResult{{
			Name:      "seq_a",
			Score:     -42.5,
			Labels:    "IIMMOO",
			Predicted: []region.Region{{Start: 2, End: 4}},
			Truth:     []region.Region{{Start: 2, End: 4}},
			Correct:   true,
		}},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := sampleReport("run-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected stored run")
	}
	if got.Accuracy != input.Accuracy || len(got.Results) != 1 || got.Results[0].Labels != "IIMMOO" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), sampleReport("run-1", time.Now())); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}

func TestMemoryStoreRejectsEmptyRunID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, eval.Report{}); err == nil {
		t.Fatal("expected run id error")
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, r := range []eval.Report{
		sampleReport("run-b", base.Add(time.Hour)),
		sampleReport("run-a", base),
		sampleReport("run-c", base.Add(2*time.Hour)),
	} {
		if err := store.SaveRun(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.RunID, err)
		}
	}

	summaries, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"run-a", "run-b", "run-c"}
	if len(summaries) != len(want) {
		t.Fatalf("summary count: got=%d want=%d", len(summaries), len(want))
	}
	for i, id := range want {
		if summaries[i].ID != id {
			t.Fatalf("order at %d: got=%s want=%s", i, summaries[i].ID, id)
		}
	}
	if summaries[0].Accuracy != 0.5 || summaries[0].Evaluated != 2 {
		t.Fatalf("summary fields: %+v", summaries[0])
	}
}
