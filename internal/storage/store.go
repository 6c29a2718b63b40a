package storage

import (
	"context"
	"time"

	"memtopo/internal/eval"
)

// Store persists evaluation run reports.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, report eval.Report) error
	GetRun(ctx context.Context, id string) (eval.Report, bool, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	HelixLen  int       `json:"helix_len"`
	Evaluated int       `json:"evaluated"`
	Correct   int       `json:"correct"`
	Accuracy  float64   `json:"accuracy"`
}

func summarize(report eval.Report) RunSummary {
	return RunSummary{
		ID:        report.RunID,
		CreatedAt: report.CreatedAt,
		HelixLen:  report.HelixLen,
		Evaluated: report.Evaluated,
		Correct:   report.Correct,
		Accuracy:  report.Accuracy,
	}
}
