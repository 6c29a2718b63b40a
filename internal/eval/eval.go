// Package eval drives the decode-map-extract-match pipeline over sequences
// and aggregates topology-prediction accuracy.
package eval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"memtopo/internal/grammar"
	"memtopo/internal/region"
	"memtopo/internal/viterbi"
)

// Options selects pipeline variants.
type Options struct {
	// LegacyRegions switches region extraction to the reference
	// implementation's boundary behavior for comparisons against
	// historical results.
	LegacyRegions bool
}

// Evaluator runs the decoding pipeline against one shared read-only
// grammar. It is safe for concurrent use.
type Evaluator struct {
	grammar *grammar.Grammar
	opts    Options
}

func New(g *grammar.Grammar, opts Options) *Evaluator {
	return &Evaluator{grammar: g, opts: opts}
}

// Sequence is one evaluation input: per-position emission probabilities and
// the parallel ground-truth labels.
type Sequence struct {
	Name  string
	Probs [][]float64
	Truth []grammar.Label
}

// SequenceResult is the outcome of the pipeline for one sequence.
type SequenceResult struct {
	Name      string          `json:"name"`
	Score     float64         `json:"score"`
	Labels    string          `json:"labels"`
	Predicted []region.Region `json:"predicted"`
	Truth     []region.Region `json:"truth"`
	Correct   bool            `json:"correct"`
}

// EvaluateSequence decodes probs, maps the state path to coarse labels,
// extracts membrane regions from both the prediction and truth, and scores
// the overlap. Truth may be nil when only decoding is wanted; the verdict
// is then false and no truth regions are reported.
func (e *Evaluator) EvaluateSequence(seq Sequence) (SequenceResult, error) {
	if seq.Truth != nil && len(seq.Truth) != len(seq.Probs) {
		return SequenceResult{}, fmt.Errorf("eval: sequence %q: %d truth labels for %d positions",
			seq.Name, len(seq.Truth), len(seq.Probs))
	}

	path, score, err := viterbi.Decode(e.grammar, seq.Probs)
	if err != nil {
		return SequenceResult{}, fmt.Errorf("eval: sequence %q: %w", seq.Name, err)
	}
	labels, err := e.grammar.MapStates(path)
	if err != nil {
		return SequenceResult{}, fmt.Errorf("eval: sequence %q: %w", seq.Name, err)
	}

	result := SequenceResult{
		Name:      seq.Name,
		Score:     score,
		Labels:    grammar.FormatLabels(labels),
		Predicted: e.extract(labels),
	}
	if seq.Truth != nil {
		result.Truth = e.extract(seq.Truth)
		result.Correct = region.Match(result.Predicted, result.Truth)
	}
	return result, nil
}

func (e *Evaluator) extract(labels []grammar.Label) []region.Region {
	if e.opts.LegacyRegions {
		return region.ExtractLegacy(labels)
	}
	return region.Extract(labels)
}

// Config controls a batch run.
type Config struct {
	// Workers is the number of parallel decoders; values below 1 mean
	// sequential evaluation.
	Workers int
}

// Report aggregates a batch run. Failed counts sequences whose own input
// was invalid; their errors are collected without aborting the batch.
type Report struct {
	RunID     string           `json:"run_id"`
	HelixLen  int              `json:"helix_len"`
	CreatedAt time.Time        `json:"created_at"`
	Elapsed   time.Duration    `json:"elapsed"`
	Total     int              `json:"total"`
	Evaluated int              `json:"evaluated"`
	Correct   int              `json:"correct"`
	Failed    int              `json:"failed"`
	Accuracy  float64          `json:"accuracy"`
	Results   []SequenceResult `json:"results"`
	Errors    []string         `json:"errors,omitempty"`
}

// Run evaluates every sequence and aggregates the verdicts. A sequence
// whose input is invalid is skipped and recorded in the report; only
// context cancellation aborts the whole batch. Results keep input order
// regardless of worker count.
func (e *Evaluator) Run(ctx context.Context, seqs []Sequence, cfg Config) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		HelixLen:  e.grammar.HelixLen,
		CreatedAt: time.Now().UTC(),
		Total:     len(seqs),
	}
	started := time.Now()

	results := make([]*SequenceResult, len(seqs))
	errs := make([]error, len(seqs))

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(seqs) {
		workers = len(seqs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := e.EvaluateSequence(seqs[idx])
				if err != nil {
					errs[idx] = err
					continue
				}
				results[idx] = &res
			}
		}()
	}

	var ctxErr error
feed:
	for idx := range seqs {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return Report{}, ctxErr
	}

	for idx := range seqs {
		if errs[idx] != nil {
			report.Failed++
			report.Errors = append(report.Errors, errs[idx].Error())
			continue
		}
		report.Results = append(report.Results, *results[idx])
		report.Evaluated++
		if results[idx].Correct {
			report.Correct++
		}
	}
	if report.Evaluated > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Evaluated)
	}
	report.Elapsed = time.Since(started)
	return report, nil
}
