// Package memtopo is the public entry point for membrane-topology
// decoding and evaluation: grammar construction, Viterbi decoding,
// coarse labeling, region extraction, and region scoring.
package memtopo

import (
	"context"

	"memtopo/internal/eval"
	"memtopo/internal/grammar"
	"memtopo/internal/region"
	"memtopo/internal/viterbi"
)

// DefaultHelixLen is the default per-direction helix chain length.
const DefaultHelixLen = grammar.DefaultHelixLen

// MinOverlap is the minimum positional overlap for a region match.
const MinOverlap = region.MinOverlap

type (
	Grammar        = grammar.Grammar
	Label          = grammar.Label
	Region         = region.Region
	Sequence       = eval.Sequence
	SequenceResult = eval.SequenceResult
	Report         = eval.Report
	Options        = eval.Options
	Config         = eval.Config
)

const (
	Inner    = grammar.Inner
	Outer    = grammar.Outer
	Membrane = grammar.Membrane
	Signal   = grammar.Signal
)

// NewGrammar builds the fixed-topology HMM for the given per-direction
// helix chain length.
func NewGrammar(nHelix int) (*Grammar, error) {
	return grammar.New(nHelix)
}

// Decode returns the highest-scoring state path for one sequence of
// per-position emission probability vectors, with its log-score.
func Decode(g *Grammar, probs [][]float64) ([]int, float64, error) {
	return viterbi.Decode(g, probs)
}

// DecodeLog is Decode for log-probability vectors.
func DecodeLog(g *Grammar, logp [][]float64) ([]int, float64, error) {
	return viterbi.DecodeLog(g, logp)
}

// MapStates translates a decoded state path into coarse topology labels.
func MapStates(g *Grammar, path []int) ([]Label, error) {
	return g.MapStates(path)
}

// ExtractRegions returns the maximal membrane runs in a label sequence.
func ExtractRegions(labels []Label) []Region {
	return region.Extract(labels)
}

// MatchRegions reports whether a predicted region list correctly identifies
// the true membrane regions.
func MatchRegions(pred, truth []Region) bool {
	return region.Match(pred, truth)
}

// ParseLabels decodes a raw I/O/M/S label string.
func ParseLabels(s string) ([]Label, error) {
	return grammar.ParseLabels(s)
}

// Evaluate runs the full decode-and-score pipeline over a batch of
// sequences against one shared grammar.
func Evaluate(ctx context.Context, g *Grammar, seqs []Sequence, opts Options, cfg Config) (Report, error) {
	return eval.New(g, opts).Run(ctx, seqs, cfg)
}
