// Package viterbi decodes the most probable hidden-state path through the
// membrane-topology grammar for one sequence of per-position emission
// probabilities.
package viterbi

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"memtopo/internal/grammar"
)

// ErrEmptySequence reports a decode request with zero positions.
var ErrEmptySequence = errors.New("viterbi: empty emission sequence")

// Decode returns the highest-scoring state path for probs and its total
// log-score. probs holds one nonnegative probability vector over the
// grammar's observed classes per residue position; the vectors need not sum
// to one.
//
// Arg-max ties resolve to the lowest-indexed state, so decoding is
// deterministic. Decoding is O(T*n^2) time and O(T*n) space for the
// traceback table.
func Decode(g *grammar.Grammar, probs [][]float64) ([]int, float64, error) {
	T := len(probs)
	if T == 0 {
		return nil, 0, ErrEmptySequence
	}
	n := g.NStates

	// Each state's emission score is the log of the probability mass on
	// the classes that state is consistent with.
	z := make([][]float64, T)
	for t, p := range probs {
		if len(p) != grammar.NumClasses {
			return nil, 0, fmt.Errorf("viterbi: emission vector at position %d has %d classes, want %d",
				t, len(p), grammar.NumClasses)
		}
		row := make([]float64, n)
		for i := 0; i < n; i++ {
			row[i] = math.Log(floats.Dot(p, g.Emit[i]))
		}
		z[t] = row
	}

	// Flat traceback indexed t*n+state. Row 0 is never read.
	tb := make([]int32, T*n)

	best := make([]float64, n)
	floats.AddTo(best, g.Start, z[0])

	next := make([]float64, n)
	for t := 1; t < T; t++ {
		row := tb[t*n : (t+1)*n]
		for j := 0; j < n; j++ {
			bestPrev := 0
			bestScore := best[0] + g.Trans[0][j]
			for i := 1; i < n; i++ {
				if s := best[i] + g.Trans[i][j]; s > bestScore {
					bestScore = s
					bestPrev = i
				}
			}
			row[j] = int32(bestPrev)
			next[j] = bestScore + z[t][j]
		}
		best, next = next, best
	}

	// Transition to end: the decoded path must terminate in a loop state.
	floats.Add(best, g.End)
	terminal := floats.MaxIdx(best)
	score := best[terminal]

	path := make([]int, T)
	path[T-1] = terminal
	for t := T - 1; t > 0; t-- {
		path[t-1] = int(tb[t*n+path[t]])
	}
	return path, score, nil
}

// DecodeLog is Decode for per-position log-probability vectors, the form a
// neural sequence model emits.
func DecodeLog(g *grammar.Grammar, logp [][]float64) ([]int, float64, error) {
	probs := make([][]float64, len(logp))
	for t, row := range logp {
		p := make([]float64, len(row))
		for c, v := range row {
			p[c] = math.Exp(v)
		}
		probs[t] = p
	}
	return Decode(g, probs)
}
