package grammar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultHelixLen is the per-direction helix chain length of the reference
// transmembrane topology.
const DefaultHelixLen = 21

// NumClasses is the number of observed emission classes: inner loop, outer
// loop, membrane.
const NumClasses = 3

// eps is the float64 machine epsilon, used to floor zero weights before
// taking logs so structurally disallowed transitions score very low instead
// of propagating -Inf through later sums.
var eps = math.Nextafter(1, 2) - 1

// Grammar is the fixed-topology membrane HMM: start/end log-priors, the
// transition log-probability matrix, the 0/1 state-class emission
// consistency matrix, and the state to coarse-label mapping.
//
// A Grammar is immutable after New and safe to share across concurrent
// decodes without locking.
type Grammar struct {
	HelixLen int
	NStates  int

	Start []float64
	End   []float64
	Trans [][]float64

	Emit    [][]float64
	Mapping []Label
}

// New builds the grammar for a per-direction helix chain of nHelix states.
//
// State layout: 0 inner loop, 1 outer loop, 2 signal peptide,
// [3, 3+H) helix traversed inner to outer, [3+H, 3+2H) helix traversed
// outer to inner. Loop states self-loop and feed the first state of one
// chain; each chain state has a single successor, with the last chain state
// re-emerging into the opposite loop. A path can only terminate in a loop
// state.
func New(nHelix int) (*Grammar, error) {
	if nHelix <= 0 {
		return nil, fmt.Errorf("grammar: helix chain length must be positive, got %d", nHelix)
	}

	n := 3 + 2*nHelix

	start := make([]float64, n)
	start[0] = 1 // inner
	start[1] = 1 // outer
	start[2] = 1 // signal peptide

	end := make([]float64, n)
	end[0] = 1
	end[1] = 1

	trans := newMatrix(n, n)
	trans[0][0] = 1
	trans[0][3] = 1 // inner -> first inner->outer chain state
	trans[1][1] = 1
	trans[1][3+nHelix] = 1 // outer -> first outer->inner chain state
	trans[2][0] = 1
	trans[2][1] = 1
	for i := 3; i < 2+nHelix; i++ {
		trans[i][i+1] = 1
	}
	trans[2+nHelix][1] = 1
	for i := 3 + nHelix; i < 2+2*nHelix; i++ {
		trans[i][i+1] = 1
	}
	trans[2+2*nHelix][0] = 1

	// Loop states are consistent with both loop classes; chain states only
	// with the membrane class. The signal-peptide row stays all zero.
	emit := newMatrix(n, NumClasses)
	emit[0][0] = 1
	emit[0][1] = 1
	emit[1][0] = 1
	emit[1][1] = 1
	for i := 3; i < n; i++ {
		emit[i][2] = 1
	}

	mapping := make([]Label, n)
	mapping[0] = Inner
	mapping[1] = Outer
	mapping[2] = Signal
	for i := 3; i < n; i++ {
		mapping[i] = Membrane
	}

	g := &Grammar{
		HelixLen: nHelix,
		NStates:  n,
		Start:    logNormalize(start),
		End:      logNormalize(end),
		Trans:    trans,
		Emit:     emit,
		Mapping:  mapping,
	}
	for i := range g.Trans {
		g.Trans[i] = logNormalize(g.Trans[i])
	}
	return g, nil
}

// MapStates translates a decoded state path into coarse topology labels.
func (g *Grammar) MapStates(path []int) ([]Label, error) {
	labels := make([]Label, len(path))
	for i, s := range path {
		if s < 0 || s >= g.NStates {
			return nil, fmt.Errorf("grammar: state %d at position %d out of range [0,%d)", s, i, g.NStates)
		}
		labels[i] = g.Mapping[s]
	}
	return labels, nil
}

// logNormalize converts un-normalized nonnegative weights into
// log-probabilities with an epsilon floor on every entry and on the sum:
// log(w+eps) - log(sum(w)+eps). Zero weights come out as large negative
// scores rather than -Inf.
func logNormalize(w []float64) []float64 {
	logTotal := math.Log(floats.Sum(w) + eps)
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = math.Log(v+eps) - logTotal
	}
	return out
}

func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}
