package dataset

import (
	"math"
	"strings"
	"testing"
)

func TestReadEmissions(t *testing.T) {
	input := "0.8,0.1,0.1\n0.05, 0.05, 0.9\n"
	probs, err := ReadEmissions(strings.NewReader(input), EmissionOptions{})
	if err != nil {
		t.Fatalf("read emissions: %v", err)
	}
	if len(probs) != 2 {
		t.Fatalf("row count: got=%d want=2", len(probs))
	}
	if probs[0][0] != 0.8 || probs[1][2] != 0.9 {
		t.Fatalf("unexpected values: %v", probs)
	}
}

func TestReadEmissionsHeader(t *testing.T) {
	input := "inner,outer,membrane\n0.8,0.1,0.1\n"
	probs, err := ReadEmissions(strings.NewReader(input), EmissionOptions{HasHeader: true})
	if err != nil {
		t.Fatalf("read emissions: %v", err)
	}
	if len(probs) != 1 || probs[0][0] != 0.8 {
		t.Fatalf("unexpected result: %v", probs)
	}
}

func TestReadEmissionsLogSpace(t *testing.T) {
	input := "-0.2231435513,-2.3025850930,-2.3025850930\n"
	probs, err := ReadEmissions(strings.NewReader(input), EmissionOptions{LogSpace: true})
	if err != nil {
		t.Fatalf("read emissions: %v", err)
	}
	if math.Abs(probs[0][0]-0.8) > 1e-9 || math.Abs(probs[0][1]-0.1) > 1e-9 {
		t.Fatalf("unexpected probabilities: %v", probs[0])
	}

	if _, err := ReadEmissions(strings.NewReader("0.5,-1,-1\n"), EmissionOptions{LogSpace: true}); err == nil {
		t.Fatal("expected positive log-probability error")
	}
}

func TestReadEmissionsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short row", "0.5,0.5\n"},
		{"long row", "0.25,0.25,0.25,0.25\n"},
		{"negative", "0.5,-0.1,0.6\n"},
		{"non-numeric", "0.5,x,0.4\n"},
		{"header only", "a,b,c\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := EmissionOptions{HasHeader: tc.name == "header only"}
			if _, err := ReadEmissions(strings.NewReader(tc.input), opts); err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
		})
	}
}
