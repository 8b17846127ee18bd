package linalg

import (
	"math"
	"testing"
)

func TestLUSolve_Identity(t *testing.T) {
	a := []float64{1, 0, 0, 1}
	b := []float64{3, 4}
	x, err := LUSolve(2, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x[0] != 3 || x[1] != 4 {
		t.Fatalf("got %v, want [3 4]", x)
	}
}

func TestLUSolve_KnownSystem(t *testing.T) {
	// [2 1; 1 3] x = [3 5] -> x = [0.8, 1.4]
	a := []float64{2, 1, 1, 3}
	b := []float64{3, 5}
	x, err := LUSolve(2, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.8, 1.4}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-9 {
			t.Fatalf("got %v, want %v", x, want)
		}
	}
}

func TestLUSolve_Singular(t *testing.T) {
	a := []float64{1, 2, 2, 4}
	b := []float64{1, 2}
	_, err := LUSolve(2, a, b)
	if err == nil {
		t.Fatal("expected error for singular matrix")
	}
}

func TestLUSolve_DimensionMismatch(t *testing.T) {
	_, err := LUSolve(2, []float64{1, 2, 3}, []float64{1, 2})
	if err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestLUSolveMulti_MatchesLUSolve(t *testing.T) {
	a := []float64{2, 1, 1, 3}
	b := []float64{3, 5, 1, 0}
	out, err := LUSolveMulti(2, 2, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x1, _ := LUSolve(2, a, []float64{3, 1})
	if math.Abs(out[0]-x1[0]) > 1e-9 || math.Abs(out[2]-x1[1]) > 1e-9 {
		t.Fatalf("column 0 mismatch: %v vs %v", out, x1)
	}
}

func TestDet(t *testing.T) {
	a := []float64{2, 1, 1, 3}
	if d := Det(2, a); math.Abs(d-5) > 1e-9 {
		t.Fatalf("got det=%v, want 5", d)
	}
}
