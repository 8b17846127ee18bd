package contin

import (
	"math"
	"testing"
)

func TestEquilibriumTestFunctions_FlowFoldAtSingularJacobian(t *testing.T) {
	// singular Jacobian -> det = 0 -> fold test function is exactly zero
	jac := []float64{1, 1, 1, 1}
	eig := []complex128{0, 2}
	tf := EquilibriumTestFunctions(jac, 2, eig, false)
	if math.Abs(tf["fold"]) > 1e-12 {
		t.Fatalf("expected fold=0 for singular jacobian, got %v", tf["fold"])
	}
}

func TestEquilibriumTestFunctions_HopfSignChange(t *testing.T) {
	stable := []complex128{complex(-1, 2), complex(-1, -2)}
	unstable := []complex128{complex(1, 2), complex(1, -2)}
	jac := []float64{0, 1, -1, 0}
	before := EquilibriumTestFunctions(jac, 2, stable, false)["hopf"]
	after := EquilibriumTestFunctions(jac, 2, unstable, false)["hopf"]
	if (before < 0) == (after < 0) {
		t.Fatalf("expected sign change across hopf crossing: before=%v after=%v", before, after)
	}
}

func TestLimitCycleTestFunctions_ExcludesTrivialMultiplier(t *testing.T) {
	fr := FloquetResult{Multipliers: []complex128{1.0001, 0.5, -1.2}, TrivialIndex: 0}
	tf := LimitCycleTestFunctions(fr)
	// lpc uses (0.5-1)*(-1.2-1) = (-0.5)*(-2.2) = 1.1
	if math.Abs(tf["lpc"]-1.1) > 1e-9 {
		t.Fatalf("got lpc=%v, want 1.1", tf["lpc"])
	}
}

func TestTestFunctionSet_SortedKeysDeterministic(t *testing.T) {
	tf := TestFunctionSet{"b": 1, "a": 2, "c": 3}
	keys := tf.SortedKeys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}
