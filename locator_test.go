package contin

import (
	"math"
	"testing"

	"github.com/soypat/contin/contstate"
)

// TestBifurcationLocator_CorrectsOntoBranch brackets the fold of
// scalarFoldField (x'=lambda-x^2, fold at x=0, lambda=0) with a chord whose
// midpoint sits off the lambda=x^2 curve, and checks that Locate's
// corrector pulls each bisection trial back onto the branch rather than
// just bisecting along the straight chord.
func TestBifurcationLocator_CorrectsOntoBranch(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{0}, []float64{0.2}, 0.04)
	settings, err := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 50, 20, 1e-10, 1e-8)
	if err != nil {
		t.Fatalf("unexpected settings error: %v", err)
	}

	u0 := []float64{0.2, 0.04}
	u1 := []float64{-0.2, 0.04}

	loc := BifurcationLocator{
		System:   sys,
		Settings: settings,
		TestFunc: "fold",
		Eval: func(u []float64) TestFunctionSet {
			jx := field.Jx(nil, u[:1], []float64{u[1]})
			return TestFunctionSet{"fold": jx[0]}
		},
	}

	res, err := loc.Locate(u0, u1, contstate.LabelFold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.LocalizationOK {
		t.Fatal("expected localization to succeed")
	}
	if math.Abs(res.TestValues["fold"]) > bifurcationTolerance {
		t.Fatalf("located test function magnitude %v exceeds tolerance %v", res.TestValues["fold"], bifurcationTolerance)
	}

	g := sys.G(res.U)
	for i, v := range g {
		if math.Abs(v) > 1e-6 {
			t.Fatalf("corrected point is off the branch: G[%d]=%v (want ~0)", i, v)
		}
	}
}

// TestBifurcationLocator_RejectsNoSignChange checks the bracket-validation
// path: a chord whose endpoints share the test function's sign is not
// bisectable.
func TestBifurcationLocator_RejectsNoSignChange(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{0}, []float64{0.2}, 0.04)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 50, 20, 1e-10, 1e-8)

	loc := BifurcationLocator{
		System:   sys,
		Settings: settings,
		TestFunc: "fold",
		Eval: func(u []float64) TestFunctionSet {
			jx := field.Jx(nil, u[:1], []float64{u[1]})
			return TestFunctionSet{"fold": jx[0]}
		},
	}

	_, err := loc.Locate([]float64{0.2, 0.04}, []float64{0.3, 0.09}, contstate.LabelFold)
	if err == nil {
		t.Fatal("expected an error when the bracket carries no sign change")
	}
}
