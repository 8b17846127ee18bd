package contin

import (
	"math"
	"testing"

	"github.com/soypat/contin/contstate"
)

func TestComputeBranch_Equilibrium(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	settings, err := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 30, 20, 1e-8, 1e-8)
	if err != nil {
		t.Fatalf("unexpected settings error: %v", err)
	}

	branch, err := ComputeBranch(sys, settings, true, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch.Len() < 2 {
		t.Fatalf("expected branch to advance past the seed point, got %d points", branch.Len())
	}
	if branch.CurveType.Kind != contstate.CurveEquilibrium {
		t.Fatalf("expected CurveEquilibrium, got %v", branch.CurveType.Kind)
	}
	first, _ := branch.First()
	if len(first.Eigenvalues) != 1 {
		t.Fatalf("expected the seed point to carry one eigenvalue, got %d", len(first.Eigenvalues))
	}
}

func TestComputeBranch_RejectsBadSeed(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{math.NaN()}, 1)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 30, 20, 1e-8, 1e-8)

	_, err := ComputeBranch(sys, settings, true, nil)
	if err == nil {
		t.Fatal("expected an error for a NaN seed")
	}
}

func TestComputeBranchRunner_StepsIncrementally(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 30, 20, 1e-8, 1e-8)

	runner, err := ComputeBranchRunner(sys, settings, true, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded := runner.GetProgress().PointsComputed; seeded != 1 {
		t.Fatalf("expected the resumable runner to seed exactly one point, got %d", seeded)
	}
	runner.Step(5)
	branch, err := runner.GetResult()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch.Len() <= 1 {
		t.Fatalf("expected Step to advance the branch, got %d points", branch.Len())
	}
}

func TestExtendBranch_NoOpWithZeroSteps(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 10, 20, 1e-8, 1e-8)

	branch, err := ComputeBranch(sys, settings, true, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zeroSettings := settings
	zeroSettings.MaxSteps = 0

	extended, err := ExtendBranch(branch, sys, zeroSettings, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extended != branch {
		t.Fatal("expected ExtendBranch with MaxSteps=0 to return the same branch unchanged")
	}
}

func TestExtendBranch_RejectsEmptyBranch(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 10, 20, 1e-8, 1e-8)

	empty := &contstate.Branch{}
	_, err := ExtendBranch(empty, sys, settings, true)
	if err == nil {
		t.Fatal("expected an error extending an empty branch")
	}
}

func TestExtendBranch_GrowsPastOriginal(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 5, 20, 1e-8, 1e-8)

	branch, err := ComputeBranch(sys, settings, true, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := branch.Len()

	sys2 := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	extended, err := ExtendBranch(branch, sys2, settings, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extended.Len() <= before {
		t.Fatalf("expected ExtendBranch to add points beyond %d, got %d", before, extended.Len())
	}
}

func TestContinueFromBifurcation_RejectsLabelMismatch(t *testing.T) {
	field := scalarFoldField{}
	foldSys := NewFoldSystem(field, 0, 0, []float64{0, 0}, []float64{0}, 0, 0)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 10, 20, 1e-8, 1e-8)

	source := contstate.BranchPoint{StabilityLabel: contstate.LabelHopf}
	_, err := ContinueFromBifurcation(source, contstate.CurveFold, foldSys, settings, true, nil)
	if err == nil {
		t.Fatal("expected an error when the source label does not match the requested curve kind")
	}
}

func TestContinueFromBifurcation_RejectsSystemKindMismatch(t *testing.T) {
	field := scalarFoldField{}
	eqSys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)
	settings, _ := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 10, 20, 1e-8, 1e-8)

	source := contstate.BranchPoint{StabilityLabel: contstate.LabelFold}
	_, err := ContinueFromBifurcation(source, contstate.CurveFold, eqSys, settings, true, nil)
	if err == nil {
		t.Fatal("expected an error when the supplied system's curve kind does not match the requested kind")
	}
}

func TestLabelMatchesKind(t *testing.T) {
	cases := []struct {
		label contstate.StabilityLabel
		kind  contstate.CurveKind
		want  bool
	}{
		{contstate.LabelFold, contstate.CurveFold, true},
		{contstate.LabelHopf, contstate.CurveFold, false},
		{contstate.LabelHopf, contstate.CurveHopf, true},
		{contstate.LabelCycleFold, contstate.CurveLPC, true},
		{contstate.LabelPeriodDoubling, contstate.CurvePD, true},
		{contstate.LabelNeimarkSacker, contstate.CurveNS, true},
		{contstate.LabelHopf, contstate.CurveLimitCycle, true},
		{contstate.LabelFold, contstate.CurveEquilibrium, false},
	}
	for _, c := range cases {
		got := labelMatchesKind(c.label, c.kind)
		if got != c.want {
			t.Errorf("labelMatchesKind(%v, %v) = %v, want %v", c.label, c.kind, got, c.want)
		}
	}
}

func TestValidateSeed(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)

	if err := validateSeed(sys, sys.Pack()); err != nil {
		t.Fatalf("unexpected error validating a well-formed seed: %v", err)
	}
	if err := validateSeed(sys, []float64{1}); err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
	if err := validateSeed(sys, []float64{math.NaN(), -1}); err == nil {
		t.Fatal("expected a NaN seed to be rejected")
	}
}

func TestWireSystem_UnsupportedType(t *testing.T) {
	_, err := wireSystem(unsupportedDefiningSystem{})
	if err == nil {
		t.Fatal("expected an error for an unwired DefiningSystem implementation")
	}
}

// unsupportedDefiningSystem satisfies DefiningSystem but has no case in
// wireSystem's type switch, exercising its default branch.
type unsupportedDefiningSystem struct{}

func (unsupportedDefiningSystem) Dim() int                       { return 1 }
func (unsupportedDefiningSystem) G(u []float64) []float64        { return u }
func (unsupportedDefiningSystem) Gu(u []float64) []float64       { return []float64{1} }
func (unsupportedDefiningSystem) Pack() []float64                { return []float64{0} }
func (unsupportedDefiningSystem) Unpack(u []float64)             {}
func (unsupportedDefiningSystem) RefreshBordering(u []float64)   {}
func (unsupportedDefiningSystem) CurveKind() contstate.CurveKind { return contstate.CurveEquilibrium }

func TestWireEigenvalueSorting(t *testing.T) {
	eig := []complex128{complex(-1, 0), complex(2, 1), complex(2, -1), complex(0, 0)}
	sortEigenvaluesFlow(eig)
	for i := 0; i+1 < len(eig); i++ {
		if real(eig[i]) < real(eig[i+1]) {
			t.Fatalf("sortEigenvaluesFlow did not order by descending real part: %v", eig)
		}
	}

	mags := []complex128{complex(0.5, 0), complex(0, 1), complex(-2, 0)}
	sortEigenvaluesMagnitude(mags)
	for i := 0; i+1 < len(mags); i++ {
		if cmplxAbs(mags[i]) < cmplxAbs(mags[i+1]) {
			t.Fatalf("sortEigenvaluesMagnitude did not order by descending magnitude: %v", mags)
		}
	}
}
