package contin

import (
	"fmt"

	"github.com/soypat/contin/contstate"
)

// bifurcationTolerance bounds the test-function magnitude BifurcationLocator
// accepts as "located".
const bifurcationTolerance = 1e-6

// maxBisectionIterations bounds the chord bisection before giving up.
const maxBisectionIterations = 40

// BifurcationLocator brackets and classifies a sign change of a named test
// function between two consecutive accepted points.
type BifurcationLocator struct {
	System   DefiningSystem
	Settings contstate.ContinuationSettings
	TestFunc string
	// Eval recomputes the full TestFunctionSet at a trial point u, so the
	// locator can re-check the target function's sign without the caller
	// threading the whole evaluation pipeline through.
	Eval func(u []float64) TestFunctionSet
}

// LocateResult carries the classified point plus the stability label the
// caller should stamp on it.
type LocateResult struct {
	U              []float64
	TestValues     TestFunctionSet
	Label          contstate.StabilityLabel
	LocalizationOK bool
}

// Locate bisects along the chord from u0 to u1 (whose TestFunc values have
// opposite sign) until the test function's magnitude falls below
// bifurcationTolerance, correcting back onto the branch at each trial. The
// result is the last corrected trial point; no further Newton pass on an
// augmented (G, n, test=0) system is run.
func (loc BifurcationLocator) Locate(u0, u1 []float64, label contstate.StabilityLabel) (LocateResult, error) {
	f0 := loc.Eval(u0)[loc.TestFunc]
	f1 := loc.Eval(u1)[loc.TestFunc]
	if (f0 < 0) == (f1 < 0) {
		return LocateResult{}, fmt.Errorf("%w: no sign change in %q across bracket", ErrBifurcationLocalizationFailed, loc.TestFunc)
	}

	lo, hi := 0.0, 1.0
	flo := f0
	var mid []float64
	var fmid float64
	ok := false
	for iter := 0; iter < maxBisectionIterations; iter++ {
		sigma := 0.5 * (lo + hi)
		mid = chordPoint(u0, u1, sigma)
		corrected, err := loc.correctOnChord(u0, u1, mid)
		if err == nil {
			mid = corrected
		}
		fmid = loc.Eval(mid)[loc.TestFunc]
		if absF(fmid) < bifurcationTolerance {
			ok = true
			break
		}
		if (fmid < 0) == (flo < 0) {
			lo = sigma
			flo = fmid
		} else {
			hi = sigma
		}
	}

	tv := loc.Eval(mid)
	if !ok {
		return LocateResult{U: mid, TestValues: tv, Label: label, LocalizationOK: false}, nil
	}
	return LocateResult{U: mid, TestValues: tv, Label: label, LocalizationOK: true}, nil
}

func chordPoint(u0, u1 []float64, sigma float64) []float64 {
	out := make([]float64, len(u0))
	for i := range out {
		out[i] = (1-sigma)*u0[i] + sigma*u1[i]
	}
	return out
}

// correctOnChord runs the continuation corrector holding the chord position
// fixed: G(u)=0 augmented with a row pinning u's projection onto the u0->u1
// secant to mid's own projection, the same square-augmented-system shape
// ContinuationDriver.Step builds around the pseudo-arclength row, except
// the secant direction stands in for the tangent and the target distance
// is mid's chord offset rather than the step size h. Bare G/Gu alone is
// rectangular (Dim()-1 equations in Dim unknowns) and singular to
// linalg.LUSolve; this closes the system so each bisection trial actually
// corrects back onto the branch instead of staying on the straight chord.
func (loc BifurcationLocator) correctOnChord(u0, u1, mid []float64) ([]float64, error) {
	n := loc.System.Dim()
	d := subVec(u1, u0)
	target := contstate.Dot(subVec(mid, u0), d)
	settings, err := NewNewtonSettings(loc.Settings.CorrectorSteps, loc.Settings.CorrectorTol, 1)
	if err != nil {
		return nil, err
	}
	augResidual := func(u []float64) []float64 {
		g := loc.System.G(u)
		arc := contstate.Dot(subVec(u, u0), d) - target
		return append(g, arc)
	}
	augJacobian := func(u []float64) []float64 {
		gu := loc.System.Gu(u)
		full := make([]float64, n*n)
		copy(full, gu)
		copy(full[(n-1)*n:], d)
		return full
	}
	res, err := NewtonSolve(n, augResidual, augJacobian, mid, settings)
	if err != nil {
		return nil, err
	}
	return res.X, nil
}
