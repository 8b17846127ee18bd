package contin

import (
	"fmt"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/linalg"
)

// ContinuationDriver runs the predictor-corrector loop over a
// DefiningSystem, producing a contstate.Branch. Each call to Step advances
// at most one accepted (or terminally failed) point; ContinuationDriver
// itself holds no goroutines or timers, driven entirely by its caller.
type ContinuationDriver struct {
	System   DefiningSystem
	Settings contstate.ContinuationSettings
	Forward  bool

	// TestFuncs evaluates the named test functions at an unknown vector u;
	// Classify maps a crossed test-function name to the stability label
	// recorded on the resulting BranchPoint.
	TestFuncs func(u []float64) TestFunctionSet
	Classify  func(name string) contstate.StabilityLabel
	// ToBranchPoint converts a converged unknown vector plus its spectrum
	// into a contstate.BranchPoint, curve-type specific (equilibrium vs
	// limit cycle vs curve-continuation unpacking differs per §3).
	ToBranchPoint func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint
	// Spectrum computes the relevant eigenvalues (Jacobian or Floquet) at
	// u, used both for the returned BranchPoint and for TestFuncs' inputs
	// where those already come bundled with eig.
	Spectrum func(u []float64) []complex128

	h        float64
	uPrev    []float64
	tPrev    []float64
	prevTV   TestFunctionSet
	reversals int
	stalls    int
}

// NewContinuationDriver seeds the driver at u0 with an initial tangent
// guess computed from the defining system's Jacobian.
func NewContinuationDriver(system DefiningSystem, settings contstate.ContinuationSettings, forward bool, u0 []float64) (*ContinuationDriver, error) {
	d := &ContinuationDriver{System: system, Settings: settings, Forward: forward, h: settings.StepSize, uPrev: append([]float64(nil), u0...)}
	t, err := d.computeTangent(u0, nil)
	if err != nil {
		return nil, err
	}
	if !forward {
		for i := range t {
			t[i] = -t[i]
		}
	}
	d.tPrev = t
	return d, nil
}

// computeTangent solves [G_u; t_prev^T] t = [0;1]. If tPrev is nil (first
// point), the augmenting row targets the last unknown direction instead,
// giving a canonical initial orientation.
func (d *ContinuationDriver) computeTangent(u []float64, tPrev []float64) ([]float64, error) {
	n := d.System.Dim()
	gu := d.System.Gu(u)
	border := make([]float64, n)
	if tPrev == nil {
		border[n-1] = 1
	} else {
		copy(border, tPrev)
	}
	full := make([]float64, n*n)
	copy(full, gu[:len(gu)])
	copy(full[(n-1)*n:], border)
	rhs := make([]float64, n)
	rhs[n-1] = 1
	t, err := linalg.LUSolve(n, full, rhs)
	if err != nil {
		return nil, fmt.Errorf("%w: tangent computation: %v", ErrSingularJacobian, err)
	}
	norm := contstate.Norm2(t)
	if norm < 1e-14 {
		return nil, fmt.Errorf("%w: degenerate tangent", ErrSingularJacobian)
	}
	for i := range t {
		t[i] /= norm
	}
	if tPrev != nil && contstate.Dot(t, tPrev) < 0 {
		for i := range t {
			t[i] = -t[i]
		}
	}
	return t, nil
}

// StepOutcome reports what happened during one call to Step.
type StepOutcome struct {
	Accepted    bool
	Point       contstate.BranchPoint
	Bifurcation *contstate.BranchPoint
	Err         error
	Terminal    bool
}

// Step performs one predictor-corrector iteration: predict, correct,
// accept-or-shrink, and on acceptance refresh bordering, compute the
// spectrum, evaluate test functions and detect a bifurcation crossing.
func (d *ContinuationDriver) Step() StepOutcome {
	n := d.System.Dim()
	uPred := make([]float64, n)
	for i := range uPred {
		uPred[i] = d.uPrev[i] + d.h*d.tPrev[i]
	}

	correctorSettings, err := NewNewtonSettings(d.Settings.CorrectorSteps, d.Settings.CorrectorTol, 1)
	if err != nil {
		return StepOutcome{Err: err, Terminal: true}
	}

	augResidual := func(u []float64) []float64 {
		g := d.System.G(u)
		arc := contstate.Dot(subVec(u, d.uPrev), d.tPrev) - d.h
		return append(g, arc)
	}
	augJacobian := func(u []float64) []float64 {
		gu := d.System.Gu(u)
		full := make([]float64, n*n)
		copy(full, gu)
		copy(full[(n-1)*n:], d.tPrev)
		return full
	}

	res, err := NewtonSolve(n, augResidual, augJacobian, uPred, correctorSettings)
	if err != nil {
		d.h /= 2
		d.stalls++
		if d.h < d.Settings.MinStepSize {
			return StepOutcome{Err: fmt.Errorf("%w", ErrStepTooSmall), Terminal: true}
		}
		if d.stalls >= 2 {
			return StepOutcome{Err: fmt.Errorf("%w", ErrNewtonDiverged), Terminal: true}
		}
		return StepOutcome{Accepted: false}
	}
	d.stalls = 0

	if res.Iters <= d.Settings.CorrectorSteps/2 {
		d.h = minF(d.h*1.3, d.Settings.MaxStepSize)
	}

	d.System.RefreshBordering(res.X)

	t, err := d.computeTangent(res.X, d.tPrev)
	if err != nil {
		return StepOutcome{Err: err, Terminal: true}
	}
	if contstate.Dot(t, d.tPrev) < 0 {
		d.reversals++
	} else {
		d.reversals = 0
	}

	eig := d.Spectrum(res.X)
	tv := d.TestFuncs(res.X)
	point := d.ToBranchPoint(res.X, eig, tv, contstate.LabelNone)
	point.Tangent = t

	outcome := StepOutcome{Accepted: true, Point: point}

	if d.prevTV != nil {
		for _, key := range tv.SortedKeys() {
			prev, ok := d.prevTV[key]
			if !ok {
				continue
			}
			if (prev < 0) != (tv[key] < 0) {
				loc := BifurcationLocator{
					System:   d.System,
					Settings: d.Settings,
					TestFunc: key,
					Eval:     d.TestFuncs,
				}
				label := d.Classify(key)
				lr, lerr := loc.Locate(d.uPrev, res.X, label)
				if lerr == nil {
					eigAtBif := d.Spectrum(lr.U)
					bp := d.ToBranchPoint(lr.U, eigAtBif, lr.TestValues, label)
					if !lr.LocalizationOK {
						if bp.TestValues == nil {
							bp.TestValues = make(map[string]float64, 1)
						}
						bp.TestValues["localization_failed"] = 1
					}
					outcome.Bifurcation = &bp
				}
			}
		}
	}

	d.uPrev = res.X
	d.tPrev = t
	d.prevTV = tv

	if d.reversals >= 2 {
		outcome.Terminal = true
		outcome.Err = fmt.Errorf("contin: folding-back detected")
	}
	if inBoundsCheck := d.Settings.InBounds(point.ParamValue); !inBoundsCheck {
		outcome.Terminal = true
		outcome.Err = fmt.Errorf("%w", ErrParameterOutOfRange)
	}
	return outcome
}

func subVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// paramValueOf returns the last entry of an unknown vector. That is the
// continuation parameter only for equilibrium curves: limit-cycle vectors
// end with (T, lambda) and the two-parameter curves end with lambda2,
// omega or theta, so the driver's bounds check reads BranchPoint.ParamValue.
func paramValueOf(u []float64) float64 {
	return u[len(u)-1]
}
