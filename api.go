package contin

import (
	"fmt"
	"math"
	"sort"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/linalg"
	"github.com/soypat/contin/vfield"
)

// wiring bundles the four callbacks ContinuationDriver needs around a
// DefiningSystem: how to get the relevant spectrum, how to evaluate test
// functions, how to turn a crossed test-function name into a stability
// label, and how to assemble a wire-stable BranchPoint. Exactly one
// function in this file builds a wiring per concrete system type, keeping
// every curve-kind-specific detail in one place instead of scattered
// through the driver.
type wiring struct {
	curveType contstate.CurveType
	spectrum  func(u []float64) []complex128
	testFuncs func(u []float64) TestFunctionSet
	classify  func(name string) contstate.StabilityLabel
	toPoint   func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint
}

func wireComplex(eig []complex128) []contstate.Complex {
	out := make([]contstate.Complex, len(eig))
	for i, z := range eig {
		out[i] = contstate.FromComplex128(z)
	}
	return out
}

// sortEigenvaluesFlow orders eigenvalues by descending real part, ties
// broken by descending |imaginary|, then by sign of imaginary.
func sortEigenvaluesFlow(eig []complex128) {
	sort.Slice(eig, func(i, j int) bool {
		if real(eig[i]) != real(eig[j]) {
			return real(eig[i]) > real(eig[j])
		}
		ai, aj := absF(imag(eig[i])), absF(imag(eig[j]))
		if ai != aj {
			return ai > aj
		}
		return imag(eig[i]) > imag(eig[j])
	})
}

// sortEigenvaluesMagnitude orders eigenvalues (or Floquet multipliers) by
// descending magnitude, the convention used for maps and limit-cycle-
// derived curves.
func sortEigenvaluesMagnitude(eig []complex128) {
	sort.Slice(eig, func(i, j int) bool {
		mi, mj := cmplxAbs(eig[i]), cmplxAbs(eig[j])
		if mi != mj {
			return mi > mj
		}
		ai, aj := absF(imag(eig[i])), absF(imag(eig[j]))
		if ai != aj {
			return ai > aj
		}
		return imag(eig[i]) > imag(eig[j])
	})
}

func classifyEquilibrium(isMap bool) func(string) contstate.StabilityLabel {
	return func(name string) contstate.StabilityLabel {
		switch name {
		case "fold":
			return contstate.LabelFold
		case "hopf":
			return contstate.LabelHopf
		case "neutral_saddle":
			return contstate.LabelNeutralSaddle
		case "pd":
			return contstate.LabelPeriodDoubling
		case "ns":
			return contstate.LabelNeimarkSacker
		default:
			return contstate.LabelNone
		}
	}
}

func classifyFoldCurve(name string) contstate.StabilityLabel {
	switch name {
	case "cusp":
		return contstate.LabelCusp
	case "bt":
		return contstate.LabelBogdanovTakens
	case "zero_hopf":
		return contstate.LabelZeroHopf
	default:
		return contstate.LabelNone
	}
}

func classifyHopfCurve(name string) contstate.StabilityLabel {
	switch name {
	case "bt":
		return contstate.LabelBogdanovTakens
	case "zero_hopf":
		return contstate.LabelZeroHopf
	case "bautin":
		return contstate.LabelBautin
	case "double_hopf":
		return contstate.LabelDoubleHopf
	default:
		return contstate.LabelNone
	}
}

func classifyLimitCycle(name string) contstate.StabilityLabel {
	switch name {
	case "lpc":
		return contstate.LabelCycleFold
	case "pd":
		return contstate.LabelPeriodDoubling
	case "ns":
		return contstate.LabelNeimarkSacker
	default:
		return contstate.LabelNone
	}
}

// wireSystem builds the driver wiring for one of this package's concrete
// DefiningSystem types. Everything it needs (field, flow/map kind,
// parameter indices, mesh) is read from the concrete system itself.
func wireSystem(system DefiningSystem) (wiring, error) {
	switch sys := system.(type) {
	case *EquilibriumSystem:
		isMap := sys.Field.Kind() == vfield.Map
		n := sys.Field.Dim()
		return wiring{
			curveType: contstate.CurveType{Kind: contstate.CurveEquilibrium, Param1: sys.ParamIndex, Param2: -1},
			spectrum: func(u []float64) []complex128 {
				x, lambda := u[:n], u[n]
				p := sys.paramVector(lambda)
				var jx []float64
				if isMap {
					_, jac := vfield.IterateJacobian(sys.Field, x, p, sys.MapIterations)
					jx = jac
				} else {
					jx = sys.Field.Jx(nil, x, p)
				}
				eig, err := eigenOf(n, jx)
				if err != nil {
					return nil
				}
				if isMap {
					sortEigenvaluesMagnitude(eig)
				} else {
					sortEigenvaluesFlow(eig)
				}
				return eig
			},
			testFuncs: func(u []float64) TestFunctionSet {
				x, lambda := u[:n], u[n]
				p := sys.paramVector(lambda)
				var jx []float64
				if isMap {
					_, jac := vfield.IterateJacobian(sys.Field, x, p, sys.MapIterations)
					jx = jac
				} else {
					jx = sys.Field.Jx(nil, x, p)
				}
				eig, _ := eigenOf(n, jx)
				return EquilibriumTestFunctions(jx, n, eig, isMap)
			},
			classify: classifyEquilibrium(isMap),
			toPoint: func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint {
				return contstate.BranchPoint{State: append([]float64(nil), u[:n]...), ParamValue: u[n], StabilityLabel: label, Eigenvalues: wireComplex(eig), TestValues: map[string]float64(tv)}
			},
		}, nil

	case *FoldSystem:
		n := sys.Field.Dim()
		var prevFold float64
		return wiring{
			curveType: contstate.CurveType{Kind: contstate.CurveFold, Param1: sys.Param1Index, Param2: sys.Param2Index},
			spectrum: func(u []float64) []complex128 {
				x, l1, l2 := u[:n], u[n], u[n+1]
				jx := sys.Field.Jx(nil, x, sys.paramVector(l1, l2))
				eig, _ := eigenOf(n, jx)
				sortEigenvaluesFlow(eig)
				return eig
			},
			testFuncs: func(u []float64) TestFunctionSet {
				x, l1, l2 := u[:n], u[n], u[n+1]
				p := sys.paramVector(l1, l2)
				jx := sys.Field.Jx(nil, x, p)
				eig, _ := eigenOf(n, jx)
				cur := sys.foldScalar(x, p)
				deriv := cur - prevFold
				prevFold = cur
				return FoldCurveTestFunctions(jx, n, eig, deriv)
			},
			classify: classifyFoldCurve,
			toPoint: func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint {
				l2 := u[n+1]
				return contstate.BranchPoint{State: append([]float64(nil), u[:n]...), ParamValue: u[n], Param2Value: &l2, StabilityLabel: label, Eigenvalues: wireComplex(eig), TestValues: map[string]float64(tv)}
			},
		}, nil

	case *HopfSystem:
		n := sys.Field.Dim()
		return wiring{
			curveType: contstate.CurveType{Kind: contstate.CurveHopf, Param1: sys.Param1Index, Param2: sys.Param2Index},
			spectrum: func(u []float64) []complex128 {
				x, l1, l2 := u[:n], u[n], u[n+1]
				jx := sys.Field.Jx(nil, x, sys.paramVector(l1, l2))
				eig, _ := eigenOf(n, jx)
				sortEigenvaluesFlow(eig)
				return eig
			},
			testFuncs: func(u []float64) TestFunctionSet {
				x, l1, l2, omega := u[:n], u[n], u[n+1], u[n+2]
				p := sys.paramVector(l1, l2)
				jx := sys.Field.Jx(nil, x, p)
				eig, _ := eigenOf(n, jx)
				return HopfCurveTestFunctions(jx, n, eig, omega, 0)
			},
			classify: classifyHopfCurve,
			toPoint: func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint {
				l2 := u[n+1]
				return contstate.BranchPoint{State: append([]float64(nil), u[:n]...), ParamValue: u[n], Param2Value: &l2, StabilityLabel: label, Eigenvalues: wireComplex(eig), Auxiliary: u[n+2], TestValues: map[string]float64(tv)}
			},
		}, nil

	case *LimitCycleSystem:
		profLen := sys.StateDim * sys.Mesh.ProfileLen()
		fa := FloquetAnalyzer{Field: sys.Field}
		return wiring{
			curveType: contstate.CurveType{Kind: contstate.CurveLimitCycle, Param1: sys.ParamIndex, Param2: -1, Ntst: sys.Mesh.Ntst, Ncol: sys.Mesh.Ncol},
			spectrum: func(u []float64) []complex128 {
				lambda := u[profLen+1]
				lc := LimitCycleState{Mesh: sys.Mesh, Dim: sys.StateDim, Profile: u[:profLen], Period: u[profLen]}
				fr, err := fa.Analyze(lc, sys.paramVector(lambda), sys.Ref)
				if err != nil {
					return nil
				}
				return fr.Multipliers
			},
			testFuncs: func(u []float64) TestFunctionSet {
				lambda := u[profLen+1]
				lc := LimitCycleState{Mesh: sys.Mesh, Dim: sys.StateDim, Profile: u[:profLen], Period: u[profLen]}
				fr, err := fa.Analyze(lc, sys.paramVector(lambda), sys.Ref)
				if err != nil {
					return TestFunctionSet{}
				}
				return LimitCycleTestFunctions(fr)
			},
			classify: classifyLimitCycle,
			toPoint: func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint {
				return contstate.BranchPoint{State: append([]float64(nil), u[:profLen+1]...), ParamValue: u[profLen+1], StabilityLabel: label, Eigenvalues: wireComplex(eig), TestValues: map[string]float64(tv)}
			},
		}, nil

	case *LPCSystem, *PDSystem, *NSSystem, *IsochroneSystem:
		return wireLCDerived(system)

	default:
		return wiring{}, fmt.Errorf("%w: no wiring registered for %T", ErrUnsupportedCurveType, system)
	}
}

// wireLCDerived wires LPC/PD/NS/Isochrone systems, which share a layout
// (profile, T, lambda1, lambda2[, theta]) and report Floquet multipliers as
// their spectrum. Each has already appended its own codim-1 scalar onto
// CollocationResidual, so the test-function set here only needs the
// secondary diagnostics (the Floquet spectrum itself), not a fresh scalar
// evaluation: crossing detection for the curve's own defining condition is
// implicit in the corrector's convergence, not a sign change ContinuationDriver
// tracks post hoc.
func wireLCDerived(system DefiningSystem) (wiring, error) {
	var field vfield.VectorField
	var mesh Mesh
	var stateDim int
	var ref Reference
	var p1, p2 int
	var kind contstate.CurveKind

	switch sys := system.(type) {
	case *LPCSystem:
		field, mesh, stateDim, ref, p1, p2, kind = sys.Field, sys.Mesh, sys.StateDim, sys.Ref, sys.Param1Index, sys.Param2Index, contstate.CurveLPC
	case *PDSystem:
		field, mesh, stateDim, ref, p1, p2, kind = sys.Field, sys.Mesh, sys.StateDim, sys.Ref, sys.Param1Index, sys.Param2Index, contstate.CurvePD
	case *NSSystem:
		field, mesh, stateDim, ref, p1, p2, kind = sys.Field, sys.Mesh, sys.StateDim, sys.Ref, sys.Param1Index, sys.Param2Index, contstate.CurveNS
	case *IsochroneSystem:
		field, mesh, stateDim, ref, p1, p2, kind = sys.Field, sys.Mesh, sys.StateDim, sys.Ref, sys.Param1Index, sys.Param2Index, contstate.CurveIsochrone
	}
	profLen := stateDim * mesh.ProfileLen()
	fa := FloquetAnalyzer{Field: field}
	paramVec := func(u []float64) []float64 {
		base := baseParamsOf(system)
		l1, l2 := u[profLen+1], u[profLen+2]
		p := append([]float64(nil), base...)
		p[p1] = l1
		p[p2] = l2
		return p
	}
	return wiring{
		curveType: contstate.CurveType{Kind: kind, Param1: p1, Param2: p2, Ntst: mesh.Ntst, Ncol: mesh.Ncol},
		spectrum: func(u []float64) []complex128 {
			lc := LimitCycleState{Mesh: mesh, Dim: stateDim, Profile: u[:profLen], Period: u[profLen]}
			fr, err := fa.Analyze(lc, paramVec(u), ref)
			if err != nil {
				return nil
			}
			return fr.Multipliers
		},
		testFuncs: func(u []float64) TestFunctionSet {
			lc := LimitCycleState{Mesh: mesh, Dim: stateDim, Profile: u[:profLen], Period: u[profLen]}
			fr, err := fa.Analyze(lc, paramVec(u), ref)
			if err != nil {
				return TestFunctionSet{}
			}
			return LimitCycleTestFunctions(fr)
		},
		classify: classifyLimitCycle,
		toPoint: func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint {
			l2 := u[profLen+2]
			var aux float64
			if len(u) > profLen+3 {
				aux = math.Cos(u[profLen+3]) // NS: record cos(theta)
			}
			return contstate.BranchPoint{State: append([]float64(nil), u[:profLen+1]...), ParamValue: u[profLen+1], Param2Value: &l2, StabilityLabel: label, Eigenvalues: wireComplex(eig), Auxiliary: aux, TestValues: map[string]float64(tv)}
		},
	}, nil
}

func baseParamsOf(system DefiningSystem) []float64 {
	switch sys := system.(type) {
	case *LPCSystem:
		return sys.BaseParams
	case *PDSystem:
		return sys.BaseParams
	case *NSSystem:
		return sys.BaseParams
	case *IsochroneSystem:
		return sys.BaseParams
	}
	return nil
}

func eigenOf(n int, jx []float64) ([]complex128, error) {
	return linalg.Eigen(n, jx)
}

// ComputeBranch builds a fresh Branch by continuing system from its current
// (seed) state. Fatal errors (SeedInvalid, UnsupportedCurveType) return
// before any branch exists; every other driver termination still returns
// the accepted partial branch alongside a nil error.
func ComputeBranch(system DefiningSystem, settings contstate.ContinuationSettings, forward bool, paramSnapshot []float64) (*contstate.Branch, error) {
	w, err := wireSystem(system)
	if err != nil {
		return nil, err
	}
	u0 := system.Pack()
	if err := validateSeed(system, u0); err != nil {
		return nil, err
	}
	driver, err := newWiredDriver(system, w, settings, forward, u0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}
	branch := &contstate.Branch{CurveType: w.curveType, ParameterSnapshot: append([]float64(nil), paramSnapshot...)}
	seedEig := driver.Spectrum(u0)
	seedTV := driver.TestFuncs(u0)
	branch.AppendForward(driver.ToBranchPoint(u0, seedEig, seedTV, contstate.LabelNone))

	runner := NewRunner(driver, branch)
	runner.Step(settings.MaxSteps)
	res, _ := runner.GetResult()
	return res, nil
}

// ComputeBranchRunner is the resumable variant of ComputeBranch: the caller
// drives it with Step(n) instead of consuming the whole step budget
// eagerly.
func ComputeBranchRunner(system DefiningSystem, settings contstate.ContinuationSettings, forward bool, paramSnapshot []float64) (*Runner, error) {
	w, err := wireSystem(system)
	if err != nil {
		return nil, err
	}
	u0 := system.Pack()
	if err := validateSeed(system, u0); err != nil {
		return nil, err
	}
	driver, err := newWiredDriver(system, w, settings, forward, u0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}
	branch := &contstate.Branch{CurveType: w.curveType, ParameterSnapshot: append([]float64(nil), paramSnapshot...)}
	seedEig := driver.Spectrum(u0)
	seedTV := driver.TestFuncs(u0)
	branch.AppendForward(driver.ToBranchPoint(u0, seedEig, seedTV, contstate.LabelNone))
	return NewRunner(driver, branch), nil
}

// ExtendBranch resumes continuation from the appropriate end of an
// existing branch. forward=true extends forward from the last point;
// false prepends backward from the first. settings.MaxSteps caps the
// points this call adds; with settings.MaxSteps==0 it returns branch
// unchanged, an idempotent no-op extension. The branch's ParameterSnapshot
// is not consulted: the extension uses the parameters system holds.
func ExtendBranch(branch *contstate.Branch, system DefiningSystem, settings contstate.ContinuationSettings, forward bool) (*contstate.Branch, error) {
	if branch.Len() == 0 {
		return nil, fmt.Errorf("%w: extend_branch requires a non-empty branch", contstate.ErrEmptyBranch)
	}
	if settings.MaxSteps == 0 {
		return branch, nil
	}
	// Runner caps the total branch length, so count the existing points in.
	settings.MaxSteps += branch.Len()
	w, err := wireSystem(system)
	if err != nil {
		return nil, err
	}
	var seed contstate.BranchPoint
	if forward {
		seed, _ = branch.Last()
	} else {
		seed, _ = branch.First()
	}
	system.Unpack(reconstructU(system, seed))
	u0 := system.Pack()
	driver, err := newWiredDriver(system, w, settings, forward, u0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}
	runner := NewRunner(driver, branch)
	runner.Step(settings.MaxSteps)
	res, _ := runner.GetResult()
	return res, nil
}

// reconstructU rebuilds the full unknown vector from a BranchPoint by
// re-packing whatever the system currently holds for the trailing
// parameter slots the BranchPoint doesn't carry on its own (its State
// already covers the leading profile/state block).
func reconstructU(system DefiningSystem, p contstate.BranchPoint) []float64 {
	full := system.Pack()
	copy(full, p.State)
	n := len(p.State)
	full[n] = p.ParamValue
	if p.Param2Value != nil && n+1 < len(full) {
		full[n+1] = *p.Param2Value
	}
	if n+2 < len(full) {
		full[n+2] = p.Auxiliary
		if _, ok := system.(*NSSystem); ok {
			full[n+2] = math.Acos(p.Auxiliary) // NS points record cos(theta)
		}
	}
	return full
}

// ContinueFromBifurcation validates source.StabilityLabel against kind and
// starts a fresh branch from a DefiningSystem the caller has already built
// to match that bifurcation: this package cannot synthesize, e.g., a
// LimitCycleSystem mesh and reference
// velocity out of a bare equilibrium BranchPoint, so the caller supplies
// the already-initialized system and this function only enforces the label
// match and runs the continuation.
func ContinueFromBifurcation(source contstate.BranchPoint, kind contstate.CurveKind, system DefiningSystem, settings contstate.ContinuationSettings, forward bool, paramSnapshot []float64) (*contstate.Branch, error) {
	if !labelMatchesKind(source.StabilityLabel, kind) {
		return nil, fmt.Errorf("%w: source point labeled %s does not match requested curve kind %s", ErrSeedInvalid, source.StabilityLabel, kind)
	}
	if system.CurveKind() != kind {
		return nil, fmt.Errorf("%w: supplied system is %s, requested %s", ErrUnsupportedCurveType, system.CurveKind(), kind)
	}
	return ComputeBranch(system, settings, forward, paramSnapshot)
}

// ContinueFromBifurcationRunner is the resumable variant of
// ContinueFromBifurcation.
func ContinueFromBifurcationRunner(source contstate.BranchPoint, kind contstate.CurveKind, system DefiningSystem, settings contstate.ContinuationSettings, forward bool, paramSnapshot []float64) (*Runner, error) {
	if !labelMatchesKind(source.StabilityLabel, kind) {
		return nil, fmt.Errorf("%w: source point labeled %s does not match requested curve kind %s", ErrSeedInvalid, source.StabilityLabel, kind)
	}
	if system.CurveKind() != kind {
		return nil, fmt.Errorf("%w: supplied system is %s, requested %s", ErrUnsupportedCurveType, system.CurveKind(), kind)
	}
	return ComputeBranchRunner(system, settings, forward, paramSnapshot)
}

func labelMatchesKind(label contstate.StabilityLabel, kind contstate.CurveKind) bool {
	switch kind {
	case contstate.CurveFold:
		return label == contstate.LabelFold
	case contstate.CurveHopf:
		return label == contstate.LabelHopf
	case contstate.CurveLPC:
		return label == contstate.LabelCycleFold
	case contstate.CurvePD:
		return label == contstate.LabelPeriodDoubling
	case contstate.CurveNS:
		return label == contstate.LabelNeimarkSacker
	case contstate.CurveLimitCycle:
		return label == contstate.LabelHopf // LC continuation also starts from a Hopf point
	default:
		return false
	}
}

func validateSeed(system DefiningSystem, u0 []float64) error {
	if len(u0) != system.Dim() {
		return fmt.Errorf("%w: packed seed length %d does not match Dim() %d", ErrSeedInvalid, len(u0), system.Dim())
	}
	for _, v := range u0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: seed contains a non-finite entry", ErrSeedInvalid)
		}
	}
	return nil
}

func newWiredDriver(system DefiningSystem, w wiring, settings contstate.ContinuationSettings, forward bool, u0 []float64) (*ContinuationDriver, error) {
	driver, err := NewContinuationDriver(system, settings, forward, u0)
	if err != nil {
		return nil, err
	}
	driver.Spectrum = w.spectrum
	driver.TestFuncs = w.testFuncs
	driver.Classify = w.classify
	driver.ToBranchPoint = w.toPoint
	return driver, nil
}
