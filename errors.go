// Package contin implements predictor-corrector numerical continuation and
// bifurcation analysis for parameterized dynamical systems: equilibria and
// periodic orbits of flows and maps, codimension-1 curves (fold, Hopf,
// period-doubling, Neimark-Sacker) and codimension-2 points (cusp,
// Bogdanov-Takens, zero-Hopf, Bautin, double-Hopf) reached along them.
//
// The kernel never evaluates a vector field itself; callers supply one
// through the vfield package. Dense linear algebra is delegated to the
// linalg package, and branch/point storage types live in contstate.
package contin

import "errors"

// Error taxonomy returned by solvers and the continuation driver. Callers
// should compare with errors.Is; wrapped errors carry point-specific detail
// (dimension, step index, parameter value) via fmt.Errorf("%w: ...").
var (
	// ErrSeedInvalid is returned when a starting point fails basic sanity
	// checks (wrong dimension, non-finite entries) before any solve is
	// attempted.
	ErrSeedInvalid = errors.New("contin: seed invalid")

	// ErrSingularJacobian is returned when a Newton step or tangent solve
	// hits a Jacobian (or bordered Jacobian) that dense LU reports as
	// numerically singular.
	ErrSingularJacobian = errors.New("contin: singular jacobian")

	// ErrNewtonDiverged is returned when a Newton corrector fails to reduce
	// the residual within the configured iteration budget.
	ErrNewtonDiverged = errors.New("contin: newton iteration diverged")

	// ErrStepTooSmall is returned when adaptive step control shrinks the
	// arclength step below ContinuationSettings.MinStepSize without the
	// corrector converging.
	ErrStepTooSmall = errors.New("contin: step size below minimum")

	// ErrMaxStepsReached is returned when a branch computation consumes its
	// configured step budget without reaching a requested stopping
	// condition. Not itself a failure: Branch.TerminationReason records it
	// so callers can distinguish "ran out of budget" from "hit a true
	// singularity".
	ErrMaxStepsReached = errors.New("contin: maximum step count reached")

	// ErrParameterOutOfRange is returned when continuation would advance a
	// free parameter past ContinuationSettings' configured bounds.
	ErrParameterOutOfRange = errors.New("contin: parameter out of configured range")

	// ErrBifurcationLocalizationFailed is returned by BifurcationLocator
	// when the test function does not change sign across the bracket. A
	// bisection that does not reach tolerance is not an error: the result
	// is flagged with LocalizationOK=false instead.
	ErrBifurcationLocalizationFailed = errors.New("contin: bifurcation localization failed")

	// ErrUnsupportedCurveType is returned when an operation is asked to
	// continue from or classify a contstate.CurveKind it has no defining
	// system for.
	ErrUnsupportedCurveType = errors.New("contin: unsupported curve type")
)

// errorsIsFatal reports whether err prevents a branch from ever existing
// (no partial result to hand back), as opposed to the recoverable
// termination reasons (step-too-small, max-steps, Newton-diverged,
// parameter-out-of-range, folding-back) that still leave a usable branch
// behind for the caller to inspect via Branch.TerminationReason.
func errorsIsFatal(err error) bool {
	return errors.Is(err, ErrSeedInvalid) || errors.Is(err, ErrUnsupportedCurveType)
}
