package contin

import (
	"fmt"
	"math"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/linalg"
)

// NewtonSettings configures damped Newton-Raphson iteration: relaxation and
// an iteration budget for a free-standing root finder used throughout the
// continuation kernel. Equilibria, periodic orbit collocation systems, and
// bifurcation-curve defining systems all solve through NewtonSolve.
type NewtonSettings struct {
	MaxIter int
	Tol     float64
	// Damping multiplies each Newton increment; 1 is undamped Newton, values
	// in (0,1) trade convergence speed for robustness on stiff problems.
	Damping float64
}

// NewNewtonSettings validates and clamps its arguments. Damping is clamped
// to (0, 1]; MaxIter and Tol must be positive.
func NewNewtonSettings(maxIter int, tol, damping float64) (NewtonSettings, error) {
	if maxIter <= 0 {
		return NewtonSettings{}, fmt.Errorf("%w: MaxIter must be positive, got %d", contstate.ErrInvalidSettings, maxIter)
	}
	if tol <= 0 {
		return NewtonSettings{}, fmt.Errorf("%w: Tol must be positive, got %g", contstate.ErrInvalidSettings, tol)
	}
	if damping <= 0 {
		damping = 1
	} else if damping > 1 {
		damping = 1
	}
	return NewtonSettings{MaxIter: maxIter, Tol: tol, Damping: damping}, nil
}

// ResidualFunc evaluates F(x), a length-n residual whose zero NewtonSolve
// seeks.
type ResidualFunc func(x []float64) []float64

// JacobianFunc evaluates the row-major n x n Jacobian of a ResidualFunc at
// x.
type JacobianFunc func(x []float64) []float64

// NewtonResult carries the outcome of a NewtonSolve call, including
// bookkeeping (iteration count, final residual norm) the continuation
// driver logs alongside each accepted point.
type NewtonResult struct {
	X         []float64
	Iters     int
	ResidNorm float64
}

// NewtonSolve finds x with F(x) ~= 0 starting from x0, using jac to
// linearize at each iterate and linalg.LUSolve to invert. Returns
// ErrSingularJacobian if a linearization is singular, or
// ErrNewtonDiverged if the residual fails to fall below settings.Tol
// within settings.MaxIter iterations.
func NewtonSolve(n int, f ResidualFunc, jac JacobianFunc, x0 []float64, settings NewtonSettings) (NewtonResult, error) {
	if len(x0) != n {
		return NewtonResult{}, fmt.Errorf("%w: NewtonSolve expected length-%d seed, got %d", ErrSeedInvalid, n, len(x0))
	}
	x := append([]float64(nil), x0...)
	var residNorm float64
	for iter := 0; iter < settings.MaxIter; iter++ {
		fx := f(x)
		residNorm = contstate.NormInf(fx)
		if residNorm < settings.Tol {
			return NewtonResult{X: x, Iters: iter, ResidNorm: residNorm}, nil
		}
		J := jac(x)
		neg := make([]float64, n)
		for i := range fx {
			neg[i] = -fx[i]
		}
		dx, err := linalg.LUSolve(n, J, neg)
		if err != nil {
			return NewtonResult{}, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
		}
		contstate.AddScaled(x, settings.Damping, dx)
	}
	fx := f(x)
	residNorm = contstate.NormInf(fx)
	if residNorm < settings.Tol {
		return NewtonResult{X: x, Iters: settings.MaxIter, ResidNorm: residNorm}, nil
	}
	if math.IsNaN(residNorm) || math.IsInf(residNorm, 0) {
		return NewtonResult{}, fmt.Errorf("%w: residual not finite", ErrNewtonDiverged)
	}
	return NewtonResult{}, fmt.Errorf("%w: residual %g after %d iterations", ErrNewtonDiverged, residNorm, settings.MaxIter)
}
