package contin

import (
	"fmt"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/linalg"
	"github.com/soypat/contin/vfield"
)

// EquilibriumSolution is the result of EquilibriumSolver.Solve: a converged
// equilibrium (flows) or k-cycle fixed point (maps) together with the
// diagnostics callers inspect directly, without re-deriving them from the
// raw Newton result.
type EquilibriumSolution struct {
	State        []float64
	ResidualNorm float64
	Iterations   int
	Jacobian     []float64 // row-major dim x dim, at the solution
	Eigenvalues  []complex128
	Eigenvectors [][]complex128
	// CyclePoints holds {x, f(x), ..., f^{k-1}(x)} for map fields with k>1;
	// nil for flows and for k=1.
	CyclePoints [][]float64
}

// EquilibriumSolver finds zeros of a VectorField (flows) or k-cycle fixed
// points (maps) via NewtonSolve, then reports the Jacobian spectrum at the
// solution.
type EquilibriumSolver struct {
	Field    vfield.VectorField
	Settings NewtonSettings
}

// NewEquilibriumSolver returns a solver bound to field with the given Newton
// settings.
func NewEquilibriumSolver(field vfield.VectorField, settings NewtonSettings) EquilibriumSolver {
	return EquilibriumSolver{Field: field, Settings: settings}
}

// Solve runs Newton iteration on f(x,p)=0 (flows) or f^k(x,p)-x=0 (maps)
// starting from x0, with parameter vector p. k is ignored for flows; for
// maps k<=1 means the fixed point (k=1).
func (s EquilibriumSolver) Solve(x0, p []float64, k int) (EquilibriumSolution, error) {
	n := s.Field.Dim()
	if len(x0) != n {
		return EquilibriumSolution{}, fmt.Errorf("%w: equilibrium seed has length %d, field dimension is %d", ErrSeedInvalid, len(x0), n)
	}
	if len(p) != s.Field.PDim() {
		return EquilibriumSolution{}, fmt.Errorf("%w: parameter vector has length %d, expected %d", ErrSeedInvalid, len(p), s.Field.PDim())
	}

	var residual ResidualFunc
	var jacobian JacobianFunc
	var cyclePoints [][]float64

	if s.Field.Kind() == vfield.Flow || k <= 1 {
		residual = func(x []float64) []float64 { return s.Field.Eval(nil, x, p) }
		jacobian = func(x []float64) []float64 { return s.Field.Jx(nil, x, p) }
	} else {
		residual = func(x []float64) []float64 {
			traj := vfield.Iterate(s.Field, x, p, k)
			out := make([]float64, n)
			contstate.SubInto(out, traj[len(traj)-1], x)
			return out
		}
		jacobian = func(x []float64) []float64 {
			_, jac := vfield.IterateJacobian(s.Field, x, p, k)
			for i := 0; i < n; i++ {
				jac[i*n+i] -= 1
			}
			return jac
		}
	}

	res, err := NewtonSolve(n, residual, jacobian, x0, s.Settings)
	if err != nil {
		return EquilibriumSolution{}, err
	}

	if s.Field.Kind() == vfield.Map && k > 1 {
		cyclePoints = vfield.Iterate(s.Field, res.X, p, k-1)
	}

	jac := jacobian(res.X)
	eig, vecs, err := linalg.EigenWithVectors(n, jac)
	if err != nil {
		return EquilibriumSolution{}, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
	}

	return EquilibriumSolution{
		State:        res.X,
		ResidualNorm: res.ResidNorm,
		Iterations:   res.Iters,
		Jacobian:     jac,
		Eigenvalues:  eig,
		Eigenvectors: vecs,
		CyclePoints:  cyclePoints,
	}, nil
}

// StabilityOf returns the label for a regular equilibrium point: always
// LabelNone. It does not classify by eigenvalue signs; bifurcation
// detection belongs to TestFunctions.
func StabilityOf(eig []complex128, kind vfield.Kind) contstate.StabilityLabel {
	// bifurcation labels are set only at detected points by the
	// continuation driver; regular points carry LabelNone here.
	_ = eig
	_ = kind
	return contstate.LabelNone
}
