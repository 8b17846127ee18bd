package contin

import (
	"fmt"
	"math"

	"github.com/soypat/contin/linalg"
	"github.com/soypat/contin/vfield"
)

// floquetTrivialTolerance is the band around 1+0i within which a Floquet
// multiplier is treated as the trivial one every flow limit cycle carries.
const floquetTrivialTolerance = 5e-3

// FloquetAnalyzer extracts Floquet multipliers from a converged collocation
// solution by condensing the collocation Jacobian down to the monodromy
// map from u(0) to u(1).
type FloquetAnalyzer struct {
	Field vfield.VectorField
}

// FloquetResult carries the multipliers and which index (if any) was
// identified as the trivial one.
type FloquetResult struct {
	Multipliers  []complex128
	TrivialIndex int // -1 if none found within tolerance
}

// Analyze computes the monodromy matrix of lc under field at parameter p by
// condensing the collocation Jacobian via block LU: the interior-node
// unknowns are eliminated and the resulting dim x dim map from the first
// mesh point to the last is diagonalized for its eigenvalues.
func (a FloquetAnalyzer) Analyze(lc LimitCycleState, p []float64, ref Reference) (FloquetResult, error) {
	n := lc.Dim
	M, err := a.monodromyMatrix(lc, p, ref)
	if err != nil {
		return FloquetResult{}, err
	}

	eig, err := linalg.Eigen(n, M)
	if err != nil {
		return FloquetResult{}, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
	}
	sortEigenvaluesMagnitude(eig)
	trivial := -1
	for i, z := range eig {
		if cmplxAbs(z-complex(1, 0)) < floquetTrivialTolerance {
			trivial = i
			break
		}
	}
	return FloquetResult{Multipliers: eig, TrivialIndex: trivial}, nil
}

func cmplxAbs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}

// monodromyMatrix condenses the collocation Jacobian down to the n x n map
// from u(0) to u(1) by solving, for each unit perturbation e_i of u(0), the
// linear collocation system for the resulting du(1). Shared by Analyze and
// the LPC/PD/NS defining systems, which each need the monodromy matrix
// itself rather than its eigendecomposition.
func (a FloquetAnalyzer) monodromyMatrix(lc LimitCycleState, p []float64, ref Reference) ([]float64, error) {
	n := lc.Dim
	full := len(lc.Profile)
	jacFull := CollocationJacobian(a.Field, lc, p, ref)
	unknowns := full + 1 // profile + period, lambda excluded (not part of this system)

	M := make([]float64, n*n)
	for col := 0; col < n; col++ {
		rhs := make([]float64, unknowns)
		rhs[col] = 1
		// jacFull is already square (unknowns x unknowns): CollocationResidual
		// emits exactly one equation per profile unknown plus the phase
		// condition, balancing against the profile-plus-period unknown count.
		sol, err := linalg.LUSolve(unknowns, jacFull, rhs)
		if err != nil {
			return nil, fmt.Errorf("%w: floquet condensation: %v", ErrSingularJacobian, err)
		}
		copy(M[col*n:(col+1)*n], sol[full-n:full])
	}
	return M, nil
}
