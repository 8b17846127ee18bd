package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// condSingularThreshold flags an ill-conditioned factorization as singular
// for the kernel's Newton "Singular" failure. Chosen well below
// 1/machine-epsilon so a genuinely singular Jacobian (condition number
// effectively infinite) is always caught, while well-posed but stiff
// problems are not falsely rejected.
const condSingularThreshold = 1e14

// LUSolve solves the dense n x n system A x = b (A row-major) by LU
// factorization, returning ErrSingular if A is not invertible to working
// precision. This backs both the Newton correction solve J*du = -F(u) and
// the pseudo-arclength tangent-system solve.
func LUSolve(n int, a, b []float64) ([]float64, error) {
	if len(a) != n*n || len(b) != n {
		return nil, fmt.Errorf("%w: LUSolve expected %dx%d matrix and length-%d vector, got %d and %d", ErrDimension, n, n, n, len(a), len(b))
	}
	A := mat.NewDense(n, n, append([]float64(nil), a...))
	var lu mat.LU
	lu.Factorize(A)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > condSingularThreshold {
		return nil, ErrSingular
	}
	bVec := mat.NewVecDense(n, append([]float64(nil), b...))
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, bVec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return append([]float64(nil), x.RawVector().Data...), nil
}

// LUSolveMulti solves A X = B for a matrix right-hand side B with k
// columns, reusing one factorization of A. Used by GeneralizedEigen to form
// B^-1 A.
func LUSolveMulti(n, k int, a, b []float64) ([]float64, error) {
	if len(a) != n*n || len(b) != n*k {
		return nil, fmt.Errorf("%w: LUSolveMulti expected %dx%d matrix and %dx%d rhs, got %d and %d", ErrDimension, n, n, n, k, len(a), len(b))
	}
	A := mat.NewDense(n, n, append([]float64(nil), a...))
	var lu mat.LU
	lu.Factorize(A)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > condSingularThreshold {
		return nil, ErrSingular
	}
	B := mat.NewDense(n, k, append([]float64(nil), b...))
	var X mat.Dense
	if err := lu.SolveTo(&X, false, B); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	out := make([]float64, n*k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out[i*k+j] = X.At(i, j)
		}
	}
	return out, nil
}

// Det returns the determinant of the dense n x n matrix a, used directly as
// the equilibrium (flow) fold test function: fold = det(Jx).
func Det(n int, a []float64) float64 {
	A := mat.NewDense(n, n, append([]float64(nil), a...))
	var lu mat.LU
	lu.Factorize(A)
	return lu.Det()
}
