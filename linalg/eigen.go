package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Eigen returns the (possibly complex) eigenvalues of the dense n x n
// matrix a (row-major). This backs the continuation driver's per-point
// spectra and FloquetAnalyzer's monodromy multipliers.
func Eigen(n int, a []float64) ([]complex128, error) {
	A := mat.NewDense(n, n, append([]float64(nil), a...))
	var eig mat.Eigen
	if ok := eig.Factorize(A, mat.EigenRight); !ok {
		return nil, ErrEigenFailed
	}
	return eig.Values(nil), nil
}

// EigenWithVectors returns the eigenvalues of a together with their right
// eigenvectors, one per eigenvalue, each of length n: EquilibriumSolver's
// full eigenpair report.
func EigenWithVectors(n int, a []float64) ([]complex128, [][]complex128, error) {
	A := mat.NewDense(n, n, append([]float64(nil), a...))
	var eig mat.Eigen
	if ok := eig.Factorize(A, mat.EigenRight); !ok {
		return nil, nil, ErrEigenFailed
	}
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)
	vectors := make([][]complex128, n)
	for j := 0; j < n; j++ {
		col := make([]complex128, n)
		for i := 0; i < n; i++ {
			col[i] = vecs.At(i, j)
		}
		vectors[j] = col
	}
	return values, vectors, nil
}

// GeneralizedEigen returns the eigenvalues lambda solving A x = lambda B x
// for dense n x n matrices A, B (row-major), computed as the ordinary
// eigenvalues of B^{-1} A. This requires B to be invertible (a singular B
// returns ErrSingular); the simpler reduction is used instead of a
// hand-rolled QZ algorithm. No other function in the kernel calls it.
func GeneralizedEigen(n int, a, b []float64) ([]complex128, error) {
	c, err := LUSolveMulti(n, n, b, a)
	if err != nil {
		return nil, fmt.Errorf("generalized eigen: %w", err)
	}
	return Eigen(n, c)
}
