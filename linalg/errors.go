// Package linalg wraps gonum/mat into the dense linear-algebra capability
// the continuation kernel treats as an abstract collaborator: dense LU,
// (generalized) eigenvalues, and bordered-system solves. The kernel does
// its linear solves and eigendecompositions only through these free
// functions; its other gonum/mat use is the matrix that fd.Jacobian fills
// in its finite-difference Jacobian helpers.
package linalg

import "errors"

// ErrSingular is returned when a dense solve is attempted against a matrix
// that LU factorization reports as (numerically) non-invertible. The
// continuation kernel maps this directly onto its own SingularJacobian
// error.
var ErrSingular = errors.New("linalg: singular matrix")

// ErrEigenFailed is returned when an eigenvalue routine fails to converge.
var ErrEigenFailed = errors.New("linalg: eigendecomposition failed to converge")

// ErrDimension is returned when input slice lengths are inconsistent with
// the stated matrix/vector dimensions.
var ErrDimension = errors.New("linalg: dimension mismatch")
