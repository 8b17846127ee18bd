package linalg

import "fmt"

// BorderedSolve solves the (n+k) x (n+k) bordered linear system
//
//	[ A   V ] [x]   [f]
//	[ Wᵀ  D ] [y] = [g]
//
// where A is n x n (row-major), V is n x k (row-major, k columns), W is
// n x k (row-major), D is k x k (row-major), f has length n and g has
// length k. This is the minimally-augmented bordering construction used for
// the Fold curve (k=1: [Jx, v; wᵀ, 0]·[q; g] = [0; 1]), the Hopf curve
// (k=2, a rank-2 border on the 2n x 2n real encoding of Jx - i*omega*I),
// and the Neimark-Sacker curve's 2x2 bordered eigenspace.
//
// Returns x (length n) and y (length k).
func BorderedSolve(n, k int, a, v, w, d, f, g []float64) (x, y []float64, err error) {
	if len(a) != n*n || len(v) != n*k || len(w) != n*k || len(d) != k*k || len(f) != n || len(g) != k {
		return nil, nil, fmt.Errorf("%w: BorderedSolve dimension mismatch (n=%d k=%d)", ErrDimension, n, k)
	}
	m := n + k
	full := make([]float64, m*m)
	for i := 0; i < n; i++ {
		copy(full[i*m:i*m+n], a[i*n:i*n+n])
		copy(full[i*m+n:i*m+m], v[i*k:i*k+k])
	}
	for i := 0; i < k; i++ {
		row := full[(n+i)*m : (n+i)*m+m]
		for j := 0; j < n; j++ {
			row[j] = w[j*k+i]
		}
		copy(row[n:], d[i*k:i*k+k])
	}
	rhs := make([]float64, m)
	copy(rhs[:n], f)
	copy(rhs[n:], g)

	sol, err := LUSolve(m, full, rhs)
	if err != nil {
		return nil, nil, err
	}
	return sol[:n], sol[n:], nil
}

// RankOneBorderedSolve is BorderedSolve specialized to a single border
// vector/row (k=1), the common case for Fold and for the pseudo-arclength
// tangent system.
func RankOneBorderedSolve(n int, a, v, w []float64, d, f float64, g []float64) ([]float64, float64, error) {
	x, y, err := BorderedSolve(n, 1, a, v, w, []float64{d}, g, []float64{f})
	if err != nil {
		return nil, 0, err
	}
	return x, y[0], nil
}
