package vfield

// Iterate applies a Map VectorField k times starting from x0, returning the
// full trajectory {x0, f(x0), ..., f^{k-1}(x0)} followed by f^k(x0) as the
// final element. Panics if v is not a Map field; that is a programmer
// error, not a data-dependent failure, so it is not part of the error
// taxonomy.
func Iterate(v VectorField, x0, p []float64, k int) [][]float64 {
	if v.Kind() != Map {
		panic("vfield: Iterate called on a non-Map VectorField")
	}
	traj := make([][]float64, k+1)
	traj[0] = append([]float64(nil), x0...)
	for i := 0; i < k; i++ {
		traj[i+1] = v.Eval(nil, traj[i], p)
	}
	return traj
}

// IterateJacobian returns f^k(x0) and its Jacobian d f^k / d x via repeated
// application of the chain rule: J_k = Jx(x_{k-1}) * ... * Jx(x_1) * Jx(x_0).
// This is how a fixed-point residual F(x) = f^k(x,p) - x and its Jacobian
// are formed when continuing k-cycles of a map.
func IterateJacobian(v VectorField, x0, p []float64, k int) (xk []float64, jac []float64) {
	n := v.Dim()
	traj := Iterate(v, x0, p, k)
	jac = identity(n)
	for i := 0; i < k; i++ {
		ji := v.Jx(nil, traj[i], p)
		jac = matmul(ji, jac, n)
	}
	return traj[k], jac
}

func identity(n int) []float64 {
	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}
	return m
}

// matmul computes a * b for two row-major n x n matrices.
func matmul(a, b []float64, n int) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a[i*n+k] * b[k*n+j]
			}
			out[i*n+j] = sum
		}
	}
	return out
}
