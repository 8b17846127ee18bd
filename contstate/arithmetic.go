package contstate

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormInf returns the infinity norm (max absolute value) of v, used
// throughout the kernel for corrector and step-tolerance checks.
func NormInf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	max := math.Abs(v[0])
	for _, x := range v[1:] {
		if a := math.Abs(x); a > max {
			max = a
		}
	}
	return max
}

// Norm2 returns the Euclidean norm of v.
func Norm2(v []float64) float64 {
	return floats.Norm(v, 2)
}

// SubInto computes dst = a - b elementwise, allocating dst if nil.
func SubInto(dst, a, b []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(a))
	}
	copy(dst, a)
	floats.Sub(dst, b)
	return dst
}

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// AddScaled performs dst = dst + alpha*s elementwise in place.
func AddScaled(dst []float64, alpha float64, s []float64) {
	floats.AddScaled(dst, alpha, s)
}

// Concat concatenates any number of float64 slices into a freshly allocated
// slice, used to pack DefiningSystem unknown vectors (e.g. state + scalar
// parameters) into the single vector the NewtonSolver expects.
func Concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
