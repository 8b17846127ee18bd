package contstate

import (
	"math"
	"sort"
)

// Complex is the wire-stable complex number representation used at every
// kernel boundary: {re: f64, im: f64}. Internal numeric code is free to use
// complex128; Complex exists so serialization never has to special-case the
// real/imaginary duality, normalizing eigenvalue representation at the
// kernel boundary.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// FromComplex128 converts a native Go complex128 to the wire type.
func FromComplex128(c complex128) Complex {
	return Complex{Re: real(c), Im: imag(c)}
}

// Complex128 converts back to a native Go complex128 for arithmetic.
func (c Complex) Complex128() complex128 {
	return complex(c.Re, c.Im)
}

// Modulus returns |c|.
func (c Complex) Modulus() float64 {
	return math.Hypot(c.Re, c.Im)
}

// SortEigenvaluesByRealPart orders eigenvalues by descending real part, with
// ties broken by descending |imaginary part| and then by the sign of the
// imaginary part (positive before negative). This is the ordering used for
// flows and codim-1 curves derived from them.
func SortEigenvaluesByRealPart(eig []Complex) {
	sort.SliceStable(eig, func(i, j int) bool {
		a, b := eig[i], eig[j]
		if a.Re != b.Re {
			return a.Re > b.Re
		}
		ai, bi := math.Abs(a.Im), math.Abs(b.Im)
		if ai != bi {
			return ai > bi
		}
		return a.Im > b.Im
	})
}

// SortEigenvaluesByModulus orders eigenvalues by descending modulus, with
// ties broken by descending |imaginary part| and then by the sign of the
// imaginary part. This is the ordering used for maps and for limit cycles
// and LC-derived curves (Floquet multipliers).
func SortEigenvaluesByModulus(eig []Complex) {
	sort.SliceStable(eig, func(i, j int) bool {
		a, b := eig[i], eig[j]
		ma, mb := a.Modulus(), b.Modulus()
		if ma != mb {
			return ma > mb
		}
		ai, bi := math.Abs(a.Im), math.Abs(b.Im)
		if ai != bi {
			return ai > bi
		}
		return a.Im > b.Im
	})
}
