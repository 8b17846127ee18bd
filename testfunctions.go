package contin

import (
	"math"
	"sort"

	"github.com/soypat/contin/linalg"
)

// TestFunctionSet evaluates the scalar test functions whose sign changes
// flag bifurcations for a given curve point. Values are raw (determinants,
// eigenvalue sums, products) and are not rescaled to a common magnitude.
// ContinuationDriver detects crossings by sign; BifurcationLocator also
// compares the target value's magnitude against bifurcationTolerance.
type TestFunctionSet map[string]float64

// EquilibriumTestFunctions evaluates fold/Hopf/neutral-saddle (flows) or
// fold/NS/PD (maps) test functions from the Jacobian eigenvalues and
// determinant.
func EquilibriumTestFunctions(jac []float64, n int, eig []complex128, isMap bool) TestFunctionSet {
	out := TestFunctionSet{}
	if isMap {
		shiftedMinus := addDiagonal(jac, n, -1)
		shiftedPlus := addDiagonal(jac, n, 1)
		out["fold"] = linalg.Det(n, shiftedMinus)
		out["pd"] = linalg.Det(n, shiftedPlus)
		out["ns"] = bialternateUnitCircleTest(eig)
	} else {
		out["fold"] = linalg.Det(n, jac)
		out["hopf"] = bialternateSumTest(eig)
		out["neutral_saddle"] = out["hopf"]
	}
	return out
}

func addDiagonal(jac []float64, n int, delta float64) []float64 {
	out := append([]float64(nil), jac...)
	for i := 0; i < n; i++ {
		out[i*n+i] += delta
	}
	return out
}

// bialternateSumTest implements the bialternate-product Hopf test: it
// returns the pairwise real-part sum Re(lambda_i + lambda_j), i<j, closest
// to zero, whose sign flips when a complex-conjugate pair crosses the
// imaginary axis.
func bialternateSumTest(eig []complex128) float64 {
	best := math.Inf(1)
	for i := 0; i < len(eig); i++ {
		for j := i + 1; j < len(eig); j++ {
			sum := real(eig[i]) + real(eig[j])
			if absF(sum) < absF(best) {
				best = sum
			}
		}
	}
	return best
}

// bialternateUnitCircleTest is the analogous test for maps: a complex pair
// with lambda_i*lambda_j = 1 on the unit circle (Neimark-Sacker).
func bialternateUnitCircleTest(eig []complex128) float64 {
	best := math.Inf(1)
	for i := 0; i < len(eig); i++ {
		for j := i + 1; j < len(eig); j++ {
			prod := eig[i] * eig[j]
			val := real(prod) - 1
			if absF(val) < absF(best) {
				best = val
			}
		}
	}
	return best
}

// LimitCycleTestFunctions implements the Floquet-multiplier tests (LPC, PD,
// NS), excluding the trivial multiplier identified by FloquetAnalyzer.
func LimitCycleTestFunctions(fr FloquetResult) TestFunctionSet {
	out := TestFunctionSet{}
	lpc, pd := 1.0, 1.0
	for i, mu := range fr.Multipliers {
		if i == fr.TrivialIndex {
			continue
		}
		lpc *= real(mu - 1)
		pd *= real(mu + 1)
	}
	out["lpc"] = lpc
	out["pd"] = pd
	out["ns"] = bialternateUnitCircleTest(excludeIndex(fr.Multipliers, fr.TrivialIndex))
	return out
}

func excludeIndex(v []complex128, idx int) []complex128 {
	if idx < 0 {
		return v
	}
	out := make([]complex128, 0, len(v)-1)
	for i, z := range v {
		if i != idx {
			out = append(out, z)
		}
	}
	return out
}

// FoldCurveTestFunctions implements the codim-2 detectors for fold curves:
// cusp (the fold-derivative value supplied by the caller, used as given),
// Bogdanov-Takens (the trace of Jx, which vanishes together with the fold
// condition when Jx is nilpotent), Zero-Hopf (additional iw pair alongside
// the zero eigenvalue).
func FoldCurveTestFunctions(jac []float64, n int, eig []complex128, foldDerivative float64) TestFunctionSet {
	out := TestFunctionSet{}
	out["cusp"] = foldDerivative
	var trace float64
	for i := 0; i < n; i++ {
		trace += jac[i*n+i]
	}
	out["bt"] = trace
	out["zero_hopf"] = bialternateSumTest(eig)
	return out
}

// HopfCurveTestFunctions implements the codim-2 detectors for Hopf curves:
// Bogdanov-Takens (omega -> 0), Zero-Hopf (an additional zero eigenvalue),
// Bautin (first Lyapunov coefficient, supplied by the caller since it
// requires second-order vector field data outside this file's scope),
// Double-Hopf (a second iw pair).
func HopfCurveTestFunctions(jac []float64, n int, eig []complex128, omega, firstLyapunov float64) TestFunctionSet {
	out := TestFunctionSet{}
	out["bt"] = omega
	out["zero_hopf"] = linalg.Det(n, jac)
	out["bautin"] = firstLyapunov
	// Double-Hopf: look for a second near-imaginary-axis pair besides the
	// one already parameterized by omega.
	best := math.Inf(1)
	for i := 0; i < len(eig); i++ {
		for j := i + 1; j < len(eig); j++ {
			sum := real(eig[i]) + real(eig[j])
			avgIm := (absF(imag(eig[i])) + absF(imag(eig[j]))) / 2
			if absF(avgIm-omega) < 1e-6 {
				continue // this is the parameterized pair itself
			}
			if absF(sum) < absF(best) {
				best = sum
			}
		}
	}
	out["double_hopf"] = best
	return out
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// codim2Keys names the five codim-2 singularity test functions. Ordering
// these after every codim-1 key in SortedKeys lets ContinuationDriver's
// single-bifurcation-per-step bookkeeping favor the codim-2 classification
// whenever a codim-2 singularity and its constituent codim-1 condition
// cross in the same step: a codim-2 label takes precedence over the
// codim-1 labels of the curves through it.
var codim2Keys = map[string]bool{
	"cusp": true, "bt": true, "zero_hopf": true, "bautin": true, "double_hopf": true,
}

// SortedKeys iterates test functions in a deterministic order (map
// iteration order is randomized in Go, which would otherwise break
// reproducibility given an identical seed), with every codim-1 key ordered
// before any codim-2 key.
func (t TestFunctionSet) SortedKeys() []string {
	var codim1, codim2 []string
	for k := range t {
		if codim2Keys[k] {
			codim2 = append(codim2, k)
		} else {
			codim1 = append(codim1, k)
		}
	}
	sort.Strings(codim1)
	sort.Strings(codim2)
	return append(codim1, codim2...)
}
