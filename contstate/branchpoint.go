package contstate

// BranchPoint is one accepted (or inserted, for bifurcations) point along a
// Branch.
type BranchPoint struct {
	// State is the curve-specific unknown vector: (x) for an equilibrium,
	// (profile, T) for a limit cycle, etc. Its dimension depends on the
	// curve's DefiningSystem and is not reinterpreted here.
	State []float64

	ParamValue  float64
	Param2Value *float64 // non-nil only for two-parameter curve continuations

	StabilityLabel StabilityLabel
	Eigenvalues    []Complex // Jacobian eigenvalues, or Floquet multipliers for LC-derived curves

	// TestValues holds the per-curve test-function evaluations at this
	// point, keyed by the test function's name, as optional numeric
	// diagnostics for post-hoc inspection.
	TestValues map[string]float64

	// Auxiliary is the curve-specific scalar: cos(theta) for NS points, the
	// Hopf frequency omega for Hopf-curve points, unused (0) elsewhere.
	Auxiliary float64

	// Tangent is the unit tangent in augmented space at this point. It is
	// in-memory-only, part of live continuation state but never persisted,
	// and is therefore not given a wire/JSON tag; serialization must drop
	// it.
	Tangent []float64
}

// Clone makes a deep copy of a BranchPoint so callers can retain a point
// across further driver mutation without aliasing its slices.
func (p BranchPoint) Clone() BranchPoint {
	cp := p
	cp.State = append([]float64(nil), p.State...)
	cp.Eigenvalues = append([]Complex(nil), p.Eigenvalues...)
	cp.Tangent = append([]float64(nil), p.Tangent...)
	if p.Param2Value != nil {
		v := *p.Param2Value
		cp.Param2Value = &v
	}
	if p.TestValues != nil {
		cp.TestValues = make(map[string]float64, len(p.TestValues))
		for k, v := range p.TestValues {
			cp.TestValues[k] = v
		}
	}
	return cp
}
