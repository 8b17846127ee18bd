package contin

import "testing"

func TestFloquetAnalyzer_Shape(t *testing.T) {
	mesh, err := NewMesh(6, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dim := 2
	n := mesh.ProfileLen()
	profile := make([]float64, n*dim)
	for i := 0; i < n; i++ {
		profile[i*dim], profile[i*dim+1] = 1, 0
	}
	lc := LimitCycleState{Mesh: mesh, Dim: dim, Profile: profile, Period: 6.283185307}
	ref := Reference{Profile: append([]float64(nil), profile...), ProfileDot: make([]float64, n*dim)}

	analyzer := FloquetAnalyzer{Field: linearOscillator{}}
	result, err := analyzer.Analyze(lc, []float64{1}, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Multipliers) != dim {
		t.Fatalf("expected %d multipliers, got %d", dim, len(result.Multipliers))
	}
}
