package contin

import (
	"math"
	"testing"

	"github.com/soypat/contin/vfield"
)

// lorenzField implements the Lorenz system used in end-to-end scenario E1.
type lorenzField struct{ sigma, beta float64 }

func (f lorenzField) Kind() vfield.Kind { return vfield.Flow }
func (f lorenzField) Dim() int          { return 3 }
func (f lorenzField) PDim() int         { return 1 } // p[0] = rho

func (f lorenzField) Eval(dst, x, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, 3)
	}
	rho := p[0]
	dst[0] = f.sigma * (x[1] - x[0])
	dst[1] = x[0]*(rho-x[2]) - x[1]
	dst[2] = x[0]*x[1] - f.beta*x[2]
	return dst
}

func (f lorenzField) Jx(dst, x, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, 9)
	}
	rho := p[0]
	dst[0], dst[1], dst[2] = -f.sigma, f.sigma, 0
	dst[3], dst[4], dst[5] = rho-x[2], -1, -x[0]
	dst[6], dst[7], dst[8] = x[1], x[0], -f.beta
	return dst
}

func TestEquilibriumSolver_LorenzOrigin(t *testing.T) {
	field := lorenzField{sigma: 10, beta: 8.0 / 3.0}
	settings, _ := NewNewtonSettings(50, 1e-13, 1)
	solver := NewEquilibriumSolver(field, settings)

	sol, err := solver.Solve([]float64{0, 0, 0}, []float64{0.5}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.ResidualNorm > 1e-12 {
		t.Fatalf("residual too large: %v", sol.ResidualNorm)
	}
	for _, v := range sol.State {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("expected origin, got %v", sol.State)
		}
	}
	if len(sol.Eigenvalues) != 3 {
		t.Fatalf("expected 3 eigenvalues, got %d", len(sol.Eigenvalues))
	}
	for _, z := range sol.Eigenvalues {
		if math.Abs(imag(z)) > 1e-9 {
			t.Fatalf("expected all-real spectrum at origin for rho=0.5, got %v", sol.Eigenvalues)
		}
	}
}

// logisticField implements the logistic map used in scenario E4.
type logisticField struct{}

func (logisticField) Kind() vfield.Kind { return vfield.Map }
func (logisticField) Dim() int          { return 1 }
func (logisticField) PDim() int         { return 1 }

func (logisticField) Eval(dst, x, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, 1)
	}
	r := p[0]
	dst[0] = r * x[0] * (1 - x[0])
	return dst
}

func (logisticField) Jx(dst, x, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, 1)
	}
	r := p[0]
	dst[0] = r * (1 - 2*x[0])
	return dst
}

func TestEquilibriumSolver_LogisticFixedPoint(t *testing.T) {
	field := logisticField{}
	settings, _ := NewNewtonSettings(50, 1e-12, 1)
	solver := NewEquilibriumSolver(field, settings)

	sol, err := solver.Solve([]float64{0.5}, []float64{2.5}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1 - 1/2.5
	if math.Abs(sol.State[0]-want) > 1e-8 {
		t.Fatalf("got %v, want %v", sol.State[0], want)
	}
}

func TestEquilibriumSolver_LogisticPeriod2Cycle(t *testing.T) {
	field := logisticField{}
	settings, _ := NewNewtonSettings(100, 1e-12, 0.5)
	solver := NewEquilibriumSolver(field, settings)

	// near r=3.2 the nontrivial fixed point has bifurcated; seed off-fixed-point
	sol, err := solver.Solve([]float64{0.5}, []float64{3.2}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sol.CyclePoints) != 2 {
		t.Fatalf("expected 2 cycle points for k=2, got %d", len(sol.CyclePoints))
	}
	if math.Abs(sol.State[0]-sol.CyclePoints[1][0]) < 1e-6 {
		t.Fatalf("expected genuine 2-cycle, points coincide: %v vs %v", sol.State, sol.CyclePoints[1])
	}
}

func TestEquilibriumSolver_SeedDimensionMismatch(t *testing.T) {
	field := lorenzField{sigma: 10, beta: 8.0 / 3.0}
	settings, _ := NewNewtonSettings(10, 1e-6, 1)
	solver := NewEquilibriumSolver(field, settings)
	_, err := solver.Solve([]float64{0, 0}, []float64{0.5}, 1)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
