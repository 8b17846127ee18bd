package contin

import (
	"testing"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/vfield"
)

// scalarFoldField implements x' = lambda - x^2, a textbook fold at
// lambda=0, x=0.
type scalarFoldField struct{}

func (scalarFoldField) Kind() vfield.Kind { return vfield.Flow }
func (scalarFoldField) Dim() int          { return 1 }
func (scalarFoldField) PDim() int         { return 1 }
func (scalarFoldField) Eval(dst, x, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, 1)
	}
	dst[0] = p[0] - x[0]*x[0]
	return dst
}
func (scalarFoldField) Jx(dst, x, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, 1)
	}
	dst[0] = -2 * x[0]
	return dst
}

func TestContinuationDriver_EquilibriumBranchAdvances(t *testing.T) {
	field := scalarFoldField{}
	sys := NewEquilibriumSystem(field, 0, []float64{1}, []float64{-1}, 1)

	settings, err := contstate.NewContinuationSettings(0.05, 1e-6, 0.2, 50, 20, 1e-8, 1e-8)
	if err != nil {
		t.Fatalf("unexpected settings error: %v", err)
	}

	driver, err := NewContinuationDriver(sys, settings, true, sys.Pack())
	if err != nil {
		t.Fatalf("unexpected error constructing driver: %v", err)
	}
	driver.Spectrum = func(u []float64) []complex128 {
		jx := field.Jx(nil, u[:1], []float64{u[1]})
		return []complex128{complex(jx[0], 0)}
	}
	driver.TestFuncs = func(u []float64) TestFunctionSet {
		jx := field.Jx(nil, u[:1], []float64{u[1]})
		return TestFunctionSet{"fold": jx[0]}
	}
	driver.Classify = func(name string) contstate.StabilityLabel { return contstate.LabelFold }
	driver.ToBranchPoint = func(u []float64, eig []complex128, tv TestFunctionSet, label contstate.StabilityLabel) contstate.BranchPoint {
		wireEig := make([]contstate.Complex, len(eig))
		for i, z := range eig {
			wireEig[i] = contstate.FromComplex128(z)
		}
		return contstate.BranchPoint{State: []float64{u[0]}, ParamValue: u[1], StabilityLabel: label, Eigenvalues: wireEig}
	}

	accepted := 0
	for i := 0; i < 10; i++ {
		out := driver.Step()
		if out.Terminal {
			break
		}
		if out.Accepted {
			accepted++
		}
	}
	if accepted == 0 {
		t.Fatal("expected at least one accepted continuation step")
	}
}
