// Package vfield defines the abstract VectorField capability consumed by
// the continuation kernel. It is the narrow interface boundary that stands
// in for an out-of-scope equation-compilation front end: the kernel only
// ever calls Eval/Jx (and, for curves that need them, Jp/Jxx) on a
// VectorField, never inspects how it was built.
package vfield

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Kind discriminates a continuous-time flow from a discrete-time map. A Map
// VectorField's Eval is the map itself, f(x,p); EquilibriumSolver composes
// it k times to find k-cycles.
type Kind int

const (
	Flow Kind = iota
	Map
)

// VectorField is the abstract evaluator every kernel component consumes.
// Dim is the state dimension; PDim is the parameter-vector dimension.
type VectorField interface {
	Kind() Kind
	Dim() int
	PDim() int

	// Eval returns f(x, p) in dst (len(dst) == Dim()), or computes and
	// returns a freshly allocated slice when dst is nil.
	Eval(dst, x, p []float64) []float64

	// Jx returns the dim x dim Jacobian d f / d x at (x, p), row-major in
	// dst (len(dst) == Dim()*Dim()), or a fresh slice when dst is nil.
	Jx(dst, x, p []float64) []float64
}

// ParamJacobian is implemented by VectorFields that can supply d f / d p
// analytically. The continuation kernel does not call Jp: its defining
// systems take parameter derivatives by finite differences of their own
// residuals.
type ParamJacobian interface {
	// Jp returns the dim x pdim Jacobian d f / d p at (x, p), row-major.
	Jp(dst, x, p []float64) []float64
}

// SecondDerivative is implemented by VectorFields that can supply the
// second state derivative Jxx analytically. The continuation kernel does
// not call Jxx; the Cusp and Bautin test functions take their values from
// the caller.
type SecondDerivative interface {
	// Jxx returns the dim x dim x dim tensor d^2 f / d x^2 at (x, p),
	// flattened row-major (index (i,j,k) at i*dim*dim + j*dim + k).
	Jxx(x, p []float64) []float64
}

// Func adapts plain Go closures into a VectorField: the narrow interface
// the scenario fixtures (Lorenz, Rössler, logistic map, Brusselator) and
// unit tests build against directly, standing
// in for the equation-compilation front end that is out of scope.
type Func struct {
	kind        Kind
	dim, pdim   int
	EvalFunc    func(dst, x, p []float64) []float64
	JxFunc      func(dst, x, p []float64) []float64 // optional; nil uses finite differences
	JpFunc      func(dst, x, p []float64) []float64 // optional
	JxxFunc     func(x, p []float64) []float64      // optional
}

// NewFunc builds a Func VectorField of the given kind and dimensions. If jx
// is nil, Jx falls back to a central finite-difference approximation via
// gonum/diff/fd.
func NewFunc(kind Kind, dim, pdim int, eval, jx, jp func(dst, x, p []float64) []float64, jxx func(x, p []float64) []float64) *Func {
	return &Func{kind: kind, dim: dim, pdim: pdim, EvalFunc: eval, JxFunc: jx, JpFunc: jp, JxxFunc: jxx}
}

func (f *Func) Kind() Kind { return f.kind }
func (f *Func) Dim() int   { return f.dim }
func (f *Func) PDim() int  { return f.pdim }

func (f *Func) Eval(dst, x, p []float64) []float64 {
	return f.EvalFunc(dst, x, p)
}

func (f *Func) Jx(dst, x, p []float64) []float64 {
	if f.JxFunc != nil {
		return f.JxFunc(dst, x, p)
	}
	return FiniteDifferenceJx(dst, f, x, p)
}

func (f *Func) Jp(dst, x, p []float64) []float64 {
	if f.JpFunc != nil {
		return f.JpFunc(dst, x, p)
	}
	return FiniteDifferenceJp(dst, f, x, p)
}

func (f *Func) Jxx(x, p []float64) []float64 {
	if f.JxxFunc != nil {
		return f.JxxFunc(x, p)
	}
	return nil
}

// HasParamJacobian reports whether v supplies an analytic Jp.
func HasParamJacobian(v VectorField) (ParamJacobian, bool) {
	pj, ok := v.(ParamJacobian)
	return pj, ok
}

// HasSecondDerivative reports whether v supplies an analytic Jxx.
func HasSecondDerivative(v VectorField) (SecondDerivative, bool) {
	sd, ok := v.(SecondDerivative)
	return sd, ok
}

// FiniteDifferenceJx approximates d f / d x by central differences using
// gonum/diff/fd.
func FiniteDifferenceJx(dst []float64, v VectorField, x, p []float64) []float64 {
	n := v.Dim()
	fn := func(y, xv []float64) {
		v.Eval(y, xv, p)
	}
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, fn, x, &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: false,
	})
	return flattenDense(dst, jac, n, n)
}

// FiniteDifferenceJp approximates d f / d p by central differences in the
// parameter vector.
func FiniteDifferenceJp(dst []float64, v VectorField, x, p []float64) []float64 {
	n, m := v.Dim(), v.PDim()
	fn := func(y, pv []float64) {
		v.Eval(y, x, pv)
	}
	jac := mat.NewDense(n, m, nil)
	fd.Jacobian(jac, fn, p, &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: false,
	})
	return flattenDense(dst, jac, n, m)
}

// flattenDense copies a gonum *mat.Dense into a row-major []float64,
// allocating dst when nil.
func flattenDense(dst []float64, m *mat.Dense, rows, cols int) []float64 {
	if dst == nil {
		dst = make([]float64, rows*cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[i*cols+j] = m.At(i, j)
		}
	}
	return dst
}
