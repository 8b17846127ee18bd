package contin

import (
	"fmt"
	"math"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/linalg"
	"github.com/soypat/contin/vfield"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// DefiningSystem is the common interface every curve type implements:
// pack/unpack the augmented unknown vector, evaluate the residual G and its
// Jacobian G_u, and refresh any bordering vectors once per accepted
// continuation step. ContinuationDriver only ever talks to this interface,
// never to a concrete curve type.
type DefiningSystem interface {
	Dim() int
	Pack() []float64
	Unpack(u []float64)
	G(u []float64) []float64
	Gu(u []float64) []float64
	RefreshBordering(u []float64)
	CurveKind() contstate.CurveKind
}

// jacobianFD computes the dense Jacobian of g at u via central finite
// differences (gonum/diff/fd), the same fallback vfield.Func uses when no
// analytic derivative is supplied. Bordered-system Jacobians are involved
// enough (block structure varies per curve type) that hand-deriving each
// one is its own source of subtle error; every bordered and collocation
// DefiningSystem uses this helper for G_u, trading a constant-factor
// runtime cost for confidence that the derivative actually matches G.
// EquilibriumSystem.Gu instead uses the field's Jx plus a central
// difference column for the parameter.
func jacobianFD(g func(u []float64) []float64, u []float64) []float64 {
	n := len(u)
	m := len(g(u))
	jac := mat.NewDense(m, n, nil)
	fd.Jacobian(jac, func(y, x []float64) { copy(y, g(x)) }, u, &fd.JacobianSettings{Formula: fd.Central, Concurrent: false})
	out := make([]float64, m*n)
	r, c := jac.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i*c+j] = jac.At(i, j)
		}
	}
	return out
}

// --- Equilibrium curve ------------------------------------------------

// EquilibriumSystem implements u=(x,lambda); G(u)=f(x,p(lambda)) for a Flow
// field, or G(u)=f^k(x,p(lambda))-x for a Map field's k-cycle. ParamIndex
// selects which entry of the field's parameter vector is the free
// continuation parameter; BaseParams holds the rest fixed. MapIterations is
// ignored for Flow fields.
type EquilibriumSystem struct {
	Field         vfield.VectorField
	ParamIndex    int
	BaseParams    []float64
	MapIterations int
	x             []float64
	lambda        float64
}

func NewEquilibriumSystem(field vfield.VectorField, paramIndex int, baseParams, x0 []float64, lambda0 float64) *EquilibriumSystem {
	return &EquilibriumSystem{Field: field, ParamIndex: paramIndex, BaseParams: append([]float64(nil), baseParams...), MapIterations: 1, x: append([]float64(nil), x0...), lambda: lambda0}
}

func (s *EquilibriumSystem) Dim() int { return s.Field.Dim() + 1 }

func (s *EquilibriumSystem) Pack() []float64 { return append(append([]float64(nil), s.x...), s.lambda) }

func (s *EquilibriumSystem) Unpack(u []float64) {
	n := s.Field.Dim()
	s.x = append([]float64(nil), u[:n]...)
	s.lambda = u[n]
}

func (s *EquilibriumSystem) paramVector(lambda float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.ParamIndex] = lambda
	return p
}

func (s *EquilibriumSystem) residualAt(x []float64, p []float64) []float64 {
	n := s.Field.Dim()
	if s.Field.Kind() != vfield.Map {
		return s.Field.Eval(nil, x, p)
	}
	xk, _ := vfield.IterateJacobian(s.Field, x, p, s.MapIterations)
	out := make([]float64, n)
	for i := range out {
		out[i] = xk[i] - x[i]
	}
	return out
}

func (s *EquilibriumSystem) G(u []float64) []float64 {
	n := s.Field.Dim()
	x, lambda := u[:n], u[n]
	return s.residualAt(x, s.paramVector(lambda))
}

func (s *EquilibriumSystem) Gu(u []float64) []float64 {
	n := s.Field.Dim()
	x, lambda := u[:n], u[n]
	p := s.paramVector(lambda)
	var jx []float64
	if s.Field.Kind() == vfield.Map {
		_, jac := vfield.IterateJacobian(s.Field, x, p, s.MapIterations)
		jx = jac
		for i := 0; i < n; i++ {
			jx[i*n+i] -= 1 // d/dx (f^k(x)-x)
		}
	} else {
		jx = s.Field.Jx(nil, x, p)
	}
	out := make([]float64, n*(n+1))
	for i := 0; i < n; i++ {
		copy(out[i*(n+1):i*(n+1)+n], jx[i*n:i*n+n])
	}
	// last column: dG/dlambda via finite difference (respects fields with
	// no analytic Jp)
	const h = 1e-6
	f0 := s.residualAt(x, s.paramVector(lambda-h))
	f1 := s.residualAt(x, s.paramVector(lambda+h))
	for i := 0; i < n; i++ {
		out[i*(n+1)+n] = (f1[i] - f0[i]) / (2 * h)
	}
	return out
}

func (s *EquilibriumSystem) RefreshBordering(u []float64) {}

func (s *EquilibriumSystem) CurveKind() contstate.CurveKind { return contstate.CurveEquilibrium }

// --- Fold curve --------------------------------------------------------

// FoldSystem implements u=(x,lambda1,lambda2); appends the minimally
// augmented fold condition g=0 from a bordered system on Jx with fixed
// bordering vectors v,w refreshed from the previous null-vector estimate.
type FoldSystem struct {
	Field                   vfield.VectorField
	Param1Index, Param2Index int
	BaseParams              []float64
	v, w                    []float64
	x                       []float64
	lambda1, lambda2        float64
}

func NewFoldSystem(field vfield.VectorField, p1, p2 int, baseParams, x0 []float64, lambda1, lambda2 float64) *FoldSystem {
	n := field.Dim()
	v := make([]float64, n)
	w := make([]float64, n)
	v[0], w[0] = 1, 1
	return &FoldSystem{Field: field, Param1Index: p1, Param2Index: p2, BaseParams: append([]float64(nil), baseParams...), v: v, w: w, x: append([]float64(nil), x0...), lambda1: lambda1, lambda2: lambda2}
}

func (s *FoldSystem) Dim() int { return s.Field.Dim() + 2 }

func (s *FoldSystem) Pack() []float64 {
	return append(append([]float64(nil), s.x...), s.lambda1, s.lambda2)
}

func (s *FoldSystem) Unpack(u []float64) {
	n := s.Field.Dim()
	s.x = append([]float64(nil), u[:n]...)
	s.lambda1, s.lambda2 = u[n], u[n+1]
}

func (s *FoldSystem) paramVector(l1, l2 float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.Param1Index] = l1
	p[s.Param2Index] = l2
	return p
}

// foldScalar solves the bordered system [Jx v; w^T 0] [q;g] = [0;1] and
// returns g, whose vanishing is the fold condition.
func (s *FoldSystem) foldScalar(x []float64, p []float64) float64 {
	n := s.Field.Dim()
	jx := s.Field.Jx(nil, x, p)
	f := make([]float64, n)
	_, g, err := linalg.BorderedSolve(n, 1, jx, s.v, s.w, []float64{0}, f, []float64{1})
	if err != nil {
		return math.NaN()
	}
	return g[0]
}

func (s *FoldSystem) G(u []float64) []float64 {
	n := s.Field.Dim()
	x, l1, l2 := u[:n], u[n], u[n+1]
	p := s.paramVector(l1, l2)
	out := append(s.Field.Eval(nil, x, p), s.foldScalar(x, p))
	return out
}

func (s *FoldSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

// RefreshBordering updates v,w to the current null-vector/covector
// estimate, so the next step's border stays aligned with the kernel of Jx.
func (s *FoldSystem) RefreshBordering(u []float64) {
	n := s.Field.Dim()
	x, l1, l2 := u[:n], u[n], u[n+1]
	p := s.paramVector(l1, l2)
	jx := s.Field.Jx(nil, x, p)
	q, _, err := linalg.BorderedSolve(n, 1, jx, s.v, s.w, []float64{0}, make([]float64, n), []float64{1})
	if err != nil {
		return
	}
	norm := contstate.Norm2(q)
	if norm > 1e-12 {
		for i := range q {
			q[i] /= norm
		}
		s.v = q
		s.w = append([]float64(nil), q...)
	}
}

func (s *FoldSystem) CurveKind() contstate.CurveKind { return contstate.CurveFold }

// --- Hopf curve ----------------------------------------------------------

// HopfSystem implements u=(x,lambda1,lambda2,omega); appends two scalars
// enforcing a pair of eigenvalues at +-i*omega via a rank-2 bordered system
// on the 2n x 2n real matrix built by complexBordered2n. That matrix
// encodes the complexified kernel equation (Jx - i*omega*I) q = 0 by
// stacking real and imaginary parts, a standard real-arithmetic encoding
// of the complex minimally-augmented Hopf test.
type HopfSystem struct {
	Field                    vfield.VectorField
	Param1Index, Param2Index int
	BaseParams               []float64
	v, w                     []float64 // length 2n bordering vectors (real,imag stacked)
	x                        []float64
	lambda1, lambda2, omega  float64
}

func NewHopfSystem(field vfield.VectorField, p1, p2 int, baseParams, x0 []float64, lambda1, lambda2, omega0 float64) *HopfSystem {
	n := field.Dim()
	v := make([]float64, 2*n)
	w := make([]float64, 2*n)
	// the two border columns pick the real and imaginary parts of the first
	// state component, so they are independent.
	v[0], w[n] = 1, 1
	return &HopfSystem{Field: field, Param1Index: p1, Param2Index: p2, BaseParams: append([]float64(nil), baseParams...), v: v, w: w, x: append([]float64(nil), x0...), lambda1: lambda1, lambda2: lambda2, omega: omega0}
}

func (s *HopfSystem) Dim() int { return s.Field.Dim() + 3 }

func (s *HopfSystem) Pack() []float64 {
	return append(append([]float64(nil), s.x...), s.lambda1, s.lambda2, s.omega)
}

func (s *HopfSystem) Unpack(u []float64) {
	n := s.Field.Dim()
	s.x = append([]float64(nil), u[:n]...)
	s.lambda1, s.lambda2, s.omega = u[n], u[n+1], u[n+2]
}

func (s *HopfSystem) paramVector(l1, l2 float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.Param1Index] = l1
	p[s.Param2Index] = l2
	return p
}

// complexBordered2n builds the 2n x 2n real block matrix representing
// (Jx - i*omega*I) acting on the complexified state, as blocks [[Jx,
// omega*I],[-omega*I, Jx]], matching the standard real encoding of a
// complex linear map.
func complexBordered2n(jx []float64, n int, omega float64) []float64 {
	out := make([]float64, 4*n*n)
	m := 2 * n
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*m+j] = jx[i*n+j]
			out[(n+i)*m+(n+j)] = jx[i*n+j]
		}
		out[i*m+(n+i)] = omega
		out[(n+i)*m+i] = -omega
	}
	return out
}

func (s *HopfSystem) hopfScalars(x []float64, p []float64, omega float64) []float64 {
	n := s.Field.Dim()
	jx := s.Field.Jx(nil, x, p)
	a := complexBordered2n(jx, n, omega)
	f := make([]float64, 2*n)
	_, g, err := linalg.BorderedSolve(2*n, 2, a, packCols(s.v, s.w), packCols(s.v, s.w), []float64{0, 0, 0, 0}, f, []float64{1, 0})
	if err != nil {
		return []float64{math.NaN(), math.NaN()}
	}
	return g
}

// packCols interleaves two length-m vectors into an m x 2 row-major
// border-vector matrix (each becomes one column).
func packCols(a, b []float64) []float64 {
	m := len(a)
	out := make([]float64, 2*m)
	for i := 0; i < m; i++ {
		out[2*i], out[2*i+1] = a[i], b[i]
	}
	return out
}

func (s *HopfSystem) G(u []float64) []float64 {
	n := s.Field.Dim()
	x, l1, l2, omega := u[:n], u[n], u[n+1], u[n+2]
	p := s.paramVector(l1, l2)
	out := s.Field.Eval(nil, x, p)
	out = append(out, s.hopfScalars(x, p, omega)...)
	return out
}

func (s *HopfSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

func (s *HopfSystem) RefreshBordering(u []float64) {
	// the fixed unit-vector border is left as-is, not re-aimed at a fresh
	// null space: the 2x2 complex bordering is only weakly
	// sensitive to the border choice near a simple eigenvalue pair, unlike
	// the rank-1 fold case.
}

func (s *HopfSystem) CurveKind() contstate.CurveKind { return contstate.CurveHopf }

// --- Limit cycle -------------------------------------------------------

// LimitCycleSystem wraps CollocationResidual as a DefiningSystem: u =
// (profile, T, lambda).
type LimitCycleSystem struct {
	Field      vfield.VectorField
	ParamIndex int
	BaseParams []float64
	Mesh       Mesh
	StateDim   int
	Ref        Reference
	profile    []float64
	period     float64
	lambda     float64
}

func NewLimitCycleSystem(field vfield.VectorField, paramIndex int, baseParams []float64, mesh Mesh, ref Reference, profile []float64, period, lambda float64) *LimitCycleSystem {
	return &LimitCycleSystem{Field: field, ParamIndex: paramIndex, BaseParams: append([]float64(nil), baseParams...), Mesh: mesh, StateDim: field.Dim(), Ref: ref, profile: append([]float64(nil), profile...), period: period, lambda: lambda}
}

func (s *LimitCycleSystem) Dim() int { return s.StateDim*s.Mesh.ProfileLen() + 2 }

func (s *LimitCycleSystem) Pack() []float64 {
	return append(append([]float64(nil), s.profile...), s.period, s.lambda)
}

func (s *LimitCycleSystem) Unpack(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	s.profile = append([]float64(nil), u[:n]...)
	s.period, s.lambda = u[n], u[n+1]
}

func (s *LimitCycleSystem) paramVector(lambda float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.ParamIndex] = lambda
	return p
}

func (s *LimitCycleSystem) G(u []float64) []float64 {
	n := s.StateDim * s.Mesh.ProfileLen()
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: u[:n], Period: u[n]}
	lambda := u[n+1]
	return CollocationResidual(s.Field, lc, s.paramVector(lambda), s.Ref)
}

func (s *LimitCycleSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

func (s *LimitCycleSystem) RefreshBordering(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	s.Ref.Profile = append([]float64(nil), u[:n]...)
	// reference velocity recomputed from the field itself at the new
	// profile, reusing the accepted lambda.
	lambda := u[n+1]
	p := s.paramVector(lambda)
	dot := make([]float64, n)
	for i := 0; i < s.Mesh.ProfileLen(); i++ {
		x := u[i*s.StateDim : (i+1)*s.StateDim]
		fx := s.Field.Eval(nil, x, p)
		copy(dot[i*s.StateDim:(i+1)*s.StateDim], fx)
	}
	s.Ref.ProfileDot = dot
}

func (s *LimitCycleSystem) CurveKind() contstate.CurveKind { return contstate.CurveLimitCycle }

var _ DefiningSystem = (*EquilibriumSystem)(nil)
var _ DefiningSystem = (*FoldSystem)(nil)
var _ DefiningSystem = (*HopfSystem)(nil)
var _ DefiningSystem = (*LimitCycleSystem)(nil)

func fmtUnsupported(kind contstate.CurveKind) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedCurveType, kind)
}
