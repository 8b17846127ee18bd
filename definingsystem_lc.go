package contin

import (
	"math"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/linalg"
	"github.com/soypat/contin/vfield"
)

// quadraticMonodromy computes M*M - 2*cosTheta*M + I, the real n x n
// factor that singularizes exactly when M carries a complex-conjugate
// eigenvalue pair at angle +-theta on the unit circle (the real encoding of
// (M - e^{i theta} I)(M - e^{-i theta} I) = 0).
func quadraticMonodromy(m []float64, n int, cosTheta float64) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += m[i*n+k] * m[k*n+j]
			}
			v := sum - 2*cosTheta*m[i*n+j]
			if i == j {
				v += 1
			}
			out[i*n+j] = v
		}
	}
	return out
}

// lcBorderedScalar runs the rank-1 bordered test for a limit-cycle codim-1
// condition: solve [A v; w^T 0][q;g]=[0;1] and
// return g, whose vanishing marks the targeted monodromy eigenvalue.
// FoldSystem.foldScalar performs the identical computation on Jx; here the
// bordered matrix A is built from the monodromy matrix (or a function of
// it) instead, which is the simplification this package takes throughout
// LPC/PD/NS rather than deriving a bordered system directly on the
// collocation Jacobian's condensed block.
func lcBorderedScalar(a []float64, n int, v, w []float64) float64 {
	f := make([]float64, n)
	_, g, err := linalg.BorderedSolve(n, 1, a, v, w, []float64{0}, f, []float64{1})
	if err != nil {
		return math.NaN()
	}
	return g[0]
}

func lcBorderedNullVector(a []float64, n int, v, w []float64) ([]float64, bool) {
	q, _, err := linalg.BorderedSolve(n, 1, a, v, w, []float64{0}, make([]float64, n), []float64{1})
	if err != nil {
		return nil, false
	}
	norm := contstate.Norm2(q)
	if norm < 1e-12 {
		return nil, false
	}
	for i := range q {
		q[i] /= norm
	}
	return q, true
}

// unitBorder returns a length-n vector with a 1 in its first entry, the
// same canonical initial border FoldSystem starts from.
func unitBorder(n int) []float64 {
	v := make([]float64, n)
	v[0] = 1
	return v
}

// lcProfileUnpack splits u into (profile, period, free params) for the
// limit-cycle-derived curve types, which all share the same leading
// layout.
func lcProfileUnpack(u []float64, profLen int) (profile []float64, period float64, rest []float64) {
	return u[:profLen], u[profLen], u[profLen+1:]
}

// --- Limit Point of Cycles (LPC) ---------------------------------------

// LPCSystem continues u=(profile,T,lambda1,lambda2) along a curve where the
// monodromy matrix carries a trivial-excluded eigenvalue at +1, the fold of
// a periodic orbit: a limit point of cycles carries a Floquet multiplier 1
// beyond the trivial one.
type LPCSystem struct {
	Field                    vfield.VectorField
	Param1Index, Param2Index int
	BaseParams               []float64
	Mesh                     Mesh
	StateDim                 int
	Ref                      Reference
	v, w                     []float64
	profile                  []float64
	period                   float64
	lambda1, lambda2         float64
}

func NewLPCSystem(field vfield.VectorField, p1, p2 int, baseParams []float64, mesh Mesh, ref Reference, profile []float64, period, lambda1, lambda2 float64) *LPCSystem {
	n := field.Dim()
	return &LPCSystem{Field: field, Param1Index: p1, Param2Index: p2, BaseParams: append([]float64(nil), baseParams...), Mesh: mesh, StateDim: n, Ref: ref, v: unitBorder(n), w: unitBorder(n), profile: append([]float64(nil), profile...), period: period, lambda1: lambda1, lambda2: lambda2}
}

func (s *LPCSystem) paramVector(l1, l2 float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.Param1Index] = l1
	p[s.Param2Index] = l2
	return p
}

func (s *LPCSystem) Dim() int { return s.StateDim*s.Mesh.ProfileLen() + 3 }

func (s *LPCSystem) Pack() []float64 {
	return append(append([]float64(nil), s.profile...), s.period, s.lambda1, s.lambda2)
}

func (s *LPCSystem) Unpack(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	prof, period, rest := lcProfileUnpack(u, n)
	s.profile = append([]float64(nil), prof...)
	s.period = period
	s.lambda1, s.lambda2 = rest[0], rest[1]
}

func (s *LPCSystem) monodromy(profile []float64, period float64, p []float64) ([]float64, error) {
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	fr, err := FloquetAnalyzer{Field: s.Field}.monodromyMatrix(lc, p, s.Ref)
	return fr, err
}

func (s *LPCSystem) G(u []float64) []float64 {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, period, rest := lcProfileUnpack(u, n)
	l1, l2 := rest[0], rest[1]
	p := s.paramVector(l1, l2)
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	out := CollocationResidual(s.Field, lc, p, s.Ref)
	m, err := s.monodromy(profile, period, p)
	if err != nil {
		return append(out, math.NaN())
	}
	a := make([]float64, len(m))
	copy(a, m)
	for i := 0; i < s.StateDim; i++ {
		a[i*s.StateDim+i] -= 1 // M - I: singular exactly at multiplier 1
	}
	return append(out, lcBorderedScalar(a, s.StateDim, s.v, s.w))
}

func (s *LPCSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

func (s *LPCSystem) RefreshBordering(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, period, rest := lcProfileUnpack(u, n)
	s.Ref.Profile = append([]float64(nil), profile...)
	m, err := s.monodromy(profile, period, s.paramVector(rest[0], rest[1]))
	if err != nil {
		return
	}
	for i := 0; i < s.StateDim; i++ {
		m[i*s.StateDim+i] -= 1
	}
	if q, ok := lcBorderedNullVector(m, s.StateDim, s.v, s.w); ok {
		s.v, s.w = q, append([]float64(nil), q...)
	}
}

func (s *LPCSystem) CurveKind() contstate.CurveKind { return contstate.CurveLPC }

// --- Period-doubling (PD) -----------------------------------------------

// PDSystem mirrors LPCSystem but targets the Floquet multiplier -1 (M + I
// singular), the period-doubling condition.
type PDSystem struct {
	Field                    vfield.VectorField
	Param1Index, Param2Index int
	BaseParams               []float64
	Mesh                     Mesh
	StateDim                 int
	Ref                      Reference
	v, w                     []float64
	profile                  []float64
	period                   float64
	lambda1, lambda2         float64
}

func NewPDSystem(field vfield.VectorField, p1, p2 int, baseParams []float64, mesh Mesh, ref Reference, profile []float64, period, lambda1, lambda2 float64) *PDSystem {
	n := field.Dim()
	return &PDSystem{Field: field, Param1Index: p1, Param2Index: p2, BaseParams: append([]float64(nil), baseParams...), Mesh: mesh, StateDim: n, Ref: ref, v: unitBorder(n), w: unitBorder(n), profile: append([]float64(nil), profile...), period: period, lambda1: lambda1, lambda2: lambda2}
}

func (s *PDSystem) paramVector(l1, l2 float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.Param1Index] = l1
	p[s.Param2Index] = l2
	return p
}

func (s *PDSystem) Dim() int { return s.StateDim*s.Mesh.ProfileLen() + 3 }

func (s *PDSystem) Pack() []float64 {
	return append(append([]float64(nil), s.profile...), s.period, s.lambda1, s.lambda2)
}

func (s *PDSystem) Unpack(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	prof, period, rest := lcProfileUnpack(u, n)
	s.profile = append([]float64(nil), prof...)
	s.period = period
	s.lambda1, s.lambda2 = rest[0], rest[1]
}

func (s *PDSystem) monodromy(profile []float64, period float64, p []float64) ([]float64, error) {
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	return FloquetAnalyzer{Field: s.Field}.monodromyMatrix(lc, p, s.Ref)
}

func (s *PDSystem) G(u []float64) []float64 {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, period, rest := lcProfileUnpack(u, n)
	l1, l2 := rest[0], rest[1]
	p := s.paramVector(l1, l2)
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	out := CollocationResidual(s.Field, lc, p, s.Ref)
	m, err := s.monodromy(profile, period, p)
	if err != nil {
		return append(out, math.NaN())
	}
	a := make([]float64, len(m))
	copy(a, m)
	for i := 0; i < s.StateDim; i++ {
		a[i*s.StateDim+i] += 1 // M + I: singular exactly at multiplier -1
	}
	return append(out, lcBorderedScalar(a, s.StateDim, s.v, s.w))
}

func (s *PDSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

func (s *PDSystem) RefreshBordering(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, period, rest := lcProfileUnpack(u, n)
	s.Ref.Profile = append([]float64(nil), profile...)
	m, err := s.monodromy(profile, period, s.paramVector(rest[0], rest[1]))
	if err != nil {
		return
	}
	for i := 0; i < s.StateDim; i++ {
		m[i*s.StateDim+i] += 1
	}
	if q, ok := lcBorderedNullVector(m, s.StateDim, s.v, s.w); ok {
		s.v, s.w = q, append([]float64(nil), q...)
	}
}

func (s *PDSystem) CurveKind() contstate.CurveKind { return contstate.CurvePD }

// --- Neimark-Sacker (NS) --------------------------------------------------

// NSSystem continues u=(profile,T,lambda1,lambda2,theta): theta is the
// auxiliary angle (recorded as a BranchPoint's Auxiliary field, its
// cos(theta) value) at which the monodromy matrix carries a
// complex-conjugate pair on the unit circle.
type NSSystem struct {
	Field                    vfield.VectorField
	Param1Index, Param2Index int
	BaseParams               []float64
	Mesh                     Mesh
	StateDim                 int
	Ref                      Reference
	v, w                     []float64
	profile                  []float64
	period                   float64
	lambda1, lambda2, theta  float64
}

func NewNSSystem(field vfield.VectorField, p1, p2 int, baseParams []float64, mesh Mesh, ref Reference, profile []float64, period, lambda1, lambda2, theta0 float64) *NSSystem {
	n := field.Dim()
	// second border column e_1, independent of the first (e_0)
	w := make([]float64, n)
	if n > 1 {
		w[1] = 1
	}
	return &NSSystem{Field: field, Param1Index: p1, Param2Index: p2, BaseParams: append([]float64(nil), baseParams...), Mesh: mesh, StateDim: n, Ref: ref, v: unitBorder(n), w: w, profile: append([]float64(nil), profile...), period: period, lambda1: lambda1, lambda2: lambda2, theta: theta0}
}

func (s *NSSystem) paramVector(l1, l2 float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.Param1Index] = l1
	p[s.Param2Index] = l2
	return p
}

func (s *NSSystem) Dim() int { return s.StateDim*s.Mesh.ProfileLen() + 4 }

func (s *NSSystem) Pack() []float64 {
	return append(append([]float64(nil), s.profile...), s.period, s.lambda1, s.lambda2, s.theta)
}

func (s *NSSystem) Unpack(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	prof, period, rest := lcProfileUnpack(u, n)
	s.profile = append([]float64(nil), prof...)
	s.period = period
	s.lambda1, s.lambda2, s.theta = rest[0], rest[1], rest[2]
}

func (s *NSSystem) monodromy(profile []float64, period float64, p []float64) ([]float64, error) {
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	return FloquetAnalyzer{Field: s.Field}.monodromyMatrix(lc, p, s.Ref)
}

// nsScalars runs the rank-2 bordered test on the quadratic monodromy
// factor: q is singular on a 2-dimensional eigenspace exactly when the
// monodromy matrix carries the complex-conjugate pair e^{+-i*theta}, so a
// single rank-1 border (as LPC and PD use on their rank-1-singular M-I,
// M+I) leaves one direction of that eigenspace unconstrained. Mirrors
// HopfSystem.hopfScalars's rank-2 border on its complexified Jx, except q
// is already a real StateDim x StateDim matrix here, so no 2n
// complexification is needed.
func (s *NSSystem) nsScalars(q []float64) []float64 {
	n := s.StateDim
	border := packCols(s.v, s.w)
	f := make([]float64, n)
	_, g, err := linalg.BorderedSolve(n, 2, q, border, border, []float64{0, 0, 0, 0}, f, []float64{1, 0})
	if err != nil {
		return []float64{math.NaN(), math.NaN()}
	}
	return g
}

func (s *NSSystem) G(u []float64) []float64 {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, period, rest := lcProfileUnpack(u, n)
	l1, l2, theta := rest[0], rest[1], rest[2]
	p := s.paramVector(l1, l2)
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	out := CollocationResidual(s.Field, lc, p, s.Ref)
	m, err := s.monodromy(profile, period, p)
	if err != nil {
		return append(out, math.NaN(), math.NaN())
	}
	q := quadraticMonodromy(m, s.StateDim, math.Cos(theta))
	return append(out, s.nsScalars(q)...)
}

func (s *NSSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

func (s *NSSystem) RefreshBordering(u []float64) {
	// the fixed border pair is left as-is, matching HopfSystem's own
	// rank-2 bordering: near a simple complex pair the 2x2 bordered solve
	// is only weakly sensitive to the border vectors' exact direction.
}

func (s *NSSystem) CurveKind() contstate.CurveKind { return contstate.CurveNS }

// --- Isochrone ------------------------------------------------------------

// IsochroneSystem continues u=(profile,T,lambda1,lambda2) at a period held
// fixed to a reference value: the free-period unknown of the ordinary
// limit-cycle system is instead pinned by an extra scalar equation
// T-Tref=0, and the two-parameter plane is swept at constant period rather
// than constant phase.
type IsochroneSystem struct {
	Field                    vfield.VectorField
	Param1Index, Param2Index int
	BaseParams               []float64
	Mesh                     Mesh
	StateDim                 int
	Ref                      Reference
	PeriodRef                float64
	profile                  []float64
	period                   float64
	lambda1, lambda2         float64
}

func NewIsochroneSystem(field vfield.VectorField, p1, p2 int, baseParams []float64, mesh Mesh, ref Reference, profile []float64, period, lambda1, lambda2 float64) *IsochroneSystem {
	return &IsochroneSystem{Field: field, Param1Index: p1, Param2Index: p2, BaseParams: append([]float64(nil), baseParams...), Mesh: mesh, StateDim: field.Dim(), Ref: ref, PeriodRef: period, profile: append([]float64(nil), profile...), period: period, lambda1: lambda1, lambda2: lambda2}
}

func (s *IsochroneSystem) paramVector(l1, l2 float64) []float64 {
	p := append([]float64(nil), s.BaseParams...)
	p[s.Param1Index] = l1
	p[s.Param2Index] = l2
	return p
}

func (s *IsochroneSystem) Dim() int { return s.StateDim*s.Mesh.ProfileLen() + 3 }

func (s *IsochroneSystem) Pack() []float64 {
	return append(append([]float64(nil), s.profile...), s.period, s.lambda1, s.lambda2)
}

func (s *IsochroneSystem) Unpack(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	prof, period, rest := lcProfileUnpack(u, n)
	s.profile = append([]float64(nil), prof...)
	s.period = period
	s.lambda1, s.lambda2 = rest[0], rest[1]
}

func (s *IsochroneSystem) G(u []float64) []float64 {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, period, rest := lcProfileUnpack(u, n)
	l1, l2 := rest[0], rest[1]
	p := s.paramVector(l1, l2)
	lc := LimitCycleState{Mesh: s.Mesh, Dim: s.StateDim, Profile: profile, Period: period}
	out := CollocationResidual(s.Field, lc, p, s.Ref)
	return append(out, period-s.PeriodRef)
}

func (s *IsochroneSystem) Gu(u []float64) []float64 { return jacobianFD(s.G, u) }

func (s *IsochroneSystem) RefreshBordering(u []float64) {
	n := s.StateDim * s.Mesh.ProfileLen()
	profile, _, _ := lcProfileUnpack(u, n)
	s.Ref.Profile = append([]float64(nil), profile...)
}

func (s *IsochroneSystem) CurveKind() contstate.CurveKind { return contstate.CurveIsochrone }

var _ DefiningSystem = (*LPCSystem)(nil)
var _ DefiningSystem = (*PDSystem)(nil)
var _ DefiningSystem = (*NSSystem)(nil)
var _ DefiningSystem = (*IsochroneSystem)(nil)
