package contin

import (
	"fmt"

	"github.com/soypat/contin/contstate"
	"github.com/soypat/contin/vfield"
	"gonum.org/v1/gonum/integrate/quad"
)

// Mesh is the fixed ntst x ncol orthogonal-collocation grid: ntst intervals
// of [0,1], each represented by a degree-ncol Lagrange
// polynomial on ncol+1 uniformly spaced local nodes, with the residual
// enforced at ncol interior Gauss-Legendre points. Gauss-Legendre node
// locations and quadrature weights come from gonum's quad.Legendre, the
// same fixed-point quadrature family the rest of the ecosystem uses rather
// than a hand-rolled root finder.
type Mesh struct {
	Ntst, Ncol int
	// localNodes are the ncol+1 uniformly-spaced representation points
	// within a single interval, in [0,1].
	localNodes []float64
	// gaussNodes, gaussWeights are the ncol Gauss-Legendre collocation
	// points and weights on [0,1].
	gaussNodes, gaussWeights []float64
	// basisAtGauss[c][j] = L_j(gaussNodes[c]); derivAtGauss[c][j] =
	// L_j'(gaussNodes[c]), both with respect to the local [0,1] coordinate.
	basisAtGauss, derivAtGauss [][]float64
}

// NewMesh builds the collocation mesh for ntst intervals and ncol points
// per interval. ncol must be >= 1.
func NewMesh(ntst, ncol int) (Mesh, error) {
	if ntst <= 0 || ncol <= 0 {
		return Mesh{}, fmt.Errorf("%w: NewMesh requires positive ntst and ncol, got ntst=%d ncol=%d", contstate.ErrInvalidSettings, ntst, ncol)
	}
	local := make([]float64, ncol+1)
	for j := range local {
		local[j] = float64(j) / float64(ncol)
	}
	gn := make([]float64, ncol)
	gw := make([]float64, ncol)
	quad.Legendre{}.FixedLocations(gn, gw, 0, 1)

	basis := make([][]float64, ncol)
	deriv := make([][]float64, ncol)
	for c := range gn {
		basis[c] = lagrangeBasis(local, gn[c])
		deriv[c] = lagrangeDeriv(local, gn[c])
	}
	return Mesh{
		Ntst: ntst, Ncol: ncol,
		localNodes:   local,
		gaussNodes:   gn,
		gaussWeights: gw,
		basisAtGauss: basis,
		derivAtGauss: deriv,
	}, nil
}

// ProfileLen returns the number of dim-vectors in a profile for this mesh,
// ntst*ncol + 1; the profile itself holds dim times that many floats.
func (m Mesh) ProfileLen() int { return m.Ntst*m.Ncol + 1 }

func lagrangeBasis(nodes []float64, x float64) []float64 {
	n := len(nodes)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		l := 1.0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			l *= (x - nodes[k]) / (nodes[j] - nodes[k])
		}
		out[j] = l
	}
	return out
}

func lagrangeDeriv(nodes []float64, x float64) []float64 {
	n := len(nodes)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for m := 0; m < n; m++ {
			if m == j {
				continue
			}
			term := 1.0 / (nodes[j] - nodes[m])
			for l := 0; l < n; l++ {
				if l == j || l == m {
					continue
				}
				term *= (x - nodes[l]) / (nodes[j] - nodes[l])
			}
			sum += term
		}
		out[j] = sum
	}
	return out
}

// LimitCycleState packs the collocation unknowns: the state profile and the
// period. The free system parameter is not part of it; LimitCycleSystem
// carries it as the last entry of `u = (profile, T, lambda)`.
type LimitCycleState struct {
	Mesh    Mesh
	Dim     int
	Profile []float64 // length Mesh.ProfileLen()*Dim, dim-vectors interleaved
	Period  float64
}

// Reference carries the previous cycle's profile and derivative, used by
// the phase condition to pin down the otherwise free time-translation of a
// periodic orbit.
type Reference struct {
	Profile    []float64 // u_ref, same layout as LimitCycleState.Profile
	ProfileDot []float64 // u_ref', precomputed once per accepted point
}

// CollocationResidual evaluates the three-block residual (interior
// collocation, boundary, phase condition) for state lc against
// field at parameter p, relative to reference ref. The boundary condition
// u(1)-u(0)=0 is its own dim-length block after the dim*ntst*ncol interior
// equations, followed by the trailing phase scalar.
func CollocationResidual(field vfield.VectorField, lc LimitCycleState, p []float64, ref Reference) []float64 {
	m, dim, ncol, ntst := lc.Mesh, lc.Dim, lc.Mesh.Ncol, lc.Mesh.Ntst
	h := 1.0 / float64(ntst)
	T := lc.Period

	out := make([]float64, dim*(ntst*ncol+1)+1)
	pos := 0
	for i := 0; i < ntst; i++ {
		base := i * ncol
		for c := 0; c < ncol; c++ {
			// interpolated state and derivative at this Gauss point
			uc := make([]float64, dim)
			duc := make([]float64, dim)
			for j := 0; j <= ncol; j++ {
				lj := m.basisAtGauss[c][j]
				dlj := m.derivAtGauss[c][j]
				for d := 0; d < dim; d++ {
					v := lc.Profile[(base+j)*dim+d]
					uc[d] += lj * v
					duc[d] += dlj * v
				}
			}
			fx := field.Eval(nil, uc, p)
			for d := 0; d < dim; d++ {
				out[pos] = duc[d]/h - T*fx[d]
				pos++
			}
		}
	}
	// boundary: u(1) - u(0) = 0
	last := ntst * ncol
	for d := 0; d < dim; d++ {
		out[pos] = lc.Profile[last*dim+d] - lc.Profile[d]
		pos++
	}
	// phase condition: sum over gauss points of w_c*h*<u_c - uref_c, urefdot_c>
	var phase float64
	for i := 0; i < ntst; i++ {
		base := i * ncol
		for c := 0; c < ncol; c++ {
			uc := make([]float64, dim)
			urefc := make([]float64, dim)
			urefdotc := make([]float64, dim)
			for j := 0; j <= ncol; j++ {
				lj := m.basisAtGauss[c][j]
				for d := 0; d < dim; d++ {
					uc[d] += lj * lc.Profile[(base+j)*dim+d]
					urefc[d] += lj * ref.Profile[(base+j)*dim+d]
					urefdotc[d] += lj * ref.ProfileDot[(base+j)*dim+d]
				}
			}
			for d := 0; d < dim; d++ {
				phase += m.gaussWeights[c] * h * (uc[d] - urefc[d]) * urefdotc[d]
			}
		}
	}
	out[pos] = phase
	return out
}

// CollocationJacobian finite-differences CollocationResidual with respect
// to the full (profile, period) unknown vector. The analytic block-sparse
// structure a collocation Jacobian admits is not exploited here; the
// kernel solves the dense augmented system instead, which is always a
// valid (if less efficient) alternative.
func CollocationJacobian(field vfield.VectorField, lc LimitCycleState, p []float64, ref Reference) []float64 {
	n := len(lc.Profile) + 1
	pack := append(append([]float64(nil), lc.Profile...), lc.Period)
	f0 := collocationResidualPacked(field, lc.Mesh, lc.Dim, pack, p, ref)
	m := len(f0)
	jac := make([]float64, m*n)
	const eps = 1e-7
	for j := 0; j < n; j++ {
		step := eps * (1 + absf(pack[j]))
		old := pack[j]
		pack[j] = old + step
		f1 := collocationResidualPacked(field, lc.Mesh, lc.Dim, pack, p, ref)
		pack[j] = old
		for i := 0; i < m; i++ {
			jac[i*n+j] = (f1[i] - f0[i]) / step
		}
	}
	return jac
}

func collocationResidualPacked(field vfield.VectorField, mesh Mesh, dim int, pack, p []float64, ref Reference) []float64 {
	lc := LimitCycleState{Mesh: mesh, Dim: dim, Profile: pack[:len(pack)-1], Period: pack[len(pack)-1]}
	return CollocationResidual(field, lc, p, ref)
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
