package vfield_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soypat/contin/vfield"
)

// linearField builds a simple linear flow xdot = A*x for testing: a 2x2
// rotation-like system with known analytic Jacobian (= A, constant).
func linearField(a00, a01, a10, a11 float64) *vfield.Func {
	return vfield.NewFunc(vfield.Flow, 2, 0,
		func(dst, x, p []float64) []float64 {
			if dst == nil {
				dst = make([]float64, 2)
			}
			dst[0] = a00*x[0] + a01*x[1]
			dst[1] = a10*x[0] + a11*x[1]
			return dst
		},
		func(dst, x, p []float64) []float64 {
			if dst == nil {
				dst = make([]float64, 4)
			}
			dst[0], dst[1] = a00, a01
			dst[2], dst[3] = a10, a11
			return dst
		},
		nil, nil,
	)
}

func TestFunc_AnalyticJx(t *testing.T) {
	f := linearField(1, 2, 3, 4)
	jx := f.Jx(nil, []float64{0, 0}, nil)
	require.Equal(t, []float64{1, 2, 3, 4}, jx)
}

func TestFunc_FiniteDifferenceJx(t *testing.T) {
	f := vfield.NewFunc(vfield.Flow, 2, 0,
		func(dst, x, p []float64) []float64 {
			if dst == nil {
				dst = make([]float64, 2)
			}
			dst[0] = x[1]
			dst[1] = -x[0]
			return dst
		},
		nil, nil, nil,
	)
	jx := f.Jx(nil, []float64{1, 1}, nil)
	want := []float64{0, 1, -1, 0}
	for i := range want {
		if math.Abs(jx[i]-want[i]) > 1e-5 {
			t.Errorf("Jx[%d] = %v, want %v", i, jx[i], want[i])
		}
	}
}

func TestIterate_LogisticMap(t *testing.T) {
	r := 3.2
	logistic := vfield.NewFunc(vfield.Map, 1, 1,
		func(dst, x, p []float64) []float64 {
			if dst == nil {
				dst = make([]float64, 1)
			}
			dst[0] = p[0] * x[0] * (1 - x[0])
			return dst
		},
		func(dst, x, p []float64) []float64 {
			if dst == nil {
				dst = make([]float64, 1)
			}
			dst[0] = p[0] * (1 - 2*x[0])
			return dst
		},
		nil, nil,
	)
	traj := vfield.Iterate(logistic, []float64{0.3}, []float64{r}, 3)
	require.Len(t, traj, 4)
	x1 := r * 0.3 * (1 - 0.3)
	require.InDelta(t, x1, traj[1][0], 1e-12)

	xk, jac := vfield.IterateJacobian(logistic, []float64{0.3}, []float64{r}, 1)
	require.InDelta(t, x1, xk[0], 1e-12)
	require.InDelta(t, r*(1-2*0.3), jac[0], 1e-12)
}
