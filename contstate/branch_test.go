package contstate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soypat/contin/contstate"
)

func newTestBranch() *contstate.Branch {
	b := &contstate.Branch{CurveType: contstate.CurveType{Kind: contstate.CurveEquilibrium}}
	b.AppendForward(contstate.BranchPoint{State: []float64{0}, ParamValue: 0})
	b.AppendForward(contstate.BranchPoint{State: []float64{1}, ParamValue: 1})
	b.AppendForward(contstate.BranchPoint{State: []float64{2}, ParamValue: 2})
	return b
}

func TestBranch_AppendForward_LogicalIndices(t *testing.T) {
	b := newTestBranch()
	require.Equal(t, []int{1, 2, 3}, b.LogicalIndices)
	require.Equal(t, 3, b.Len())
}

func TestBranch_PrependBackward(t *testing.T) {
	b := newTestBranch()
	b.PrependBackward(contstate.BranchPoint{State: []float64{-1}, ParamValue: -1})
	require.Equal(t, []int{-1, 1, 2, 3}, b.LogicalIndices)
	first, ok := b.First()
	require.True(t, ok)
	require.Equal(t, -1.0, first.ParamValue)
}

func TestBranch_InsertBifurcationAfter(t *testing.T) {
	b := newTestBranch()
	b.InsertBifurcationAfter(0, contstate.BranchPoint{State: []float64{0.5}, ParamValue: 0.5, StabilityLabel: contstate.LabelFold})
	require.Equal(t, 4, b.Len())
	require.Equal(t, []int{1}, b.Bifurcations)
	require.Equal(t, contstate.LabelFold, b.Points[1].StabilityLabel)
	// Logical indices stay strictly increasing and unique.
	for i := 1; i < len(b.LogicalIndices); i++ {
		require.Less(t, b.LogicalIndices[i-1], b.LogicalIndices[i])
	}
}

func TestBranch_EmptyAccessors(t *testing.T) {
	b := &contstate.Branch{}
	_, ok := b.Last()
	require.False(t, ok)
	_, ok = b.First()
	require.False(t, ok)
	require.Equal(t, 0, b.MaxLogicalIndex())
	require.Equal(t, 0, b.MinLogicalIndex())
}

func TestBranchPoint_Clone_NoAliasing(t *testing.T) {
	p := contstate.BranchPoint{
		State:       []float64{1, 2},
		Eigenvalues: []contstate.Complex{{1, 0}},
		TestValues:  map[string]float64{"fold": 0.1},
	}
	cp := p.Clone()
	cp.State[0] = 99
	cp.TestValues["fold"] = 99
	require.Equal(t, 1.0, p.State[0], "clone must not alias original state slice")
	require.Equal(t, 0.1, p.TestValues["fold"], "clone must not alias original test-value map")
}
