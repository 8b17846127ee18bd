package contstate

// Provenance records how a Branch came to exist: the seed that started it.
// Exactly one of the fields is meaningful, selected by the owning Branch's
// CurveType.Kind.
type Provenance struct {
	// EquilibriumSeed: equilibrium solution state and parameter index.
	EquilibriumState []float64
	ParamIndex       int

	// LimitCycle-from-Hopf seed.
	HopfPointState []float64
	HopfOmega      float64

	// LimitCycle-from-orbit seed.
	OrbitSegment    [][]float64
	OrbitTolerance  float64

	// Curve continuations seeded from a detected bifurcation point.
	SourceBranchPointIndex int
}

// Branch is an ordered trace of a continuation curve. Lifecycle: created by
// ComputeBranch, mutated only by ExtendBranch; points are never reordered.
type Branch struct {
	CurveType CurveType
	Points    []BranchPoint

	// Bifurcations holds indices into Points where a detected bifurcation
	// was inserted, in the order the bifurcations were recorded.
	Bifurcations []int

	// LogicalIndices is a unique integer tag per point: positive for
	// forward-continuation points, negative for backward, allowing
	// backward extension to prepend without renumbering. len(LogicalIndices)
	// == len(Points) and LogicalIndices[i] tags Points[i].
	LogicalIndices []int

	// ParameterSnapshot is the full parameter vector passed when the branch
	// was created. ExtendBranch neither reads nor updates it: an extension
	// runs with the parameters held by the DefiningSystem it is given.
	ParameterSnapshot []float64

	// Upoldp is the reference velocity used by the collocation phase
	// condition, only meaningful for limit-cycle-derived curves; carried so
	// extension can reuse it without recomputing from scratch.
	Upoldp []float64

	Seed Provenance

	// TerminationReason records why the driver stopped producing points,
	// nil for a branch still being built incrementally via Runner.
	TerminationReason error
}

// Len returns the number of accepted points on the branch.
func (b *Branch) Len() int {
	return len(b.Points)
}

// MaxLogicalIndex returns the largest logical index currently on the
// branch, or 0 if the branch is empty (forward extension resumes one past
// this).
func (b *Branch) MaxLogicalIndex() int {
	max := 0
	for _, li := range b.LogicalIndices {
		if li > max {
			max = li
		}
	}
	return max
}

// MinLogicalIndex returns the smallest (most negative) logical index
// currently on the branch, or 0 if the branch is empty (backward extension
// resumes one before this).
func (b *Branch) MinLogicalIndex() int {
	min := 0
	for _, li := range b.LogicalIndices {
		if li < min {
			min = li
		}
	}
	return min
}

// Last returns the last point on the branch and whether the branch is
// non-empty.
func (b *Branch) Last() (BranchPoint, bool) {
	if len(b.Points) == 0 {
		return BranchPoint{}, false
	}
	return b.Points[len(b.Points)-1], true
}

// First returns the first point on the branch and whether the branch is
// non-empty.
func (b *Branch) First() (BranchPoint, bool) {
	if len(b.Points) == 0 {
		return BranchPoint{}, false
	}
	return b.Points[0], true
}

// AppendForward appends a point at the end of the branch with the next
// positive logical index.
func (b *Branch) AppendForward(p BranchPoint) {
	b.Points = append(b.Points, p)
	b.LogicalIndices = append(b.LogicalIndices, b.MaxLogicalIndex()+1)
}

// PrependBackward inserts a point at the start of the branch with the next
// negative logical index.
func (b *Branch) PrependBackward(p BranchPoint) {
	idx := b.MinLogicalIndex() - 1
	b.Points = append([]BranchPoint{p}, b.Points...)
	b.LogicalIndices = append([]int{idx}, b.LogicalIndices...)
	for i := range b.Bifurcations {
		b.Bifurcations[i]++
	}
}

// InsertBifurcationAfter records index+1 as a bifurcation slot and inserts p
// there, shifting subsequent points. The new point receives a logical index
// between its neighbors' that is not already in use; when the neighbors'
// indices are consecutive, interpolateIndex first shifts the indices on one
// side by one to make room.
func (b *Branch) InsertBifurcationAfter(index int, p BranchPoint) {
	insertAt := index + 1
	before := append([]BranchPoint{}, b.Points[:insertAt]...)
	after := append([]BranchPoint{}, b.Points[insertAt:]...)
	b.Points = append(append(before, p), after...)

	var newLogical int
	if insertAt < len(b.LogicalIndices) {
		newLogical = interpolateIndex(b.LogicalIndices, insertAt)
	} else {
		newLogical = b.LogicalIndices[insertAt-1] + 1
	}
	li := append([]int{}, b.LogicalIndices[:insertAt]...)
	li = append(li, newLogical)
	li = append(li, b.LogicalIndices[insertAt:]...)
	b.LogicalIndices = li

	for i, bi := range b.Bifurcations {
		if bi >= insertAt {
			b.Bifurcations[i] = bi + 1
		}
	}
	b.Bifurcations = append(b.Bifurcations, insertAt)
}

// interpolateIndex returns an unused logical index strictly between
// li[insertAt-1] and li[insertAt]. When those two are consecutive integers
// it makes room in place first: on the forward (positive) side it
// increments every index from insertAt on, on the backward side it
// decrements every index before insertAt. Ordering, uniqueness and the sign
// of each index are kept.
func interpolateIndex(li []int, insertAt int) int {
	lo, hi := li[insertAt-1], li[insertAt]
	if hi > lo+1 {
		return lo + 1
	}
	if lo > 0 {
		for i := insertAt; i < len(li); i++ {
			li[i]++
		}
		return hi
	}
	for i := 0; i < insertAt; i++ {
		li[i]--
	}
	return lo
}
