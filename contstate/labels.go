package contstate

// StabilityLabel tags a BranchPoint with the bifurcation it was detected to
// be, or None for a regular point.
type StabilityLabel int

const (
	LabelNone StabilityLabel = iota
	LabelFold
	LabelHopf
	LabelNeutralSaddle
	LabelCycleFold // LPC: Limit Point of Cycles
	LabelPeriodDoubling
	LabelNeimarkSacker
	LabelCusp
	LabelBogdanovTakens
	LabelZeroHopf
	LabelBautin
	LabelDoubleHopf
)

// String renders the label for diagnostics and serialization.
func (l StabilityLabel) String() string {
	switch l {
	case LabelNone:
		return "None"
	case LabelFold:
		return "Fold"
	case LabelHopf:
		return "Hopf"
	case LabelNeutralSaddle:
		return "NeutralSaddle"
	case LabelCycleFold:
		return "CycleFold"
	case LabelPeriodDoubling:
		return "PeriodDoubling"
	case LabelNeimarkSacker:
		return "NeimarkSacker"
	case LabelCusp:
		return "Cusp"
	case LabelBogdanovTakens:
		return "BogdanovTakens"
	case LabelZeroHopf:
		return "ZeroHopf"
	case LabelBautin:
		return "Bautin"
	case LabelDoubleHopf:
		return "DoubleHopf"
	default:
		return "Unknown"
	}
}

// CurveKind discriminates the tagged CurveType union.
type CurveKind int

const (
	CurveEquilibrium CurveKind = iota
	CurveLimitCycle
	CurveFold
	CurveHopf
	CurveLPC
	CurvePD
	CurveNS
	CurveIsochrone
)

// String renders the curve kind for diagnostics and serialization.
func (k CurveKind) String() string {
	switch k {
	case CurveEquilibrium:
		return "Equilibrium"
	case CurveLimitCycle:
		return "LimitCycle"
	case CurveFold:
		return "FoldCurve"
	case CurveHopf:
		return "HopfCurve"
	case CurveLPC:
		return "LPC"
	case CurvePD:
		return "PD"
	case CurveNS:
		return "NS"
	case CurveIsochrone:
		return "Isochrone"
	default:
		return "Unknown"
	}
}

// CurveType is the tagged-union description of a Branch's curve family,
// carrying only the parameters relevant to its kind. Zero-valued fields are
// ignored for kinds that don't use them (e.g. Param2 for Equilibrium).
type CurveType struct {
	Kind CurveKind

	// Param1, Param2 are indices into the VectorField's parameter vector.
	// Param2 is meaningful for two-parameter curves (Fold, Hopf, LPC, PD,
	// NS, Isochrone); -1 when unused.
	Param1 int
	Param2 int

	// Ntst, Ncol describe the collocation mesh for curve kinds built on a
	// periodic orbit (LimitCycle, LPC, PD, NS, Isochrone); zero otherwise.
	Ntst int
	Ncol int
}
