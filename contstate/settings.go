package contstate

import "fmt"

// ContinuationSettings is a single enumerated-field settings record in place
// of a loose, string-keyed configuration map: plain fields, built and
// validated through one constructor rather than assembled ad hoc, with
// clamping policy enforced there.
type ContinuationSettings struct {
	StepSize         float64
	MinStepSize      float64
	MaxStepSize      float64
	MaxSteps         int
	CorrectorSteps   int
	CorrectorTol     float64
	StepTol          float64

	// ParamMin, ParamMax optionally bound the primary continuation
	// parameter; a nil bound disables the check.
	ParamMin *float64
	ParamMax *float64
}

// NewContinuationSettings validates and clamps its arguments. It never
// panics on bad input, returning ErrInvalidSettings instead: numerical
// helpers surface errors rather than aborting, and that applies equally to
// the settings boundary.
func NewContinuationSettings(step, minStep, maxStep float64, maxSteps, correctorSteps int, correctorTol, stepTol float64) (ContinuationSettings, error) {
	if minStep <= 0 || maxStep <= 0 || step <= 0 {
		return ContinuationSettings{}, fmt.Errorf("%w: step sizes must be positive (step=%g min=%g max=%g)", ErrInvalidSettings, step, minStep, maxStep)
	}
	if minStep > maxStep {
		return ContinuationSettings{}, fmt.Errorf("%w: min_step_size %g exceeds max_step_size %g", ErrInvalidSettings, minStep, maxStep)
	}
	if maxSteps <= 0 {
		return ContinuationSettings{}, fmt.Errorf("%w: max_steps must be positive, got %d", ErrInvalidSettings, maxSteps)
	}
	if correctorSteps <= 0 {
		return ContinuationSettings{}, fmt.Errorf("%w: corrector_steps must be positive, got %d", ErrInvalidSettings, correctorSteps)
	}
	if correctorTol <= 0 || stepTol <= 0 {
		return ContinuationSettings{}, fmt.Errorf("%w: tolerances must be positive (corrector_tolerance=%g step_tolerance=%g)", ErrInvalidSettings, correctorTol, stepTol)
	}
	// Clamp step into [min, max].
	if step < minStep {
		step = minStep
	}
	if step > maxStep {
		step = maxStep
	}
	return ContinuationSettings{
		StepSize:       step,
		MinStepSize:    minStep,
		MaxStepSize:    maxStep,
		MaxSteps:       maxSteps,
		CorrectorSteps: correctorSteps,
		CorrectorTol:   correctorTol,
		StepTol:        stepTol,
	}, nil
}

// WithParamBounds returns a copy of s with a primary-parameter range set.
// Either bound may be nil to leave that side unconstrained.
func (s ContinuationSettings) WithParamBounds(min, max *float64) ContinuationSettings {
	s.ParamMin = min
	s.ParamMax = max
	return s
}

// InBounds reports whether the primary parameter value is within the
// configured [ParamMin, ParamMax] range. Always true when no bound is set.
func (s ContinuationSettings) InBounds(paramValue float64) bool {
	if s.ParamMin != nil && paramValue < *s.ParamMin {
		return false
	}
	if s.ParamMax != nil && paramValue > *s.ParamMax {
		return false
	}
	return true
}
