package contstate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soypat/contin/contstate"
)

func TestNewContinuationSettings_Clamps(t *testing.T) {
	s, err := contstate.NewContinuationSettings(10, 0.01, 1.0, 100, 10, 1e-8, 1e-8)
	require.NoError(t, err)
	require.Equal(t, 1.0, s.StepSize, "step above max should clamp down to max")

	s, err = contstate.NewContinuationSettings(0.001, 0.01, 1.0, 100, 10, 1e-8, 1e-8)
	require.NoError(t, err)
	require.Equal(t, 0.01, s.StepSize, "step below min should clamp up to min")
}

func TestNewContinuationSettings_Rejects(t *testing.T) {
	cases := []struct {
		name                                       string
		step, minStep, maxStep, correctorTol, stepTol float64
		maxSteps, correctorSteps                   int
	}{
		{"zero step", 0, 0.01, 1.0, 1e-8, 1e-8, 100, 10},
		{"min exceeds max", 0.1, 1.0, 0.5, 1e-8, 1e-8, 100, 10},
		{"zero max steps", 0.1, 0.01, 1.0, 1e-8, 1e-8, 0, 10},
		{"zero corrector steps", 0.1, 0.01, 1.0, 1e-8, 1e-8, 100, 0},
		{"zero tolerance", 0.1, 0.01, 1.0, 0, 1e-8, 100, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := contstate.NewContinuationSettings(c.step, c.minStep, c.maxStep, c.maxSteps, c.correctorSteps, c.correctorTol, c.stepTol)
			require.Error(t, err)
			require.True(t, errors.Is(err, contstate.ErrInvalidSettings))
		})
	}
}

func TestContinuationSettings_InBounds(t *testing.T) {
	s, err := contstate.NewContinuationSettings(0.1, 0.01, 1.0, 100, 10, 1e-8, 1e-8)
	require.NoError(t, err)

	lo, hi := 0.0, 10.0
	s = s.WithParamBounds(&lo, &hi)
	require.True(t, s.InBounds(5))
	require.False(t, s.InBounds(-1))
	require.False(t, s.InBounds(11))

	unbounded, err := contstate.NewContinuationSettings(0.1, 0.01, 1.0, 100, 10, 1e-8, 1e-8)
	require.NoError(t, err)
	require.True(t, unbounded.InBounds(1e9))
}
