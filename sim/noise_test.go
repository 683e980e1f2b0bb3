package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdealProfileIsExact(t *testing.T) {
	ideal := newSession(t, 2, WithSeed(9))
	noisy := newSession(t, 2, WithSeed(9), WithNoise(Profile{}))

	for _, s := range []*Session{ideal, noisy} {
		require.NoError(t, s.ApplyNamed("H", []int{0}))
		require.NoError(t, s.ApplyNamed("CNOT", []int{0, 1}))
	}

	a, _ := ideal.State()
	b, _ := noisy.State()
	assert.Equal(t, a, b, "zero profile must behave identically to no profile")
}

func TestCertainGateNoisePerturbs(t *testing.T) {
	// With a unit error rate every gate draws a Pauli kick, so X|0> can no
	// longer equal |1> exactly: X undoes it, Y adds a phase and flips, Z
	// flips the sign. All three differ from the ideal amplitudes.
	for seed := int64(0); seed < 20; seed++ {
		s := newSession(t, 1, WithSeed(seed), WithNoise(Profile{SingleQubit: 1}))
		require.NoError(t, s.ApplyNamed("X", []int{0}))
		state, err := s.State()
		require.NoError(t, err)

		diff := 0.0
		ideal := []Complex{0, 1}
		for i := range state {
			d := state[i] - ideal[i]
			diff += real(d)*real(d) + imag(d)*imag(d)
		}
		assert.Greaterf(t, diff, 1e-9, "seed %d: perturbed state still matches ideal", seed)
	}
}

func TestMultiQubitRateSelectsByCategory(t *testing.T) {
	// Only the multi-qubit rate is hot, so single-qubit gates stay clean.
	s := newSession(t, 2, WithSeed(4), WithNoise(Profile{MultiQubit: 1}))
	require.NoError(t, s.ApplyNamed("X", []int{0}))

	probs, err := s.QubitProbabilities()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0].Prob1, tol, "single-qubit gate must not draw the multi-qubit rate")
}

func TestReadoutNoiseFlipsReportOnly(t *testing.T) {
	s := newSession(t, 1, WithSeed(11), WithNoise(Profile{Measurement: 1}))

	outcome, err := s.MeasureQubit(0)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome, "readout of a definite |0> must flip at rate 1")

	// The collapse followed the true outcome: the state is still |0>.
	probs, err := s.Probabilities()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0], tol)
}

func TestFullMeasureReadoutNoise(t *testing.T) {
	s := newSession(t, 2, WithSeed(13), WithNoise(Profile{Measurement: 1}))

	outcome, err := s.Measure()
	require.NoError(t, err)
	// True outcome is 0; the report flips exactly one bit.
	assert.Contains(t, []int{1, 2}, outcome)

	probs, err := s.Probabilities()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0], tol)
}

func TestProfileValidation(t *testing.T) {
	_, err := New(1, WithNoise(Profile{SingleQubit: 1.5}))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(1, WithNoise(Profile{Measurement: -0.1}))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
