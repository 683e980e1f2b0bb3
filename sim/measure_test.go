package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureFrequency(t *testing.T) {
	// H|0> measured repeatedly: both outcomes near 0.5.
	s := newSession(t, 1, WithSeed(42))
	const trials = 4000
	ones := 0
	for i := 0; i < trials; i++ {
		require.NoError(t, s.Reset())
		require.NoError(t, s.ApplyNamed("H", []int{0}))
		outcome, err := s.Measure()
		require.NoError(t, err)
		ones += outcome
	}
	freq := float64(ones) / trials
	assert.InDelta(t, 0.5, freq, 0.05)
}

func TestCollapseConsistency(t *testing.T) {
	// After measuring a qubit, re-measuring it always repeats the outcome.
	s := newSession(t, 2, WithSeed(7))
	require.NoError(t, s.ApplyNamed("H", []int{0}))
	require.NoError(t, s.ApplyNamed("CNOT", []int{0, 1}))

	first, err := s.MeasureQubit(0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := s.MeasureQubit(0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// The Bell correlation: qubit 1 collapsed with qubit 0.
	partner, err := s.MeasureQubit(1)
	require.NoError(t, err)
	assert.Equal(t, first, partner)
}

func TestFullMeasureCollapse(t *testing.T) {
	s := newSession(t, 3, WithSeed(1))
	require.NoError(t, s.ApplyNamed("H", []int{0}))
	require.NoError(t, s.ApplyNamed("H", []int{1}))
	require.NoError(t, s.ApplyNamed("H", []int{2}))

	outcome, err := s.Measure()
	require.NoError(t, err)
	require.GreaterOrEqual(t, outcome, 0)
	require.Less(t, outcome, 8)

	state, err := s.State()
	require.NoError(t, err)
	for i, a := range state {
		if i == outcome {
			assert.Equal(t, Complex(1), a)
		} else {
			assert.Equal(t, Complex(0), a)
		}
	}
}

func TestDegenerateCollapse(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	sv := NewStateVector(1)
	sv.amps[0] = 0 // deliberately broken: zero vector
	_, err := sv.MeasureQubit(rng, 0)
	assert.ErrorIs(t, err, ErrDegenerateState)

	sv = NewStateVector(2)
	sv.amps[0] = 0
	_, err = sv.Measure(rng)
	assert.ErrorIs(t, err, ErrDegenerateState)
}

func TestResetQubit(t *testing.T) {
	t.Run("definite |1> returns to |0>", func(t *testing.T) {
		s := newSession(t, 1)
		require.NoError(t, s.ApplyNamed("X", []int{0}))
		require.NoError(t, s.ResetQubit(0))
		state, _ := s.State()
		assertState(t, []Complex{1, 0}, state)
	})

	t.Run("superposition projects and renormalizes", func(t *testing.T) {
		s := newSession(t, 2)
		require.NoError(t, s.ApplyNamed("H", []int{0}))
		require.NoError(t, s.ApplyNamed("X", []int{1}))
		require.NoError(t, s.ResetQubit(0))

		probs, err := s.QubitProbabilities()
		require.NoError(t, err)
		assert.InDelta(t, 1.0, probs[0].Prob0, tol)
		assert.InDelta(t, 1.0, probs[1].Prob1, tol)
	})

	t.Run("out of range", func(t *testing.T) {
		s := newSession(t, 1)
		assert.ErrorIs(t, s.ResetQubit(5), ErrIndexOutOfRange)
	})
}

func TestFidelity(t *testing.T) {
	s := newSession(t, 2)
	require.NoError(t, s.ApplyNamed("H", []int{0}))
	require.NoError(t, s.ApplyNamed("CNOT", []int{0, 1}))

	t.Run("self fidelity is 1", func(t *testing.T) {
		state, err := s.State()
		require.NoError(t, err)
		f, err := s.Fidelity(state)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, f, tol)
	})

	t.Run("orthogonal state scores 0", func(t *testing.T) {
		f, err := s.Fidelity([]Complex{0, 1, 0, 0})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, f, tol)
	})

	t.Run("global phase is invisible", func(t *testing.T) {
		inv := complex(1/math.Sqrt2, 0)
		f, err := s.Fidelity([]Complex{-inv, 0, 0, -inv})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, f, tol)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := s.Fidelity([]Complex{1, 0})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestEntanglementEntropy(t *testing.T) {
	t.Run("definite qubit has entropy 0", func(t *testing.T) {
		s := newSession(t, 2)
		e, err := s.EntanglementEntropy(0)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, e, tol)

		require.NoError(t, s.ApplyNamed("X", []int{1}))
		e, err = s.EntanglementEntropy(1)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, e, tol)
	})

	t.Run("uniform marginal has entropy 1", func(t *testing.T) {
		s := newSession(t, 1)
		require.NoError(t, s.ApplyNamed("H", []int{0}))
		e, err := s.EntanglementEntropy(0)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, e, tol)
	})

	t.Run("Bell pair qubits are maximally mixed", func(t *testing.T) {
		s := newSession(t, 2)
		require.NoError(t, s.ApplyNamed("H", []int{0}))
		require.NoError(t, s.ApplyNamed("CNOT", []int{0, 1}))
		for q := 0; q < 2; q++ {
			e, err := s.EntanglementEntropy(q)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, e, tol)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		s := newSession(t, 1)
		_, err := s.EntanglementEntropy(3)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}
