package sim

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-10

func assertState(t *testing.T, want []Complex, got []Complex) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDeltaf(t, real(want[i]), real(got[i]), tol, "re amplitude %d", i)
		assert.InDeltaf(t, imag(want[i]), imag(got[i]), tol, "im amplitude %d", i)
	}
}

func newSession(t *testing.T, numQubits int, opts ...Option) *Session {
	t.Helper()
	s, err := New(numQubits, opts...)
	require.NoError(t, err)
	return s
}

func TestBellState(t *testing.T) {
	s := newSession(t, 2)
	require.NoError(t, s.ApplyNamed("H", []int{0}))
	require.NoError(t, s.ApplyNamed("CNOT", []int{0, 1}))

	state, err := s.State()
	require.NoError(t, err)
	inv := 1 / math.Sqrt2
	assertState(t, []Complex{complex(inv, 0), 0, 0, complex(inv, 0)}, state)
}

func TestSelfInversePairs(t *testing.T) {
	// Each pair of applications must restore the arbitrary prepared state.
	prepare := func(s *Session) {
		require.NoError(t, s.Apply(Gate{Kind: GateRY, Qubits: []int{0}, Theta: 0.7}))
		require.NoError(t, s.Apply(Gate{Kind: GateRX, Qubits: []int{1}, Theta: 1.3}))
		require.NoError(t, s.Apply(Gate{Kind: GateCNOT, Qubits: []int{0, 2}}))
		require.NoError(t, s.Apply(Gate{Kind: GateT, Qubits: []int{2}}))
	}

	pairs := []Gate{
		{Kind: GateX, Qubits: []int{1}},
		{Kind: GateY, Qubits: []int{0}},
		{Kind: GateZ, Qubits: []int{2}},
		{Kind: GateH, Qubits: []int{1}},
		{Kind: GateCNOT, Qubits: []int{1, 2}},
		{Kind: GateCZ, Qubits: []int{0, 1}},
		{Kind: GateSWAP, Qubits: []int{0, 2}},
		{Kind: GateToffoli, Qubits: []int{0, 1, 2}},
		{Kind: GateFredkin, Qubits: []int{2, 0, 1}},
	}

	for _, g := range pairs {
		t.Run(g.Kind.String(), func(t *testing.T) {
			s := newSession(t, 3)
			prepare(s)
			before, err := s.State()
			require.NoError(t, err)

			require.NoError(t, s.Apply(g))
			require.NoError(t, s.Apply(g))

			after, err := s.State()
			require.NoError(t, err)
			assertState(t, before, after)
		})
	}
}

func TestNormPreservedAcrossCircuit(t *testing.T) {
	s := newSession(t, 3)
	gates := []Gate{
		{Kind: GateH, Qubits: []int{0}},
		{Kind: GateY, Qubits: []int{1}},
		{Kind: GateRX, Qubits: []int{2}, Theta: 2.1},
		{Kind: GateCNOT, Qubits: []int{0, 1}},
		{Kind: GateS, Qubits: []int{1}},
		{Kind: GateRZ, Qubits: []int{0}, Theta: -0.9},
		{Kind: GateToffoli, Qubits: []int{0, 1, 2}},
		{Kind: GateRY, Qubits: []int{2}, Theta: 0.4},
		{Kind: GateFredkin, Qubits: []int{1, 0, 2}},
		{Kind: GateTdg, Qubits: []int{0}},
	}
	for _, g := range gates {
		require.NoError(t, s.Apply(g))
		assert.InDeltaf(t, 1.0, s.sv.Norm(), tol, "norm after %s", g.Kind)
	}
}

func TestPhaseGates(t *testing.T) {
	prepareOne := func(t *testing.T) *Session {
		s := newSession(t, 1)
		require.NoError(t, s.ApplyNamed("X", []int{0}))
		return s
	}

	t.Run("S multiplies |1> by i", func(t *testing.T) {
		s := prepareOne(t)
		require.NoError(t, s.ApplyNamed("S", []int{0}))
		state, _ := s.State()
		assertState(t, []Complex{0, 1i}, state)
	})

	t.Run("T multiplies |1> by exp(i pi/4)", func(t *testing.T) {
		s := prepareOne(t)
		require.NoError(t, s.ApplyNamed("T", []int{0}))
		state, _ := s.State()
		assertState(t, []Complex{0, cmplx.Exp(complex(0, math.Pi/4))}, state)
	})

	t.Run("Sdg undoes S", func(t *testing.T) {
		s := prepareOne(t)
		require.NoError(t, s.ApplyNamed("S", []int{0}))
		require.NoError(t, s.ApplyNamed("SDG", []int{0}))
		state, _ := s.State()
		assertState(t, []Complex{0, 1}, state)
	})

	t.Run("Tdg undoes T", func(t *testing.T) {
		s := prepareOne(t)
		require.NoError(t, s.ApplyNamed("T", []int{0}))
		require.NoError(t, s.ApplyNamed("TDG", []int{0}))
		state, _ := s.State()
		assertState(t, []Complex{0, 1}, state)
	})

	t.Run("Z flips the |1> sign", func(t *testing.T) {
		s := prepareOne(t)
		require.NoError(t, s.ApplyNamed("Z", []int{0}))
		state, _ := s.State()
		assertState(t, []Complex{0, -1}, state)
	})
}

func TestCanonicalY(t *testing.T) {
	// Y|0> = i|1>, Y|1> = -i|0>.
	s := newSession(t, 1)
	require.NoError(t, s.ApplyNamed("Y", []int{0}))
	state, _ := s.State()
	assertState(t, []Complex{0, 1i}, state)

	require.NoError(t, s.ApplyNamed("Y", []int{0}))
	state, _ = s.State()
	assertState(t, []Complex{1, 0}, state)
}

func TestRotationGates(t *testing.T) {
	t.Run("RX(pi) maps |0> to -i|1>", func(t *testing.T) {
		s := newSession(t, 1)
		require.NoError(t, s.Apply(Gate{Kind: GateRX, Qubits: []int{0}, Theta: math.Pi}))
		state, _ := s.State()
		assertState(t, []Complex{0, -1i}, state)
	})

	t.Run("RY(pi) maps |0> to |1>", func(t *testing.T) {
		s := newSession(t, 1)
		require.NoError(t, s.Apply(Gate{Kind: GateRY, Qubits: []int{0}, Theta: math.Pi}))
		state, _ := s.State()
		assertState(t, []Complex{0, 1}, state)
	})

	t.Run("RZ(theta) phases the basis states oppositely", func(t *testing.T) {
		theta := 1.1
		s := newSession(t, 1)
		require.NoError(t, s.ApplyNamed("H", []int{0}))
		require.NoError(t, s.Apply(Gate{Kind: GateRZ, Qubits: []int{0}, Theta: theta}))
		state, _ := s.State()
		inv := complex(1/math.Sqrt2, 0)
		want := []Complex{
			inv * cmplx.Exp(complex(0, -theta/2)),
			inv * cmplx.Exp(complex(0, theta/2)),
		}
		assertState(t, want, state)
	})
}

func TestToffoliTruthTable(t *testing.T) {
	for input := 0; input < 8; input++ {
		s := newSession(t, 3)
		for q := 0; q < 3; q++ {
			if input&(1<<q) != 0 {
				require.NoError(t, s.ApplyNamed("X", []int{q}))
			}
		}
		require.NoError(t, s.ApplyNamed("CCX", []int{0, 1, 2}))

		want := input
		if input&0b011 == 0b011 {
			want ^= 0b100
		}
		state, err := s.State()
		require.NoError(t, err)
		assert.InDeltaf(t, 1.0, cmplx.Abs(state[want]), tol, "input %03b", input)
	}
}

func TestFredkinTruthTable(t *testing.T) {
	// Control is qubit 0; qubits 1 and 2 swap when it reads 1.
	for input := 0; input < 8; input++ {
		s := newSession(t, 3)
		for q := 0; q < 3; q++ {
			if input&(1<<q) != 0 {
				require.NoError(t, s.ApplyNamed("X", []int{q}))
			}
		}
		require.NoError(t, s.ApplyNamed("CSWAP", []int{0, 1, 2}))

		want := input
		if input&1 == 1 {
			b1 := (input >> 1) & 1
			b2 := (input >> 2) & 1
			want = (input &^ 0b110) | (b1 << 2) | (b2 << 1)
		}
		state, err := s.State()
		require.NoError(t, err)
		assert.InDeltaf(t, 1.0, cmplx.Abs(state[want]), tol, "input %03b", input)
	}
}

func TestGateValidation(t *testing.T) {
	s := newSession(t, 2)

	t.Run("duplicate operands rejected", func(t *testing.T) {
		err := s.Apply(Gate{Kind: GateCNOT, Qubits: []int{1, 1}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("arity mismatch rejected", func(t *testing.T) {
		err := s.Apply(Gate{Kind: GateH, Qubits: []int{0, 1}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("index out of range rejected", func(t *testing.T) {
		err := s.Apply(Gate{Kind: GateX, Qubits: []int{2}})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		err = s.Apply(Gate{Kind: GateX, Qubits: []int{-1}})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("failed validation leaves state untouched", func(t *testing.T) {
		before, _ := s.State()
		_ = s.Apply(Gate{Kind: GateCNOT, Qubits: []int{0, 0}})
		after, _ := s.State()
		assertState(t, before, after)
	})
}

func TestParseGateKind(t *testing.T) {
	cases := map[string]GateKind{
		"x":       GateX,
		"CX":      GateCNOT,
		"cnot":    GateCNOT,
		"ccx":     GateToffoli,
		"TOFFOLI": GateToffoli,
		"cswap":   GateFredkin,
		"fredkin": GateFredkin,
		"Sdg":     GateSdg,
		"rz":      GateRZ,
	}
	for tag, want := range cases {
		got, err := ParseGateKind(tag)
		require.NoErrorf(t, err, "tag %q", tag)
		assert.Equalf(t, want, got, "tag %q", tag)
	}

	_, err := ParseGateKind("ZZZ")
	assert.ErrorIs(t, err, ErrUnsupportedGate)
	assert.ErrorContains(t, err, "ZZZ")
}
