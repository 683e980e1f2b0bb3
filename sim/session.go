package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Session is the engine facade. Each session exclusively owns one
// StateVector and one random source, so concurrent callers each holding
// their own session never share mutable state. A Session itself is not
// safe for concurrent use.
type Session struct {
	id    uuid.UUID
	sv    *StateVector
	noise injector
	gates int
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithNoise activates the given error-rate profile for the session.
func WithNoise(p Profile) Option {
	return func(s *Session) { s.noise.profile = p }
}

// WithSeed makes the session's stochastic draws reproducible.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.noise.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.noise.rng = rng }
}

// New creates a session over numQubits qubits, initialized to |0…0⟩.
func New(numQubits int, opts ...Option) (*Session, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("%w: qubit count %d, need at least 1", ErrInvalidArgument, numQubits)
	}
	s := &Session{id: uuid.New()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.noise.profile.validate(); err != nil {
		return nil, err
	}
	if s.noise.rng == nil {
		s.noise.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.sv = NewStateVector(numQubits)
	return s, nil
}

// MemoryRequired returns the amplitude-vector footprint in bytes for a
// given qubit count, so callers can reject oversized requests before a
// session ever allocates.
func MemoryRequired(numQubits int) int64 {
	return int64(16) << numQubits // 2^n complex128 amplitudes
}

// ready guards every operation: a zero-value Session (one that bypassed
// New) owns no vector and must fail rather than race toward a panic.
func (s *Session) ready() error {
	if s == nil || s.sv == nil {
		return ErrInvalidState
	}
	return nil
}

func (s *Session) ID() string { return s.id.String() }

func (s *Session) NumQubits() int {
	if s == nil || s.sv == nil {
		return 0
	}
	return s.sv.NumQubits()
}

// Apply validates and runs one gate, then lets the noise injector perturb
// the state if the session's profile is not ideal.
func (s *Session) Apply(g Gate) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.sv.Apply(g); err != nil {
		return err
	}
	s.gates++
	s.noise.afterGate(s.sv, g)
	return nil
}

// ApplyNamed is the name-based gate surface: the tag is resolved against
// the catalog, qubit operands are controls-first, and rotation gates
// missing a parameter fall back to DefaultTheta.
func (s *Session) ApplyNamed(tag string, qubits []int, params ...float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	kind, err := ParseGateKind(tag)
	if err != nil {
		return err
	}
	g := Gate{Kind: kind, Qubits: qubits}
	if kind.Rotation() {
		g.Theta = DefaultTheta
		if len(params) > 0 {
			g.Theta = params[0]
		}
	}
	return s.Apply(g)
}

// MeasureQubit measures one qubit, collapsing the state. Under a noisy
// profile the reported bit may be a readout flip of the true outcome; the
// collapse always follows the true outcome.
func (s *Session) MeasureQubit(q int) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	outcome, err := s.sv.MeasureQubit(s.noise.rng, q)
	if err != nil {
		return 0, err
	}
	return s.noise.flipReadout(outcome), nil
}

// Measure measures the full register, collapsing to one basis state.
func (s *Session) Measure() (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	outcome, err := s.sv.Measure(s.noise.rng)
	if err != nil {
		return 0, err
	}
	return s.noise.corruptOutcome(outcome, s.sv.NumQubits()), nil
}

// ResetQubit projects one qubit back to |0⟩ without touching the others.
func (s *Session) ResetQubit(q int) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.sv.ResetQubit(q)
}

// Reset reinitializes the session to |0…0⟩, keeping its identity, noise
// profile, and random source.
func (s *Session) Reset() error {
	if err := s.ready(); err != nil {
		return err
	}
	s.sv = NewStateVector(s.sv.NumQubits())
	s.gates = 0
	return nil
}

// State returns a copy of the amplitude vector.
func (s *Session) State() ([]Complex, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.sv.Amplitudes(), nil
}

// Pairs returns the amplitudes as (real, imaginary) pairs.
func (s *Session) Pairs() ([][2]float64, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.sv.Pairs(), nil
}

// Probabilities returns |amplitude|² per basis state.
func (s *Session) Probabilities() ([]float64, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.sv.Probabilities(), nil
}

// QubitProbabilities returns the per-qubit marginal distributions.
func (s *Session) QubitProbabilities() ([]QubitProbability, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.sv.QubitProbabilities(), nil
}

// Fidelity returns the squared overlap with a target state of the same
// dimension.
func (s *Session) Fidelity(target []Complex) (float64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.sv.Fidelity(target)
}

// EntanglementEntropy returns the base-2 entropy of one qubit's marginal.
func (s *Session) EntanglementEntropy(q int) (float64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.sv.EntanglementEntropy(q)
}

// Info describes a session for callers deciding admission and display.
type Info struct {
	ID          string
	NumQubits   int
	Dim         int
	Gates       int
	Noise       Profile
	MemoryBytes int64
}

func (s *Session) Info() (Info, error) {
	if err := s.ready(); err != nil {
		return Info{}, err
	}
	n := s.sv.NumQubits()
	return Info{
		ID:          s.id.String(),
		NumQubits:   n,
		Dim:         s.sv.Len(),
		Gates:       s.gates,
		Noise:       s.noise.profile,
		MemoryBytes: MemoryRequired(n),
	}, nil
}
