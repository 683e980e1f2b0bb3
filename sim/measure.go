package sim

import (
	"math"
	"math/rand"
)

// MeasureQubit samples qubit q in the computational basis, collapses the
// vector onto the outcome, and renormalizes. Returns the measured bit.
func (s *StateVector) MeasureQubit(rng *rand.Rand, q int) (int, error) {
	if q < 0 || q >= s.numQubits {
		return 0, ErrIndexOutOfRange
	}
	bit := 1 << q
	p0 := 0.0
	for i, a := range s.amps {
		if i&bit == 0 {
			p0 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	outcome := 0
	if rng.Float64() >= p0 {
		outcome = 1
	}
	if err := s.collapseQubit(q, outcome); err != nil {
		return 0, err
	}
	return outcome, nil
}

// collapseQubit zeroes every amplitude inconsistent with qubit q reading
// outcome, then renormalizes by the square root of the retained
// probability. A retained probability of exactly zero cannot happen for a
// normalized state but is guarded as DegenerateState.
func (s *StateVector) collapseQubit(q, outcome int) error {
	bit := 1 << q
	want := 0
	if outcome != 0 {
		want = bit
	}
	retained := 0.0
	for i, a := range s.amps {
		if i&bit == want {
			retained += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	if retained == 0 {
		return ErrDegenerateState
	}
	norm := complex(math.Sqrt(retained), 0)
	for i := range s.amps {
		if i&bit == want {
			s.amps[i] /= norm
		} else {
			s.amps[i] = 0
		}
	}
	return nil
}

// Measure samples the full register over all 2^n basis-state probabilities
// and collapses the vector to the sampled basis state with amplitude 1.
func (s *StateVector) Measure(rng *rand.Rand) (int, error) {
	total := 0.0
	for _, a := range s.amps {
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	if total == 0 {
		return 0, ErrDegenerateState
	}
	r := rng.Float64() * total
	cumulative := 0.0
	outcome := len(s.amps) - 1
	for i, a := range s.amps {
		cumulative += real(a)*real(a) + imag(a)*imag(a)
		if r < cumulative {
			outcome = i
			break
		}
	}
	for i := range s.amps {
		s.amps[i] = 0
	}
	s.amps[outcome] = 1
	return outcome, nil
}

// ResetQubit projects qubit q onto |0⟩ and renormalizes, regardless of the
// current state. When P(bit=0) is zero the projection alone would leave a
// zero vector, so the bit is flipped first.
func (s *StateVector) ResetQubit(q int) error {
	if q < 0 || q >= s.numQubits {
		return ErrIndexOutOfRange
	}
	bit := 1 << q
	p0 := 0.0
	for i, a := range s.amps {
		if i&bit == 0 {
			p0 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	if p0 == 0 {
		s.applyX(q)
		return nil
	}
	norm := complex(math.Sqrt(p0), 0)
	for i := range s.amps {
		if i&bit == 0 {
			s.amps[i] /= norm
		} else {
			s.amps[i] = 0
		}
	}
	return nil
}
