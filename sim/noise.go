package sim

import (
	"fmt"
	"math/rand"
)

// Profile holds the stochastic error rates a session applies on top of the
// requested circuit. The zero value is the ideal profile: no noise at all.
type Profile struct {
	SingleQubit float64 // per single-qubit-gate error probability
	MultiQubit  float64 // per multi-qubit-gate error probability
	Measurement float64 // per-measurement readout flip probability
}

// Ideal reports whether the profile disables noise entirely.
func (p Profile) Ideal() bool {
	return p == Profile{}
}

func (p Profile) validate() error {
	for _, rate := range []float64{p.SingleQubit, p.MultiQubit, p.Measurement} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: error rate %g outside [0,1]", ErrInvalidArgument, rate)
		}
	}
	return nil
}

// injector perturbs the state after gate kernels run, modeling physical
// decoherence. It is a pass-through: the requested circuit never sees it.
type injector struct {
	profile Profile
	rng     *rand.Rand
}

// afterGate draws against the rate for the gate's category and, on a hit,
// applies one uniformly chosen Pauli correction to one of the involved
// qubits.
func (in *injector) afterGate(s *StateVector, g Gate) {
	if in.profile.Ideal() {
		return
	}
	rate := in.profile.SingleQubit
	if g.Kind.Arity() > 1 {
		rate = in.profile.MultiQubit
	}
	if in.rng.Float64() >= rate {
		return
	}
	q := g.Qubits[in.rng.Intn(len(g.Qubits))]
	switch in.rng.Intn(3) {
	case 0:
		s.applyX(q)
	case 1:
		s.applyY(q)
	default:
		s.applyZ(q)
	}
}

// flipReadout models readout error on a single measured bit: the collapse
// follows the true outcome, only the reported value flips.
func (in *injector) flipReadout(bit int) int {
	if in.profile.Measurement > 0 && in.rng.Float64() < in.profile.Measurement {
		return bit ^ 1
	}
	return bit
}

// corruptOutcome applies readout error to a full-register outcome by
// flipping one random bit of the reported integer.
func (in *injector) corruptOutcome(outcome, numQubits int) int {
	if in.profile.Measurement > 0 && in.rng.Float64() < in.profile.Measurement {
		return outcome ^ (1 << in.rng.Intn(numQubits))
	}
	return outcome
}
