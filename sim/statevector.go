package sim

import (
	"math"
	"math/cmplx"
)

type Complex = complex128

// StateVector holds the joint state of numQubits qubits as 2^n complex
// amplitudes. Qubit i occupies bit i of the basis-state index (LSB first).
// The scratch buffer backs kernels that redistribute amplitude between
// basis states: they write into scratch and swap, so a kernel never reads
// an amplitude it already overwrote.
type StateVector struct {
	amps      []Complex
	scratch   []Complex
	numQubits int
}

// NewStateVector returns the basis state |0…0⟩ on numQubits qubits.
func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{
		amps:      amps,
		scratch:   make([]Complex, n),
		numQubits: numQubits,
	}
}

func (s *StateVector) NumQubits() int { return s.numQubits }

// Len returns the dimension 2^n of the vector.
func (s *StateVector) Len() int { return len(s.amps) }

// Amplitude returns the coefficient of basis state i.
func (s *StateVector) Amplitude(i int) Complex { return s.amps[i] }

// Amplitudes returns a copy of the full amplitude vector.
func (s *StateVector) Amplitudes() []Complex {
	out := make([]Complex, len(s.amps))
	copy(out, s.amps)
	return out
}

// Pairs returns the amplitudes as (real, imaginary) pairs, the shape used
// when the state crosses a process boundary.
func (s *StateVector) Pairs() [][2]float64 {
	out := make([][2]float64, len(s.amps))
	for i, a := range s.amps {
		out[i] = [2]float64{real(a), imag(a)}
	}
	return out
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.amps))
	copy(amps, s.amps)
	return &StateVector{
		amps:      amps,
		scratch:   make([]Complex, len(s.amps)),
		numQubits: s.numQubits,
	}
}

// Norm returns the sum of squared amplitude magnitudes. Unitary gates keep
// it at 1 up to floating-point error; a kernel that drifts it is a bug.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, a := range s.amps {
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	return total
}

// Probabilities returns |amplitude|² for every basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// QubitProbability is the marginal distribution of a single qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the single-qubit marginal for every qubit in
// one pass over the vector.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.numQubits)
	for i, a := range s.amps {
		p := real(a)*real(a) + imag(a)*imag(a)
		for q := 0; q < s.numQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Fidelity returns |⟨target|ψ⟩|², the squared overlap with another state of
// the same dimension.
func (s *StateVector) Fidelity(target []Complex) (float64, error) {
	if len(target) != len(s.amps) {
		return 0, ErrDimensionMismatch
	}
	var overlap Complex
	for i, a := range s.amps {
		overlap += cmplx.Conj(target[i]) * a
	}
	m := cmplx.Abs(overlap)
	return m * m, nil
}

// EntanglementEntropy returns the base-2 Shannon entropy of qubit q's
// marginal distribution: 0 for a definite qubit, 1 for a maximally
// uncertain marginal.
func (s *StateVector) EntanglementEntropy(q int) (float64, error) {
	if q < 0 || q >= s.numQubits {
		return 0, ErrIndexOutOfRange
	}
	bit := 1 << q
	p1 := 0.0
	for i, a := range s.amps {
		if i&bit != 0 {
			p1 += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	p0 := 1 - p1
	entropy := 0.0
	if p0 > 0 {
		entropy -= p0 * math.Log2(p0)
	}
	if p1 > 0 {
		entropy -= p1 * math.Log2(p1)
	}
	return entropy, nil
}

// swapScratch publishes a kernel's scratch buffer as the live amplitudes.
// Kernels that call it must have written every scratch index.
func (s *StateVector) swapScratch() {
	s.amps, s.scratch = s.scratch, s.amps
}
