package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// GateKind is the closed catalog of gate operations the engine implements.
// Representing it as an enum (rather than dispatching on strings) gives the
// Apply switch compile-time exhaustiveness over the catalog.
type GateKind int

const (
	GateX GateKind = iota
	GateY
	GateZ
	GateH
	GateS
	GateSdg
	GateT
	GateTdg
	GateRX
	GateRY
	GateRZ
	GateCNOT
	GateCZ
	GateSWAP
	GateToffoli
	GateFredkin
)

// DefaultTheta is the rotation angle used when the name-based surface
// receives a rotation gate without a parameter.
const DefaultTheta = math.Pi / 4

var gateNames = map[GateKind]string{
	GateX:       "X",
	GateY:       "Y",
	GateZ:       "Z",
	GateH:       "H",
	GateS:       "S",
	GateSdg:     "SDG",
	GateT:       "T",
	GateTdg:     "TDG",
	GateRX:      "RX",
	GateRY:      "RY",
	GateRZ:      "RZ",
	GateCNOT:    "CNOT",
	GateCZ:      "CZ",
	GateSWAP:    "SWAP",
	GateToffoli: "CCX",
	GateFredkin: "CSWAP",
}

func (k GateKind) String() string {
	if name, ok := gateNames[k]; ok {
		return name
	}
	return fmt.Sprintf("GateKind(%d)", int(k))
}

// Arity returns the number of qubit operands the gate takes.
func (k GateKind) Arity() int {
	switch k {
	case GateCNOT, GateCZ, GateSWAP:
		return 2
	case GateToffoli, GateFredkin:
		return 3
	default:
		return 1
	}
}

// Rotation reports whether the gate carries an angle parameter.
func (k GateKind) Rotation() bool {
	return k == GateRX || k == GateRY || k == GateRZ
}

// ParseGateKind resolves a gate tag (case-insensitive, with the usual QASM
// aliases) to its GateKind. Unknown tags fail with ErrUnsupportedGate.
func ParseGateKind(tag string) (GateKind, error) {
	switch strings.ToUpper(tag) {
	case "X":
		return GateX, nil
	case "Y":
		return GateY, nil
	case "Z":
		return GateZ, nil
	case "H":
		return GateH, nil
	case "S":
		return GateS, nil
	case "SDG":
		return GateSdg, nil
	case "T":
		return GateT, nil
	case "TDG":
		return GateTdg, nil
	case "RX":
		return GateRX, nil
	case "RY":
		return GateRY, nil
	case "RZ":
		return GateRZ, nil
	case "CX", "CNOT":
		return GateCNOT, nil
	case "CZ":
		return GateCZ, nil
	case "SWAP":
		return GateSWAP, nil
	case "CCX", "TOFFOLI":
		return GateToffoli, nil
	case "CSWAP", "FREDKIN":
		return GateFredkin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedGate, tag)
}

// Gate is one gate application. Qubits are ordered controls-first,
// target-last: CNOT{control, target}, Toffoli{c1, c2, target},
// Fredkin{control, a, b}. Theta is only read by rotation gates.
type Gate struct {
	Kind   GateKind
	Qubits []int
	Theta  float64
}

func (g Gate) validate(numQubits int) error {
	if len(g.Qubits) != g.Kind.Arity() {
		return fmt.Errorf("%w: %s takes %d qubit(s), got %d",
			ErrInvalidArgument, g.Kind, g.Kind.Arity(), len(g.Qubits))
	}
	for i, q := range g.Qubits {
		if q < 0 || q >= numQubits {
			return fmt.Errorf("%w: q[%d] on a %d-qubit state", ErrIndexOutOfRange, q, numQubits)
		}
		for _, prev := range g.Qubits[:i] {
			if prev == q {
				return fmt.Errorf("%w: %s operands must be distinct, q[%d] repeated",
					ErrInvalidArgument, g.Kind, q)
			}
		}
	}
	return nil
}

// Apply runs the gate's kernel against the vector. The switch is exhaustive
// over the GateKind catalog; validation failures leave the state untouched.
func (s *StateVector) Apply(g Gate) error {
	if err := g.validate(s.numQubits); err != nil {
		return err
	}
	switch g.Kind {
	case GateX:
		s.applyX(g.Qubits[0])
	case GateY:
		s.applyY(g.Qubits[0])
	case GateZ:
		s.applyZ(g.Qubits[0])
	case GateH:
		s.applyH(g.Qubits[0])
	case GateS:
		s.applyPhase(g.Qubits[0], 1i)
	case GateSdg:
		s.applyPhase(g.Qubits[0], -1i)
	case GateT:
		s.applyPhase(g.Qubits[0], cmplx.Exp(complex(0, math.Pi/4)))
	case GateTdg:
		s.applyPhase(g.Qubits[0], cmplx.Exp(complex(0, -math.Pi/4)))
	case GateRX:
		s.applyRX(g.Qubits[0], g.Theta)
	case GateRY:
		s.applyRY(g.Qubits[0], g.Theta)
	case GateRZ:
		s.applyRZ(g.Qubits[0], g.Theta)
	case GateCNOT:
		s.applyCX(g.Qubits[0], g.Qubits[1])
	case GateCZ:
		s.applyCZ(g.Qubits[0], g.Qubits[1])
	case GateSWAP:
		s.applySWAP(g.Qubits[0], g.Qubits[1])
	case GateToffoli:
		s.applyCCX(g.Qubits[0], g.Qubits[1], g.Qubits[2])
	case GateFredkin:
		s.applyCSWAP(g.Qubits[0], g.Qubits[1], g.Qubits[2])
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedGate, g.Kind)
	}
	return nil
}

// ──────────────────────────── Single-qubit kernels ────────────────────────────

func (s *StateVector) applyX(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// applyY uses the canonical matrix [[0, -i], [i, 0]]: +i phase on the 0→1
// flip, -i on the 1→0 flip.
func (s *StateVector) applyY(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = -1i*s.amps[j], 1i*s.amps[i]
		}
	}
}

func (s *StateVector) applyZ(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= -1
		}
	}
}

// applyH uses the canonical Hadamard: the minus sign lands on the
// unchanged bit=1 component. Self-inverse, which the tests rely on.
func (s *StateVector) applyH(q int) {
	factor := complex(1.0/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.scratch[i] = factor * (s.amps[i] + s.amps[j])
			s.scratch[j] = factor * (s.amps[i] - s.amps[j])
		}
	}
	s.swapScratch()
}

// applyPhase multiplies every bit=1 component by factor. Backs S, S†, T, T†.
func (s *StateVector) applyPhase(q int, factor Complex) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

func (s *StateVector) applyRX(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.scratch[i] = c*s.amps[i] + js*s.amps[j]
			s.scratch[j] = js*s.amps[i] + c*s.amps[j]
		}
	}
	s.swapScratch()
}

func (s *StateVector) applyRY(q int, theta float64) {
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.scratch[i] = c*s.amps[i] - sn*s.amps[j]
			s.scratch[j] = sn*s.amps[i] + c*s.amps[j]
		}
	}
	s.swapScratch()
}

func (s *StateVector) applyRZ(q int, theta float64) {
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= phase
		} else {
			s.amps[i] *= cmplx.Conj(phase)
		}
	}
}

// ──────────────────────────── Multi-qubit kernels ────────────────────────────

func (s *StateVector) applyCX(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit != 0 {
			s.amps[i] *= -1
		}
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := range s.amps {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *StateVector) applyCCX(c1, c2, target int) {
	c1Bit := 1 << c1
	c2Bit := 1 << c2
	tBit := 1 << target
	for i := range s.amps {
		if i&c1Bit != 0 && i&c2Bit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *StateVector) applyCSWAP(control, q1, q2 int) {
	cBit := 1 << control
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := range s.amps {
		if i&cBit != 0 && i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}
