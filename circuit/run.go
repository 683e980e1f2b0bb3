package circuit

import (
	"fmt"

	"qsimdeck/sim"
)

// Result carries what a run produced besides the session's final state.
type Result struct {
	Cbits    []int       // classical register after the run
	Measured map[int]int // qubit -> reported outcome, for measured qubits
}

// Run executes the circuit's timeline on the session, in step order.
// Measurements are real: they sample and collapse the session state and
// record their reported bit, which classically-controlled gates consult.
// Barriers and noise annotations carry no runtime behavior of their own
// (stochastic noise comes from the session's error-rate profile). A
// non-negative upToStep truncates the run after that step.
func Run(c *Circuit, sess *sim.Session, upToStep int) (*Result, error) {
	res := &Result{
		Cbits:    make([]int, max(c.NumCbits(), 1)),
		Measured: make(map[int]int),
	}

	for _, g := range c.sorted() {
		if upToStep >= 0 && g.Step > upToStep {
			break
		}
		if g.Type == "BARRIER" || g.IsNoise {
			continue
		}

		if g.Type == "MEASURE" {
			outcome, err := sess.MeasureQubit(g.Target)
			if err != nil {
				return nil, fmt.Errorf("measure q[%d] at step %d: %w", g.Target, g.Step, err)
			}
			if g.Target < len(res.Cbits) {
				res.Cbits[g.Target] = outcome
			}
			res.Measured[g.Target] = outcome
			continue
		}

		if g.Type == "RESET" {
			if err := sess.ResetQubit(g.Target); err != nil {
				return nil, fmt.Errorf("reset q[%d] at step %d: %w", g.Target, g.Step, err)
			}
			continue
		}

		if g.ClassicalControl >= 0 {
			if g.ClassicalControl >= len(res.Cbits) || res.Cbits[g.ClassicalControl] != 1 {
				continue
			}
		}

		if err := sess.ApplyNamed(g.Type, operandOrder(g), g.Params...); err != nil {
			return nil, fmt.Errorf("%s at step %d: %w", g.Type, g.Step, err)
		}
	}

	return res, nil
}

// operandOrder maps a timeline gate onto the engine's controls-first
// operand layout.
func operandOrder(g Gate) []int {
	switch {
	case g.Type == "CSWAP" || g.Type == "FREDKIN":
		// control, then the swapped pair
		return []int{g.Controls[0], g.Target, g.Control}
	case len(g.Controls) > 0:
		return append(append([]int{}, g.Controls...), g.Target)
	case g.Type == "SWAP":
		return []int{g.Control, g.Target}
	case g.Control >= 0:
		return []int{g.Control, g.Target}
	default:
		return []int{g.Target}
	}
}

// Simulate runs the circuit on a fresh ideal session and returns it, a
// convenience for callers that only want the resulting state.
func Simulate(c *Circuit, upToStep int, opts ...sim.Option) (*sim.Session, *Result, error) {
	numQubits := max(c.NumQubits, 1)
	sess, err := sim.New(numQubits, opts...)
	if err != nil {
		return nil, nil, err
	}
	res, err := Run(c, sess, upToStep)
	if err != nil {
		return nil, nil, err
	}
	return sess, res, nil
}
