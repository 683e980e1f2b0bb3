// Package circuit models a gate-list quantum circuit on a step timeline
// and provides QASM 2.0 interchange plus execution on a sim.Session.
package circuit

import "slices"

// Gate represents one operation placed on the circuit timeline.
type Gate struct {
	Type             string
	Target           int
	Control          int       // -1 if not a controlled gate
	Controls         []int     // control qubits for CCX/CSWAP
	Step             int       // position in the circuit timeline
	Params           []float64 // rotation angles
	ClassicalControl int       // -1, or the classical bit gating this gate
	IsNoise          bool      // annotation only, never simulated directly
	NoiseType        string
}

// Circuit holds the gate timeline for a fixed number of qubits.
type Circuit struct {
	NumQubits int
	Gates     []Gate
	MaxSteps  int
}

func (c *Circuit) push(g Gate) {
	c.Gates = append(c.Gates, g)
	if g.Step >= c.MaxSteps {
		c.MaxSteps = g.Step + 1
	}
}

// AddGate appends a gate, optionally controlled by one qubit.
func (c *Circuit) AddGate(gateType string, target, step int, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.push(Gate{
		Type:             gateType,
		Target:           target,
		Control:          ctrl,
		Step:             step,
		ClassicalControl: -1,
	})
}

// AddParameterizedGate appends a gate carrying rotation parameters.
func (c *Circuit) AddParameterizedGate(gateType string, target, step int, params []float64, control ...int) {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	c.push(Gate{
		Type:             gateType,
		Target:           target,
		Control:          ctrl,
		Step:             step,
		Params:           params,
		ClassicalControl: -1,
	})
}

// AddMultiControlGate appends a gate with several control qubits (CCX, CSWAP).
func (c *Circuit) AddMultiControlGate(gateType string, target, step int, controls []int) {
	c.push(Gate{
		Type:             gateType,
		Target:           target,
		Control:          -1,
		Controls:         controls,
		Step:             step,
		ClassicalControl: -1,
	})
}

// AddControlledSwap appends a Fredkin gate. The swapped pair rides in
// Target/Control like a plain SWAP; the control qubit goes in Controls.
func (c *Circuit) AddControlledSwap(control, a, b, step int) {
	c.push(Gate{
		Type:             "CSWAP",
		Target:           a,
		Control:          b,
		Controls:         []int{control},
		Step:             step,
		ClassicalControl: -1,
	})
}

// AddClassicalControlGate appends a gate executed only when classical bit
// cbit reads 1 at run time.
func (c *Circuit) AddClassicalControlGate(gateType string, target, step, cbit int) {
	c.push(Gate{
		Type:             gateType,
		Target:           target,
		Control:          -1,
		Step:             step,
		ClassicalControl: cbit,
	})
}

// AddMeasure appends a mid-circuit measurement of the given qubit.
func (c *Circuit) AddMeasure(target, step int) {
	c.AddGate("MEASURE", target, step)
}

// AddReset appends a single-qubit reset to |0⟩.
func (c *Circuit) AddReset(target, step int) {
	c.AddGate("RESET", target, step)
}

// AddNoise appends a noise annotation. Annotations document where a noise
// channel acts; the stochastic behavior itself comes from the session's
// error-rate profile at run time.
func (c *Circuit) AddNoise(target, step int, noiseType string, params ...float64) {
	c.push(Gate{
		Type:             "NOISE",
		Target:           target,
		Control:          -1,
		Step:             step,
		Params:           params,
		IsNoise:          true,
		NoiseType:        noiseType,
		ClassicalControl: -1,
	})
}

// AddBarrier appends a barrier spanning all qubits at the given step,
// replacing any barrier already there.
func (c *Circuit) AddBarrier(step int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.Step == step && g.Type == "BARRIER"
	})
	c.push(Gate{
		Type:             "BARRIER",
		Target:           -1, // spans all qubits
		Control:          -1,
		Step:             step,
		ClassicalControl: -1,
	})
}

// references reports whether the gate touches the given qubit.
func (g Gate) references(qubit int) bool {
	if g.Target == qubit || g.Control == qubit {
		return true
	}
	return slices.Contains(g.Controls, qubit)
}

// qubits returns every qubit index the gate occupies on its step.
func (g Gate) qubits() []int {
	qs := make([]int, 0, 2+len(g.Controls))
	if g.Target >= 0 {
		qs = append(qs, g.Target)
	}
	if g.Control >= 0 {
		qs = append(qs, g.Control)
	}
	qs = append(qs, g.Controls...)
	return qs
}

// RemoveGateAt removes any gate at the given step and qubit. Barriers at
// that step go too, since they span all qubits.
func (c *Circuit) RemoveGateAt(step, qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		if g.Step == step && g.Type == "BARRIER" {
			return true
		}
		return g.Step == step && g.references(qubit)
	})
}

// RemoveGatesOnQubit removes every gate referencing the qubit.
func (c *Circuit) RemoveGatesOnQubit(qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.references(qubit)
	})
}

// GetGateAt returns the gate at the given step and qubit, or nil.
func (c *Circuit) GetGateAt(step, qubit int) *Gate {
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step == step && g.references(qubit) {
			return g
		}
	}
	return nil
}

// CanPlaceGateAt reports whether every listed qubit is free at the step.
func (c *Circuit) CanPlaceGateAt(step int, qubits []int) bool {
	for _, g := range c.Gates {
		if g.Step != step {
			continue
		}
		if g.Type == "BARRIER" {
			return false
		}
		for _, q := range qubits {
			if g.references(q) {
				return false
			}
		}
	}
	return true
}

// NumCbits returns the classical register width implied by measurements
// and classical controls, or 0 when there are none.
func (c *Circuit) NumCbits() int {
	maxBit := -1
	for _, g := range c.Gates {
		if g.Type == "MEASURE" {
			maxBit = max(maxBit, g.Target)
		}
		if g.ClassicalControl >= 0 {
			maxBit = max(maxBit, g.ClassicalControl)
		}
	}
	return maxBit + 1
}

// GetMeasureAtStep returns the qubit measured at the step, or -1.
func (c *Circuit) GetMeasureAtStep(step int) int {
	for _, g := range c.Gates {
		if g.Step == step && g.Type == "MEASURE" {
			return g.Target
		}
	}
	return -1
}

// sorted returns the gates ordered by step, preserving insertion order
// within a step.
func (c *Circuit) sorted() []Gate {
	gates := make([]Gate, len(c.Gates))
	copy(gates, c.Gates)
	slices.SortStableFunc(gates, func(a, b Gate) int { return a.Step - b.Step })
	return gates
}

// Pack reassigns steps so that gates touching disjoint qubits share a
// step. Each qubit carries a frontier (its next free step); a gate lands
// at the max frontier of its operands, and a barrier aligns every
// frontier past itself. This keeps the timeline as parallel as the
// qubit-dependency structure allows.
func (c *Circuit) Pack() {
	gates := c.sorted()
	frontier := make([]int, c.NumQubits)
	qubitFrontier := func(q int) int {
		for len(frontier) <= q {
			frontier = append(frontier, 0)
		}
		return frontier[q]
	}
	maxSteps := 0
	for i := range gates {
		g := &gates[i]
		if g.Type == "BARRIER" {
			step := 0
			for _, f := range frontier {
				step = max(step, f)
			}
			g.Step = step
			for q := range frontier {
				frontier[q] = step + 1
			}
			maxSteps = max(maxSteps, step+1)
			continue
		}
		step := 0
		for _, q := range g.qubits() {
			step = max(step, qubitFrontier(q))
		}
		// Classical control serializes against the measurement producing
		// its bit; the measured qubit's frontier stands in for the wire.
		if g.ClassicalControl >= 0 {
			step = max(step, qubitFrontier(g.ClassicalControl))
		}
		g.Step = step
		for _, q := range g.qubits() {
			frontier[q] = step + 1
		}
		maxSteps = max(maxSteps, step+1)
	}
	c.Gates = gates
	c.MaxSteps = maxSteps
}
