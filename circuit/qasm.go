package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"regexp"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	threeQubitRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	resetRegex           = regexp.MustCompile(`^reset\s+q\[(\d+)\];?$`)
	ifRegex              = regexp.MustCompile(`^if\s*\(\s*c(?:\[(\d+)\])?\s*==\s*1\s*\)\s+(\w+)\s+q\[(\d+)\];?$`)
	ifParamRegex         = regexp.MustCompile(`^if\s*\(\s*c(?:\[(\d+)\])?\s*==\s*1\s*\)\s+(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
	noiseRegex           = regexp.MustCompile(`^//\s*noise\s+(\w+)\s+q\[(\d+)\](?:\s+param=(` + paramPattern + `))?$`)
)

// ToQASM emits the circuit as OpenQASM 2.0. Gates appear in timeline order;
// noise annotations travel as comments since QASM has no channel syntax.
func (c *Circuit) ToQASM() string {
	maxQubit := -1
	for _, g := range c.Gates {
		maxQubit = max(maxQubit, g.Target, g.Control)
		for _, ctrl := range g.Controls {
			maxQubit = max(maxQubit, ctrl)
		}
	}
	numQubits := max(maxQubit+1, c.NumQubits, 1)
	numCbits := max(c.NumCbits(), 1)

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", numQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", numCbits)

	for _, g := range c.sorted() {
		c.writeGateQASM(&sb, g, numQubits)
	}

	return sb.String()
}

func (c *Circuit) writeGateQASM(sb *strings.Builder, g Gate, numQubits int) {
	switch {
	case g.Type == "BARRIER":
		qubits := make([]string, numQubits)
		for q := 0; q < numQubits; q++ {
			qubits[q] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(sb, "barrier %s;\n", strings.Join(qubits, ", "))

	case g.IsNoise:
		if len(g.Params) > 0 {
			fmt.Fprintf(sb, "// noise %s q[%d] param=%s\n", g.NoiseType, g.Target, FormatParam(g.Params[0]))
		} else {
			fmt.Fprintf(sb, "// noise %s q[%d]\n", g.NoiseType, g.Target)
		}

	case g.Type == "RESET":
		fmt.Fprintf(sb, "reset q[%d];\n", g.Target)

	case g.Type == "MEASURE":
		fmt.Fprintf(sb, "measure q[%d] -> c[%d];\n", g.Target, g.Target)

	case g.ClassicalControl >= 0:
		name := strings.ToLower(g.Type)
		if len(g.Params) > 0 {
			fmt.Fprintf(sb, "if (c[%d]==1) %s(%s) q[%d];\n", g.ClassicalControl, name, FormatParam(g.Params[0]), g.Target)
		} else {
			fmt.Fprintf(sb, "if (c[%d]==1) %s q[%d];\n", g.ClassicalControl, name, g.Target)
		}

	case len(g.Controls) >= 2 && (g.Type == "CCX" || g.Type == "TOFFOLI"):
		fmt.Fprintf(sb, "ccx q[%d], q[%d], q[%d];\n", g.Controls[0], g.Controls[1], g.Target)

	case len(g.Controls) == 1 && (g.Type == "CSWAP" || g.Type == "FREDKIN"):
		// Like the plain SWAP, the swapped pair sits in Target/Control;
		// the control qubit rides in Controls.
		fmt.Fprintf(sb, "cswap q[%d], q[%d], q[%d];\n", g.Controls[0], g.Target, g.Control)

	case g.Control >= 0:
		name := strings.ToLower(g.Type)
		if name == "cnot" {
			name = "cx"
		}
		fmt.Fprintf(sb, "%s q[%d], q[%d];\n", name, g.Control, g.Target)

	default:
		name := strings.ToLower(g.Type)
		if len(g.Params) > 0 {
			fmt.Fprintf(sb, "%s(%s) q[%d];\n", name, FormatParam(g.Params[0]), g.Target)
		} else {
			fmt.Fprintf(sb, "%s q[%d];\n", name, g.Target)
		}
	}
}

// ParseQASM rebuilds the circuit from QASM text. Gates are assigned
// sequential steps in source order, then packed so independent gates share
// a step.
func (c *Circuit) ParseQASM(qasm string) error {
	c.Gates = nil
	c.MaxSteps = 0
	step := 0

	for _, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if matches := noiseRegex.FindStringSubmatch(line); matches != nil {
			target, _ := strconv.Atoi(matches[2])
			if matches[3] != "" {
				if p, ok := ParseParamExpr(matches[3]); ok {
					c.AddNoise(target, step, matches[1], p)
					step++
					continue
				}
			}
			c.AddNoise(target, step, matches[1])
			step++
			continue
		}
		if strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			if matches := qregRegex.FindStringSubmatch(line); len(matches) > 2 {
				n, _ := strconv.Atoi(matches[2])
				c.NumQubits = n
			}
			continue
		}
		if strings.HasPrefix(line, "creg") {
			continue
		}
		if strings.HasPrefix(line, "barrier") {
			c.AddBarrier(step)
			step++
			continue
		}

		if matches := measureRegex.FindStringSubmatch(line); matches != nil {
			source, _ := strconv.Atoi(matches[1])
			c.AddMeasure(source, step)
			step++
			continue
		}

		if matches := resetRegex.FindStringSubmatch(line); matches != nil {
			target, _ := strconv.Atoi(matches[1])
			c.AddReset(target, step)
			step++
			continue
		}

		if matches := ifRegex.FindStringSubmatch(line); matches != nil {
			cbit := 0
			if matches[1] != "" {
				cbit, _ = strconv.Atoi(matches[1])
			}
			gateType := strings.ToUpper(matches[2])
			target, _ := strconv.Atoi(matches[3])
			c.AddClassicalControlGate(gateType, target, step, cbit)
			step++
			continue
		}

		if matches := ifParamRegex.FindStringSubmatch(line); matches != nil {
			cbit := 0
			if matches[1] != "" {
				cbit, _ = strconv.Atoi(matches[1])
			}
			gateType := strings.ToUpper(matches[2])
			param, _ := ParseParamExpr(matches[3])
			target, _ := strconv.Atoi(matches[4])
			c.push(Gate{
				Type:             gateType,
				Target:           target,
				Control:          -1,
				Step:             step,
				Params:           []float64{param},
				ClassicalControl: cbit,
			})
			step++
			continue
		}

		if matches := threeQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			q1, _ := strconv.Atoi(matches[2])
			q2, _ := strconv.Atoi(matches[3])
			q3, _ := strconv.Atoi(matches[4])
			switch gateType {
			case "CCX", "TOFFOLI":
				c.AddMultiControlGate("CCX", q3, step, []int{q1, q2})
			case "CSWAP", "FREDKIN":
				c.AddControlledSwap(q1, q2, q3, step)
			}
			step++
			continue
		}

		if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			q1, _ := strconv.Atoi(matches[2])
			q2, _ := strconv.Atoi(matches[3])
			if gateType == "CNOT" {
				gateType = "CX"
			}
			c.AddGate(gateType, q2, step, q1)
			step++
			continue
		}

		if matches := singleGateParamRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			param, ok := ParseParamExpr(matches[2])
			target, _ := strconv.Atoi(matches[3])
			if ok {
				c.AddParameterizedGate(gateType, target, step, []float64{param})
				step++
			}
			continue
		}

		if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
			gateType := strings.ToUpper(matches[1])
			target, _ := strconv.Atoi(matches[2])
			c.AddGate(gateType, target, step)
			step++
			continue
		}
	}

	c.Pack()
	return nil
}
