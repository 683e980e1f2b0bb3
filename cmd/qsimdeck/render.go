package main

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"

	"qsimdeck/circuit"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate type.
func gateDisplayName(g *circuit.Gate) string {
	switch {
	case g.Type == "MEASURE":
		return "M"
	case g.Type == "RESET":
		return "|0⟩"
	case g.IsNoise:
		return "N"
	default:
		return g.Type
	}
}

// wireSymbol returns the symbol drawn where a multi-qubit gate crosses the
// given qubit's wire.
func wireSymbol(g *circuit.Gate, qubit int) string {
	switch g.Type {
	case "SWAP":
		return "×"
	case "CSWAP":
		for _, c := range g.Controls {
			if c == qubit {
				return "●"
			}
		}
		return "×"
	case "CZ":
		return "●"
	}
	if g.Control == qubit {
		return "●"
	}
	for _, c := range g.Controls {
		if c == qubit {
			return "●"
		}
	}
	return "⊕"
}

// ──────────────────────────── Cell rendering ────────────────────────────

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlTargetSelect
)

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate         *circuit.Gate
	onWire       bool // gate crosses this qubit's wire (multi-qubit symbol)
	vertAbove    bool
	vertBelow    bool
	passThrough  bool
	measureBelow bool
	isBarrier    bool
}

// getCellInfo returns rendering information for the cell at (step, qubit).
func getCellInfo(c *circuit.Circuit, step, qubit int) cellInfo {
	var info cellInfo

	gate := c.GetGateAt(step, qubit)
	if gate != nil {
		info.gate = gate
		// Any gate spanning several wires draws a symbol, not a box.
		info.onWire = gate.Control >= 0 || len(gate.Controls) > 0
	}

	// Check for barrier at this step
	for i := range c.Gates {
		if c.Gates[i].Step == step && c.Gates[i].Type == "BARRIER" {
			info.isBarrier = true
			if info.gate == nil {
				info.gate = &c.Gates[i]
			}
			break
		}
	}

	// Vertical connections for multi-qubit gates
	for _, g := range c.Gates {
		if g.Step != step {
			continue
		}

		span := []int{}
		if g.Control >= 0 {
			span = append(span, g.Target, g.Control)
		}
		if len(g.Controls) > 0 {
			span = append(span, g.Target)
			span = append(span, g.Controls...)
		}
		if len(span) == 0 {
			continue
		}

		minQ, maxQ := span[0], span[0]
		for _, q := range span {
			minQ, maxQ = min(minQ, q), max(maxQ, q)
		}

		if qubit >= minQ && qubit <= maxQ {
			if qubit > minQ {
				info.vertAbove = true
			}
			if qubit < maxQ {
				info.vertBelow = true
			}
			if qubit > minQ && qubit < maxQ && info.gate == nil {
				info.passThrough = true
			}
		}
	}

	// Vertical connections for measurement gates going down to the
	// classical wire.
	for _, g := range c.Gates {
		if g.Step == step && g.Type == "MEASURE" && qubit > g.Target {
			info.measureBelow = true
		}
	}

	return info
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, hl cellHighlight, qubit int) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)

	// ── Highlighted cell (cursor or target selection) ──
	if hl == hlCursor || hl == hlTargetSelect {
		bdr := cursorBoxStyle
		if hl == hlTargetSelect {
			bdr = targetSelectStyle
		}
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1

		if info.isBarrier {
			top = vertRow
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "│" + strings.Repeat("─", dashR) + bdr.Render("║")
			bot = vertRow
			return
		}

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")

		switch {
		case info.gate != nil && info.onWire:
			sym := wireSymbol(info.gate, qubit)
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil:
			name := padCenter(gateDisplayName(info.gate), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case info.passThrough:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}

		return
	}

	// ── Normal (non-highlighted) cells ──
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	switch {
	case info.isBarrier:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "│" + strings.Repeat("─", dashR)
		bot = vertRow

	case info.gate != nil && info.onWire:
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		sym := wireSymbol(info.gate, qubit)
		mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
		if info.measureBelow {
			bot = dblVertRow
		}

	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(info.gate), gateNameW)

		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if info.measureBelow {
			bot = dblVertRow
		}

	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow
		if info.measureBelow {
			bot = dblVertRow
		}

	case info.measureBelow:
		// No gate here, but a measurement connection passes through vertically
		top = dblVertRow
		mid = strings.Repeat("─", dashL) + cbitConnectorStyle.Render("╫") + strings.Repeat("─", dashR)
		bot = dblVertRow
		if info.vertAbove {
			top = vertRow
		}

	default:
		// Empty wire
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
	}

	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	// How many steps fit
	availWidth := width - labelVisualW - 4
	maxSteps := max(availWidth/cellW, 1)

	startStep := 0
	if m.cursorStep >= maxSteps {
		startStep = m.cursorStep - maxSteps + 1
	}

	displaySteps := maxSteps

	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", startStep, startStep+displaySteps-1)
	}

	// Step number header
	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+displaySteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	// Render each qubit as 3 lines
	for qubit := 0; qubit < m.circuit.NumQubits; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+displaySteps; step++ {
			info := getCellInfo(&m.circuit, step, qubit)

			hl := hlNone
			if step == m.cursorStep && qubit == m.cursorQubit && (m.focus == focusCircuit || m.focus == focusSelectTarget || m.focus == focusSelectControls || m.focus == focusMenu) {
				hl = hlCursor
			} else if step == m.cursorStep && qubit == m.targetQubit && (m.focus == focusSelectTarget || m.focus == focusSelectControls) {
				hl = hlTargetSelect
			}

			top, mid, bot := renderCell(info, hl, qubit)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// ── Classical bit wire (single line) ──
	numCbits := m.circuit.NumCbits()
	if numCbits > 0 {
		// Separator line between quantum and classical wires
		sepLine := strings.Repeat(" ", labelVisualW)
		for step := startStep; step < startStep+displaySteps; step++ {
			measuredQubit := m.circuit.GetMeasureAtStep(step)
			halfW := cellW / 2
			if measuredQubit >= 0 {
				sepLine += strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
			} else {
				sepLine += strings.Repeat(" ", cellW)
			}
		}
		sb.WriteString(sepLine + "\n")

		// Single classical wire showing count and measurement landing points
		label := fmt.Sprintf("c%d", numCbits)
		cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + cbitWireStyle.Render("══")

		for step := startStep; step < startStep+displaySteps; step++ {
			measuredQubit := m.circuit.GetMeasureAtStep(step)
			if measuredQubit >= 0 {
				// Show ╩ with the bit index next to it
				bitLabel := fmt.Sprintf("%d", measuredQubit)
				dashL := (cellW - 1) / 2
				dashR := max(cellW-dashL-1-len(bitLabel), 0)
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
					cbitConnectorStyle.Render("╩"+bitLabel) +
					cbitWireStyle.Render(strings.Repeat("═", dashR))
			} else {
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW))
			}
		}
		sb.WriteString(cbitLine + "\n")
	}

	// Status line
	switch m.focus {
	case focusSelectTarget:
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pendingGate))
		sb.WriteString("  Select target qubit: ")
		fmt.Fprintf(&sb, "%s", targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	case focusSelectControls:
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pendingGate))
		sb.WriteString("  Select control qubit: ")
		fmt.Fprintf(&sb, "%s", targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	default:
		fmt.Fprintf(&sb, "\n  Position: Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderStatePanel renders the simulation diagnostics: per-qubit marginals
// with entanglement entropy, the classical register, and the leading basis
// amplitudes of the current state.
func (m Model) renderStatePanel(width, height int) string {
	var sb strings.Builder

	title := "State"
	if m.simToCursor {
		title += fmt.Sprintf(" (to step %d)", m.cursorStep)
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  noise: %s  gates: %d",
		noisePresets[m.noiseIdx].name, m.snap.info.Gates)))
	sb.WriteString("\n\n")

	if m.snap.err != nil {
		sb.WriteString(errStyle.Render(fmt.Sprintf("simulation error: %v", m.snap.err)))
		return stateStyle.Width(width).Height(height).Render(sb.String())
	}

	for q, qp := range m.snap.qubitProbs {
		filled := int(qp.Prob1*probBarW + 0.5)
		bar := probBarStyle.Render(strings.Repeat("▮", filled)) +
			dimStyle.Render(strings.Repeat("·", probBarW-filled))
		fmt.Fprintf(&sb, "%s P(1)=%.3f %s S=%.2f\n",
			qubitLabelStyle.Render(fmt.Sprintf("q[%d]", q)), qp.Prob1, bar, m.snap.entropy[q])
	}

	if len(m.snap.cbits) > 0 && m.circuit.NumCbits() > 0 {
		sb.WriteString(cbitLabelStyle.Render("c    "))
		for _, b := range m.snap.cbits {
			fmt.Fprintf(&sb, "%d", b)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for _, line := range m.leadingAmplitudes(4) {
		sb.WriteString(amplitudeStyle.Render(line))
		sb.WriteString("\n")
	}

	return stateStyle.Width(width).Height(height).Render(sb.String())
}

// leadingAmplitudes formats the n highest-probability basis states.
func (m Model) leadingAmplitudes(n int) []string {
	type weighted struct {
		idx  int
		prob float64
	}
	var ws []weighted
	for i, p := range m.snap.basisProbs {
		if p > 1e-9 {
			ws = append(ws, weighted{i, p})
		}
	}
	sort.Slice(ws, func(a, b int) bool { return ws[a].prob > ws[b].prob })
	if len(ws) > n {
		ws = ws[:n]
	}

	numQubits := len(m.snap.qubitProbs)
	lines := make([]string, 0, len(ws))
	for _, w := range ws {
		amp := m.snap.amps[w.idx]
		ket := fmt.Sprintf("%0*b", numQubits, w.idx)
		lines = append(lines, fmt.Sprintf("|%s⟩ %.3f  %+.3f%+.3fi ∠%+.2f",
			ket, w.prob, real(amp), imag(amp), cmplx.Phase(amp)))
	}
	return lines
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move qubit  ←→/hl Move step  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate  ")
	sb.WriteString(activeGateStyle.Render("m"))
	sb.WriteString(" Measure\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Focus  Bksp Delete  e Edit  n Noise  s Sim-to-cursor  r Resample  ^R Reset  ^S Save  q Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
// It properly handles ANSI escape sequences in the background line.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0
	inEsc := false

	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			inEsc = true
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				if inEsc && runes[i] != '\x1b' && runes[i] != '[' && ((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z')) {
					inEsc = false
					i++
					break
				}
				i++
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}

	// Pad prefix if bg line is shorter than x
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if i > 0 && runes[i-1] != '\x1b' && runes[i-1] != '[' && ((runes[i-1] >= 'A' && runes[i-1] <= 'Z') || (runes[i-1] >= 'a' && runes[i-1] <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	// Collect suffix: rest of the background line
	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
