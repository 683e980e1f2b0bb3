package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qsimdeck/circuit"
	"qsimdeck/sim"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusSelectControls
	focusInputParam
	focusEditGate
	focusEditParam
)

// noisePreset pairs a display name with an engine error-rate profile.
type noisePreset struct {
	name    string
	profile sim.Profile
}

var noisePresets = []noisePreset{
	{"ideal", sim.Profile{}},
	{"light", sim.Profile{SingleQubit: 0.001, MultiQubit: 0.01, Measurement: 0.02}},
	{"heavy", sim.Profile{SingleQubit: 0.01, MultiQubit: 0.05, Measurement: 0.08}},
}

// simSnapshot caches one simulation of the current circuit so View never
// touches the engine directly.
type simSnapshot struct {
	info       sim.Info
	qubitProbs []sim.QubitProbability
	basisProbs []float64
	amps       []sim.Complex
	entropy    []float64
	cbits      []int
	err        error
}

// Model represents the TUI application state. The circuit timeline is the
// single source of truth; the QASM editor and the simulation snapshot are
// both derived from it.
type Model struct {
	circuit       circuit.Circuit
	cursorQubit   int
	cursorStep    int
	viewStartStep int // First step currently visible in the view
	width         int
	height        int
	qasmEditor    textarea.Model
	focus         focus
	lastQASM      string
	statusMsg     string // transient status message (e.g. save confirmation)

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection state (for multi-qubit gates)
	pendingGate   string
	targetQubit   int
	paramInput    string
	controlQubits []int

	// Edit gate state
	editGate    *circuit.Gate // pointer into the circuit's gate list
	editMenuIdx int
	editOrigStep int

	// Simulation state
	noiseIdx    int
	simSeed     int64
	simToCursor bool
	snap        simSnapshot

	logger *zap.Logger
}

func initialModel(numQubits int, qasmFile string, logger *zap.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		circuit:    circuit.Circuit{NumQubits: numQubits},
		qasmEditor: ta,
		focus:      focusCircuit,
		simSeed:    1,
		logger:     logger,
	}

	if qasmFile != "" {
		if data, err := os.ReadFile(qasmFile); err != nil {
			m.statusMsg = fmt.Sprintf("Load error: %v", err)
			logger.Warn("load failed", zap.String("file", qasmFile), zap.Error(err))
		} else if err := m.circuit.ParseQASM(string(data)); err != nil {
			m.statusMsg = fmt.Sprintf("Parse error: %v", err)
		} else {
			logger.Info("loaded circuit",
				zap.String("file", qasmFile),
				zap.Int("qubits", m.circuit.NumQubits),
				zap.Int("gates", len(m.circuit.Gates)))
		}
		if m.circuit.NumQubits < 1 {
			m.circuit.NumQubits = numQubits
		}
	}

	m.syncCircuit()
	return m
}

// syncCircuit regenerates the QASM view and the simulation snapshot after
// any change to the timeline.
func (m *Model) syncCircuit() {
	qasm := m.circuit.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	m.refreshSim()
}

// refreshSim reruns the circuit on a fresh session under the selected
// noise preset. The seed is fixed until the user asks for a resample, so
// cursor movement does not flicker measurement outcomes.
func (m *Model) refreshSim() {
	upTo := -1
	if m.simToCursor {
		upTo = m.cursorStep
	}

	sess, res, err := circuit.Simulate(&m.circuit, upTo,
		sim.WithSeed(m.simSeed),
		sim.WithNoise(noisePresets[m.noiseIdx].profile))
	if err != nil {
		m.snap = simSnapshot{err: err}
		m.logger.Warn("simulation failed", zap.Error(err))
		return
	}

	var snap simSnapshot
	snap.info, _ = sess.Info()
	snap.qubitProbs, _ = sess.QubitProbabilities()
	snap.basisProbs, _ = sess.Probabilities()
	snap.amps, _ = sess.State()
	snap.cbits = res.Cbits
	snap.entropy = make([]float64, sess.NumQubits())
	for q := range snap.entropy {
		snap.entropy[q], _ = sess.EntanglementEntropy(q)
	}
	m.snap = snap
}

func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	var c circuit.Circuit
	if err := c.ParseQASM(qasm); err != nil {
		m.statusMsg = fmt.Sprintf("QASM error: %v", err)
		return
	}
	m.circuit = c
	m.lastQASM = qasm
	m.refreshSim()
}

// placeGate places a gate on the circuit at the cursor position.
// targetQ is the target qubit for multi-qubit gates (-1 for single-qubit).
// Returns true if placement succeeded, false if blocked by conflict.
func (m *Model) placeGate(gateType string, targetQ int) bool {
	var qubitsNeeded []int
	switch gateType {
	case "CX", "CZ", "SWAP":
		qubitsNeeded = []int{m.cursorQubit, targetQ}
	case "CCX", "CSWAP":
		qubitsNeeded = append([]int{m.cursorQubit, targetQ}, m.controlQubits...)
	case "BARRIER":
		qubitsNeeded = nil
	default:
		qubitsNeeded = []int{m.cursorQubit}
	}

	if len(qubitsNeeded) > 0 && !m.circuit.CanPlaceGateAt(m.cursorStep, qubitsNeeded) {
		m.statusMsg = "Cannot place: qubit already used by another gate at this step"
		m.clearPending()
		return false
	}

	for _, q := range qubitsNeeded {
		m.circuit.RemoveGateAt(m.cursorStep, q)
	}

	switch gateType {
	case "CX", "CZ", "SWAP":
		m.circuit.AddGate(gateType, targetQ, m.cursorStep, m.cursorQubit)

	case "CCX":
		controls := append([]int{m.cursorQubit}, m.controlQubits...)
		m.circuit.AddMultiControlGate("CCX", targetQ, m.cursorStep, controls)

	case "CSWAP":
		// Cursor qubit controls; the picked qubit and target are swapped.
		m.circuit.AddControlledSwap(m.cursorQubit, m.controlQubits[0], targetQ, m.cursorStep)

	case "MEASURE":
		m.circuit.AddMeasure(m.cursorQubit, m.cursorStep)

	case "BARRIER":
		m.circuit.AddBarrier(m.cursorStep)

	case "RESET":
		m.circuit.AddReset(m.cursorQubit, m.cursorStep)

	case "RX", "RY", "RZ":
		params := circuit.ParseParams(m.paramInput)
		if len(params) == 0 {
			params = []float64{sim.DefaultTheta}
		}
		m.circuit.AddParameterizedGate(gateType, m.cursorQubit, m.cursorStep, params[:1])

	case "NOISE_DEPOL", "NOISE_AMP", "NOISE_PHASE":
		noiseType := map[string]string{
			"NOISE_DEPOL": "depolarizing",
			"NOISE_AMP":   "amplitude_damping",
			"NOISE_PHASE": "phase_damping",
		}[gateType]
		params := circuit.ParseParams(m.paramInput)
		if len(params) == 0 {
			params = []float64{0.01}
		}
		m.circuit.AddNoise(m.cursorQubit, m.cursorStep, noiseType, params...)

	default:
		m.circuit.AddGate(gateType, m.cursorQubit, m.cursorStep)
	}

	m.logger.Debug("gate placed",
		zap.String("type", gateType),
		zap.Int("step", m.cursorStep),
		zap.Int("qubit", m.cursorQubit))

	m.clearPending()
	m.cursorStep++
	m.circuit.MaxSteps = max(m.circuit.MaxSteps, m.cursorStep)
	m.syncCircuit()
	return true
}

func (m *Model) clearPending() {
	m.paramInput = ""
	m.controlQubits = nil
	m.pendingGate = ""
}

// beginTargetSelect moves focus to target selection, seeding the pick with
// the nearest qubit not already taken by the cursor or a chosen control.
func (m *Model) beginTargetSelect() {
	m.focus = focusSelectTarget
	n := m.circuit.NumQubits
	for d := 1; d < n; d++ {
		q := (m.cursorQubit + d) % n
		if !slicesContains(m.controlQubits, q) {
			m.targetQubit = q
			return
		}
	}
	m.targetQubit = -1
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		editorH := max(msg.Height/2-8, 4)
		m.qasmEditor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "ctrl+r":
				m.circuit.Gates = nil
				m.circuit.MaxSteps = 0
				m.viewStartStep = 0
				m.syncCircuit()
			case "ctrl+s":
				qasm := m.circuit.ToQASM()
				if err := os.WriteFile("circuit.qasm", []byte(qasm), 0644); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = "Saved circuit.qasm"
				}
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorStep > 0 {
					m.cursorStep--
					if m.cursorStep < m.viewStartStep {
						m.viewStartStep = m.cursorStep
					}
					if m.simToCursor {
						m.refreshSim()
					}
				}
			case "right", "l":
				m.cursorStep++
				m.circuit.MaxSteps = max(m.circuit.MaxSteps, m.cursorStep)
				if m.simToCursor {
					m.refreshSim()
				}
			case "+", "=":
				// Grid rows get cramped past this; the engine itself has no cap.
				if m.circuit.NumQubits < 10 {
					m.circuit.NumQubits++
					m.syncCircuit()
				}
			case "-":
				if m.circuit.NumQubits > 1 {
					m.circuit.NumQubits--
					m.cursorQubit = min(m.cursorQubit, m.circuit.NumQubits-1)
					m.circuit.RemoveGatesOnQubit(m.circuit.NumQubits)
					m.syncCircuit()
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "m":
				if m.circuit.CanPlaceGateAt(m.cursorStep, []int{m.cursorQubit}) {
					m.circuit.AddMeasure(m.cursorQubit, m.cursorStep)
					m.cursorStep++
					m.syncCircuit()
				} else {
					m.statusMsg = "Cannot place: qubit already used by another gate at this step"
				}
			case "n":
				m.noiseIdx = (m.noiseIdx + 1) % len(noisePresets)
				m.statusMsg = "Noise: " + noisePresets[m.noiseIdx].name
				m.refreshSim()
			case "s":
				m.simToCursor = !m.simToCursor
				if m.simToCursor {
					m.statusMsg = "Simulating up to cursor step"
				} else {
					m.statusMsg = "Simulating full circuit"
				}
				m.refreshSim()
			case "r":
				m.simSeed++
				m.statusMsg = "Resampled"
				m.refreshSim()
			case "backspace", "delete":
				m.circuit.RemoveGateAt(m.cursorStep, m.cursorQubit)
				m.syncCircuit()
			case "e":
				if g := m.circuit.GetGateAt(m.cursorStep, m.cursorQubit); g != nil {
					m.editGate = g
					m.editMenuIdx = 0
					m.editOrigStep = m.cursorStep
					m.focus = focusEditGate
				}
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				cat := gateMenu[m.menuCat]
				if m.menuItem < len(cat.items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				m.pendingGate = item.gateType

				if item.needsParams {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				m.advancePlacement(item)
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != m.cursorQubit && !slicesContains(m.controlQubits, next) {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.circuit.NumQubits; next++ {
					if next != m.cursorQubit && !slicesContains(m.controlQubits, next) {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				if m.placeGate(m.pendingGate, m.targetQubit) {
					m.focus = focusCircuit
				}
			}

		case focusSelectControls:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.circuit.NumQubits; next++ {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				m.controlQubits = append(m.controlQubits, m.targetQubit)
				m.beginTargetSelect()
			}

		case focusEditGate:
			if m.editGate == nil {
				m.focus = focusCircuit
				break
			}
			editOptions := m.getEditOptions()
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.editGate = nil
			case "up", "k":
				if m.editMenuIdx > 0 {
					m.editMenuIdx--
				}
			case "down", "j":
				if m.editMenuIdx < len(editOptions)-1 {
					m.editMenuIdx++
				}
			case "enter":
				if m.editMenuIdx < len(editOptions) {
					switch editOptions[m.editMenuIdx].action {
					case "edit_param":
						m.paramInput = ""
						m.focus = focusEditParam
					case "delete":
						m.circuit.RemoveGateAt(m.editOrigStep, m.editGate.Target)
						m.editGate = nil
						m.focus = focusCircuit
						m.syncCircuit()
					}
				}
			}

		case focusEditParam:
			switch key {
			case "esc":
				m.paramInput = ""
				m.focus = focusEditGate
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				if m.editGate != nil {
					params := circuit.ParseParams(m.paramInput)
					if m.paramInput != "" && params == nil {
						m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
						break
					}
					if len(params) > 0 {
						m.editGate.Params = params
					}
					m.syncCircuit()
				}
				m.paramInput = ""
				m.focus = focusEditGate
			default:
				m.paramInput = appendParamKey(m.paramInput, key)
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.clearPending()
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				params := circuit.ParseParams(m.paramInput)
				if m.paramInput != "" && params == nil {
					m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				m.advancePlacement(gateMenu[m.menuCat].items[m.menuItem])
			default:
				m.paramInput = appendParamKey(m.paramInput, key)
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// advancePlacement routes a chosen menu item to its next interaction:
// extra-control pick, target pick, or immediate placement.
func (m *Model) advancePlacement(item menuItem) {
	if item.needsControl {
		if m.circuit.NumQubits < 3 {
			m.statusMsg = "Need at least 3 qubits for " + item.name
			m.focus = focusCircuit
			m.clearPending()
			return
		}
		m.controlQubits = nil
		m.focus = focusSelectControls
		m.targetQubit = m.cursorQubit + 1
		if m.targetQubit >= m.circuit.NumQubits {
			m.targetQubit = m.cursorQubit - 1
		}
		return
	}

	if item.needsTarget {
		if m.circuit.NumQubits < 2 {
			m.statusMsg = "Need at least 2 qubits for " + item.name
			m.focus = focusCircuit
			m.clearPending()
			return
		}
		m.beginTargetSelect()
		return
	}

	if m.placeGate(item.gateType, -1) {
		m.focus = focusCircuit
	}
}

// appendParamKey filters keystrokes down to the characters a parameter
// expression can contain.
func appendParamKey(input, key string) string {
	if len(key) != 1 {
		return input
	}
	ch := key[0]
	if (ch >= '0' && ch <= '9') || ch == '.' || ch == ',' || ch == '-' || ch == 'e' || ch == 'E' || ch == '+' ||
		ch == 'p' || ch == 'i' || ch == '*' || ch == '/' {
		return input + key
	}
	return input
}

// Helper function
func slicesContains(slice []int, val int) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// editOption represents an option in the edit gate menu.
type editOption struct {
	label  string
	action string
}

// getEditOptions returns available edit options for the current gate.
func (m *Model) getEditOptions() []editOption {
	if m.editGate == nil {
		return nil
	}
	var opts []editOption

	if len(m.editGate.Params) > 0 || isParameterizedGate(m.editGate.Type) {
		var parts []string
		for _, p := range m.editGate.Params {
			parts = append(parts, circuit.FormatParam(p))
		}
		paramStr := strings.Join(parts, ", ")
		if paramStr == "" {
			paramStr = "none"
		}
		opts = append(opts, editOption{
			label:  fmt.Sprintf("Parameters: %s", paramStr),
			action: "edit_param",
		})
	}

	opts = append(opts, editOption{
		label:  "Delete gate",
		action: "delete",
	})

	return opts
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	rightWidth := m.width / 3
	circuitWidth := m.width - rightWidth - 4
	controlsHeight := 6
	bodyHeight := max(m.height-controlsHeight-2, 6)
	stateHeight := max(bodyHeight/2-1, 6)
	qasmHeight := bodyHeight - stateHeight

	circuitPanel := m.renderCircuitPanel(circuitWidth, bodyHeight)
	qasmPanel := m.renderQASMPanel(rightWidth, qasmHeight)
	statePanel := m.renderStatePanel(rightWidth, stateHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, qasmPanel, statePanel)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, rightCol)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	// Render menu overlay when in menu mode
	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}

	// Render parameter input overlay
	if m.focus == focusInputParam {
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}

	// Render edit gate menu overlay
	if m.focus == focusEditGate {
		frame = overlayAt(frame, m.renderEditGateMenu(), 2, 2)
	}

	return frame
}

// renderParamInput renders parameter input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Parameter"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Value: %s_", m.paramInput))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}

// renderEditGateMenu renders the edit gate menu overlay.
func (m Model) renderEditGateMenu() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Edit Gate"))
	sb.WriteString("\n\n")
	opts := m.getEditOptions()
	for i, opt := range opts {
		if i == m.editMenuIdx {
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("▸ %s", opt.label)))
		} else {
			sb.WriteString(fmt.Sprintf("  %s", opt.label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Select  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}
