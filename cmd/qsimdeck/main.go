package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	qubits := flag.Int("qubits", 4, "initial number of qubits")
	debug := flag.Bool("debug", false, "write a debug log to qsimdeck.log")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	qasmFile := flag.Arg(0)
	m := initialModel(*qubits, qasmFile, logger)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the session logger. The TUI owns the terminal, so debug
// output goes to a file rather than stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"qsimdeck.log"}
	cfg.ErrorOutputPaths = []string{"qsimdeck.log"}
	return cfg.Build()
}
