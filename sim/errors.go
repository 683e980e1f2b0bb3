package sim

import "errors"

// Error taxonomy reported by the engine. All failures are synchronous and
// final: gate and measurement operations have no transient failure modes,
// so nothing is retried or logged here. Callers match with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrIndexOutOfRange   = errors.New("qubit index out of range")
	ErrUnsupportedGate   = errors.New("unsupported gate")
	ErrInvalidState      = errors.New("session not initialized")
	ErrDimensionMismatch = errors.New("state dimension mismatch")
	ErrDegenerateState   = errors.New("measurement collapse onto zero probability")
)
