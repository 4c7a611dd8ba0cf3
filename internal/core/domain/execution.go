package domain

import "fmt"

// ExecutionState tracks how far a trade execution has progressed.
type ExecutionState int

const (
	StateCreated ExecutionState = iota
	StateValidated
	StatePersisted
	StateWalletApplied
	StateHoldingsApplied
	StateCommitted
	StateAborted
)

var stateNames = map[ExecutionState]string{
	StateCreated:         "created",
	StateValidated:       "validated",
	StatePersisted:       "persisted",
	StateWalletApplied:   "wallet_applied",
	StateHoldingsApplied: "holdings_applied",
	StateCommitted:       "committed",
	StateAborted:         "aborted",
}

func (s ExecutionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTerminal returns true for Committed and Aborted.
func (s ExecutionState) IsTerminal() bool {
	return s == StateCommitted || s == StateAborted
}

// CanTransition reports whether moving from s to next is allowed. States
// advance strictly in order; Aborted is reachable from any non-terminal state.
func (s ExecutionState) CanTransition(next ExecutionState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateAborted {
		return true
	}
	return next == s+1
}

// Execution records the state of a single trade run.
type Execution struct {
	state ExecutionState
	// AbortedAt is the last state reached before abort.
	AbortedAt ExecutionState
}

// NewExecution starts in StateCreated.
func NewExecution() *Execution {
	return &Execution{state: StateCreated}
}

func (e *Execution) State() ExecutionState { return e.state }

// Advance moves to next or returns an error on an illegal transition.
func (e *Execution) Advance(next ExecutionState) error {
	if !e.state.CanTransition(next) {
		return fmt.Errorf("illegal execution transition %s -> %s", e.state, next)
	}
	if next == StateAborted {
		e.AbortedAt = e.state
	}
	e.state = next
	return nil
}
