package interpreter

import (
	"fmt"

	"visualg/interpreter-go/pkg/runtime"
)

// StateKind enumerates the debug state machine positions.
type StateKind int

const (
	NotStarted StateKind = iota
	Running
	PausedDebug
	CompletedSuccessfully
	CompletedExceptionally
	ForcedStop
)

func (k StateKind) String() string {
	switch k {
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case PausedDebug:
		return "PausedDebug"
	case CompletedSuccessfully:
		return "CompletedSuccessfully"
	case CompletedExceptionally:
		return "CompletedExceptionally"
	case ForcedStop:
		return "ForcedStop"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// State is the interpreter's current position in the state machine. Line is
// set for PausedDebug and Err for CompletedExceptionally.
type State struct {
	Kind StateKind
	Line int
	Err  error
}

// Terminal reports whether no further execution can happen without a reset.
func (s State) Terminal() bool {
	switch s.Kind {
	case CompletedSuccessfully, CompletedExceptionally, ForcedStop:
		return true
	}
	return false
}

// Active reports whether a run is in progress, paused or not.
func (s State) Active() bool {
	return s.Kind == Running || s.Kind == PausedDebug
}

func (s State) String() string {
	switch s.Kind {
	case PausedDebug:
		return fmt.Sprintf("PausedDebug(%d)", s.Line)
	case CompletedExceptionally:
		return fmt.Sprintf("CompletedExceptionally(%v)", s.Err)
	default:
		return s.Kind.String()
	}
}

// ProgramState is handed to snapshot listeners on each pause.
type ProgramState struct {
	CurrentLine int
	Stack       map[string]map[string]runtime.Value
}

type StateListener func(State)

type SnapshotListener func(ProgramState)
