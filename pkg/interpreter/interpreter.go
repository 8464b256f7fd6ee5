package interpreter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

// ErrAlreadyRunning is returned by Start while another run is active.
var ErrAlreadyRunning = errors.New("interpreter: a program is already running")

// ErrNoProgram is the failure of a run started without a program.
var ErrNoProgram = errors.New("interpreter: no program to run")

// Interpreter executes Portugol programs and drives the debug state machine.
// One run happens at a time per instance.
type Interpreter struct {
	io     runtime.IO
	logger *slog.Logger
	rng    *rand.Rand

	defaultRandomMin float64
	defaultRandomMax float64
	defaultEcho      bool

	mu           sync.Mutex
	cond         *sync.Cond
	state        State
	breakpoints  []ast.Location
	stepping     bool
	resumed      bool
	stopping     bool
	runID        uint64
	cancel       context.CancelFunc
	done         chan struct{}
	output       strings.Builder
	lastSnapshot ProgramState

	stateListeners    []StateListener
	snapshotListeners []SnapshotListener

	// Worker-owned run state.
	program    *ast.AlgoritimoNode
	global     *runtime.Environment
	frames     []*runtime.Environment
	functions  map[string]*ast.FunctionDeclarationNode
	procedures map[string]*ast.ProcedureDeclarationNode
	records    map[string]*ast.RecordDeclarationNode
	random     randomMode
	echo       bool
	timer      time.Duration
	line       int
}

type randomMode struct {
	enabled  bool
	min, max float64
}

// Option configures an Interpreter.
type Option func(*Interpreter)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithRandomSeed makes aleatorio, rand and randi reproducible.
func WithRandomSeed(seed uint64) Option {
	return func(i *Interpreter) {
		i.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRandomRange sets the range used by aleatorio when none is given.
func WithRandomRange(min, max float64) Option {
	return func(i *Interpreter) {
		i.defaultRandomMin, i.defaultRandomMax = min, max
	}
}

// WithEcho enables echoing of values consumed by leia.
func WithEcho(enabled bool) Option {
	return func(i *Interpreter) {
		i.defaultEcho = enabled
	}
}

// New returns an interpreter bound to an I/O collaborator.
func New(host runtime.IO, opts ...Option) *Interpreter {
	i := &Interpreter{
		io:               host,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:              rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		defaultRandomMin: 0,
		defaultRandomMax: 100,
	}
	i.cond = sync.NewCond(&i.mu)
	for _, opt := range opts {
		opt(i)
	}
	i.resetRunState()
	return i
}

// State returns the current state.
func (i *Interpreter) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// OnStateChange registers a listener invoked on every transition. Listeners
// run on the goroutine that caused the transition.
func (i *Interpreter) OnStateChange(listener StateListener) {
	i.mu.Lock()
	i.stateListeners = append(i.stateListeners, listener)
	i.mu.Unlock()
}

// OnSnapshot registers a listener invoked with the program state on each pause.
func (i *Interpreter) OnSnapshot(listener SnapshotListener) {
	i.mu.Lock()
	i.snapshotListeners = append(i.snapshotListeners, listener)
	i.mu.Unlock()
}

// Output returns everything written by the current run.
func (i *Interpreter) Output() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.output.String()
}

// Snapshot returns the program state captured at the last pause or at the end
// of the run.
func (i *Interpreter) Snapshot() ProgramState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastSnapshot
}

// Start launches program on a dedicated worker goroutine.
func (i *Interpreter) Start(ctx context.Context, program *ast.AlgoritimoNode) error {
	if ctx == nil {
		ctx = context.Background()
	}
	i.mu.Lock()
	if i.state.Active() {
		i.mu.Unlock()
		return ErrAlreadyRunning
	}
	if i.state.Terminal() {
		i.clearLocked()
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	i.cancel = cancel
	i.done = done
	i.runID++
	i.stopping = false
	i.stepping = false
	i.program = program
	transition := i.setStateLocked(State{Kind: Running})
	i.mu.Unlock()
	transition()

	i.logger.Debug("run started", "program", programName(program))
	go i.runWorker(runCtx, program, done)
	return nil
}

// Run executes program to completion and returns the terminal state.
func (i *Interpreter) Run(ctx context.Context, program *ast.AlgoritimoNode) State {
	if err := i.Start(ctx, program); err != nil {
		return State{Kind: CompletedExceptionally, Err: err}
	}
	return i.Wait()
}

// Wait blocks until the current run reaches a terminal state.
func (i *Interpreter) Wait() State {
	i.mu.Lock()
	done := i.done
	i.mu.Unlock()
	if done != nil {
		<-done
	}
	return i.State()
}

// Reset stops any active run and clears bindings, output and run flags.
// Breakpoints are kept.
func (i *Interpreter) Reset() {
	i.Stop()
	i.Wait()
	i.mu.Lock()
	i.clearLocked()
	i.done = nil
	transition := i.setStateLocked(State{Kind: NotStarted})
	i.mu.Unlock()
	transition()
	i.logger.Debug("interpreter reset", "breakpoints", len(i.Breakpoints()))
}

func (i *Interpreter) clearLocked() {
	i.output.Reset()
	i.lastSnapshot = ProgramState{}
	i.stepping = false
	i.resumed = false
	i.stopping = false
	i.resetRunState()
}

func (i *Interpreter) resetRunState() {
	i.program = nil
	i.global = runtime.NewEnvironment("", nil)
	i.frames = nil
	i.functions = make(map[string]*ast.FunctionDeclarationNode)
	i.procedures = make(map[string]*ast.ProcedureDeclarationNode)
	i.records = make(map[string]*ast.RecordDeclarationNode)
	i.random = randomMode{min: i.defaultRandomMin, max: i.defaultRandomMax}
	i.echo = i.defaultEcho
	i.timer = 0
	i.line = 0
}

// setStateLocked records a transition and returns a func that notifies
// listeners; call it after releasing the lock.
func (i *Interpreter) setStateLocked(state State) func() {
	i.state = state
	listeners := append([]StateListener(nil), i.stateListeners...)
	return func() {
		for _, l := range listeners {
			l(state)
		}
	}
}

// emit forwards an event to the I/O collaborator and keeps the text transcript.
func (i *Interpreter) emit(event runtime.OutputEvent) {
	if text, ok := event.(runtime.TextEvent); ok {
		i.mu.Lock()
		i.output.WriteString(text.Text)
		i.mu.Unlock()
	}
	if i.io != nil {
		i.io.Emit(event)
	}
}

func programName(program *ast.AlgoritimoNode) string {
	if program == nil {
		return ""
	}
	return program.Name
}

// buildSnapshot copies the visible bindings: the global scope plus every
// active call frame, keyed by scope name.
func (i *Interpreter) buildSnapshot(line int) ProgramState {
	stack := make(map[string]map[string]runtime.Value, len(i.frames)+1)
	stack[i.global.Name()] = i.global.Snapshot()
	for _, frame := range i.frames {
		stack[frame.Name()] = frame.Snapshot()
	}
	return ProgramState{CurrentLine: line, Stack: stack}
}
