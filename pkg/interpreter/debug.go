package interpreter

import (
	"context"
	"errors"
	"time"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

// errStopped unwinds the worker after Stop or context cancellation.
var errStopped = errors.New("interpreter: execution stopped")

// AddBreakpoint registers loc unless an equal breakpoint exists.
func (i *Interpreter) AddBreakpoint(loc ast.Location) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, bp := range i.breakpoints {
		if bp == loc {
			return
		}
	}
	i.breakpoints = append(i.breakpoints, loc)
}

// RemoveBreakpoint unregisters every breakpoint equal to loc.
func (i *Interpreter) RemoveBreakpoint(loc ast.Location) {
	i.mu.Lock()
	defer i.mu.Unlock()
	kept := i.breakpoints[:0]
	for _, bp := range i.breakpoints {
		if bp != loc {
			kept = append(kept, bp)
		}
	}
	i.breakpoints = kept
}

// SetBreakpoints replaces the whole breakpoint set.
func (i *Interpreter) SetBreakpoints(locs []ast.Location) {
	i.mu.Lock()
	i.breakpoints = append([]ast.Location(nil), locs...)
	i.mu.Unlock()
}

func (i *Interpreter) Breakpoints() []ast.Location {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]ast.Location(nil), i.breakpoints...)
}

// Continue resumes a paused run until the next breakpoint.
func (i *Interpreter) Continue() {
	i.resume(false)
}

// Step resumes a paused run and pauses again before the next command.
func (i *Interpreter) Step() {
	i.resume(true)
}

func (i *Interpreter) resume(step bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state.Kind != PausedDebug {
		return
	}
	i.stepping = step
	i.resumed = true
	i.cond.Broadcast()
}

// Stop forces the active run into ForcedStop at its next check point.
func (i *Interpreter) Stop() {
	i.mu.Lock()
	if !i.state.Active() {
		i.mu.Unlock()
		return
	}
	i.stopping = true
	if i.cancel != nil {
		i.cancel()
	}
	i.cond.Broadcast()
	i.mu.Unlock()
	i.logger.Debug("stop requested")
}

func (i *Interpreter) hitsBreakpointLocked(loc ast.Location) bool {
	if loc.IsZero() {
		return false
	}
	for _, bp := range i.breakpoints {
		if bp.Contains(loc) {
			return true
		}
	}
	return false
}

// checkpoint runs before every command: it honours stop requests, the
// cronometro delay, breakpoints and pending steps.
func (i *Interpreter) checkpoint(ctx context.Context, cmd ast.Command) error {
	if ctx.Err() != nil {
		return errStopped
	}
	loc := cmd.Location()
	if !loc.IsZero() {
		i.line = loc.StartLine
	}
	if i.timer > 0 {
		select {
		case <-ctx.Done():
			return errStopped
		case <-time.After(i.timer):
		}
	}
	i.mu.Lock()
	pause := i.stepping || i.hitsBreakpointLocked(loc)
	i.mu.Unlock()
	if !pause {
		return nil
	}
	return i.pause(ctx, i.line)
}

// currentFrame is the innermost running scope. Worker goroutine only.
func (i *Interpreter) currentFrame() *runtime.Environment {
	if len(i.frames) > 0 {
		return i.frames[len(i.frames)-1]
	}
	return i.global
}

// pause blocks the worker in PausedDebug until Continue, Step or Stop.
func (i *Interpreter) pause(ctx context.Context, line int) error {
	snapshot := i.buildSnapshot(line)

	i.mu.Lock()
	if i.stopping {
		i.mu.Unlock()
		return errStopped
	}
	i.stepping = false
	i.resumed = false
	i.lastSnapshot = snapshot
	listeners := append([]SnapshotListener(nil), i.snapshotListeners...)
	transition := i.setStateLocked(State{Kind: PausedDebug, Line: line})
	i.mu.Unlock()

	frame := i.currentFrame()
	i.logger.Debug("paused", "line", line, "scope", frame.Name(), "variables", frame.Keys())
	transition()
	for _, l := range listeners {
		l(snapshot)
	}

	i.mu.Lock()
	for !i.resumed && !i.stopping {
		i.cond.Wait()
	}
	if i.stopping || ctx.Err() != nil {
		i.mu.Unlock()
		return errStopped
	}
	transition = i.setStateLocked(State{Kind: Running})
	i.mu.Unlock()
	transition()
	return nil
}
