package interpreter

import (
	"context"
	"errors"
	"fmt"

	"visualg/interpreter-go/pkg/ast"
)

// runWorker executes one run and publishes its terminal state.
func (i *Interpreter) runWorker(ctx context.Context, program *ast.AlgoritimoNode, done chan struct{}) {
	defer close(done)
	i.mu.Lock()
	run := i.runID
	i.mu.Unlock()
	// Cancellation of the caller's context must wake a paused worker too.
	stopWake := context.AfterFunc(ctx, func() {
		i.mu.Lock()
		if i.runID == run {
			i.stopping = true
			i.cond.Broadcast()
		}
		i.mu.Unlock()
	})
	defer stopWake()

	err := i.safeInvoke(ctx, func(ctx context.Context) error {
		return i.execute(ctx, program)
	})

	snapshot := i.buildSnapshot(i.line)
	i.mu.Lock()
	stopped := i.stopping
	var final State
	switch {
	case stopped || errors.Is(err, errStopped) || errors.Is(err, context.Canceled):
		// Failures caused by the interruption itself are not reported.
		final = State{Kind: ForcedStop}
	case err != nil:
		final = State{Kind: CompletedExceptionally, Err: err}
	default:
		final = State{Kind: CompletedSuccessfully}
	}
	i.lastSnapshot = snapshot
	if i.cancel != nil {
		i.cancel()
	}
	transition := i.setStateLocked(final)
	i.mu.Unlock()

	if final.Kind == CompletedExceptionally {
		i.logger.Warn("run failed", "program", programName(program), "error", err)
	} else {
		i.logger.Debug("run finished", "program", programName(program), "state", final.Kind)
	}
	transition()
}

// safeInvoke converts a panic inside the evaluator into an error.
func (i *Interpreter) safeInvoke(ctx context.Context, task func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}
