package interpreter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

// Control-flow signals travel up the Go call stack as errors.
type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return outside subprogram" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break outside loop" }

// execute declares the globals and runs the main command block.
func (i *Interpreter) execute(ctx context.Context, program *ast.AlgoritimoNode) error {
	if program == nil {
		return ErrNoProgram
	}
	i.program = program
	i.global = runtime.NewEnvironment(program.Name, nil)
	if err := i.declareAll(ctx, i.global, program.Declarations); err != nil {
		return err
	}
	err := i.runCommands(ctx, program.Commands, i.global)
	switch err.(type) {
	case breakSignal, returnSignal:
		// interrompa or retorne in the main block ends the program.
		return nil
	}
	return err
}

func (i *Interpreter) runCommands(ctx context.Context, cmds *ast.CommandsNode, env *runtime.Environment) error {
	if cmds == nil {
		return nil
	}
	for _, cmd := range cmds.Commands {
		if cmd == nil {
			continue
		}
		if err := i.checkpoint(ctx, cmd); err != nil {
			return err
		}
		if err := i.runCommand(ctx, cmd, env); err != nil {
			return locate(err, cmd)
		}
	}
	return nil
}

// locate stamps runtime failures with the command that raised them.
func locate(err error, node ast.Node) error {
	if te, ok := err.(*runtime.TypeException); ok {
		return te.At(node.Location())
	}
	return err
}

func (i *Interpreter) runCommand(ctx context.Context, cmd ast.Command, env *runtime.Environment) error {
	switch c := cmd.(type) {
	case *ast.AssignmentCommand:
		return i.runAssignment(ctx, c, env)
	case *ast.ConditionalCommand:
		test, err := i.evaluateCondition(ctx, c.Test, env)
		if err != nil {
			return err
		}
		if test {
			return i.runCommands(ctx, c.Then, env)
		}
		return i.runCommands(ctx, c.Else, env)
	case *ast.WhileCommand:
		return i.runWhile(ctx, c, env)
	case *ast.ForCommand:
		return i.runFor(ctx, c, env)
	case *ast.ChooseCommand:
		return i.runChoose(ctx, c, env)
	case *ast.ReadCommand:
		return i.runRead(ctx, c, env)
	case *ast.WriteCommand:
		return i.runWrite(ctx, c, env)
	case *ast.CallNode:
		_, err := i.call(ctx, c, env, false)
		return err
	case *ast.ReturnCommand:
		var value runtime.Value
		if c.Value != nil {
			v, err := i.evaluateExpression(ctx, c.Value, env)
			if err != nil {
				return err
			}
			value = runtime.Copy(v)
		}
		return returnSignal{value: value}
	case *ast.BreakCommand:
		return breakSignal{}
	case *ast.DebugCommand:
		test, err := i.evaluateCondition(ctx, c.Test, env)
		if err != nil || !test {
			return err
		}
		return i.pause(ctx, i.line)
	case *ast.PauseCommand:
		return i.pause(ctx, i.line)
	case *ast.RandomizeCommand:
		return i.runRandomize(ctx, c, env)
	case *ast.TimerCommand:
		return i.runTimer(ctx, c, env)
	case *ast.EchoCommand:
		i.echo = c.Enabled
		return nil
	case *ast.ClearScreenCommand:
		i.emit(runtime.ClearEvent{})
		return nil
	case *ast.ColorCommand:
		target := runtime.Foreground
		if c.Background {
			target = runtime.Background
		}
		i.emit(runtime.ChangeColorEvent{Color: strings.ToLower(c.Color), Target: target})
		return nil
	default:
		return &runtime.UnsupportedOperationError{Node: cmd.NodeType(), Location: cmd.Location()}
	}
}

func (i *Interpreter) evaluateCondition(ctx context.Context, expr ast.Expression, env *runtime.Environment) (bool, error) {
	val, err := i.evaluateExpression(ctx, expr, env)
	if err != nil {
		return false, err
	}
	b, ok := val.(runtime.BoolValue)
	if !ok {
		return false, runtime.NewTypeException(runtime.InvalidOperand, "condition must be logico, got %s", kindOf(val))
	}
	return b.Val, nil
}

func (i *Interpreter) runAssignment(ctx context.Context, cmd *ast.AssignmentCommand, env *runtime.Environment) error {
	val, err := i.evaluateExpression(ctx, cmd.Value, env)
	if err != nil {
		return err
	}
	return i.assignTo(ctx, cmd.Target, runtime.Copy(val), env)
}

func (i *Interpreter) runWhile(ctx context.Context, loop *ast.WhileCommand, env *runtime.Environment) error {
	for {
		if ctx.Err() != nil {
			return errStopped
		}
		if !loop.AtTheEnd {
			test, err := i.evaluateCondition(ctx, loop.Test, env)
			if err != nil || !test {
				return err
			}
		}
		if err := i.runCommands(ctx, loop.Body, env); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			return err
		}
		if loop.AtTheEnd {
			test, err := i.evaluateCondition(ctx, loop.Test, env)
			if err != nil || !test {
				return err
			}
		}
	}
}

// runFor evaluates start, end and step once, then repeats while the counter
// is <= end, adding step to the counter after each iteration. An absent end
// repeats until interrompa or stop.
func (i *Interpreter) runFor(ctx context.Context, loop *ast.ForCommand, env *runtime.Environment) error {
	start, err := i.evaluateInteger(ctx, loop.Start, env, "para start")
	if err != nil {
		return err
	}
	var (
		end    int64
		hasEnd = loop.End != nil
		step   int64 = 1
	)
	if hasEnd {
		if end, err = i.evaluateInteger(ctx, loop.End, env, "para end"); err != nil {
			return err
		}
	}
	if loop.Step != nil {
		if step, err = i.evaluateInteger(ctx, loop.Step, env, "para step"); err != nil {
			return err
		}
	}
	if err := i.assignTo(ctx, loop.Variable, runtime.IntegerValue{Val: start}, env); err != nil {
		return err
	}
	for {
		if ctx.Err() != nil {
			return errStopped
		}
		current, err := i.evaluateInteger(ctx, loop.Variable, env, "para variable")
		if err != nil {
			return err
		}
		if hasEnd && current > end {
			return nil
		}
		if err := i.runCommands(ctx, loop.Body, env); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			return err
		}
		current, err = i.evaluateInteger(ctx, loop.Variable, env, "para variable")
		if err != nil {
			return err
		}
		if err := i.assignTo(ctx, loop.Variable, runtime.IntegerValue{Val: current + step}, env); err != nil {
			return err
		}
	}
}

func (i *Interpreter) evaluateInteger(ctx context.Context, expr ast.Expression, env *runtime.Environment, what string) (int64, error) {
	val, err := i.evaluateExpression(ctx, expr, env)
	if err != nil {
		return 0, err
	}
	n, ok := val.(runtime.IntegerValue)
	if !ok {
		return 0, runtime.NewTypeException(runtime.InvalidOperand, "%s must be inteiro, got %s", what, kindOf(val))
	}
	return n.Val, nil
}

func (i *Interpreter) runChoose(ctx context.Context, cmd *ast.ChooseCommand, env *runtime.Environment) error {
	subject, err := i.evaluateExpression(ctx, cmd.Value, env)
	if err != nil {
		return err
	}
	for _, cs := range cmd.Cases {
		if cs == nil {
			continue
		}
		for _, candidate := range cs.Values {
			matched, err := i.caseMatches(ctx, subject, candidate, env)
			if err != nil {
				return err
			}
			if matched {
				return i.runCommands(ctx, cs.Body, env)
			}
		}
	}
	return i.runCommands(ctx, cmd.Default, env)
}

func (i *Interpreter) caseMatches(ctx context.Context, subject runtime.Value, candidate ast.Expression, env *runtime.Environment) (bool, error) {
	if rng, ok := candidate.(*ast.RangeNode); ok {
		lo, err := i.evaluateExpression(ctx, rng.Start, env)
		if err != nil {
			return false, err
		}
		hi, err := i.evaluateExpression(ctx, rng.End, env)
		if err != nil {
			return false, err
		}
		above, err := compareValues(ast.OpGe, subject, lo)
		if err != nil || !above {
			return false, err
		}
		return compareValues(ast.OpLe, subject, hi)
	}
	val, err := i.evaluateExpression(ctx, candidate, env)
	if err != nil {
		return false, err
	}
	return compareValues(ast.OpEq, subject, val)
}

func (i *Interpreter) runWrite(ctx context.Context, cmd *ast.WriteCommand, env *runtime.Environment) error {
	var sb strings.Builder
	for _, item := range cmd.Items {
		if item == nil {
			continue
		}
		val, err := i.evaluateExpression(ctx, item.Value, env)
		if err != nil {
			return err
		}
		width, precision := 0, 0
		if item.Width != nil {
			w, err := i.evaluateInteger(ctx, item.Width, env, "escreva width")
			if err != nil {
				return err
			}
			width = int(w)
		}
		if item.Precision != nil {
			p, err := i.evaluateInteger(ctx, item.Precision, env, "escreva precision")
			if err != nil {
				return err
			}
			precision = int(p)
		}
		text, err := FormatValue(val, width, precision)
		if err != nil {
			return err
		}
		sb.WriteString(text)
	}
	if cmd.NewLine {
		sb.WriteString("\n")
	}
	i.emit(runtime.TextEvent{Text: sb.String()})
	return nil
}

func (i *Interpreter) runRandomize(ctx context.Context, cmd *ast.RandomizeCommand, env *runtime.Environment) error {
	i.random.enabled = cmd.Enabled
	if !cmd.Enabled {
		return nil
	}
	bounds := []struct {
		expr ast.Expression
		dst  *float64
	}{{cmd.Min, &i.random.min}, {cmd.Max, &i.random.max}}
	for _, b := range bounds {
		if b.expr == nil {
			continue
		}
		val, err := i.evaluateExpression(ctx, b.expr, env)
		if err != nil {
			return err
		}
		f, ok := toFloat(val)
		if !ok {
			return runtime.NewTypeException(runtime.InvalidOperand, "aleatorio bound must be numeric, got %s", kindOf(val))
		}
		*b.dst = f
	}
	if i.random.min > i.random.max {
		i.random.min, i.random.max = i.random.max, i.random.min
	}
	return nil
}

func (i *Interpreter) runTimer(ctx context.Context, cmd *ast.TimerCommand, env *runtime.Environment) error {
	if !cmd.Enabled {
		i.timer = 0
		return nil
	}
	ms := int64(1000)
	if cmd.Interval != nil {
		n, err := i.evaluateInteger(ctx, cmd.Interval, env, "cronometro interval")
		if err != nil {
			return err
		}
		ms = n
	}
	if ms < 0 {
		return runtime.NewTypeException(runtime.InvalidOperand, "cronometro interval must not be negative, got %d", ms)
	}
	i.timer = time.Duration(ms) * time.Millisecond
	return nil
}

func kindOf(v runtime.Value) string {
	return runtime.KindName(v)
}

func describeTarget(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IdNode:
		return e.Name
	case *ast.ArrayAccessNode:
		return describeTarget(e.Base) + "[...]"
	case *ast.MemberAccessNode:
		if e.Member == nil {
			return describeTarget(e.Base)
		}
		return describeTarget(e.Base) + "." + e.Member.Name
	case nil:
		return ""
	default:
		return fmt.Sprintf("<%s>", expr.NodeType())
	}
}
