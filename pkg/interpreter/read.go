package interpreter

import (
	"context"
	"math"
	"strings"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

// runRead fills each target with a value of the kind the target already
// holds, asking the I/O collaborator or generating one under aleatorio.
func (i *Interpreter) runRead(ctx context.Context, cmd *ast.ReadCommand, env *runtime.Environment) error {
	for _, target := range cmd.Targets {
		current, err := i.evaluateExpression(ctx, target, env)
		if err != nil {
			return err
		}
		kind := current.Kind()
		if kind == runtime.KindArray || kind == runtime.KindRecord {
			return runtime.NewTypeException(runtime.InvalidAssignment, "cannot read into '%s' of type %s", describeTarget(target), kind)
		}
		var val runtime.Value
		if i.random.enabled {
			val = i.randomValue(kind)
			i.emit(runtime.TextEvent{Text: echoText(val)})
		} else {
			if val, err = i.requestInput(ctx, describeTarget(target), kind); err != nil {
				return err
			}
			if i.echo {
				i.emit(runtime.TextEvent{Text: echoText(val)})
			}
		}
		if err := i.assignTo(ctx, target, val, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) requestInput(ctx context.Context, name string, kind runtime.Kind) (runtime.Value, error) {
	missing := runtime.NewTypeException(runtime.MissingInput, "no input available for '%s'", name)
	if i.io == nil {
		return nil, missing
	}
	ch := i.io.RequestInput(ctx, runtime.InputRequest{VariableName: name, ExpectedType: kind})
	if ch == nil {
		return nil, missing
	}
	select {
	case <-ctx.Done():
		return nil, errStopped
	case in, ok := <-ch:
		if !ok || in == nil || in.Value == nil {
			return nil, missing
		}
		return in.Value, nil
	}
}

func (i *Interpreter) randomValue(kind runtime.Kind) runtime.Value {
	lo, hi := i.random.min, i.random.max
	switch kind {
	case runtime.KindInteger:
		a, b := int64(math.Ceil(lo)), int64(math.Floor(hi))
		if b < a {
			return runtime.IntegerValue{Val: a}
		}
		return runtime.IntegerValue{Val: a + i.rng.Int64N(b-a+1)}
	case runtime.KindReal:
		f := lo + i.rng.Float64()*(hi-lo)
		return runtime.RealValue{Val: math.Round(f*100) / 100}
	case runtime.KindBool:
		return runtime.BoolValue{Val: i.rng.IntN(2) == 1}
	default:
		var sb strings.Builder
		for n := 0; n < 5; n++ {
			sb.WriteRune(rune('A' + i.rng.IntN(26)))
		}
		return runtime.StringValue{Val: sb.String()}
	}
}

func echoText(val runtime.Value) string {
	if s, ok := val.(runtime.StringValue); ok {
		return s.Val + "\n"
	}
	text, err := FormatValue(val, 0, 0)
	if err != nil {
		return "\n"
	}
	return strings.TrimPrefix(text, " ") + "\n"
}
