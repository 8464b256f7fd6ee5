package interpreter

import (
	"context"
	"strings"

	"visualg/interpreter-go/pkg/ast"
	"visualg/interpreter-go/pkg/runtime"
)

const maxCallDepth = 4096

// call invokes a user function or procedure, falling back to builtins.
func (i *Interpreter) call(ctx context.Context, node *ast.CallNode, env *runtime.Environment, asExpression bool) (runtime.Value, error) {
	key := strings.ToLower(node.Name)
	if fn, ok := i.functions[key]; ok {
		val, err := i.invoke(ctx, subprogram{
			name:       fn.Name,
			params:     fn.Parameters,
			decls:      fn.Declarations,
			body:       fn.Commands,
			returnType: fn.ReturnType,
		}, node, env)
		if err == nil && val == nil && asExpression {
			return nil, runtime.NewTypeException(runtime.FunctionNotFound, "function '%s' has no return type", node.Name)
		}
		return val, err
	}
	if proc, ok := i.procedures[key]; ok {
		if asExpression {
			return nil, runtime.NewTypeException(runtime.FunctionNotFound, "procedure '%s' does not return a value", node.Name)
		}
		return i.invoke(ctx, subprogram{
			name:   proc.Name,
			params: proc.Parameters,
			decls:  proc.Declarations,
			body:   proc.Commands,
		}, node, env)
	}
	if b, ok := lookupBuiltin(key); ok {
		if len(node.Arguments) != b.arity {
			return nil, runtime.NewTypeException(runtime.WrongNumberOfArguments, "function '%s' expects %d arguments, got %d", node.Name, b.arity, len(node.Arguments))
		}
		args := make([]runtime.Value, len(node.Arguments))
		for n, arg := range node.Arguments {
			val, err := i.evaluateExpression(ctx, arg, env)
			if err != nil {
				return nil, err
			}
			args[n] = val
		}
		return b.fn(i, args)
	}
	if asExpression {
		return nil, runtime.NewTypeException(runtime.FunctionNotFound, "function '%s' not found", node.Name)
	}
	return nil, runtime.NewTypeException(runtime.ProcedureNotFound, "procedure '%s' not found", node.Name)
}

type subprogram struct {
	name       string
	params     []*ast.ParameterNode
	decls      *ast.DeclarationsNode
	body       *ast.CommandsNode
	returnType ast.TypeExpression
}

// invoke runs a subprogram in a fresh frame under the globals. Parameters
// passed by reference are copied back into the caller's targets on return.
func (i *Interpreter) invoke(ctx context.Context, sub subprogram, node *ast.CallNode, env *runtime.Environment) (runtime.Value, error) {
	if len(node.Arguments) != len(sub.params) {
		return nil, runtime.NewTypeException(runtime.WrongNumberOfArguments, "'%s' expects %d arguments, got %d", sub.name, len(sub.params), len(node.Arguments))
	}
	if len(i.frames) >= maxCallDepth {
		return nil, runtime.NewTypeException(runtime.StackOverflow, "stack overflow: more than %d nested calls of '%s'", maxCallDepth, sub.name)
	}

	frame := i.global.Extend(sub.name)
	for n, param := range sub.params {
		if param == nil || param.Name == nil {
			continue
		}
		if param.ByReference && !isTarget(node.Arguments[n]) {
			return nil, runtime.NewTypeException(runtime.InvalidAssignment, "argument %d of '%s' must be a variable", n+1, sub.name)
		}
		arg, err := i.evaluateExpression(ctx, node.Arguments[n], env)
		if err != nil {
			return nil, err
		}
		zero, err := i.zeroValue(ctx, frame, param.Type)
		if err != nil {
			return nil, err
		}
		val, err := coerce(param.Name.Name, zero, runtime.Copy(arg))
		if err != nil {
			return nil, err
		}
		frame.Define(param.Name.Name, val)
	}
	if err := i.declareAll(ctx, frame, sub.decls); err != nil {
		return nil, err
	}

	i.frames = append(i.frames, frame)
	err := i.runCommands(ctx, sub.body, frame)
	i.frames = i.frames[:len(i.frames)-1]

	var result runtime.Value
	switch sig := err.(type) {
	case nil:
	case returnSignal:
		result = sig.value
	case breakSignal:
		// interrompa outside a loop leaves the subprogram.
	default:
		return nil, err
	}

	for n, param := range sub.params {
		if param == nil || param.Name == nil || !param.ByReference {
			continue
		}
		val, err := frame.Get(param.Name.Name)
		if err != nil {
			return nil, err
		}
		if err := i.assignTo(ctx, node.Arguments[n], runtime.Copy(val), env); err != nil {
			return nil, err
		}
	}

	if sub.returnType == nil {
		return nil, nil
	}
	zero, err := i.zeroValue(ctx, frame, sub.returnType)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return zero, nil
	}
	return coerce(sub.name, zero, result)
}

func isTarget(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IdNode, *ast.ArrayAccessNode, *ast.MemberAccessNode:
		return true
	}
	return false
}
