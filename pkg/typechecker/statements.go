package typechecker

import (
	"visualg/interpreter-go/pkg/ast"
)

func (c *Checker) checkCommands(scope ScopeID, cmds *ast.CommandsNode) []Diagnostic {
	if cmds == nil {
		return nil
	}
	var diags []Diagnostic
	for _, cmd := range cmds.Commands {
		diags = append(diags, c.checkCommand(scope, cmd)...)
	}
	return diags
}

func (c *Checker) checkCommand(scope ScopeID, cmd ast.Command) []Diagnostic {
	switch s := cmd.(type) {
	case nil:
		return nil
	case *ast.AssignmentCommand:
		return c.checkAssignment(scope, s)
	case *ast.ConditionalCommand:
		diags := c.requireBoolean(scope, s.Test, s, "se")
		diags = append(diags, c.checkCommands(scope, s.Then)...)
		diags = append(diags, c.checkCommands(scope, s.Else)...)
		return diags
	case *ast.WhileCommand:
		// Diagnostics follow source order: repita puts its test after the body.
		test := c.requireBoolean(scope, s.Test, s, "enquanto")
		body := c.checkCommands(scope, s.Body)
		if s.AtTheEnd {
			return append(body, test...)
		}
		return append(test, body...)
	case *ast.ForCommand:
		return c.checkFor(scope, s)
	case *ast.ChooseCommand:
		return c.checkChoose(scope, s)
	case *ast.ReadCommand:
		return c.checkRead(scope, s)
	case *ast.WriteCommand:
		return c.checkWrite(scope, s)
	case *ast.CallNode:
		diags, _ := c.checkCall(scope, s, false)
		return diags
	case *ast.ReturnCommand:
		return c.checkReturn(scope, s)
	case *ast.BreakCommand:
		if !c.inSubprogramScope(scope) {
			return []Diagnostic{diag(s, "'interrompa' is only allowed inside a function or procedure")}
		}
		return nil
	case *ast.DebugCommand:
		return c.requireBoolean(scope, s.Test, s, "debug")
	case *ast.RandomizeCommand:
		var diags []Diagnostic
		diags = append(diags, c.requireNumeric(scope, s.Min, s, "aleatorio")...)
		diags = append(diags, c.requireNumeric(scope, s.Max, s, "aleatorio")...)
		return diags
	case *ast.TimerCommand:
		if s.Interval == nil {
			return nil
		}
		diags, typ := c.checkExpression(scope, s.Interval)
		if !isUndeclared(typ) && !isPrimitive(typ, PrimitiveInteger) {
			diags = append(diags, diag(s, "cronometro interval must be inteiro (got %s)", typeName(typ)))
		}
		return diags
	case *ast.PauseCommand, *ast.EchoCommand, *ast.ClearScreenCommand, *ast.ColorCommand:
		return nil
	default:
		return []Diagnostic{diag(cmd, "unsupported command %s", cmd.NodeType())}
	}
}

func (c *Checker) inSubprogramScope(scope ScopeID) bool {
	s := c.scopes.Get(scope)
	return s != nil && s.HasParent()
}

func (c *Checker) requireBoolean(scope ScopeID, expr ast.Expression, owner ast.Node, keyword string) []Diagnostic {
	diags, typ := c.checkExpression(scope, expr)
	if expr == nil {
		return append(diags, diag(owner, "'%s' requires a logico test", keyword))
	}
	if !isUndeclared(typ) && !isPrimitive(typ, PrimitiveBoolean) {
		diags = append(diags, diag(expr, "'%s' test must be logico (got %s)", keyword, typeName(typ)))
	}
	return diags
}

func (c *Checker) requireNumeric(scope ScopeID, expr ast.Expression, owner ast.Node, keyword string) []Diagnostic {
	if expr == nil {
		return nil
	}
	diags, typ := c.checkExpression(scope, expr)
	if !isUndeclared(typ) && !isNumericType(typ) {
		diags = append(diags, diag(expr, "'%s' bound must be numeric (got %s)", keyword, typeName(typ)))
	}
	return diags
}

// checkTarget resolves an assignment or read target and reports non-variables.
func (c *Checker) checkTarget(scope ScopeID, target ast.Expression) ([]Diagnostic, Type) {
	if id, ok := target.(*ast.IdNode); ok {
		sym, ns, found := c.scopes.Resolve(scope, id.Name)
		if found && ns != NamespaceVariable {
			// A variable may share its name with a subprogram; prefer it as a target.
			if v, ok := c.scopes.Lookup(scope, NamespaceVariable, id.Name); ok {
				sym, ns = v, NamespaceVariable
			}
		}
		switch {
		case !found:
			return []Diagnostic{diag(id, "variable '%s' not declared", id.Name)}, Undeclared
		case ns == NamespaceVariable:
			typ := sym.(*Variable).Type
			c.infer.set(id, typ)
			return nil, typ
		case ns == NamespaceConstant:
			return []Diagnostic{diag(id, "cannot assign to constant '%s'", id.Name)}, Undeclared
		default:
			return []Diagnostic{diag(id, "%s '%s' is not a variable", ns, id.Name)}, Undeclared
		}
	}
	if !isAssignable(target) {
		if target == nil {
			return nil, Undeclared
		}
		return []Diagnostic{diag(target, "%s is not assignable", target.NodeType())}, Undeclared
	}
	return c.checkExpression(scope, target)
}

func (c *Checker) checkAssignment(scope ScopeID, cmd *ast.AssignmentCommand) []Diagnostic {
	diags, targetType := c.checkTarget(scope, cmd.Target)
	valueDiags, valueType := c.checkExpression(scope, cmd.Value)
	diags = append(diags, valueDiags...)
	if isUndeclared(targetType) || isUndeclared(valueType) {
		return diags
	}
	compatible := AreTypesCompatible(targetType, valueType)
	if _, element := cmd.Target.(*ast.ArrayAccessNode); element {
		compatible = TypesEqual(targetType, valueType)
	}
	if !compatible {
		diags = append(diags, diag(cmd, "cannot assign %s to %s", typeName(valueType), typeName(targetType)))
	}
	return diags
}

func (c *Checker) checkFor(scope ScopeID, cmd *ast.ForCommand) []Diagnostic {
	var diags []Diagnostic
	if cmd.Variable != nil {
		varDiags, varType := c.checkTarget(scope, cmd.Variable)
		diags = append(diags, varDiags...)
		if !isUndeclared(varType) && !isPrimitive(varType, PrimitiveInteger) {
			diags = append(diags, diag(cmd.Variable, "'para' variable must be inteiro (got %s)", typeName(varType)))
		}
	}

	startDiags, startType := c.checkExpression(scope, cmd.Start)
	diags = append(diags, startDiags...)
	if !isUndeclared(startType) && !isPrimitive(startType, PrimitiveInteger) {
		diags = append(diags, diag(cmd, "'para' start must be inteiro (got %s)", typeName(startType)))
	}

	endDiags, endType := c.checkExpression(scope, cmd.End)
	diags = append(diags, endDiags...)
	if !isUndeclared(endType) && !isPrimitive(endType, PrimitiveInteger) && !isPrimitive(endType, PrimitiveUndefined) {
		diags = append(diags, diag(cmd, "'para' end must be inteiro (got %s)", typeName(endType)))
	}

	if cmd.Step != nil {
		stepDiags, stepType := c.checkExpression(scope, cmd.Step)
		diags = append(diags, stepDiags...)
		if !isUndeclared(stepType) && !isPrimitive(stepType, PrimitiveInteger) {
			diags = append(diags, diag(cmd, "'para' step must be inteiro (got %s)", typeName(stepType)))
		}
	}

	diags = append(diags, c.checkCommands(scope, cmd.Body)...)
	return diags
}

func (c *Checker) checkChoose(scope ScopeID, cmd *ast.ChooseCommand) []Diagnostic {
	diags, valueType := c.checkExpression(scope, cmd.Value)
	if !isUndeclared(valueType) && !isScalarType(valueType) {
		diags = append(diags, diag(cmd, "'escolha' value must be a scalar (got %s)", typeName(valueType)))
	}
	for _, cs := range cmd.Cases {
		if cs == nil {
			continue
		}
		for _, v := range cs.Values {
			caseDiags, caseType := c.checkExpression(scope, v)
			diags = append(diags, caseDiags...)
			if isUndeclared(valueType) || isUndeclared(caseType) {
				continue
			}
			if !AreTypesCompatible(valueType, caseType) {
				diags = append(diags, diag(v, "'caso' value %s is not compatible with %s", typeName(caseType), typeName(valueType)))
			}
		}
		diags = append(diags, c.checkCommands(scope, cs.Body)...)
	}
	diags = append(diags, c.checkCommands(scope, cmd.Default)...)
	return diags
}

func (c *Checker) checkRead(scope ScopeID, cmd *ast.ReadCommand) []Diagnostic {
	var diags []Diagnostic
	for _, target := range cmd.Targets {
		targetDiags, typ := c.checkTarget(scope, target)
		diags = append(diags, targetDiags...)
		if !isUndeclared(typ) && !isScalarType(typ) {
			diags = append(diags, diag(target, "'leia' cannot read a value of type %s", typeName(typ)))
		}
	}
	return diags
}

func (c *Checker) checkWrite(scope ScopeID, cmd *ast.WriteCommand) []Diagnostic {
	var diags []Diagnostic
	for _, item := range cmd.Items {
		if item == nil {
			continue
		}
		itemDiags, typ := c.checkExpression(scope, item.Value)
		diags = append(diags, itemDiags...)
		if !isUndeclared(typ) && !isScalarType(typ) {
			diags = append(diags, diag(item, "'escreva' cannot write a value of type %s", typeName(typ)))
		}
		for _, format := range []ast.Expression{item.Width, item.Precision} {
			if format == nil {
				continue
			}
			fmtDiags, fmtType := c.checkExpression(scope, format)
			diags = append(diags, fmtDiags...)
			if !isUndeclared(fmtType) && !isPrimitive(fmtType, PrimitiveInteger) {
				diags = append(diags, diag(format, "'escreva' format must be inteiro (got %s)", typeName(fmtType)))
			}
		}
	}
	return diags
}

func (c *Checker) checkReturn(scope ScopeID, cmd *ast.ReturnCommand) []Diagnostic {
	if !c.inSubprogramScope(scope) {
		diags, _ := c.checkExpression(scope, cmd.Value)
		return append(diags, diag(cmd, "'retorne' is only allowed inside a function or procedure"))
	}
	sub, _ := c.currentSubprogram()
	if cmd.Value == nil {
		if sub.procedure {
			return nil
		}
		return []Diagnostic{diag(cmd, "function '%s' must return a value", sub.name)}
	}
	diags, typ := c.checkExpression(scope, cmd.Value)
	if sub.procedure {
		return append(diags, diag(cmd, "procedure '%s' cannot return a value", sub.name))
	}
	if isUndeclared(typ) || isUndeclared(sub.returnType) {
		return diags
	}
	if !AreTypesCompatible(sub.returnType, typ) {
		diags = append(diags, diag(cmd, "function '%s' returns %s, got %s", sub.name, typeName(sub.returnType), typeName(typ)))
	}
	return diags
}
