package typechecker

import (
	"visualg/interpreter-go/pkg/ast"
)

func (c *Checker) checkExpression(scope ScopeID, expr ast.Expression) ([]Diagnostic, Type) {
	switch e := expr.(type) {
	case nil:
		return nil, Undefined
	case *ast.IntLiteral:
		c.infer.set(e, Integer)
		return nil, Integer
	case *ast.RealLiteral:
		c.infer.set(e, Real)
		return nil, Real
	case *ast.StringLiteral:
		c.infer.set(e, Text)
		return nil, Text
	case *ast.BoolLiteral:
		c.infer.set(e, Boolean)
		return nil, Boolean
	case *ast.IdNode:
		return c.checkIdentifier(scope, e)
	case *ast.ArrayAccessNode:
		return c.checkArrayAccess(scope, e)
	case *ast.MemberAccessNode:
		return c.checkMemberAccess(scope, e)
	case *ast.UnaryNode:
		return c.checkUnary(scope, e)
	case *ast.BinaryNode:
		return c.checkBinary(scope, e)
	case *ast.RangeNode:
		return c.checkRange(scope, e)
	case *ast.CallNode:
		return c.checkCall(scope, e, true)
	default:
		return []Diagnostic{diag(expr, "unsupported expression %s", expr.NodeType())}, Undeclared
	}
}

func (c *Checker) checkIdentifier(scope ScopeID, id *ast.IdNode) ([]Diagnostic, Type) {
	sym, ns, ok := c.scopes.Resolve(scope, id.Name)
	if !ok {
		if b, found := LookupBuiltin(id.Name); found && len(b.Params) == 0 {
			c.infer.set(id, b.Return)
			return nil, b.Return
		}
		return []Diagnostic{diag(id, "variable '%s' not declared", id.Name)}, Undeclared
	}
	var (
		diags []Diagnostic
		typ   Type = Undeclared
	)
	switch ns {
	case NamespaceFunction:
		fn := sym.(*Function)
		if len(fn.Parameters) != 0 {
			diags = append(diags, diag(id, "function '%s' expects %d arguments, got 0", fn.Name, len(fn.Parameters)))
		}
		typ = fn.ReturnType
	case NamespaceProcedure:
		diags = append(diags, diag(id, "procedure '%s' does not return a value", id.Name))
	case NamespaceVariable:
		typ = sym.(*Variable).Type
	case NamespaceConstant:
		typ = sym.(*Constant).Type
	case NamespaceType:
		diags = append(diags, diag(id, "type '%s' used as a value", id.Name))
	}
	c.infer.set(id, typ)
	return diags, typ
}

func (c *Checker) checkArrayAccess(scope ScopeID, expr *ast.ArrayAccessNode) ([]Diagnostic, Type) {
	diags, baseType := c.checkExpression(scope, expr.Base)
	for _, index := range expr.Indexes {
		indexDiags, indexType := c.checkExpression(scope, index)
		diags = append(diags, indexDiags...)
		if !isUndeclared(indexType) && !isPrimitive(indexType, PrimitiveInteger) {
			diags = append(diags, diag(index, "vetor index must be inteiro (got %s)", typeName(indexType)))
		}
	}
	if isUndeclared(baseType) {
		return diags, Undeclared
	}
	typ := baseType
	for range expr.Indexes {
		arr, ok := typ.(ArrayType)
		if !ok {
			diags = append(diags, diag(expr, "cannot index a value of type %s", typeName(typ)))
			return diags, Undeclared
		}
		typ = arr.Element
	}
	c.infer.set(expr, typ)
	return diags, typ
}

func (c *Checker) checkMemberAccess(scope ScopeID, expr *ast.MemberAccessNode) ([]Diagnostic, Type) {
	diags, baseType := c.checkExpression(scope, expr.Base)
	if isUndeclared(baseType) || expr.Member == nil {
		return diags, Undeclared
	}
	rec, ok := baseType.(*RecordType)
	if !ok {
		diags = append(diags, diag(expr, "%s is not a registro", typeName(baseType)))
		return diags, Undeclared
	}
	field, ok := rec.Field(expr.Member.Name)
	if !ok {
		diags = append(diags, diag(expr.Member, "member '%s' not declared in type '%s'", expr.Member.Name, rec.RecordName))
		return diags, Undeclared
	}
	c.infer.set(expr, field.Type)
	return diags, field.Type
}

func (c *Checker) checkUnary(scope ScopeID, expr *ast.UnaryNode) ([]Diagnostic, Type) {
	diags, operand := c.checkExpression(scope, expr.Operand)
	result := Type(Undeclared)
	switch expr.Operator {
	case ast.OpSub, ast.OpAdd:
		if isUndeclared(operand) {
			break
		}
		if !isNumericType(operand) {
			diags = append(diags, diag(expr, "unary '%s' requires numeric operand (got %s)", expr.Operator, typeName(operand)))
			break
		}
		result = operand
	case ast.OpNot:
		if !isUndeclared(operand) && !isPrimitive(operand, PrimitiveBoolean) {
			diags = append(diags, diag(expr, "'nao' requires logico operand (got %s)", typeName(operand)))
		}
		result = Boolean
	default:
		diags = append(diags, diag(expr, "unsupported unary operator %q", expr.Operator))
	}
	c.infer.set(expr, result)
	return diags, result
}

func (c *Checker) checkBinary(scope ScopeID, expr *ast.BinaryNode) ([]Diagnostic, Type) {
	leftDiags, left := c.checkExpression(scope, expr.Left)
	rightDiags, right := c.checkExpression(scope, expr.Right)
	var diags []Diagnostic
	diags = append(diags, leftDiags...)
	diags = append(diags, rightDiags...)

	unknown := isUndeclared(left) || isUndeclared(right)
	result := Type(Undeclared)
	switch {
	case expr.Operator.IsArithmetic():
		result = ArithmeticResult(expr.Operator, left, right)
		if result == nil {
			result = Undeclared
			if !unknown {
				if expr.Operator == ast.OpAdd {
					diags = append(diags, diag(expr, "'+' requires numeric or caractere operands (got %s and %s)", typeName(left), typeName(right)))
				} else {
					diags = append(diags, diag(expr, "'%s' requires numeric operands (got %s and %s)", expr.Operator, typeName(left), typeName(right)))
				}
			}
		}
	case expr.Operator.IsLogical():
		if !unknown && (!isPrimitive(left, PrimitiveBoolean) || !isPrimitive(right, PrimitiveBoolean)) {
			diags = append(diags, diag(expr, "'%s' requires logico operands (got %s and %s)", expr.Operator, typeName(left), typeName(right)))
		}
		result = Boolean
	case expr.Operator.IsRelational():
		switch {
		case unknown:
		case !AreTypesCompatible(left, right):
			diags = append(diags, diag(expr, "'%s' operands are not compatible (got %s and %s)", expr.Operator, typeName(left), typeName(right)))
		case !isEquality(expr.Operator) && !isScalarType(left):
			diags = append(diags, diag(expr, "'%s' cannot order %s values", expr.Operator, typeName(left)))
		}
		result = Boolean
	default:
		diags = append(diags, diag(expr, "unsupported binary operator %q", expr.Operator))
	}
	c.infer.set(expr, result)
	return diags, result
}

func isEquality(op ast.Operator) bool {
	return op == ast.OpEq || op == ast.OpNe
}

// ArithmeticResult applies the promotion table and returns nil for an invalid pairing.
func ArithmeticResult(op ast.Operator, left, right Type) Type {
	if op == ast.OpAdd && isPrimitive(left, PrimitiveText) && isPrimitive(right, PrimitiveText) {
		return Text
	}
	if !isNumericType(left) || !isNumericType(right) {
		return nil
	}
	if isPrimitive(left, PrimitiveReal) || isPrimitive(right, PrimitiveReal) {
		return Real
	}
	return Integer
}

func (c *Checker) checkRange(scope ScopeID, expr *ast.RangeNode) ([]Diagnostic, Type) {
	diags, start := c.checkExpression(scope, expr.Start)
	endDiags, end := c.checkExpression(scope, expr.End)
	diags = append(diags, endDiags...)
	if !isUndeclared(start) && !isUndeclared(end) && !AreTypesCompatible(start, end) {
		diags = append(diags, diag(expr, "range bounds are not compatible (got %s and %s)", typeName(start), typeName(end)))
	}
	c.infer.set(expr, start)
	return diags, start
}

// checkCall resolves a call against user subprograms first, then builtins.
// Arguments are checked even when the callee is unknown.
func (c *Checker) checkCall(scope ScopeID, call *ast.CallNode, asExpression bool) ([]Diagnostic, Type) {
	var diags []Diagnostic
	argTypes := make([]Type, len(call.Arguments))
	for i, arg := range call.Arguments {
		argDiags, argType := c.checkExpression(scope, arg)
		diags = append(diags, argDiags...)
		argTypes[i] = argType
	}

	var (
		params []*Variable
		result Type = Undeclared
		kind   string
	)
	if sym, ok := c.scopes.Lookup(scope, NamespaceFunction, call.Name); ok {
		fn := sym.(*Function)
		params, result, kind = fn.Parameters, fn.ReturnType, "function"
	} else if sym, ok := c.scopes.Lookup(scope, NamespaceProcedure, call.Name); ok {
		proc := sym.(*Procedure)
		params, kind = proc.Parameters, "procedure"
		if asExpression {
			diags = append(diags, diag(call, "procedure '%s' does not return a value", call.Name))
		}
	} else if b, ok := LookupBuiltin(call.Name); ok {
		diags = append(diags, c.checkArguments(call, "function", b.Name, b.Params, argTypes)...)
		c.infer.set(call, b.Return)
		return diags, b.Return
	} else {
		if hint, ok := suggestBuiltin(call.Name); ok {
			diags = append(diags, diag(call, "function or procedure '%s' not declared (did you mean '%s'?)", call.Name, hint))
		} else {
			diags = append(diags, diag(call, "function or procedure '%s' not declared", call.Name))
		}
		return diags, Undeclared
	}

	types := make([]Type, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	diags = append(diags, c.checkArguments(call, kind, call.Name, types, argTypes)...)
	for i, p := range params {
		if i >= len(call.Arguments) || !p.ByReference {
			continue
		}
		if !isAssignable(call.Arguments[i]) {
			diags = append(diags, diag(call.Arguments[i], "argument %d of '%s' is passed by reference and must be a variable", i+1, call.Name))
		}
	}
	c.infer.set(call, result)
	return diags, result
}

func (c *Checker) checkArguments(call *ast.CallNode, kind, name string, params, args []Type) []Diagnostic {
	if len(params) != len(args) {
		return []Diagnostic{diag(call, "%s '%s' expects %d arguments, got %d", kind, name, len(params), len(args))}
	}
	var diags []Diagnostic
	for i := range params {
		if isUndeclared(params[i]) || isUndeclared(args[i]) {
			continue
		}
		if !AreTypesCompatible(params[i], args[i]) {
			diags = append(diags, diag(call.Arguments[i], "argument %d of '%s' expects %s (got %s)", i+1, name, typeName(params[i]), typeName(args[i])))
		}
	}
	return diags
}

func isAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IdNode, *ast.ArrayAccessNode, *ast.MemberAccessNode:
		return true
	}
	return false
}
