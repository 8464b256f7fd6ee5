package typechecker

import (
	"errors"

	"visualg/interpreter-go/pkg/ast"
)

func (c *Checker) checkDeclarations(scope ScopeID, decls *ast.DeclarationsNode) []Diagnostic {
	if decls == nil {
		return nil
	}
	var diags []Diagnostic
	for _, decl := range decls.Items {
		diags = append(diags, c.checkDeclaration(scope, decl)...)
	}
	return diags
}

func (c *Checker) checkDeclaration(scope ScopeID, decl ast.Declaration) []Diagnostic {
	switch d := decl.(type) {
	case nil:
		return nil
	case *ast.VariableDeclarationNode:
		return c.checkVariableDeclaration(scope, d)
	case *ast.ConstantDeclarationNode:
		return c.checkConstantDeclaration(scope, d)
	case *ast.RecordDeclarationNode:
		return c.checkRecordDeclaration(scope, d)
	case *ast.FunctionDeclarationNode:
		return c.checkFunctionDeclaration(scope, d)
	case *ast.ProcedureDeclarationNode:
		return c.checkProcedureDeclaration(scope, d)
	default:
		return []Diagnostic{diag(decl, "unsupported declaration %s", decl.NodeType())}
	}
}

func (c *Checker) declare(scope ScopeID, ns Namespace, name string, sym Symbol, node ast.Node) []Diagnostic {
	if err := c.scopes.Declare(scope, ns, name, sym); err != nil {
		if errors.Is(err, ErrAlreadyDeclared) {
			return []Diagnostic{diag(node, "%s '%s' already declared", ns, name)}
		}
		return []Diagnostic{diag(node, "%v", err)}
	}
	return nil
}

func (c *Checker) checkVariableDeclaration(scope ScopeID, decl *ast.VariableDeclarationNode) []Diagnostic {
	diags, typ := c.resolveTypeExpression(scope, decl.Type)
	for _, id := range decl.Names {
		if id == nil {
			continue
		}
		v := &Variable{Name: id.Name, Type: typ, Location: locationOf(id, decl)}
		diags = append(diags, c.declare(scope, NamespaceVariable, id.Name, v, id)...)
		c.infer.set(id, typ)
	}
	return diags
}

func (c *Checker) checkConstantDeclaration(scope ScopeID, decl *ast.ConstantDeclarationNode) []Diagnostic {
	if decl.Name == nil {
		return []Diagnostic{diag(decl, "constant declaration without a name")}
	}
	diags, typ := c.checkExpression(scope, decl.Value)
	k := &Constant{Name: decl.Name.Name, Type: typ, Location: locationOf(decl.Name, decl)}
	diags = append(diags, c.declare(scope, NamespaceConstant, decl.Name.Name, k, decl.Name)...)
	return diags
}

// checkRecordDeclaration builds the fields in a working scope, then promotes
// them into an immutable RecordType declared in the enclosing scope.
func (c *Checker) checkRecordDeclaration(scope ScopeID, decl *ast.RecordDeclarationNode) []Diagnostic {
	working := c.scopes.New(decl.Name, scope)
	var diags []Diagnostic
	record := &RecordType{RecordName: decl.Name, Fields: make(map[string]*Variable)}
	for _, field := range decl.Fields {
		if field == nil {
			continue
		}
		diags = append(diags, c.checkVariableDeclaration(working, field)...)
		for _, id := range field.Names {
			if id == nil {
				continue
			}
			key := normalize(id.Name)
			if _, dup := record.Fields[key]; dup {
				continue
			}
			sym, _ := c.scopes.Lookup(working, NamespaceVariable, id.Name)
			if v, ok := sym.(*Variable); ok {
				record.Fields[key] = v
				record.FieldOrder = append(record.FieldOrder, key)
			}
		}
	}
	c.scopes.Discard(working)
	diags = append(diags, c.declare(scope, NamespaceType, decl.Name, record, decl)...)
	return diags
}

func (c *Checker) checkParameters(scope ScopeID, params []*ast.ParameterNode) ([]Diagnostic, []*Variable) {
	var diags []Diagnostic
	vars := make([]*Variable, 0, len(params))
	for _, p := range params {
		if p == nil || p.Name == nil {
			continue
		}
		typeDiags, typ := c.resolveTypeExpression(scope, p.Type)
		diags = append(diags, typeDiags...)
		vars = append(vars, &Variable{Name: p.Name.Name, Type: typ, ByReference: p.ByReference, Location: locationOf(p.Name, p)})
	}
	return diags, vars
}

// declareParameters inserts parameters into the body scope before any local declaration.
func (c *Checker) declareParameters(body ScopeID, params []*ast.ParameterNode, vars []*Variable) []Diagnostic {
	var diags []Diagnostic
	i := 0
	for _, p := range params {
		if p == nil || p.Name == nil {
			continue
		}
		diags = append(diags, c.declare(body, NamespaceVariable, p.Name.Name, vars[i], p)...)
		c.infer.set(p.Name, vars[i].Type)
		i++
	}
	return diags
}

func (c *Checker) checkFunctionDeclaration(scope ScopeID, decl *ast.FunctionDeclarationNode) []Diagnostic {
	diags, params := c.checkParameters(scope, decl.Parameters)
	retDiags, ret := c.resolveTypeExpression(scope, decl.ReturnType)
	diags = append(diags, retDiags...)

	fn := &Function{Name: decl.Name, ReturnType: ret, Parameters: params, Location: decl.Location()}
	diags = append(diags, c.declare(scope, NamespaceFunction, decl.Name, fn, decl)...)

	body := c.scopes.New(decl.Name, scope)
	diags = append(diags, c.declareParameters(body, decl.Parameters, params)...)
	diags = append(diags, c.checkDeclarations(body, decl.Declarations)...)

	c.subprograms = append(c.subprograms, subprogramContext{name: decl.Name, returnType: ret})
	diags = append(diags, c.checkCommands(body, decl.Commands)...)
	c.subprograms = c.subprograms[:len(c.subprograms)-1]
	return diags
}

func (c *Checker) checkProcedureDeclaration(scope ScopeID, decl *ast.ProcedureDeclarationNode) []Diagnostic {
	diags, params := c.checkParameters(scope, decl.Parameters)

	proc := &Procedure{Name: decl.Name, Parameters: params, Location: decl.Location()}
	diags = append(diags, c.declare(scope, NamespaceProcedure, decl.Name, proc, decl)...)

	body := c.scopes.New(decl.Name, scope)
	diags = append(diags, c.declareParameters(body, decl.Parameters, params)...)
	diags = append(diags, c.checkDeclarations(body, decl.Declarations)...)

	c.subprograms = append(c.subprograms, subprogramContext{name: decl.Name, procedure: true})
	diags = append(diags, c.checkCommands(body, decl.Commands)...)
	c.subprograms = c.subprograms[:len(c.subprograms)-1]
	return diags
}

//-----------------------------------------------------------------------------
// Type expressions
//-----------------------------------------------------------------------------

func (c *Checker) resolveTypeExpression(scope ScopeID, expr ast.TypeExpression) ([]Diagnostic, Type) {
	switch t := expr.(type) {
	case nil:
		return nil, Undeclared
	case *ast.TypeNode:
		return c.resolveTypeNode(scope, t)
	case *ast.ArrayTypeNode:
		return c.resolveArrayType(scope, t)
	default:
		return []Diagnostic{diag(expr, "unsupported type expression %s", expr.NodeType())}, Undeclared
	}
}

func (c *Checker) resolveTypeNode(scope ScopeID, node *ast.TypeNode) ([]Diagnostic, Type) {
	if node == nil {
		return nil, Undeclared
	}
	if prim, ok := PrimitiveFromName(node.Name); ok {
		c.infer.set(node, prim)
		return nil, prim
	}
	if sym, ok := c.scopes.Lookup(scope, NamespaceType, node.Name); ok {
		rec := sym.(*RecordType)
		c.infer.set(node, rec)
		return nil, rec
	}
	return []Diagnostic{diag(node, "type '%s' not declared", node.Name)}, Undeclared
}

func (c *Checker) resolveArrayType(scope ScopeID, node *ast.ArrayTypeNode) ([]Diagnostic, Type) {
	diags, elem := c.resolveTypeNode(scope, node.ElementType)
	for _, dim := range node.Dimensions {
		if dim == nil {
			continue
		}
		diags = append(diags, c.checkDimension(scope, dim)...)
	}
	var typ Type = elem
	for range node.Dimensions {
		typ = ArrayType{Element: typ, Dimensions: 1}
	}
	c.infer.set(node, typ)
	return diags, typ
}

// checkDimension requires inteiro bounds and, for literal bounds, start <= end.
func (c *Checker) checkDimension(scope ScopeID, dim *ast.RangeNode) []Diagnostic {
	startDiags, startType := c.checkExpression(scope, dim.Start)
	endDiags, endType := c.checkExpression(scope, dim.End)
	diags := append(startDiags, endDiags...)
	if !isUndeclared(startType) && !isPrimitive(startType, PrimitiveInteger) {
		diags = append(diags, diag(dim, "vetor bound must be inteiro (got %s)", typeName(startType)))
	}
	if !isUndeclared(endType) && !isPrimitive(endType, PrimitiveInteger) {
		diags = append(diags, diag(dim, "vetor bound must be inteiro (got %s)", typeName(endType)))
	}
	lo, okLo := dim.Start.(*ast.IntLiteral)
	hi, okHi := dim.End.(*ast.IntLiteral)
	if okLo && okHi && lo.Value > hi.Value {
		diags = append(diags, diag(dim, "invalid vetor range %d..%d", lo.Value, hi.Value))
	}
	return diags
}

func locationOf(primary ast.Node, fallback ast.Node) ast.Location {
	if primary != nil && !primary.Location().IsZero() {
		return primary.Location()
	}
	if fallback != nil {
		return fallback.Location()
	}
	return ast.Location{}
}
