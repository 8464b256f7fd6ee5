package typechecker

import (
	"fmt"

	"visualg/interpreter-go/pkg/ast"
)

// Checker traverses a program once and records diagnostics.
type Checker struct {
	infer       InferenceMap
	scopes      *Scopes
	subprograms []subprogramContext
}

// subprogramContext describes the function or procedure whose body is being checked.
type subprogramContext struct {
	name       string
	returnType Type
	procedure  bool
}

// Diagnostic represents a semantic error found by the checker.
type Diagnostic struct {
	Message  string
	Location ast.Location
	Node     ast.Node
}

func (d Diagnostic) String() string {
	if d.Location.IsZero() {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Location, d.Message)
}

// InferenceMap records the type computed for each checked expression.
type InferenceMap map[ast.Node]Type

func (m InferenceMap) set(node ast.Node, typ Type) {
	if m == nil || node == nil || typ == nil {
		return
	}
	m[node] = typ
}

// Result is the outcome of checking one program.
type Result struct {
	Program     *ast.AlgoritimoNode
	Diagnostics []Diagnostic
	Scopes      *Scopes
	Global      ScopeID
	Types       InferenceMap
}

// OK reports whether the program produced no diagnostics.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// GlobalScope returns the scope named after the algorithm.
func (r Result) GlobalScope() *Scope {
	if r.Scopes == nil {
		return nil
	}
	return r.Scopes.Get(r.Global)
}

// New returns a checker instance.
func New() *Checker {
	return &Checker{
		infer:  make(InferenceMap),
		scopes: NewScopes(),
	}
}

// CheckProgram analyzes a program. It never fails; every problem becomes a
// diagnostic. An absent program yields an empty result.
func (c *Checker) CheckProgram(program *ast.AlgoritimoNode) Result {
	c.infer = make(InferenceMap)
	c.scopes = NewScopes()
	c.subprograms = nil

	result := Result{Program: program, Scopes: c.scopes, Global: NoScope, Types: c.infer}
	if program == nil {
		return result
	}
	global := c.scopes.New(program.Name, NoScope)
	result.Global = global

	var diagnostics []Diagnostic
	diagnostics = append(diagnostics, c.checkDeclarations(global, program.Declarations)...)
	diagnostics = append(diagnostics, c.checkCommands(global, program.Commands)...)
	result.Diagnostics = diagnostics
	return result
}

// Check is a convenience wrapper around New().CheckProgram.
func Check(program *ast.AlgoritimoNode) Result {
	return New().CheckProgram(program)
}

func diag(node ast.Node, format string, args ...any) Diagnostic {
	d := Diagnostic{Message: "typechecker: " + fmt.Sprintf(format, args...), Node: node}
	if node != nil {
		d.Location = node.Location()
	}
	return d
}

func (c *Checker) currentSubprogram() (subprogramContext, bool) {
	if len(c.subprograms) == 0 {
		return subprogramContext{}, false
	}
	return c.subprograms[len(c.subprograms)-1], true
}
