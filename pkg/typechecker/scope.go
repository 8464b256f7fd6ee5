package typechecker

import (
	"errors"
	"fmt"
	"strings"

	"visualg/interpreter-go/pkg/ast"
)

// Namespace selects one of the five independent symbol maps of a scope.
type Namespace int

const (
	NamespaceVariable Namespace = iota
	NamespaceConstant
	NamespaceFunction
	NamespaceProcedure
	NamespaceType
)

func (n Namespace) String() string {
	switch n {
	case NamespaceVariable:
		return "variable"
	case NamespaceConstant:
		return "constant"
	case NamespaceFunction:
		return "function"
	case NamespaceProcedure:
		return "procedure"
	case NamespaceType:
		return "type"
	default:
		return fmt.Sprintf("namespace(%d)", int(n))
	}
}

// resolveOrder is the priority of the combined Resolve query.
var resolveOrder = []Namespace{
	NamespaceFunction,
	NamespaceProcedure,
	NamespaceVariable,
	NamespaceConstant,
	NamespaceType,
}

// Symbol is any declaration stored in a scope.
type Symbol interface {
	SymbolName() string
}

type Variable struct {
	Name        string
	Type        Type
	ByReference bool
	Location    ast.Location
}

func (v *Variable) SymbolName() string { return v.Name }

type Constant struct {
	Name     string
	Type     Type
	Location ast.Location
}

func (c *Constant) SymbolName() string { return c.Name }

type Function struct {
	Name       string
	ReturnType Type
	Parameters []*Variable
	Location   ast.Location
}

func (f *Function) SymbolName() string { return f.Name }

type Procedure struct {
	Name       string
	Parameters []*Variable
	Location   ast.Location
}

func (p *Procedure) SymbolName() string { return p.Name }

// ErrAlreadyDeclared is returned when a name is reused in the same scope and namespace.
var ErrAlreadyDeclared = errors.New("already declared")

// ScopeID addresses a scope inside a Scopes arena.
type ScopeID int

// NoScope is the parent of the root scope.
const NoScope ScopeID = -1

type Scope struct {
	ID     ScopeID
	Name   string
	Parent ScopeID

	variables  map[string]*Variable
	constants  map[string]*Constant
	functions  map[string]*Function
	procedures map[string]*Procedure
	userTypes  map[string]*RecordType
}

func (s *Scope) HasParent() bool {
	return s.Parent != NoScope
}

// Variables returns the variables declared directly in this scope.
func (s *Scope) Variables() map[string]*Variable {
	return s.variables
}

// Scopes is an arena of scopes linked by parent index.
type Scopes struct {
	scopes []*Scope
}

func NewScopes() *Scopes {
	return &Scopes{}
}

// New appends a scope under parent and returns its id.
func (s *Scopes) New(name string, parent ScopeID) ScopeID {
	id := ScopeID(len(s.scopes))
	s.scopes = append(s.scopes, &Scope{
		ID:         id,
		Name:       name,
		Parent:     parent,
		variables:  make(map[string]*Variable),
		constants:  make(map[string]*Constant),
		functions:  make(map[string]*Function),
		procedures: make(map[string]*Procedure),
		userTypes:  make(map[string]*RecordType),
	})
	return id
}

// Get returns the scope with the given id, or nil.
func (s *Scopes) Get(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(s.scopes) {
		return nil
	}
	return s.scopes[id]
}

func (s *Scopes) Len() int {
	return len(s.scopes)
}

// Discard drops a working scope that was the last one created.
func (s *Scopes) Discard(id ScopeID) {
	if int(id) == len(s.scopes)-1 {
		s.scopes = s.scopes[:id]
	}
}

func normalize(name string) string {
	return strings.ToLower(name)
}

// Declare inserts decl into one namespace of the scope id. Only that scope is
// checked for collisions.
func (s *Scopes) Declare(id ScopeID, ns Namespace, name string, decl Symbol) error {
	scope := s.Get(id)
	if scope == nil {
		return fmt.Errorf("typechecker: unknown scope %d", id)
	}
	key := normalize(name)
	if _, exists := scope.local(ns, key); exists {
		return fmt.Errorf("%s '%s' %w", ns, name, ErrAlreadyDeclared)
	}
	switch ns {
	case NamespaceVariable:
		scope.variables[key] = decl.(*Variable)
	case NamespaceConstant:
		scope.constants[key] = decl.(*Constant)
	case NamespaceFunction:
		scope.functions[key] = decl.(*Function)
	case NamespaceProcedure:
		scope.procedures[key] = decl.(*Procedure)
	case NamespaceType:
		scope.userTypes[key] = decl.(*RecordType)
	}
	return nil
}

func (sc *Scope) local(ns Namespace, key string) (Symbol, bool) {
	switch ns {
	case NamespaceVariable:
		if v, ok := sc.variables[key]; ok {
			return v, true
		}
	case NamespaceConstant:
		if v, ok := sc.constants[key]; ok {
			return v, true
		}
	case NamespaceFunction:
		if v, ok := sc.functions[key]; ok {
			return v, true
		}
	case NamespaceProcedure:
		if v, ok := sc.procedures[key]; ok {
			return v, true
		}
	case NamespaceType:
		if v, ok := sc.userTypes[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup walks from id to the root and returns the nearest declaration.
func (s *Scopes) Lookup(id ScopeID, ns Namespace, name string) (Symbol, bool) {
	key := normalize(name)
	for scope := s.Get(id); scope != nil; scope = s.Get(scope.Parent) {
		if sym, ok := scope.local(ns, key); ok {
			return sym, true
		}
	}
	return nil, false
}

// Resolve tries function, procedure, variable, constant and type in that order.
func (s *Scopes) Resolve(id ScopeID, name string) (Symbol, Namespace, bool) {
	for _, ns := range resolveOrder {
		if sym, ok := s.Lookup(id, ns, name); ok {
			return sym, ns, true
		}
	}
	return nil, 0, false
}
