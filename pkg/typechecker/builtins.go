package typechecker

import (
	"sort"
	"strings"
)

// BuiltinSignature describes a predefined function available to every program.
type BuiltinSignature struct {
	Name   string
	Params []Type
	Return Type
}

var builtins = map[string]BuiltinSignature{}

func registerBuiltin(name string, ret Type, params ...Type) {
	builtins[name] = BuiltinSignature{Name: name, Params: params, Return: ret}
}

func init() {
	registerBuiltin("abs", Real, Real)
	registerBuiltin("int", Integer, Real)
	registerBuiltin("raizq", Real, Real)
	registerBuiltin("quad", Real, Real)
	registerBuiltin("exp", Real, Real, Real)
	registerBuiltin("pi", Real)
	registerBuiltin("sen", Real, Real)
	registerBuiltin("cos", Real, Real)
	registerBuiltin("tan", Real, Real)
	registerBuiltin("log", Real, Real)
	registerBuiltin("logn", Real, Real)
	registerBuiltin("compr", Integer, Text)
	registerBuiltin("maiusc", Text, Text)
	registerBuiltin("minusc", Text, Text)
	registerBuiltin("copia", Text, Text, Integer, Integer)
	registerBuiltin("pos", Integer, Text, Text)
	registerBuiltin("asc", Integer, Text)
	registerBuiltin("carac", Text, Integer)
	registerBuiltin("numpcarac", Text, Real)
	registerBuiltin("caracpnum", Real, Text)
	registerBuiltin("randi", Integer, Integer)
	registerBuiltin("rand", Real)
}

// LookupBuiltin finds a predefined function by case-insensitive name.
// User declarations shadow builtins, so callers consult scopes first.
func LookupBuiltin(name string) (BuiltinSignature, bool) {
	b, ok := builtins[strings.ToLower(name)]
	return b, ok
}

// BuiltinNames lists every predefined function name, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggestBuiltin returns a predefined function whose name extends or
// truncates name, as in raiz for raizq.
func suggestBuiltin(name string) (string, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return "", false
	}
	for _, b := range BuiltinNames() {
		if len(b) >= 3 && (strings.HasPrefix(b, name) || strings.HasPrefix(name, b)) {
			return b, true
		}
	}
	return "", false
}
