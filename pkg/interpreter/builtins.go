package interpreter

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"visualg/interpreter-go/pkg/runtime"
)

type builtinFunc func(i *Interpreter, args []runtime.Value) (runtime.Value, error)

type builtin struct {
	arity int
	fn    builtinFunc
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"abs": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			if n, ok := args[0].(runtime.IntegerValue); ok {
				if n.Val < 0 {
					n.Val = -n.Val
				}
				return n, nil
			}
			return realFn("abs", math.Abs)(nil, args)
		}},
		"int": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			f, err := numberArg("int", args, 0)
			if err != nil {
				return nil, err
			}
			return runtime.IntegerValue{Val: int64(math.Trunc(f))}, nil
		}},
		"raizq": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			f, err := numberArg("raizq", args, 0)
			if err != nil {
				return nil, err
			}
			if f < 0 {
				return nil, runtime.NewTypeException(runtime.InvalidOperand, "raizq of negative number %v", f)
			}
			return runtime.RealValue{Val: math.Sqrt(f)}, nil
		}},
		"quad": {1, realFn("quad", func(f float64) float64 { return f * f })},
		"exp": {2, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			base, err := numberArg("exp", args, 0)
			if err != nil {
				return nil, err
			}
			exponent, err := numberArg("exp", args, 1)
			if err != nil {
				return nil, err
			}
			return runtime.RealValue{Val: math.Pow(base, exponent)}, nil
		}},
		"pi":   {0, func(*Interpreter, []runtime.Value) (runtime.Value, error) { return runtime.RealValue{Val: math.Pi}, nil }},
		"sen":  {1, realFn("sen", math.Sin)},
		"cos":  {1, realFn("cos", math.Cos)},
		"tan":  {1, realFn("tan", math.Tan)},
		"log":  {1, logFn("log", math.Log10)},
		"logn": {1, logFn("logn", math.Log)},
		"compr": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			s, err := textArg("compr", args, 0)
			if err != nil {
				return nil, err
			}
			return runtime.IntegerValue{Val: int64(utf8.RuneCountInString(s))}, nil
		}},
		"maiusc": {1, textFn("maiusc", strings.ToUpper)},
		"minusc": {1, textFn("minusc", strings.ToLower)},
		"copia": {3, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			s, err := textArg("copia", args, 0)
			if err != nil {
				return nil, err
			}
			start, err := integerArg("copia", args, 1)
			if err != nil {
				return nil, err
			}
			count, err := integerArg("copia", args, 2)
			if err != nil {
				return nil, err
			}
			runes := []rune(s)
			from := max(start-1, 0)
			if from >= int64(len(runes)) || count <= 0 {
				return runtime.StringValue{}, nil
			}
			to := min(from+count, int64(len(runes)))
			return runtime.StringValue{Val: string(runes[from:to])}, nil
		}},
		"pos": {2, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			sub, err := textArg("pos", args, 0)
			if err != nil {
				return nil, err
			}
			s, err := textArg("pos", args, 1)
			if err != nil {
				return nil, err
			}
			idx := strings.Index(s, sub)
			if idx < 0 {
				return runtime.IntegerValue{}, nil
			}
			return runtime.IntegerValue{Val: int64(utf8.RuneCountInString(s[:idx]) + 1)}, nil
		}},
		"asc": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			s, err := textArg("asc", args, 0)
			if err != nil {
				return nil, err
			}
			if s == "" {
				return runtime.IntegerValue{}, nil
			}
			r, _ := utf8.DecodeRuneInString(s)
			return runtime.IntegerValue{Val: int64(r)}, nil
		}},
		"carac": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			n, err := integerArg("carac", args, 0)
			if err != nil {
				return nil, err
			}
			return runtime.StringValue{Val: string(rune(n))}, nil
		}},
		"numpcarac": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			switch n := args[0].(type) {
			case runtime.IntegerValue:
				return runtime.StringValue{Val: strconv.FormatInt(n.Val, 10)}, nil
			case runtime.RealValue:
				return runtime.StringValue{Val: decimal.NewFromFloat(n.Val).String()}, nil
			}
			return nil, argumentError("numpcarac", 1, "numeric", args[0])
		}},
		"caracpnum": {1, func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			s, err := textArg("caracpnum", args, 0)
			if err != nil {
				return nil, err
			}
			d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
			if err != nil {
				return nil, runtime.NewTypeException(runtime.InvalidOperand, "caracpnum: %q is not a number", s)
			}
			return runtime.RealValue{Val: d.InexactFloat64()}, nil
		}},
		"randi": {1, func(i *Interpreter, args []runtime.Value) (runtime.Value, error) {
			n, err := integerArg("randi", args, 0)
			if err != nil {
				return nil, err
			}
			if n <= 0 {
				return nil, runtime.NewTypeException(runtime.InvalidOperand, "randi limit must be positive, got %d", n)
			}
			return runtime.IntegerValue{Val: i.rng.Int64N(n)}, nil
		}},
		"rand": {0, func(i *Interpreter, _ []runtime.Value) (runtime.Value, error) {
			return runtime.RealValue{Val: i.rng.Float64()}, nil
		}},
	}
}

func lookupBuiltin(name string) (builtin, bool) {
	b, ok := builtins[strings.ToLower(name)]
	return b, ok
}

func realFn(name string, f func(float64) float64) builtinFunc {
	return func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.RealValue{Val: f(x)}, nil
	}
}

func logFn(name string, f func(float64) float64) builtinFunc {
	return func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		if x <= 0 {
			return nil, runtime.NewTypeException(runtime.InvalidOperand, "%s of non-positive number %v", name, x)
		}
		return runtime.RealValue{Val: f(x)}, nil
	}
}

func textFn(name string, f func(string) string) builtinFunc {
	return func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
		s, err := textArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: f(s)}, nil
	}
}

func numberArg(name string, args []runtime.Value, n int) (float64, error) {
	f, ok := toFloat(args[n])
	if !ok {
		return 0, argumentError(name, n+1, "numeric", args[n])
	}
	return f, nil
}

func integerArg(name string, args []runtime.Value, n int) (int64, error) {
	v, ok := args[n].(runtime.IntegerValue)
	if !ok {
		return 0, argumentError(name, n+1, "inteiro", args[n])
	}
	return v.Val, nil
}

func textArg(name string, args []runtime.Value, n int) (string, error) {
	v, ok := args[n].(runtime.StringValue)
	if !ok {
		return "", argumentError(name, n+1, "caractere", args[n])
	}
	return v.Val, nil
}

func argumentError(name string, position int, want string, got runtime.Value) error {
	return runtime.NewTypeException(runtime.InvalidOperand, "argument %d of '%s' must be %s, got %s", position, name, want, kindOf(got))
}
