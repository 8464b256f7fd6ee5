package interpreter

import (
	"strings"

	"github.com/shopspring/decimal"

	"visualg/interpreter-go/pkg/runtime"
)

// FormatValue renders one escreva item. Integers are widened to real first.
//
//   - width and precision given: exactly precision fraction digits, rounded
//     half-up; a precision of 1 drops a zero fraction.
//   - width only: rounded integer left-padded with width-1 spaces.
//   - neither: a leading space and the natural decimal form.
//
// Text is truncated to width when width > 0; logico prints " VERDADEIRO" or
// " FALSO".
func FormatValue(val runtime.Value, width, precision int) (string, error) {
	switch v := val.(type) {
	case runtime.IntegerValue:
		return formatNumber(decimal.NewFromInt(v.Val), width, precision), nil
	case runtime.RealValue:
		return formatNumber(decimal.NewFromFloat(v.Val), width, precision), nil
	case runtime.StringValue:
		if width > 0 {
			runes := []rune(v.Val)
			if len(runes) > width {
				return string(runes[:width]), nil
			}
		}
		return v.Val, nil
	case runtime.BoolValue:
		if v.Val {
			return " VERDADEIRO", nil
		}
		return " FALSO", nil
	default:
		return "", runtime.NewTypeException(runtime.InvalidOperand, "cannot write a value of type %s", kindOf(val))
	}
}

func formatNumber(d decimal.Decimal, width, precision int) string {
	switch {
	case precision >= 1:
		text := d.StringFixed(int32(precision))
		if precision == 1 {
			text = strings.TrimSuffix(text, ".0")
		}
		return text
	case width >= 1:
		return strings.Repeat(" ", width-1) + d.Round(0).String()
	default:
		return " " + d.String()
	}
}
