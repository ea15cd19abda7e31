package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"wisp/interpreter-go/pkg/runtime"
)

// Render formats a value the way the REPL echoes results: strings keep
// their quotes, everything else matches display output.
func Render(value runtime.Value) string {
	return render(value, true)
}

// displayString is the display primitive's rendering: strings are written
// raw.
func displayString(value runtime.Value) string {
	return render(value, false)
}

func render(value runtime.Value, quoteStrings bool) string {
	switch v := value.(type) {
	case runtime.IntegerValue:
		return strconv.FormatInt(v.Val, 10)
	case runtime.RationalValue:
		return fmt.Sprintf("%d/%d", v.Num, v.Den)
	case runtime.BoolValue:
		if v.Val {
			return "#t"
		}
		return "#f"
	case runtime.StringValue:
		if quoteStrings {
			return strconv.Quote(v.Val)
		}
		return v.Val
	case runtime.SymbolValue:
		return v.Name
	case runtime.NullValue:
		return "()"
	case *runtime.PairValue:
		return renderPair(v, quoteStrings)
	case *runtime.ProcedureValue:
		return "#<procedure>"
	case runtime.VoidValue:
		return "#<void>"
	case runtime.TerminateValue:
		return "#<terminate>"
	default:
		return fmt.Sprintf("#<unknown %T>", value)
	}
}

// renderPair prints proper lists as (a b c) and dotted tails as
// (a b . c).
func renderPair(pair *runtime.PairValue, quoteStrings bool) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(render(pair.Car, quoteStrings))
	rest := pair.Cdr
	for {
		switch next := rest.(type) {
		case *runtime.PairValue:
			sb.WriteByte(' ')
			sb.WriteString(render(next.Car, quoteStrings))
			rest = next.Cdr
		case runtime.NullValue:
			sb.WriteByte(')')
			return sb.String()
		default:
			sb.WriteString(" . ")
			sb.WriteString(render(rest, quoteStrings))
			sb.WriteByte(')')
			return sb.String()
		}
	}
}
