package interpreter

import (
	"math"

	"wisp/interpreter-go/pkg/runtime"
)

// The numeric tower is {integer, rational} over int64 components.
// Arithmetic promotes an integer to numerator/denominator form, works on
// cross-multiplied components with overflow detection, and reduces the
// result to lowest terms with a positive denominator. A reduced
// denominator of 1 collapses back to an integer.

func numericParts(value runtime.Value) (num, den int64, ok bool) {
	switch v := value.(type) {
	case runtime.IntegerValue:
		return v.Val, 1, true
	case runtime.RationalValue:
		return v.Num, v.Den, true
	default:
		return 0, 0, false
	}
}

func overflowError(op string) error {
	return runtime.NewError(runtime.ArithmeticError, "Integer overflow in %s", op)
}

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, false
	}
	return sum, true
}

func subInt64(a, b int64) (int64, bool) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, false
	}
	return diff, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		// The quotient check below wraps for MinInt64 * -1.
		if a == 1 {
			return b, true
		}
		if b == 1 {
			return a, true
		}
		return 0, false
	}
	product := a * b
	if product/b != a {
		return 0, false
	}
	return product, true
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		a = -a
	}
	return a
}

// normalizeRational reduces num/den to lowest terms with the sign on the
// numerator. den must be nonzero.
func normalizeRational(op string, num, den int64) (runtime.Value, error) {
	if den < 0 {
		if num == math.MinInt64 || den == math.MinInt64 {
			return nil, overflowError(op)
		}
		num, den = -num, -den
	}
	if g := gcd(num, den); g > 1 {
		num /= g
		den /= g
	}
	if den == 1 {
		return runtime.IntegerValue{Val: num}, nil
	}
	return runtime.RationalValue{Num: num, Den: den}, nil
}

func evaluateArithmetic(op string, left, right runtime.Value) (runtime.Value, error) {
	ln, ld, ok := numericParts(left)
	if !ok {
		return nil, runtime.NewError(runtime.TypeError, "Wrong typename")
	}
	rn, rd, ok := numericParts(right)
	if !ok {
		return nil, runtime.NewError(runtime.TypeError, "Wrong typename")
	}

	switch op {
	case "+", "-":
		a, ok1 := mulInt64(ln, rd)
		b, ok2 := mulInt64(rn, ld)
		den, ok3 := mulInt64(ld, rd)
		if !ok1 || !ok2 || !ok3 {
			return nil, overflowError(op)
		}
		var num int64
		var ok bool
		if op == "+" {
			num, ok = addInt64(a, b)
		} else {
			num, ok = subInt64(a, b)
		}
		if !ok {
			return nil, overflowError(op)
		}
		return normalizeRational(op, num, den)

	case "*":
		num, ok1 := mulInt64(ln, rn)
		den, ok2 := mulInt64(ld, rd)
		if !ok1 || !ok2 {
			return nil, overflowError(op)
		}
		return normalizeRational(op, num, den)

	case "/":
		// A zero divisor fails before any normalization.
		if rn == 0 {
			return nil, runtime.NewError(runtime.ArithmeticError, "Division by zero")
		}
		num, ok1 := mulInt64(ln, rd)
		den, ok2 := mulInt64(ld, rn)
		if !ok1 || !ok2 {
			return nil, overflowError(op)
		}
		return normalizeRational(op, num, den)

	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unknown arithmetic operator: %s", op)
	}
}

// compareNumeric is the shared three-way comparator. Denominators are
// always positive, so cross-multiplication preserves order.
func compareNumeric(op string, left, right runtime.Value) (int, error) {
	ln, ld, ok := numericParts(left)
	if !ok {
		return 0, runtime.NewError(runtime.TypeError, "Wrong typename in numeric comparison")
	}
	rn, rd, ok := numericParts(right)
	if !ok {
		return 0, runtime.NewError(runtime.TypeError, "Wrong typename in numeric comparison")
	}
	a, ok1 := mulInt64(ln, rd)
	b, ok2 := mulInt64(rn, ld)
	if !ok1 || !ok2 {
		return 0, overflowError(op)
	}
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func orderingHolds(op string, left, right runtime.Value) (bool, error) {
	c, err := compareNumeric(op, left, right)
	if err != nil {
		return false, err
	}
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case "=":
		return c == 0, nil
	case ">=":
		return c >= 0, nil
	case ">":
		return c > 0, nil
	default:
		return false, runtime.NewError(runtime.SyntaxError, "Unknown comparison operator: %s", op)
	}
}

// evaluateExpt raises an integer base to an integer exponent by repeated
// squaring, failing on any intermediate overflow.
func evaluateExpt(base, exponent runtime.Value) (runtime.Value, error) {
	b, ok1 := base.(runtime.IntegerValue)
	e, ok2 := exponent.(runtime.IntegerValue)
	if !ok1 || !ok2 {
		return nil, runtime.NewError(runtime.TypeError, "Wrong typename")
	}
	if e.Val < 0 {
		return nil, runtime.NewError(runtime.ArithmeticError, "Negative exponent not supported for integers")
	}
	if b.Val == 0 && e.Val == 0 {
		return nil, runtime.NewError(runtime.ArithmeticError, "0^0 is undefined")
	}

	result := int64(1)
	factor := b.Val
	exp := e.Val
	for exp > 0 {
		if exp%2 == 1 {
			product, ok := mulInt64(result, factor)
			if !ok {
				return nil, runtime.NewError(runtime.ArithmeticError, "Integer overflow in expt")
			}
			result = product
		}
		exp /= 2
		if exp == 0 {
			break
		}
		squared, ok := mulInt64(factor, factor)
		if !ok {
			return nil, runtime.NewError(runtime.ArithmeticError, "Integer overflow in expt")
		}
		factor = squared
	}
	return runtime.IntegerValue{Val: result}, nil
}

// evaluateModulo is integer-only, truncated toward zero like the host
// language's % operator.
func evaluateModulo(left, right runtime.Value) (runtime.Value, error) {
	l, ok1 := left.(runtime.IntegerValue)
	r, ok2 := right.(runtime.IntegerValue)
	if !ok1 || !ok2 {
		return nil, runtime.NewError(runtime.TypeError, "modulo is only defined for integers")
	}
	if r.Val == 0 {
		return nil, runtime.NewError(runtime.ArithmeticError, "Division by zero")
	}
	return runtime.IntegerValue{Val: l.Val % r.Val}, nil
}
