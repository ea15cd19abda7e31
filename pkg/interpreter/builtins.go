package interpreter

import (
	"fmt"

	"wisp/interpreter-go/pkg/ast"
	"wisp/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateUnary(node *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(node.Operand, env)
	if err != nil {
		return nil, err
	}
	return i.applyUnary(node.Operator, operand)
}

func (i *Interpreter) applyUnary(op string, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case "car":
		pair, ok := operand.(*runtime.PairValue)
		if !ok {
			return nil, runtime.NewError(runtime.TypeError, "car on non-pair")
		}
		return pair.Car, nil
	case "cdr":
		pair, ok := operand.(*runtime.PairValue)
		if !ok {
			return nil, runtime.NewError(runtime.TypeError, "cdr on non-pair")
		}
		return pair.Cdr, nil
	case "not":
		return runtime.BoolValue{Val: !isTruthy(operand)}, nil
	case "display":
		fmt.Fprint(i.out, displayString(operand))
		return runtime.VoidValue{}, nil
	case "boolean?":
		return runtime.BoolValue{Val: operand.Kind() == runtime.KindBool}, nil
	case "number?":
		kind := operand.Kind()
		return runtime.BoolValue{Val: kind == runtime.KindInteger || kind == runtime.KindRational}, nil
	case "null?":
		return runtime.BoolValue{Val: operand.Kind() == runtime.KindNull}, nil
	case "pair?":
		return runtime.BoolValue{Val: operand.Kind() == runtime.KindPair}, nil
	case "procedure?":
		return runtime.BoolValue{Val: operand.Kind() == runtime.KindProcedure}, nil
	case "symbol?":
		return runtime.BoolValue{Val: operand.Kind() == runtime.KindSymbol}, nil
	case "string?":
		return runtime.BoolValue{Val: operand.Kind() == runtime.KindString}, nil
	case "list?":
		return runtime.BoolValue{Val: isProperList(operand)}, nil
	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unknown unary operator: %s", op)
	}
}

func (i *Interpreter) evaluateBinary(node *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(node.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(node.Operator, left, right)
}

func applyBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+", "-", "*", "/":
		return evaluateArithmetic(op, left, right)
	case "<", "<=", "=", ">=", ">":
		satisfied, err := orderingHolds(op, left, right)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: satisfied}, nil
	case "expt":
		return evaluateExpt(left, right)
	case "modulo":
		return evaluateModulo(left, right)
	case "cons":
		return &runtime.PairValue{Car: left, Cdr: right}, nil
	case "set-car!":
		pair, ok := left.(*runtime.PairValue)
		if !ok {
			return nil, runtime.NewError(runtime.TypeError, "set-car! on non-pair")
		}
		pair.Car = right
		return runtime.VoidValue{}, nil
	case "set-cdr!":
		pair, ok := left.(*runtime.PairValue)
		if !ok {
			return nil, runtime.NewError(runtime.TypeError, "set-cdr! on non-pair")
		}
		pair.Cdr = right
		return runtime.VoidValue{}, nil
	case "eq?":
		return runtime.BoolValue{Val: valuesEq(left, right)}, nil
	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unknown binary operator: %s", op)
	}
}

func (i *Interpreter) evaluateVariadic(node *ast.VariadicExpression, env *runtime.Environment) (runtime.Value, error) {
	values := make([]runtime.Value, len(node.Operands))
	for idx, operand := range node.Operands {
		value, err := i.evaluateExpression(operand, env)
		if err != nil {
			return nil, err
		}
		values[idx] = value
	}

	switch op := node.Operator; op {
	case "list":
		var result runtime.Value = runtime.NullValue{}
		for idx := len(values) - 1; idx >= 0; idx-- {
			result = &runtime.PairValue{Car: values[idx], Cdr: result}
		}
		return result, nil
	case "+", "-", "*", "/":
		// Left fold, so (- 10 1 2) is ((10 - 1) - 2).
		acc := values[0]
		for _, next := range values[1:] {
			folded, err := evaluateArithmetic(op, acc, next)
			if err != nil {
				return nil, err
			}
			acc = folded
		}
		return acc, nil
	case "<", "<=", "=", ">=", ">":
		for idx := 0; idx+1 < len(values); idx++ {
			satisfied, err := orderingHolds(op, values[idx], values[idx+1])
			if err != nil {
				return nil, err
			}
			if !satisfied {
				return runtime.BoolValue{Val: false}, nil
			}
		}
		return runtime.BoolValue{Val: true}, nil
	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unknown variadic operator: %s", node.Operator)
	}
}

// isProperList walks cdrs to null. A dotted tail or any non-pair ends the
// walk; cyclic structures are the caller's lookout, as with the pair
// mutators that can create them.
func isProperList(value runtime.Value) bool {
	for {
		switch v := value.(type) {
		case runtime.NullValue:
			return true
		case *runtime.PairValue:
			value = v.Cdr
		default:
			return false
		}
	}
}

// valuesEq compares scalars by content and heap structures by identity.
// Strings and rationals are value types here, so they too compare by
// content.
func valuesEq(left, right runtime.Value) bool {
	switch l := left.(type) {
	case runtime.IntegerValue:
		r, ok := right.(runtime.IntegerValue)
		return ok && l.Val == r.Val
	case runtime.RationalValue:
		r, ok := right.(runtime.RationalValue)
		return ok && l.Num == r.Num && l.Den == r.Den
	case runtime.BoolValue:
		r, ok := right.(runtime.BoolValue)
		return ok && l.Val == r.Val
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		return ok && l.Val == r.Val
	case runtime.SymbolValue:
		r, ok := right.(runtime.SymbolValue)
		return ok && l.Name == r.Name
	case runtime.NullValue:
		return right.Kind() == runtime.KindNull
	case runtime.VoidValue:
		return right.Kind() == runtime.KindVoid
	case runtime.TerminateValue:
		return right.Kind() == runtime.KindTerminate
	case *runtime.PairValue:
		r, ok := right.(*runtime.PairValue)
		return ok && l == r
	case *runtime.ProcedureValue:
		r, ok := right.(*runtime.ProcedureValue)
		return ok && l == r
	default:
		return false
	}
}
