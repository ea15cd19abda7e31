package interpreter

import (
	"io"
	"os"

	"wisp/interpreter-go/pkg/ast"
	"wisp/interpreter-go/pkg/parser"
	"wisp/interpreter-go/pkg/runtime"
	"wisp/interpreter-go/pkg/syntax"
)

// Interpreter evaluates expression trees against a persistent global
// environment. One interpreter serves one program or one REPL session;
// it is not safe for concurrent use.
type Interpreter struct {
	global *runtime.Environment
	out    io.Writer
}

func NewInterpreter() *Interpreter {
	return &Interpreter{
		global: runtime.NewEnvironment(nil),
		out:    os.Stdout,
	}
}

// Global exposes the top-level environment, shared by every form the
// interpreter evaluates.
func (i *Interpreter) Global() *runtime.Environment {
	return i.global
}

// SetOutput redirects display output, mainly for tests.
func (i *Interpreter) SetOutput(w io.Writer) {
	i.out = w
}

// EvalForm parses one reader form against the global environment and
// evaluates it.
func (i *Interpreter) EvalForm(form syntax.Node) (runtime.Value, error) {
	expr, err := parser.Parse(form, i.global)
	if err != nil {
		return nil, err
	}
	return i.evaluateExpression(expr, i.global)
}

// EvalSource reads every form in src and evaluates them in order,
// returning the value of the last one. Parsing is interleaved with
// evaluation so that a define in one form steers the parse of the next.
// A form yielding the terminate value stops the program.
func (i *Interpreter) EvalSource(src string) (runtime.Value, error) {
	forms, err := syntax.ReadAll(src)
	if err != nil {
		return nil, err
	}
	var last runtime.Value = runtime.VoidValue{}
	for _, form := range forms {
		last, err = i.EvalForm(form)
		if err != nil {
			return nil, err
		}
		if last.Kind() == runtime.KindTerminate {
			return last, nil
		}
	}
	return last, nil
}

func (i *Interpreter) evaluateExpression(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return runtime.IntegerValue{Val: node.Value}, nil
	case *ast.RationalLiteral:
		// Literals pass through as written; only arithmetic reduces.
		return runtime.RationalValue{Num: node.Numerator, Den: node.Denominator}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: node.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: node.Value}, nil
	case *ast.Identifier:
		return i.evaluateIdentifier(node, env)
	case *ast.UnaryExpression:
		return i.evaluateUnary(node, env)
	case *ast.BinaryExpression:
		return i.evaluateBinary(node, env)
	case *ast.VariadicExpression:
		return i.evaluateVariadic(node, env)
	case *ast.VoidExpression:
		return runtime.VoidValue{}, nil
	case *ast.ExitExpression:
		return runtime.TerminateValue{}, nil
	case *ast.QuoteExpression:
		return evaluateQuote(node.Datum)
	case *ast.IfExpression:
		return i.evaluateIf(node, env)
	case *ast.CondExpression:
		return i.evaluateCond(node, env)
	case *ast.AndExpression:
		return i.evaluateAnd(node, env)
	case *ast.OrExpression:
		return i.evaluateOr(node, env)
	case *ast.BeginExpression:
		return i.evaluateBegin(node.Body, env)
	case *ast.LambdaExpression:
		return &runtime.ProcedureValue{Params: node.Params, Body: node.Body, Closure: env}, nil
	case *ast.CallExpression:
		return i.evaluateCall(node, env)
	case *ast.DefineExpression:
		return i.evaluateDefine(node, env)
	case *ast.LetExpression:
		return i.evaluateLet(node, env)
	case *ast.LetrecExpression:
		return i.evaluateLetrec(node, env)
	case *ast.SetExpression:
		return i.evaluateSet(node, env)
	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unimplemented eval method")
	}
}

// evaluateIdentifier resolves a variable. Unbound names fall back to the
// primitive table so that car, +, and friends work as first-class values.
func (i *Interpreter) evaluateIdentifier(node *ast.Identifier, env *runtime.Environment) (runtime.Value, error) {
	value, err := env.Get(node.Name)
	if err == nil {
		if value == nil {
			return nil, runtime.NewError(runtime.UnboundVariable, "Variable '%s' used before letrec initialization", node.Name)
		}
		return value, nil
	}
	if params, body, ok := parser.PrimitiveReference(node.Name); ok {
		return &runtime.ProcedureValue{Params: params, Body: body, Closure: env}, nil
	}
	return nil, err
}

// evaluateQuote reconstructs a syntax subtree as runtime data. Lists fold
// right into pairs ending in null.
func evaluateQuote(datum syntax.Node) (runtime.Value, error) {
	switch node := datum.(type) {
	case syntax.Number:
		return runtime.IntegerValue{Val: node.Value}, nil
	case syntax.Rational:
		return runtime.RationalValue{Num: node.Numerator, Den: node.Denominator}, nil
	case syntax.Bool:
		return runtime.BoolValue{Val: node.Value}, nil
	case syntax.String:
		return runtime.StringValue{Val: node.Value}, nil
	case syntax.Symbol:
		return runtime.SymbolValue{Name: node.Name}, nil
	case *syntax.List:
		var result runtime.Value = runtime.NullValue{}
		for idx := len(node.Items) - 1; idx >= 0; idx-- {
			car, err := evaluateQuote(node.Items[idx])
			if err != nil {
				return nil, err
			}
			result = &runtime.PairValue{Car: car, Cdr: result}
		}
		return result, nil
	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unsupported quote syntax")
	}
}

// isTruthy implements the only falsy value rule: everything except #f is
// true, including 0, "", and ().
func isTruthy(value runtime.Value) bool {
	b, ok := value.(runtime.BoolValue)
	return !ok || b.Val
}

func (i *Interpreter) evaluateIf(node *ast.IfExpression, env *runtime.Environment) (runtime.Value, error) {
	condition, err := i.evaluateExpression(node.Condition, env)
	if err != nil {
		return nil, err
	}
	if isTruthy(condition) {
		return i.evaluateExpression(node.Consequence, env)
	}
	return i.evaluateExpression(node.Alternative, env)
}

// evaluateCond tries each clause in order. A clause with an empty body
// yields its predicate's value; no matching clause yields void.
func (i *Interpreter) evaluateCond(node *ast.CondExpression, env *runtime.Environment) (runtime.Value, error) {
	for _, clause := range node.Clauses {
		predicate, err := i.evaluateExpression(clause.Predicate, env)
		if err != nil {
			return nil, err
		}
		if !isTruthy(predicate) {
			continue
		}
		if len(clause.Body) == 0 {
			return predicate, nil
		}
		return i.evaluateBegin(clause.Body, env)
	}
	return runtime.VoidValue{}, nil
}

// evaluateAnd short-circuits on the first #f operand and otherwise
// returns the last operand's value; (and) is #t.
func (i *Interpreter) evaluateAnd(node *ast.AndExpression, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.BoolValue{Val: true}
	for _, operand := range node.Operands {
		value, err := i.evaluateExpression(operand, env)
		if err != nil {
			return nil, err
		}
		if !isTruthy(value) {
			return value, nil
		}
		last = value
	}
	return last, nil
}

// evaluateOr short-circuits on the first non-#f operand; (or) is #f.
func (i *Interpreter) evaluateOr(node *ast.OrExpression, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.BoolValue{Val: false}
	for _, operand := range node.Operands {
		value, err := i.evaluateExpression(operand, env)
		if err != nil {
			return nil, err
		}
		if isTruthy(value) {
			return value, nil
		}
		last = value
	}
	return last, nil
}

func (i *Interpreter) evaluateBegin(body []ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.VoidValue{}
	for _, expr := range body {
		value, err := i.evaluateExpression(expr, env)
		if err != nil {
			return nil, err
		}
		last = value
	}
	return last, nil
}

func (i *Interpreter) evaluateCall(node *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(node.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, len(node.Arguments))
	for idx, argument := range node.Arguments {
		args[idx], err = i.evaluateExpression(argument, env)
		if err != nil {
			return nil, err
		}
	}
	return i.applyProcedure(callee, args)
}

// applyProcedure calls a closure: the call frame extends the captured
// environment, never the caller's.
func (i *Interpreter) applyProcedure(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	proc, ok := callee.(*runtime.ProcedureValue)
	if !ok {
		return nil, runtime.NewError(runtime.TypeError, "Attempt to apply a non-procedure")
	}
	if len(args) != len(proc.Params) {
		return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments")
	}
	callEnv := runtime.NewEnvironment(proc.Closure)
	for idx, param := range proc.Params {
		callEnv.Define(param, args[idx])
	}
	return i.evaluateExpression(proc.Body, callEnv)
}

// evaluateDefine overwrites an existing binding anywhere in the chain, or
// creates one in the innermost frame. It returns the defined value.
func (i *Interpreter) evaluateDefine(node *ast.DefineExpression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateExpression(node.Value, env)
	if err != nil {
		return nil, err
	}
	if _, lookupErr := env.Get(node.Name); lookupErr == nil {
		if err := env.Assign(node.Name, value); err != nil {
			return nil, err
		}
		return value, nil
	}
	env.Define(node.Name, value)
	return value, nil
}

// evaluateLet evaluates every right-hand side against the original
// environment, then folds the bindings into a single child frame.
func (i *Interpreter) evaluateLet(node *ast.LetExpression, env *runtime.Environment) (runtime.Value, error) {
	values := make([]runtime.Value, len(node.Bindings))
	for idx, binding := range node.Bindings {
		value, err := i.evaluateExpression(binding.Value, env)
		if err != nil {
			return nil, err
		}
		values[idx] = value
	}
	letEnv := runtime.NewEnvironment(env)
	for idx, binding := range node.Bindings {
		letEnv.Define(binding.Name, values[idx])
	}
	return i.evaluateExpression(node.Body, letEnv)
}

// evaluateLetrec binds every name to an unset placeholder first, so the
// right-hand sides can close over each other, then patches the values in.
func (i *Interpreter) evaluateLetrec(node *ast.LetrecExpression, env *runtime.Environment) (runtime.Value, error) {
	recEnv := runtime.NewEnvironment(env)
	for _, binding := range node.Bindings {
		recEnv.Define(binding.Name, nil)
	}
	values := make([]runtime.Value, len(node.Bindings))
	for idx, binding := range node.Bindings {
		value, err := i.evaluateExpression(binding.Value, recEnv)
		if err != nil {
			return nil, err
		}
		values[idx] = value
	}
	for idx, binding := range node.Bindings {
		if err := recEnv.Assign(binding.Name, values[idx]); err != nil {
			return nil, err
		}
	}
	return i.evaluateExpression(node.Body, recEnv)
}

func (i *Interpreter) evaluateSet(node *ast.SetExpression, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateExpression(node.Value, env)
	if err != nil {
		return nil, err
	}
	if err := env.Assign(node.Name, value); err != nil {
		return nil, err
	}
	return value, nil
}
