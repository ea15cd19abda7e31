package parser

import (
	"wisp/interpreter-go/pkg/ast"
	"wisp/interpreter-go/pkg/runtime"
	"wisp/interpreter-go/pkg/syntax"
)

// Parse maps one syntax-tree form to an expression-tree node. The
// environment is consulted for exactly one decision: whether the leading
// symbol of a list form is a bound variable, which takes precedence over
// the primitive and reserved-word tables. Malformed forms and wrong
// primitive arities fail here, before any evaluation.
func Parse(form syntax.Node, env *runtime.Environment) (ast.Expression, error) {
	switch node := form.(type) {
	case syntax.Number:
		return ast.NewIntegerLiteral(node.Value), nil
	case syntax.Rational:
		return ast.NewRationalLiteral(node.Numerator, node.Denominator), nil
	case syntax.Bool:
		return ast.NewBooleanLiteral(node.Value), nil
	case syntax.String:
		return ast.NewStringLiteral(node.Value), nil
	case syntax.Symbol:
		return ast.NewIdentifier(node.Name), nil
	case *syntax.List:
		return parseList(node, env)
	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unimplemented parse method")
	}
}

func parseList(node *syntax.List, env *runtime.Environment) (ast.Expression, error) {
	items := node.Items
	if len(items) == 0 {
		return ast.NewQuoteExpression(&syntax.List{}), nil
	}

	head, ok := items[0].(syntax.Symbol)
	if !ok {
		return parseCall(items[0], items[1:], env)
	}
	op := head.Name

	// A binding in scope shadows primitives and reserved words.
	if env != nil {
		if _, err := env.Get(op); err == nil {
			return parseCall(items[0], items[1:], env)
		}
	}
	if spec, ok := primitives[op]; ok {
		return parsePrimitive(op, spec, items[1:], env)
	}
	if _, ok := reservedWords[op]; ok {
		return parseSpecialForm(op, items, env)
	}
	// The symbol may be defined by the time the form runs.
	return parseCall(items[0], items[1:], env)
}

func parseCall(callee syntax.Node, argForms []syntax.Node, env *runtime.Environment) (ast.Expression, error) {
	calleeExpr, err := Parse(callee, env)
	if err != nil {
		return nil, err
	}
	args, err := parseAll(argForms, env)
	if err != nil {
		return nil, err
	}
	return ast.NewCallExpression(calleeExpr, args), nil
}

func parseAll(forms []syntax.Node, env *runtime.Environment) ([]ast.Expression, error) {
	if len(forms) == 0 {
		return nil, nil
	}
	out := make([]ast.Expression, 0, len(forms))
	for _, form := range forms {
		expr, err := Parse(form, env)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func parsePrimitive(op string, spec primitiveSpec, argForms []syntax.Node, env *runtime.Environment) (ast.Expression, error) {
	args, err := parseAll(argForms, env)
	if err != nil {
		return nil, err
	}
	switch spec.arity {
	case arityExact:
		if len(args) != spec.count {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for %s", op)
		}
	case arityAtLeast:
		if len(args) < spec.count {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for %s", op)
		}
	}

	switch {
	case op == "void":
		return ast.NewVoidExpression(), nil
	case op == "exit":
		return ast.NewExitExpression(), nil
	case op == "list":
		return ast.NewVariadicExpression(op, args), nil
	case spec.arity == arityAtLeast:
		// Arithmetic and comparisons keep a binary fast path.
		if len(args) == 2 {
			return ast.NewBinaryExpression(op, args[0], args[1]), nil
		}
		return ast.NewVariadicExpression(op, args), nil
	case spec.count == 1:
		return ast.NewUnaryExpression(op, args[0]), nil
	default:
		return ast.NewBinaryExpression(op, args[0], args[1]), nil
	}
}

func parseSpecialForm(op string, items []syntax.Node, env *runtime.Environment) (ast.Expression, error) {
	switch op {
	case "begin":
		body, err := parseAll(items[1:], env)
		if err != nil {
			return nil, err
		}
		return ast.NewBeginExpression(body), nil

	case "quote":
		if len(items) != 2 {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for quote")
		}
		return ast.NewQuoteExpression(items[1]), nil

	case "if":
		if len(items) != 4 {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for if")
		}
		parts, err := parseAll(items[1:], env)
		if err != nil {
			return nil, err
		}
		return ast.NewIfExpression(parts[0], parts[1], parts[2]), nil

	case "lambda":
		if len(items) < 3 {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for lambda")
		}
		params, err := parseParams(items[1])
		if err != nil {
			return nil, err
		}
		body, err := parseBody(items[2:], env)
		if err != nil {
			return nil, err
		}
		return ast.NewLambdaExpression(params, body), nil

	case "define":
		if len(items) != 3 {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for define")
		}
		name, ok := items[1].(syntax.Symbol)
		if !ok {
			return nil, runtime.NewError(runtime.SyntaxError, "define variable must be symbol")
		}
		value, err := Parse(items[2], env)
		if err != nil {
			return nil, err
		}
		return ast.NewDefineExpression(name.Name, value), nil

	case "let", "letrec":
		if len(items) < 3 {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for %s", op)
		}
		bindings, err := parseBindings(op, items[1], env)
		if err != nil {
			return nil, err
		}
		body, err := parseBody(items[2:], env)
		if err != nil {
			return nil, err
		}
		if op == "let" {
			return ast.NewLetExpression(bindings, body), nil
		}
		return ast.NewLetrecExpression(bindings, body), nil

	case "set!":
		if len(items) != 3 {
			return nil, runtime.NewError(runtime.ArityError, "Wrong number of arguments for set!")
		}
		name, ok := items[1].(syntax.Symbol)
		if !ok {
			return nil, runtime.NewError(runtime.SyntaxError, "set! target must be symbol")
		}
		value, err := Parse(items[2], env)
		if err != nil {
			return nil, err
		}
		return ast.NewSetExpression(name.Name, value), nil

	case "cond":
		var clauses []ast.CondClause
		for i := 1; i < len(items); i++ {
			clause, ok := items[i].(*syntax.List)
			if !ok || len(clause.Items) == 0 {
				return nil, runtime.NewError(runtime.SyntaxError, "cond clause must be a list")
			}
			var predicate ast.Expression
			if sym, ok := clause.Items[0].(syntax.Symbol); ok && sym.Name == "else" {
				if i != len(items)-1 {
					return nil, runtime.NewError(runtime.SyntaxError, "else clause must be last in cond")
				}
				predicate = ast.NewBooleanLiteral(true)
			} else {
				var err error
				predicate, err = Parse(clause.Items[0], env)
				if err != nil {
					return nil, err
				}
			}
			body, err := parseAll(clause.Items[1:], env)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, ast.CondClause{Predicate: predicate, Body: body})
		}
		return ast.NewCondExpression(clauses), nil

	case "and", "or":
		operands, err := parseAll(items[1:], env)
		if err != nil {
			return nil, err
		}
		if op == "and" {
			return ast.NewAndExpression(operands), nil
		}
		return ast.NewOrExpression(operands), nil

	default:
		return nil, runtime.NewError(runtime.SyntaxError, "Unknown reserved word: %s", op)
	}
}

func parseParams(form syntax.Node) ([]string, error) {
	plist, ok := form.(*syntax.List)
	if !ok {
		return nil, runtime.NewError(runtime.SyntaxError, "lambda params must be a list")
	}
	var params []string
	seen := make(map[string]struct{}, len(plist.Items))
	for _, item := range plist.Items {
		sym, ok := item.(syntax.Symbol)
		if !ok {
			return nil, runtime.NewError(runtime.SyntaxError, "lambda param must be symbol")
		}
		if _, dup := seen[sym.Name]; dup {
			return nil, runtime.NewError(runtime.SyntaxError, "Duplicate parameter '%s' in lambda", sym.Name)
		}
		seen[sym.Name] = struct{}{}
		params = append(params, sym.Name)
	}
	return params, nil
}

func parseBindings(form string, node syntax.Node, env *runtime.Environment) ([]ast.Binding, error) {
	blist, ok := node.(*syntax.List)
	if !ok {
		return nil, runtime.NewError(runtime.SyntaxError, "%s bindings must be list", form)
	}
	var bindings []ast.Binding
	seen := make(map[string]struct{}, len(blist.Items))
	for _, item := range blist.Items {
		pair, ok := item.(*syntax.List)
		if !ok || len(pair.Items) != 2 {
			return nil, runtime.NewError(runtime.SyntaxError, "%s binding must be (name expr)", form)
		}
		sym, ok := pair.Items[0].(syntax.Symbol)
		if !ok {
			return nil, runtime.NewError(runtime.SyntaxError, "%s binding name must be symbol", form)
		}
		if _, dup := seen[sym.Name]; dup {
			return nil, runtime.NewError(runtime.SyntaxError, "Duplicate binding '%s' in %s", sym.Name, form)
		}
		seen[sym.Name] = struct{}{}
		// Right-hand sides parse against the enclosing environment; for
		// letrec the recursive references resolve at evaluation time.
		value, err := Parse(pair.Items[1], env)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: sym.Name, Value: value})
	}
	return bindings, nil
}

// parseBody parses one or more body forms, wrapping multiple forms in an
// implicit begin.
func parseBody(forms []syntax.Node, env *runtime.Environment) (ast.Expression, error) {
	if len(forms) == 1 {
		return Parse(forms[0], env)
	}
	body, err := parseAll(forms, env)
	if err != nil {
		return nil, err
	}
	return ast.NewBeginExpression(body), nil
}
