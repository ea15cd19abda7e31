package parser

import (
	"errors"
	"reflect"
	"testing"

	"wisp/interpreter-go/pkg/ast"
	"wisp/interpreter-go/pkg/runtime"
	"wisp/interpreter-go/pkg/syntax"
)

func parseOne(t *testing.T, src string, env *runtime.Environment) (ast.Expression, error) {
	t.Helper()
	forms, err := syntax.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll(%q) failed: %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadAll(%q) produced %d forms, want 1", src, len(forms))
	}
	return Parse(forms[0], env)
}

func mustParse(t *testing.T, src string, env *runtime.Environment) ast.Expression {
	t.Helper()
	expr, err := parseOne(t, src, env)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return expr
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expression
	}{
		{"5", ast.Int(5)},
		{"-3", ast.Int(-3)},
		{"2/4", ast.Rat(2, 4)},
		{"#t", ast.Bool(true)},
		{"#f", ast.Bool(false)},
		{`"hi there"`, ast.Str("hi there")},
		{"x", ast.ID("x")},
	}
	env := runtime.NewEnvironment(nil)
	for _, tt := range tests {
		got := mustParse(t, tt.src, env)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestParseOperators(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expression
	}{
		{"(+ 1 2)", ast.Bin("+", ast.Int(1), ast.Int(2))},
		{"(+ 1 2 3)", ast.Variadic("+", ast.Int(1), ast.Int(2), ast.Int(3))},
		{"(- 5 2)", ast.Bin("-", ast.Int(5), ast.Int(2))},
		{"(< 1 2 3)", ast.Variadic("<", ast.Int(1), ast.Int(2), ast.Int(3))},
		{"(= 1 1)", ast.Bin("=", ast.Int(1), ast.Int(1))},
		{"(list)", ast.Variadic("list")},
		{"(list 1 2)", ast.Variadic("list", ast.Int(1), ast.Int(2))},
		{"(car x)", ast.Unary("car", ast.ID("x"))},
		{"(cdr x)", ast.Unary("cdr", ast.ID("x"))},
		{"(cons 1 2)", ast.Bin("cons", ast.Int(1), ast.Int(2))},
		{"(set-car! p 1)", ast.Bin("set-car!", ast.ID("p"), ast.Int(1))},
		{"(eq? a b)", ast.Bin("eq?", ast.ID("a"), ast.ID("b"))},
		{"(expt 2 10)", ast.Bin("expt", ast.Int(2), ast.Int(10))},
		{"(modulo 7 3)", ast.Bin("modulo", ast.Int(7), ast.Int(3))},
		{"(not #f)", ast.Unary("not", ast.Bool(false))},
		{"(null? x)", ast.Unary("null?", ast.ID("x"))},
		{"(display x)", ast.Unary("display", ast.ID("x"))},
		{"(void)", ast.Void()},
		{"(exit)", ast.Exit()},
	}
	env := runtime.NewEnvironment(nil)
	for _, tt := range tests {
		got := mustParse(t, tt.src, env)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestParseSpecialForms(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expression
	}{
		{"(if #t 1 2)", ast.If(ast.Bool(true), ast.Int(1), ast.Int(2))},
		{"(begin 1 2)", ast.Begin(ast.Int(1), ast.Int(2))},
		{"(begin)", ast.Begin()},
		{"(lambda (x) x)", ast.Lambda([]string{"x"}, ast.ID("x"))},
		{
			"(lambda (x y) (display x) y)",
			ast.Lambda([]string{"x", "y"},
				ast.Begin(ast.Unary("display", ast.ID("x")), ast.ID("y"))),
		},
		{"(lambda () 1)", ast.Lambda(nil, ast.Int(1))},
		{"(define x 5)", ast.Define("x", ast.Int(5))},
		{"(set! x 5)", ast.Set("x", ast.Int(5))},
		{
			"(let ((x 1) (y 2)) (+ x y))",
			ast.Let(
				[]ast.Binding{ast.Bind("x", ast.Int(1)), ast.Bind("y", ast.Int(2))},
				ast.Bin("+", ast.ID("x"), ast.ID("y"))),
		},
		{
			"(letrec ((f 1)) f)",
			ast.Letrec([]ast.Binding{ast.Bind("f", ast.Int(1))}, ast.ID("f")),
		},
		{"(and 1 2)", ast.And(ast.Int(1), ast.Int(2))},
		{"(or)", ast.Or()},
		{
			"(cond ((< x 1) 10) (else 20))",
			ast.Cond(
				ast.Clause(ast.Bin("<", ast.ID("x"), ast.Int(1)), ast.Int(10)),
				ast.Clause(ast.Bool(true), ast.Int(20))),
		},
		{"(cond)", ast.Cond()},
	}
	env := runtime.NewEnvironment(nil)
	for _, tt := range tests {
		got := mustParse(t, tt.src, env)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.src, got, tt.want)
		}
	}
}

func TestParseNestedForm(t *testing.T) {
	env := runtime.NewEnvironment(nil)
	got := mustParse(t, "(if (< n 2) 1 (* n (f (- n 1))))", env)
	want := ast.If(
		ast.Bin("<", ast.ID("n"), ast.Int(2)),
		ast.Int(1),
		ast.Bin("*", ast.ID("n"),
			ast.Call(ast.ID("f"), ast.Bin("-", ast.ID("n"), ast.Int(1)))))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestParseQuote(t *testing.T) {
	env := runtime.NewEnvironment(nil)

	expr := mustParse(t, "'(1 2)", env)
	q, ok := expr.(*ast.QuoteExpression)
	if !ok {
		t.Fatalf("got %#v, want quote expression", expr)
	}
	list, ok := q.Datum.(*syntax.List)
	if !ok || len(list.Items) != 2 {
		t.Fatalf("quote datum = %#v, want list of 2", q.Datum)
	}

	expr = mustParse(t, "()", env)
	q, ok = expr.(*ast.QuoteExpression)
	if !ok {
		t.Fatalf("got %#v, want quote expression for ()", expr)
	}
	list, ok = q.Datum.(*syntax.List)
	if !ok || len(list.Items) != 0 {
		t.Fatalf("quote datum = %#v, want empty list", q.Datum)
	}
}

func TestBindingShadowsOperator(t *testing.T) {
	env := runtime.NewEnvironment(nil)
	env.Define("+", runtime.IntegerValue{Val: 1})
	env.Define("if", runtime.IntegerValue{Val: 2})

	got := mustParse(t, "(+ 1 2)", env)
	want := ast.Call(ast.ID("+"), ast.Int(1), ast.Int(2))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("shadowed +: got %#v, want %#v", got, want)
	}

	got = mustParse(t, "(if 1 2)", env)
	want = ast.Call(ast.ID("if"), ast.Int(1), ast.Int(2))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("shadowed if: got %#v, want %#v", got, want)
	}
}

func TestUnknownHeadBecomesCall(t *testing.T) {
	env := runtime.NewEnvironment(nil)
	got := mustParse(t, "(frobnicate 1 2)", env)
	want := ast.Call(ast.ID("frobnicate"), ast.Int(1), ast.Int(2))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	got = mustParse(t, "((lambda (x) x) 5)", env)
	want = ast.Call(ast.Lambda([]string{"x"}, ast.ID("x")), ast.Int(5))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src     string
		wantMsg string
		kind    runtime.ErrorKind
	}{
		{"(car)", "Wrong number of arguments for car", runtime.ArityError},
		{"(car 1 2)", "Wrong number of arguments for car", runtime.ArityError},
		{"(+ 1)", "Wrong number of arguments for +", runtime.ArityError},
		{"(cons 1)", "Wrong number of arguments for cons", runtime.ArityError},
		{"(void 1)", "Wrong number of arguments for void", runtime.ArityError},
		{"(if 1 2)", "Wrong number of arguments for if", runtime.ArityError},
		{"(if 1 2 3 4)", "Wrong number of arguments for if", runtime.ArityError},
		{"(quote)", "Wrong number of arguments for quote", runtime.ArityError},
		{"(quote 1 2)", "Wrong number of arguments for quote", runtime.ArityError},
		{"(lambda (x))", "Wrong number of arguments for lambda", runtime.ArityError},
		{"(define x)", "Wrong number of arguments for define", runtime.ArityError},
		{"(set! x)", "Wrong number of arguments for set!", runtime.ArityError},
		{"(let ((x 1)))", "Wrong number of arguments for let", runtime.ArityError},
		{"(lambda x x)", "lambda params must be a list", runtime.SyntaxError},
		{"(lambda (1) x)", "lambda param must be symbol", runtime.SyntaxError},
		{"(lambda (x x) x)", "Duplicate parameter 'x' in lambda", runtime.SyntaxError},
		{"(define 1 2)", "define variable must be symbol", runtime.SyntaxError},
		{"(let x 1)", "let bindings must be list", runtime.SyntaxError},
		{"(let ((x)) x)", "let binding must be (name expr)", runtime.SyntaxError},
		{"(let ((1 2)) 3)", "let binding name must be symbol", runtime.SyntaxError},
		{"(let ((x 1) (x 2)) x)", "Duplicate binding 'x' in let", runtime.SyntaxError},
		{"(letrec x 1)", "letrec bindings must be list", runtime.SyntaxError},
		{"(letrec ((x 1) (x 2)) x)", "Duplicate binding 'x' in letrec", runtime.SyntaxError},
		{"(set! 1 2)", "set! target must be symbol", runtime.SyntaxError},
		{"(cond x)", "cond clause must be a list", runtime.SyntaxError},
		{"(cond ())", "cond clause must be a list", runtime.SyntaxError},
		{"(cond (else 1) (#t 2))", "else clause must be last in cond", runtime.SyntaxError},
	}
	env := runtime.NewEnvironment(nil)
	for _, tt := range tests {
		_, err := parseOne(t, tt.src, env)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error %q", tt.src, tt.wantMsg)
			continue
		}
		if err.Error() != tt.wantMsg {
			t.Errorf("Parse(%q) error = %q, want %q", tt.src, err.Error(), tt.wantMsg)
		}
		var rerr *runtime.Error
		if !errors.As(err, &rerr) || rerr.Kind != tt.kind {
			t.Errorf("Parse(%q) error kind = %v, want %v", tt.src, err, tt.kind)
		}
	}
}

func TestParseErrorInsideArgumentSurfacesFirst(t *testing.T) {
	env := runtime.NewEnvironment(nil)
	_, err := parseOne(t, "(car (lambda x x))", env)
	if err == nil || err.Error() != "lambda params must be a list" {
		t.Fatalf("got %v, want inner lambda error", err)
	}
}

func TestPrimitiveReference(t *testing.T) {
	params, body, ok := PrimitiveReference("car")
	if !ok {
		t.Fatal("PrimitiveReference(car) not found")
	}
	if !reflect.DeepEqual(params, []string{"parm"}) {
		t.Errorf("car params = %v", params)
	}
	if want := ast.Unary("car", ast.ID("parm")); !reflect.DeepEqual(body, want) {
		t.Errorf("car body = %#v, want %#v", body, want)
	}

	params, body, ok = PrimitiveReference("+")
	if !ok {
		t.Fatal("PrimitiveReference(+) not found")
	}
	if !reflect.DeepEqual(params, []string{"parm1", "parm2"}) {
		t.Errorf("+ params = %v", params)
	}
	if want := ast.Bin("+", ast.ID("parm1"), ast.ID("parm2")); !reflect.DeepEqual(body, want) {
		t.Errorf("+ body = %#v, want %#v", body, want)
	}

	params, body, ok = PrimitiveReference("void")
	if !ok || len(params) != 0 {
		t.Fatalf("PrimitiveReference(void) = %v, %v, %v", params, body, ok)
	}
	if _, isVoid := body.(*ast.VoidExpression); !isVoid {
		t.Errorf("void body = %#v", body)
	}

	if _, _, ok := PrimitiveReference("lambda"); ok {
		t.Error("PrimitiveReference(lambda) should not resolve")
	}
	if _, _, ok := PrimitiveReference("nonesuch"); ok {
		t.Error("PrimitiveReference(nonesuch) should not resolve")
	}
}

func TestTableQueries(t *testing.T) {
	if !IsPrimitive("car") || IsPrimitive("lambda") || IsPrimitive("nonesuch") {
		t.Error("IsPrimitive misclassifies")
	}
	if !IsReservedWord("lambda") || IsReservedWord("car") || IsReservedWord("nonesuch") {
		t.Error("IsReservedWord misclassifies")
	}
}
