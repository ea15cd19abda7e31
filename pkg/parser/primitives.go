package parser

import "wisp/interpreter-go/pkg/ast"

type arityKind int

const (
	arityExact arityKind = iota
	arityAtLeast
)

type primitiveSpec struct {
	arity arityKind
	count int
}

// primitives is the table of built-in operators. Arithmetic and
// comparison operators accept two or more operands; everything else has a
// fixed arity checked at parse time.
var primitives = map[string]primitiveSpec{
	"+":  {arityAtLeast, 2},
	"-":  {arityAtLeast, 2},
	"*":  {arityAtLeast, 2},
	"/":  {arityAtLeast, 2},
	"<":  {arityAtLeast, 2},
	"<=": {arityAtLeast, 2},
	"=":  {arityAtLeast, 2},
	">=": {arityAtLeast, 2},
	">":  {arityAtLeast, 2},

	"expt":   {arityExact, 2},
	"modulo": {arityExact, 2},

	"cons":     {arityExact, 2},
	"car":      {arityExact, 1},
	"cdr":      {arityExact, 1},
	"set-car!": {arityExact, 2},
	"set-cdr!": {arityExact, 2},
	"list":     {arityAtLeast, 0},

	"eq?":        {arityExact, 2},
	"not":        {arityExact, 1},
	"boolean?":   {arityExact, 1},
	"number?":    {arityExact, 1},
	"null?":      {arityExact, 1},
	"pair?":      {arityExact, 1},
	"procedure?": {arityExact, 1},
	"symbol?":    {arityExact, 1},
	"string?":    {arityExact, 1},
	"list?":      {arityExact, 1},

	"display": {arityExact, 1},
	"void":    {arityExact, 0},
	"exit":    {arityExact, 0},
}

// reservedWords are the special forms. They are recognized only in
// operator position and only when not shadowed by a binding.
var reservedWords = map[string]struct{}{
	"begin":  {},
	"quote":  {},
	"if":     {},
	"lambda": {},
	"define": {},
	"let":    {},
	"letrec": {},
	"set!":   {},
	"cond":   {},
	"and":    {},
	"or":     {},
}

// IsPrimitive reports whether name is a built-in operator.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}

// IsReservedWord reports whether name is a special form.
func IsReservedWord(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// PrimitiveReference builds the parameter list and body for a procedure
// that wraps the named primitive, so that an unbound reference like
// (map car xs) can hand car around as a first-class value. Variadic
// operators wrap their two-operand form. The second-arity operators use
// parm1/parm2 and the unary ones a single parm, names chosen to be
// unobtrusive in a rendered closure.
func PrimitiveReference(name string) ([]string, ast.Expression, bool) {
	spec, ok := primitives[name]
	if !ok {
		return nil, nil, false
	}
	switch {
	case name == "void":
		return nil, ast.NewVoidExpression(), true
	case name == "exit":
		return nil, ast.NewExitExpression(), true
	case name == "list":
		operands := []ast.Expression{ast.NewIdentifier("parm1"), ast.NewIdentifier("parm2")}
		return []string{"parm1", "parm2"}, ast.NewVariadicExpression(name, operands), true
	case spec.arity == arityAtLeast || spec.count == 2:
		body := ast.NewBinaryExpression(name, ast.NewIdentifier("parm1"), ast.NewIdentifier("parm2"))
		return []string{"parm1", "parm2"}, body, true
	default:
		return []string{"parm"}, ast.NewUnaryExpression(name, ast.NewIdentifier("parm")), true
	}
}
