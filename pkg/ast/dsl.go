package ast

import "wisp/interpreter-go/pkg/syntax"

// Builder helpers, mainly for tests.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Rat(numerator, denominator int64) *RationalLiteral {
	return NewRationalLiteral(numerator, denominator)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Unary(operator string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Variadic(operator string, operands ...Expression) *VariadicExpression {
	return NewVariadicExpression(operator, operands)
}

func Void() *VoidExpression {
	return NewVoidExpression()
}

func Exit() *ExitExpression {
	return NewExitExpression()
}

func Quote(datum syntax.Node) *QuoteExpression {
	return NewQuoteExpression(datum)
}

func If(condition, consequence, alternative Expression) *IfExpression {
	return NewIfExpression(condition, consequence, alternative)
}

func Clause(predicate Expression, body ...Expression) CondClause {
	return CondClause{Predicate: predicate, Body: body}
}

func Cond(clauses ...CondClause) *CondExpression {
	return NewCondExpression(clauses)
}

func And(operands ...Expression) *AndExpression {
	return NewAndExpression(operands)
}

func Or(operands ...Expression) *OrExpression {
	return NewOrExpression(operands)
}

func Begin(body ...Expression) *BeginExpression {
	return NewBeginExpression(body)
}

func Lambda(params []string, body Expression) *LambdaExpression {
	return NewLambdaExpression(params, body)
}

func Call(callee Expression, arguments ...Expression) *CallExpression {
	return NewCallExpression(callee, arguments)
}

func Define(name string, value Expression) *DefineExpression {
	return NewDefineExpression(name, value)
}

func Bind(name string, value Expression) Binding {
	return Binding{Name: name, Value: value}
}

func Let(bindings []Binding, body Expression) *LetExpression {
	return NewLetExpression(bindings, body)
}

func Letrec(bindings []Binding, body Expression) *LetrecExpression {
	return NewLetrecExpression(bindings, body)
}

func Set(name string, value Expression) *SetExpression {
	return NewSetExpression(name, value)
}
