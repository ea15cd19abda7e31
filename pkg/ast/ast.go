package ast

import "wisp/interpreter-go/pkg/syntax"

// NodeType names every expression-tree node kind.
type NodeType string

const (
	NodeIntegerLiteral     NodeType = "IntegerLiteral"
	NodeRationalLiteral    NodeType = "RationalLiteral"
	NodeStringLiteral      NodeType = "StringLiteral"
	NodeBooleanLiteral     NodeType = "BooleanLiteral"
	NodeIdentifier         NodeType = "Identifier"
	NodeUnaryExpression    NodeType = "UnaryExpression"
	NodeBinaryExpression   NodeType = "BinaryExpression"
	NodeVariadicExpression NodeType = "VariadicExpression"
	NodeVoidExpression     NodeType = "VoidExpression"
	NodeExitExpression     NodeType = "ExitExpression"
	NodeQuoteExpression    NodeType = "QuoteExpression"
	NodeIfExpression       NodeType = "IfExpression"
	NodeCondExpression     NodeType = "CondExpression"
	NodeAndExpression      NodeType = "AndExpression"
	NodeOrExpression       NodeType = "OrExpression"
	NodeBeginExpression    NodeType = "BeginExpression"
	NodeLambdaExpression   NodeType = "LambdaExpression"
	NodeCallExpression     NodeType = "CallExpression"
	NodeDefineExpression   NodeType = "DefineExpression"
	NodeLetExpression      NodeType = "LetExpression"
	NodeLetrecExpression   NodeType = "LetrecExpression"
	NodeSetExpression      NodeType = "SetExpression"
)

// Node is the shared behaviour of all expression-tree nodes. The tree is
// immutable once built; nodes are reused across evaluations but never
// rewritten.
type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	kind NodeType
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{kind: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.kind }
func (nodeImpl) isNode()              {}

// Expression is the marker for evaluable nodes. Every node kind in this
// language is an expression.
type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Literals

type IntegerLiteral struct {
	nodeImpl
	expressionMarker

	Value int64
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type RationalLiteral struct {
	nodeImpl
	expressionMarker

	Numerator   int64
	Denominator int64
}

func NewRationalLiteral(numerator, denominator int64) *RationalLiteral {
	return &RationalLiteral{nodeImpl: newNodeImpl(NodeRationalLiteral), Numerator: numerator, Denominator: denominator}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

// Identifier is a variable reference resolved at evaluation time.

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Primitive applications. The operator is the surface name ("car", "+", ...);
// the evaluator dispatches on it. Arity is checked at parse time, so a unary
// node always carries exactly one operand and a binary node exactly two.

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string
	Operand  Expression
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string
	Left     Expression
	Right    Expression
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type VariadicExpression struct {
	nodeImpl
	expressionMarker

	Operator string
	Operands []Expression
}

func NewVariadicExpression(operator string, operands []Expression) *VariadicExpression {
	return &VariadicExpression{nodeImpl: newNodeImpl(NodeVariadicExpression), Operator: operator, Operands: operands}
}

// VoidExpression is the nullary (void) primitive.

type VoidExpression struct {
	nodeImpl
	expressionMarker
}

func NewVoidExpression() *VoidExpression {
	return &VoidExpression{nodeImpl: newNodeImpl(NodeVoidExpression)}
}

// ExitExpression evaluates to the terminate value the host watches for.

type ExitExpression struct {
	nodeImpl
	expressionMarker
}

func NewExitExpression() *ExitExpression {
	return &ExitExpression{nodeImpl: newNodeImpl(NodeExitExpression)}
}

// QuoteExpression defers a syntax subtree for structural reconstruction at
// evaluation time.

type QuoteExpression struct {
	nodeImpl
	expressionMarker

	Datum syntax.Node
}

func NewQuoteExpression(datum syntax.Node) *QuoteExpression {
	return &QuoteExpression{nodeImpl: newNodeImpl(NodeQuoteExpression), Datum: datum}
}

// Control forms

type IfExpression struct {
	nodeImpl
	expressionMarker

	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func NewIfExpression(condition, consequence, alternative Expression) *IfExpression {
	return &IfExpression{nodeImpl: newNodeImpl(NodeIfExpression), Condition: condition, Consequence: consequence, Alternative: alternative}
}

// CondClause is one (predicate body...) clause. The parser compiles a final
// else clause into a true-literal predicate.
type CondClause struct {
	Predicate Expression
	Body      []Expression
}

type CondExpression struct {
	nodeImpl
	expressionMarker

	Clauses []CondClause
}

func NewCondExpression(clauses []CondClause) *CondExpression {
	return &CondExpression{nodeImpl: newNodeImpl(NodeCondExpression), Clauses: clauses}
}

type AndExpression struct {
	nodeImpl
	expressionMarker

	Operands []Expression
}

func NewAndExpression(operands []Expression) *AndExpression {
	return &AndExpression{nodeImpl: newNodeImpl(NodeAndExpression), Operands: operands}
}

type OrExpression struct {
	nodeImpl
	expressionMarker

	Operands []Expression
}

func NewOrExpression(operands []Expression) *OrExpression {
	return &OrExpression{nodeImpl: newNodeImpl(NodeOrExpression), Operands: operands}
}

type BeginExpression struct {
	nodeImpl
	expressionMarker

	Body []Expression
}

func NewBeginExpression(body []Expression) *BeginExpression {
	return &BeginExpression{nodeImpl: newNodeImpl(NodeBeginExpression), Body: body}
}

// Binding and application forms

type LambdaExpression struct {
	nodeImpl
	expressionMarker

	Params []string
	Body   Expression
}

func NewLambdaExpression(params []string, body Expression) *LambdaExpression {
	return &LambdaExpression{nodeImpl: newNodeImpl(NodeLambdaExpression), Params: params, Body: body}
}

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    Expression
	Arguments []Expression
}

func NewCallExpression(callee Expression, arguments []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: arguments}
}

type DefineExpression struct {
	nodeImpl
	expressionMarker

	Name  string
	Value Expression
}

func NewDefineExpression(name string, value Expression) *DefineExpression {
	return &DefineExpression{nodeImpl: newNodeImpl(NodeDefineExpression), Name: name, Value: value}
}

// Binding is one (name expr) pair in a let or letrec form.
type Binding struct {
	Name  string
	Value Expression
}

type LetExpression struct {
	nodeImpl
	expressionMarker

	Bindings []Binding
	Body     Expression
}

func NewLetExpression(bindings []Binding, body Expression) *LetExpression {
	return &LetExpression{nodeImpl: newNodeImpl(NodeLetExpression), Bindings: bindings, Body: body}
}

type LetrecExpression struct {
	nodeImpl
	expressionMarker

	Bindings []Binding
	Body     Expression
}

func NewLetrecExpression(bindings []Binding, body Expression) *LetrecExpression {
	return &LetrecExpression{nodeImpl: newNodeImpl(NodeLetrecExpression), Bindings: bindings, Body: body}
}

type SetExpression struct {
	nodeImpl
	expressionMarker

	Name  string
	Value Expression
}

func NewSetExpression(name string, value Expression) *SetExpression {
	return &SetExpression{nodeImpl: newNodeImpl(NodeSetExpression), Name: name, Value: value}
}
