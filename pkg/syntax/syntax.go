package syntax

// Node is the shared behaviour for all syntax-tree nodes produced by the
// reader. The set of kinds is closed: numbers, exact rationals, booleans,
// strings, symbols, and lists.
type Node interface {
	syntaxNode()
}

// Number is an integer literal.
type Number struct {
	Value int64
}

func (Number) syntaxNode() {}

// Rational is an exact-rational literal written as n/d.
type Rational struct {
	Numerator   int64
	Denominator int64
}

func (Rational) syntaxNode() {}

// Bool is #t or #f.
type Bool struct {
	Value bool
}

func (Bool) syntaxNode() {}

// String is a double-quoted string literal with escapes resolved.
type String struct {
	Value string
}

func (String) syntaxNode() {}

// Symbol is any atom that is not a number, rational, boolean, or string.
type Symbol struct {
	Name string
}

func (Symbol) syntaxNode() {}

// List is a parenthesized sequence of sub-nodes. It carries s-expression
// structure as well as special-form argument lists.
type List struct {
	Items []Node
}

func (*List) syntaxNode() {}

// NewList builds a list node over the given items.
func NewList(items ...Node) *List {
	return &List{Items: items}
}
