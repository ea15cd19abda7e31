package runtime

import (
	"fmt"

	"wisp/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindRational
	KindBool
	KindString
	KindSymbol
	KindNull
	KindPair
	KindProcedure
	KindVoid
	KindTerminate
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindRational:
		return "rational"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindNull:
		return "null"
	case KindPair:
		return "pair"
	case KindProcedure:
		return "procedure"
	case KindVoid:
		return "void"
	case KindTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

// RationalValue is an exact fraction. The denominator is never zero.
// Arithmetic primitives reduce their results to lowest terms with the sign
// on the numerator; quotation may hand out an unreduced fraction.
type RationalValue struct {
	Num int64
	Den int64
}

func (v RationalValue) Kind() Kind { return KindRational }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type SymbolValue struct {
	Name string
}

func (v SymbolValue) Kind() Kind { return KindSymbol }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

//-----------------------------------------------------------------------------
// Pairs
//-----------------------------------------------------------------------------

// PairValue owns two mutable slots. set-car!/set-cdr! overwrite them in
// place, so structures built from pairs may alias and may become cyclic.
// Identity for eq? is pointer identity.
type PairValue struct {
	Car Value
	Cdr Value
}

func (v *PairValue) Kind() Kind { return KindPair }

//-----------------------------------------------------------------------------
// Procedures
//-----------------------------------------------------------------------------

// ProcedureValue is a closure: it shares the defining environment rather
// than copying it, which is what makes later mutation of captured bindings
// visible inside the procedure.
type ProcedureValue struct {
	Params  []string
	Body    ast.Expression
	Closure *Environment
}

func (v *ProcedureValue) Kind() Kind { return KindProcedure }

//-----------------------------------------------------------------------------
// Markers
//-----------------------------------------------------------------------------

type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

// TerminateValue signals that the program asked to exit. It is a value, not
// an error; the host driver watches for it after each top-level form.
type TerminateValue struct{}

func (TerminateValue) Kind() Kind { return KindTerminate }
