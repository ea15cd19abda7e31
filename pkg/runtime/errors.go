package runtime

import "fmt"

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	UnboundVariable ErrorKind = iota
	TypeError
	ArithmeticError
	ArityError
	SyntaxError
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundVariable:
		return "UnboundVariable"
	case TypeError:
		return "TypeError"
	case ArithmeticError:
		return "ArithmeticError"
	case ArityError:
		return "ArityError"
	case SyntaxError:
		return "SyntaxError"
	default:
		return fmt.Sprintf("unknown_error_kind_%d", int(k))
	}
}

// Error is a structured evaluation failure raised at the point of detection.
// The core never recovers from one; hosts decide whether to abort or keep
// accepting forms.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
