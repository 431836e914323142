// Package clerr defines the error kinds described in spec.md section 7.
// Every kind is an ordinary Go error so the reader, analyzer, and evaluator
// can return (value, error) pairs the way the teacher's Eval methods do,
// instead of panicking.
package clerr

import (
	"fmt"

	"github.com/clojurewasm/corelisp/internal/token"
)

// Kind names a semantic error category. Names are the ones spec.md section 7
// gives; they are not tied to any host-language exception hierarchy.
type Kind string

const (
	KindReader                     Kind = "ReaderError"
	KindSyntax                     Kind = "SyntaxError"
	KindArity                      Kind = "ArityError"
	KindType                       Kind = "TypeError"
	KindArithmetic                 Kind = "ArithmeticError"
	KindLookup                     Kind = "LookupError"
	KindAssertion                  Kind = "AssertionError"
	KindIllegalArgument             Kind = "IllegalArgumentException"
	KindUnsupportedOperation        Kind = "UnsupportedOperationException"
	KindUser                        Kind = "UserException"
)

// Error is the concrete error value carried through the runtime. Data and
// Cause mirror ex-info/ex-cause (spec.md section 4.6.3); Pos is only
// populated by the reader.
type Error struct {
	Kind    Kind
	Message string
	Data    interface{} // a value.Value when set; kept as interface{} to avoid an import cycle
	Cause   error
	Pos     *token.Pos
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewAt(kind Kind, pos token.Pos, format string, args ...interface{}) *Error {
	p := pos
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: &p}
}

func Reader(pos token.Pos, format string, args ...interface{}) *Error {
	return NewAt(KindReader, pos, format, args...)
}

func Syntax(format string, args ...interface{}) *Error {
	return New(KindSyntax, format, args...)
}

func Arity(format string, args ...interface{}) *Error {
	return New(KindArity, format, args...)
}

func Type(format string, args ...interface{}) *Error {
	return New(KindType, format, args...)
}

func Arithmetic(format string, args ...interface{}) *Error {
	return New(KindArithmetic, format, args...)
}

func Lookup(format string, args ...interface{}) *Error {
	return New(KindLookup, format, args...)
}

func Assertion(format string, args ...interface{}) *Error {
	return New(KindAssertion, format, args...)
}

// User builds the error thrown by (throw (ex-info msg data cause?)).
func User(message string, data interface{}, cause error) *Error {
	return &Error{Kind: KindUser, Message: message, Data: data, Cause: cause}
}

// As reports whether err is (or wraps) a *Error of the given kind.
func As(err error, kind Kind) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return e, true
			}
			err = e.Cause
			continue
		}
		break
	}
	return nil, false
}

// RootCause walks the Cause chain to its end, mirroring ex-cause applied
// repeatedly.
func RootCause(err error) error {
	for {
		e, ok := err.(*Error)
		if !ok || e.Cause == nil {
			return err
		}
		err = e.Cause
	}
}
