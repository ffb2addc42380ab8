package object

import (
	"fmt"

	"rocket/internal/token"
)

// Kind is the closed taxonomy of runtime error kinds from §7. Lexer and
// parser errors carry their own kinds (LexError, ParseError) defined
// alongside the lexer and parser respectively.
type Kind string

const (
	NameError     Kind = "NameError"
	ArityError    Kind = "ArityError"
	TypeError     Kind = "TypeError"
	IndexError    Kind = "IndexError"
	KeyError      Kind = "KeyError"
	AttrError     Kind = "AttrError"
	ValueError    Kind = "ValueError"
	CtrlFlowError Kind = "CtrlFlowError"
)

// RuntimeError is every error the evaluator and built-ins raise. It carries
// the kind, a message, and the source position of the offending token or
// node, per §7's propagation rule: no error is recovered inside the core.
type RuntimeError struct {
	Kind Kind
	Msg  string
	Pos  token.Position
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Pos)
}

func NewError(kind Kind, pos token.Position, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}
