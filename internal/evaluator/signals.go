package evaluator

import (
	"rocket/internal/object"
	"rocket/internal/token"
)

// breakSignal, continueSignal, and returnSignal are control-flow outcomes
// threaded through Go's ordinary error return rather than a panic, so a
// genuine TypeError is never confused with an intentional non-local exit.
// Loops consume break/continue; calls consume return. Any signal that
// escapes every loop and call is turned into a CtrlFlowError by the caller,
// stamped with Pos — the position of the break/continue/return statement
// itself, not the call site or program start that happened to catch it.
type breakSignal struct{ Pos token.Position }

func (breakSignal) Error() string { return "break outside a loop" }

type continueSignal struct{ Pos token.Position }

func (continueSignal) Error() string { return "continue outside a loop" }

type returnSignal struct {
	Value object.Object
	Pos   token.Position
}

func (returnSignal) Error() string { return "return outside a function" }

func isBreak(err error) bool    { _, ok := err.(breakSignal); return ok }
func isContinue(err error) bool { _, ok := err.(continueSignal); return ok }
func asReturn(err error) (returnSignal, bool) {
	rs, ok := err.(returnSignal)
	return rs, ok
}
