package game

import "fmt"

// Kind classifies why an operation was rejected.
type Kind string

const (
	KindNoGame              Kind = "no_game"
	KindWrongPhase          Kind = "wrong_phase"
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidMove         Kind = "invalid_move"
	KindMustPlayRequired    Kind = "must_play_required"
	KindMovesRemaining      Kind = "moves_remaining"
	KindNothingToUndo       Kind = "nothing_to_undo"
	KindUndoHistoryMismatch Kind = "undo_history_mismatch"
	KindCannotDouble        Kind = "cannot_double"
	KindNoDoublePending     Kind = "no_double_pending"
)

// Error is a rejected operation. The game is left unchanged.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind, so
// errors.Is(err, ErrWrongPhase) matches any wrong-phase error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrNoGame              = &Error{Kind: KindNoGame, Message: "no active game"}
	ErrWrongPhase          = &Error{Kind: KindWrongPhase, Message: "wrong phase"}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidMove         = &Error{Kind: KindInvalidMove, Message: "invalid move"}
	ErrMustPlayRequired    = &Error{Kind: KindMustPlayRequired, Message: "required die not played"}
	ErrMovesRemaining      = &Error{Kind: KindMovesRemaining, Message: "legal moves remain"}
	ErrNothingToUndo       = &Error{Kind: KindNothingToUndo, Message: "nothing to undo"}
	ErrUndoHistoryMismatch = &Error{Kind: KindUndoHistoryMismatch, Message: "undo history mismatch"}
	ErrCannotDouble        = &Error{Kind: KindCannotDouble, Message: "cannot double"}
	ErrNoDoublePending     = &Error{Kind: KindNoDoublePending, Message: "no double pending"}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrongPhase(op string, phase Phase) *Error {
	return newError(KindWrongPhase, "cannot %s during phase %s", op, phase)
}

// InvariantError reports a corrupted game record, such as a player whose
// checkers no longer add up to 15. It is raised with panic, never returned.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated after %s: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}
