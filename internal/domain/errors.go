package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound is returned when no aggregate matches an id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrBadInput classifies a payload that fails structural or business validation.
	ErrBadInput = errors.New("bad input")
	// ErrBadRequest classifies a failed update or delete, whatever the cause.
	ErrBadRequest = errors.New("bad request")
)

// ValidationKind identifies which aggregate rule was violated.
type ValidationKind string

const (
	EmptyQuestions             ValidationKind = "EmptyQuestions"
	WrongAnswerCount           ValidationKind = "WrongAnswerCount"
	AnswerCorrectnessViolation ValidationKind = "AnswerCorrectnessViolation"
	MissingStatement           ValidationKind = "MissingStatement"
	MissingAnswerStatement     ValidationKind = "MissingAnswerStatement"
	MissingName                ValidationKind = "MissingName"
	ClientSuppliedID           ValidationKind = "ClientSuppliedID"
)

// ValidationError reports the first rule a candidate aggregate violates.
// Subject is the quiz name or question statement the rule was checked against.
type ValidationError struct {
	Kind    ValidationKind
	Subject string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EmptyQuestions:
		return fmt.Sprintf("quiz %q should contain at least one question", e.Subject)
	case WrongAnswerCount:
		return fmt.Sprintf("question %q should contain exactly 4 answers", e.Subject)
	case AnswerCorrectnessViolation:
		return fmt.Sprintf("question %q must contain 1 and only 1 true answer", e.Subject)
	case MissingStatement:
		return fmt.Sprintf("question #%s has an empty statement", e.Subject)
	case MissingAnswerStatement:
		return fmt.Sprintf("question %q has an answer with an empty statement", e.Subject)
	case MissingName:
		return "quiz name must not be empty"
	case ClientSuppliedID:
		return fmt.Sprintf("quiz id %q must not be supplied by the client", e.Subject)
	default:
		return fmt.Sprintf("invalid quiz: %s", e.Kind)
	}
}

// Unwrap lets errors.Is(err, ErrBadInput) match any validation failure.
func (e *ValidationError) Unwrap() error { return ErrBadInput }

// Error is the outcome of a failed service operation. Kind is one of the
// sentinels above; Err is the underlying cause, if any. errors.Is matches both,
// so a rejected patch matches ErrBadRequest and ErrBadInput alike; classify by
// Kind, ErrBadRequest first. Update and Remove on an unknown id carry no cause
// and never match ErrQuizNotFound.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an Error of the given kind.
func NewError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}
