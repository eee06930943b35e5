package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Kind clasifica los errores del motor para que la capa que llama pueda
// mostrar un mensaje específico en vez de un fallo genérico.
type Kind string

const (
	KindNotActionable          Kind = "not_actionable"
	KindAlreadyResolved        Kind = "already_resolved"
	KindInvalidReason          Kind = "invalid_reason"
	KindIdentityMismatch       Kind = "identity_mismatch"
	KindInvalidPosition        Kind = "invalid_position"
	KindInvalidPercentage      Kind = "invalid_percentage"
	KindInvalidRetentionReason Kind = "invalid_retention_reason"
	KindNotAuthorized          Kind = "not_authorized"
	KindTooManyAttempts        Kind = "too_many_attempts"
	KindDocumentClosed         Kind = "document_closed"
	KindNotFound               Kind = "not_found"
	KindConflict               Kind = "conflict"
	KindValidation             Kind = "validation"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Kind)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Kind)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError construye un error del motor con tipo y operación explícitos.
func NewError(kind Kind, op, message string, cause error) error {
	return &Error{
		Kind:    kind,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap anota un error existente con un tipo del motor.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(kind, op, err.Error(), err)
}

// IsKind indica si err (o un error envuelto) lleva el tipo dado.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf extrae el tipo del error cuando existe.
func KindOf(err error) Kind {
	var wfErr *Error
	if !errors.As(err, &wfErr) {
		return ""
	}
	return wfErr.Kind
}
