package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrNetwork              = fmt.Errorf("network error")
	ErrGroupAlreadyExists   = fmt.Errorf("group already exists")
	ErrContactAlreadyExists = fmt.Errorf("contact already exists")
	ErrUnsupportedOperation = fmt.Errorf("unsupported operation")
	ErrMoveFailed           = fmt.Errorf("move failed")
	ErrRemoveGroupFailed    = fmt.Errorf("remove group failed")
	ErrUnknown              = fmt.Errorf("unknown error")
	ErrInvalidInput         = fmt.Errorf("invalid input")

	ErrConfirmationTimeout = fmt.Errorf("confirmation not received in time")
	ErrSubscriptionFailed  = fmt.Errorf("subscription failed")
	ErrNoProtoContact      = fmt.Errorf("meta contact has no proto contact")
	ErrUnknownGroup        = fmt.Errorf("referenced group is unknown")
	ErrCorruptRow          = fmt.Errorf("corrupt stored row")
	ErrProviderNotFound    = fmt.Errorf("protocol provider not registered")
)

// ListError carries the kind of a failed contact list operation together with
// the underlying cause. errors.Is matches both.
type ListError struct {
	Kind    error
	Op      string
	Subject string
	Cause   error
}

func (e *ListError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Subject != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Subject)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *ListError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func Wrap(kind error, op, subject string, cause error) error {
	return &ListError{Kind: kind, Op: op, Subject: subject, Cause: cause}
}

// Is forwards to the standard library so callers need a single errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
