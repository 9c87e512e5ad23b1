package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindAlreadyExists
	KindDuplicate
	KindInvalidInput
	KindFileStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindAlreadyExists:
		return "already_exists"
	case KindDuplicate:
		return "duplicate"
	case KindInvalidInput:
		return "invalid_input"
	case KindFileStorage:
		return "file_storage"
	default:
		return "internal"
	}
}

// Error carries a caller-facing message. Error() returns Message untouched so
// handlers can surface it directly.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized, Message: "not authorized"}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "resource already exists"}
	ErrDuplicate     = &Error{Kind: KindDuplicate, Message: "duplicate resource"}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrFileStorage   = &Error{Kind: KindFileStorage, Message: "file storage error"}
)

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExists(format string, args ...any) error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...any) error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func FileStorage(err error, format string, args ...any) error {
	return &Error{Kind: KindFileStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
