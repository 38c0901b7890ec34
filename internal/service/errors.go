package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sanioooook/TodoApp/internal/repo"
)

// Kind classifies why an operation failed.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindServer
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server_error"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the failure outcome of every service operation.
type Error struct {
	Kind    Kind
	Entity  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the per-kind sentinels below, so callers can write
// errors.Is(err, service.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Entity == "" && t.Kind == e.Kind
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrServer       = &Error{Kind: KindServer}
	ErrCanceled     = &Error{Kind: KindCanceled}
)

// KindOf returns the kind carried by err, or KindServer for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

const (
	entityList = "todo list"
	entityUser = "user"
)

func validation(entity, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(entity, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Entity: entity, Message: msg}
}

func notFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: entity + " not found"}
}

func conflict(entity, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

func canceled(err error) *Error {
	return &Error{Kind: KindCanceled, Message: "operation canceled", Err: err}
}

// storeFailure turns an unexpected store error into a Canceled or Server outcome.
func storeFailure(ctx context.Context, entity, op string, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return canceled(err)
	}
	if errors.Is(err, repo.ErrNoRowsAffected) {
		return &Error{Kind: KindServer, Entity: entity, Message: op + " was not applied by the store", Err: err}
	}
	return &Error{Kind: KindServer, Entity: entity, Message: op + " failed", Err: err}
}

func checkPage(skip, take int) *Error {
	if skip < 0 {
		return validation("", "skip can't be less than 0")
	}
	if take < 1 {
		return validation("", "take can't be less than 1")
	}
	if take > MaxPageSize {
		return validation("", "take can't be more than %d", MaxPageSize)
	}
	return nil
}

// MaxPageSize caps take on paged queries.
const MaxPageSize = 100
