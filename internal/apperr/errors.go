// Package apperr carries the failure taxonomy shared by the store, the order
// workflow and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindPersistence
	KindPartialFailure
	KindSideEffect
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindPartialFailure:
		return "partial_failure"
	case KindSideEffect:
		return "side_effect"
	}
	return "unknown"
}

type Code string

const (
	CodeInvalid          Code = "invalid"
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodePermissionDenied Code = "permission_denied"
	CodeUnavailable      Code = "unavailable"
	CodeInternal         Code = "internal"
)

var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidID        = errors.New("invalid id")
	ErrStatusTransition = errors.New("status change not allowed")
)

type Error struct {
	Kind    Kind
	Code    Code
	Op      string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalid, Field: field, Message: message}
}

func Persistence(op string, code Code, err error) *Error {
	return &Error{Kind: KindPersistence, Code: code, Op: op, Err: err}
}

func NotFound(op, message string) *Error {
	return &Error{Kind: KindPersistence, Code: CodeNotFound, Op: op, Message: message}
}

// Partial marks a multi-step write that left persisted state behind.
func Partial(op string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Code: CodeInternal, Op: op, Err: err}
}

// SideEffect wraps failures of best-effort writes that must not fail the caller.
func SideEffect(op string, err error) *Error {
	return &Error{Kind: KindSideEffect, Code: CodeFor(err), Op: op, Err: err}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return 0
}

// CodeFor returns the code of the outermost *Error in err's chain, or
// CodeInternal for foreign errors.
func CodeFor(err error) Code {
	if e, ok := As(err); ok && e.Code != "" {
		return e.Code
	}
	return CodeInternal
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Code == CodeNotFound
}

func IsConflict(err error) bool {
	e, ok := As(err)
	return ok && e.Code == CodeConflict
}

func IsPermissionDenied(err error) bool {
	e, ok := As(err)
	return ok && e.Code == CodePermissionDenied
}
