// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindAuthorization ErrorKind = "authorization"
	KindExpired       ErrorKind = "expired"
)

// ServiceError is a rejected transition. Nothing was written when one is returned.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches on kind so errors.Is(err, ErrConflict) works for any conflict.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation    = &ServiceError{Kind: KindValidation}
	ErrNotFound      = &ServiceError{Kind: KindNotFound}
	ErrConflict      = &ServiceError{Kind: KindConflict}
	ErrAuthorization = &ServiceError{Kind: KindAuthorization}
	ErrExpired       = &ServiceError{Kind: KindExpired}
)

func validationError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func authorizationError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func expiredError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindExpired, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a service error, or "" for unexpected failures.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
