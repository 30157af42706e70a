// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errs classifies store and request errors so the REST layer can
// map them onto HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel classes. Wrap them with %w to classify an error.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundf formats an error classified as ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return classified(ErrNotFound, format, args...)
}

// Invalidf formats an error classified as ErrInvalid.
func Invalidf(format string, args ...any) error {
	return classified(ErrInvalid, format, args...)
}

// Conflictf formats an error classified as ErrConflict.
func Conflictf(format string, args ...any) error {
	return classified(ErrConflict, format, args...)
}

func classified(class error, format string, args ...any) error {
	return &classifiedError{class: class, msg: fmt.Sprintf(format, args...)}
}

type classifiedError struct {
	class error
	msg   string
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.class }

// IsNotFound reports whether err is classified as ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalid reports whether err is classified as ErrInvalid.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalid) }

// StatusCode maps err onto an HTTP status. Unclassified errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
