// Package errors provides coded errors shared by the engine, its stores and
// its services. Every error carries a Code, and wrapping keeps the code and
// metadata of the innermost coded error so callers can branch on it.
package errors

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Code categorizes an error
type Code string

const (
	CodeUnknown         Code = "unknown"
	CodeInvalidArgument Code = "invalid_argument" // Malformed call, e.g. an empty id
	CodeNotFound        Code = "not_found"
	CodeAlreadyExists   Code = "already_exists"
	CodeInternal        Code = "internal"
	CodeValidation      Code = "validation" // Input that cannot build a pool or a setting
	CodePushRejected    Code = "push_rejected"
	CodeConflict        Code = "conflict" // Optimistic retries ran out
)

// MetaReason is the metadata key that carries a push rejection reason
const MetaReason = "reason"

// Error is a coded error with optional cause and metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta attaches a key/value and returns e for chaining
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. The code and metadata of a coded err are kept;
// anything else becomes CodeUnknown. Wrap(nil) is nil.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := &Error{Code: CodeUnknown, Message: message, Cause: err}
	if inner := find(err); inner != nil {
		wrapped.Code = inner.Code
		wrapped.Meta = copyMeta(inner.Meta)
	}
	return wrapped
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode is Wrap with the code replaced
func WrapWithCode(err error, code Code, message string) *Error {
	wrapped := Wrap(err, message)
	if wrapped != nil {
		wrapped.Code = code
	}
	return wrapped
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func Internal(message string) *Error { return New(CodeInternal, message) }
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

func Validation(message string) *Error { return New(CodeValidation, message) }
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return Newf(CodeConflict, format, args...)
}

// PushRejected creates a push rejection; reason is readable with GetReason
func PushRejected(reason, message string) *Error {
	return New(CodePushRejected, message).WithMeta(MetaReason, reason)
}

// Is reports whether err (or anything it wraps) is a coded error with code
func Is(err error, code Code) bool {
	return GetCode(err) == code && find(err) != nil
}

func IsNotFound(err error) bool        { return Is(err, CodeNotFound) }
func IsInvalidArgument(err error) bool { return Is(err, CodeInvalidArgument) }
func IsAlreadyExists(err error) bool   { return Is(err, CodeAlreadyExists) }
func IsInternal(err error) bool        { return Is(err, CodeInternal) }
func IsValidation(err error) bool      { return Is(err, CodeValidation) }
func IsPushRejected(err error) bool    { return Is(err, CodePushRejected) }
func IsConflict(err error) bool        { return Is(err, CodeConflict) }

// GetCode returns the code of err, or CodeUnknown
func GetCode(err error) Code {
	if e := find(err); e != nil {
		return e.Code
	}
	return CodeUnknown
}

// GetMeta returns the metadata of err, or nil
func GetMeta(err error) map[string]any {
	if e := find(err); e != nil {
		return e.Meta
	}
	return nil
}

// GetReason returns the push rejection reason, or ""
func GetReason(err error) string {
	reason, _ := GetMeta(err)[MetaReason].(string)
	return reason
}

// Fields renders err for a zap log line. Metadata keys are prefixed with "meta.".
func Fields(err error) []zap.Field {
	if err == nil {
		return nil
	}

	fields := []zap.Field{zap.Error(err), zap.String("code", string(GetCode(err)))}
	meta := GetMeta(err)
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any("meta."+k, meta[k]))
	}
	return fields
}

func find(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
