package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes surfaced to callers.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUpstreamCleaning = "UPSTREAM_CLEANING"
	CodeConfig           = "CONFIG_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream service error")
	ErrConflict     = errors.New("conflict")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InputError is a caller-side validation failure, raised before any job exists.
func InputError(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, ErrInvalidInput)
}

// UpstreamCleaningError reports that the text-normalization service failed.
func UpstreamCleaningError(cause error) *AppError {
	return NewAppError(CodeUpstreamCleaning, "cleaner service error", fmt.Errorf("%w: %w", ErrUpstream, cause))
}

// AppMessage returns the human message of an AppError, or err.Error() otherwise.
func AppMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func UnavailableError(message string) error {
	return status.Error(codes.Unavailable, message)
}

func FailedPreconditionError(message string) error {
	return status.Error(codes.FailedPrecondition, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToGRPCError maps the error taxonomy onto gRPC status codes.
func ToGRPCError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(AppMessage(err))
	case errors.Is(err, ErrUpstream):
		return UnavailableError(AppMessage(err))
	case errors.Is(err, ErrNotFound):
		return NotFoundError(AppMessage(err))
	case errors.Is(err, ErrConflict):
		return FailedPreconditionError(AppMessage(err))
	default:
		return InternalErrorf("internal: %v", err)
	}
}
