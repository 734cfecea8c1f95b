package common

import (
	"context"
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

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Error codes surfaced to callers
const (
	CodeInputError       = "INPUT_ERROR"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeAuthzFailure     = "AUTHZ_FAILURE"
	CodeStoreFailure     = "STORE_FAILURE"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InputError reports a fatal problem with the submitted file or request.
func InputError(format string, args ...interface{}) *AppError {
	return NewAppError(CodeInputError, fmt.Sprintf(format, args...), ErrInvalidInput)
}

// PermissionDenied carries the authorization reason verbatim in Message.
func PermissionDenied(reason string) *AppError {
	return NewAppError(CodePermissionDenied, reason, ErrUnauthorized)
}

// StoreError marks an infrastructure failure talking to the store.
func StoreError(message string, cause error) *AppError {
	return NewAppError(CodeStoreFailure, message, errors.Join(ErrDatabase, cause))
}

// ErrorCode returns the AppError code in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ErrorMessage returns the AppError message in err's chain, falling back to err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// GRPCStatus converts a pipeline error into a gRPC status error. Input and permission
// failures keep their message; infrastructure failures do not leak their cause.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch ErrorCode(err) {
	case CodeInputError:
		return InvalidArgumentError(ErrorMessage(err))
	case CodePermissionDenied:
		return status.Error(codes.PermissionDenied, ErrorMessage(err))
	case CodeAuthzFailure, CodeStoreFailure:
		return InternalError(ErrorMessage(err))
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFoundError(ErrorMessage(err))
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return InvalidArgumentError(ErrorMessage(err))
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return InternalError("internal error")
}
