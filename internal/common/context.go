package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID   contextKey = "request_id"
	ContextKeyOperationID contextKey = "operation_id"
	ContextKeyEmployerID  contextKey = "employer_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithOperationID adds a bulk operation ID to the context
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, ContextKeyOperationID, operationID)
}

// OperationIDFromContext extracts the bulk operation ID from context
func OperationIDFromContext(ctx context.Context) string {
	if operationID, ok := ctx.Value(ContextKeyOperationID).(string); ok {
		return operationID
	}
	return ""
}

// WithEmployerID adds the tenant scope to the context
func WithEmployerID(ctx context.Context, employerID int64) context.Context {
	return context.WithValue(ctx, ContextKeyEmployerID, employerID)
}

// EmployerIDFromContext extracts the tenant scope from context
func EmployerIDFromContext(ctx context.Context) (int64, bool) {
	employerID, ok := ctx.Value(ContextKeyEmployerID).(int64)
	return employerID, ok
}
