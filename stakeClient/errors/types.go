package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeBuildFailed indicates a transaction description could not be assembled
	ErrCodeBuildFailed ErrorCode = "BUILD_FAILED"

	// ErrCodeSignFailed indicates the signing provider rejected or failed a description
	ErrCodeSignFailed ErrorCode = "SIGN_FAILED"

	// ErrCodeBroadcastFailed indicates the node refused or failed to accept a signed tx
	ErrCodeBroadcastFailed ErrorCode = "BROADCAST_FAILED"

	// ErrCodeConfirmationTimeout indicates a tx was not found within the polling budget
	ErrCodeConfirmationTimeout ErrorCode = "CONFIRMATION_TIMEOUT"

	// ErrCodeNotFound indicates expected upstream data is missing
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeValidation indicates input validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeRPC indicates RPC-related errors
	ErrCodeRPC ErrorCode = "RPC"

	// ErrCodeNetwork indicates HTTP or transport errors
	ErrCodeNetwork ErrorCode = "NETWORK"

	// ErrCodeInternal indicates internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrBuildFailed         = &Error{Code: ErrCodeBuildFailed}
	ErrSignFailed          = &Error{Code: ErrCodeSignFailed}
	ErrBroadcastFailed     = &Error{Code: ErrCodeBroadcastFailed}
	ErrConfirmationTimeout = &Error{Code: ErrCodeConfirmationTimeout}
	ErrNotFound            = &Error{Code: ErrCodeNotFound}
	ErrValidation          = &Error{Code: ErrCodeValidation}
	ErrConfig              = &Error{Code: ErrCodeConfig}
	ErrRPC                 = &Error{Code: ErrCodeRPC}
	ErrNetwork             = &Error{Code: ErrCodeNetwork}
)

// Error is the error type returned across stakeClient packages.
type Error struct {
	Code    ErrorCode              `json:"code"`
	Op      string                 `json:"op,omitempty"`
	Coin    string                 `json:"coin,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// New creates a new Error
func New(code ErrorCode, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Op != "" {
		prefix = fmt.Sprintf("%s:%s", e.Op, e.Code)
	}
	if e.Coin != "" {
		prefix = fmt.Sprintf("%s/%s", e.Coin, prefix)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", prefix, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCoin tags the error with the coin symbol it relates to
func (e *Error) WithCoin(coin string) *Error {
	e.Coin = coin
	return e
}

// IsRetryable returns true if the failure is transient
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrCodeNetwork, ErrCodeRPC, ErrCodeConfirmationTimeout:
		return true
	default:
		return false
	}
}

// Common error constructors

// NewBuildError creates a transaction build error
func NewBuildError(op, message string, cause error) *Error {
	return New(ErrCodeBuildFailed, op, message, cause)
}

// NewSignError creates a signing error
func NewSignError(op, message string, cause error) *Error {
	return New(ErrCodeSignFailed, op, message, cause)
}

// NewBroadcastError creates a broadcast error
func NewBroadcastError(op, message string, cause error) *Error {
	return New(ErrCodeBroadcastFailed, op, message, cause)
}

// NewTimeoutError creates a confirmation timeout error
func NewTimeoutError(op, message string) *Error {
	return New(ErrCodeConfirmationTimeout, op, message, nil)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(op, message string) *Error {
	return New(ErrCodeNotFound, op, message, nil)
}

// NewValidationError creates a validation error
func NewValidationError(op, message string) *Error {
	return New(ErrCodeValidation, op, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(op, message string) *Error {
	return New(ErrCodeConfig, op, message, nil)
}

// NewRPCError creates an RPC error
func NewRPCError(op, message string, cause error) *Error {
	return New(ErrCodeRPC, op, message, cause)
}

// NewNetworkError creates a network error
func NewNetworkError(op, message string, cause error) *Error {
	return New(ErrCodeNetwork, op, message, cause)
}

// NewInternalError creates an internal error
func NewInternalError(op, message string, cause error) *Error {
	return New(ErrCodeInternal, op, message, cause)
}
