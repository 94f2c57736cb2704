package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BadRequestError creates a 400 Bad Request error
func BadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, message, err)
}

// GetAppError returns the AppError if the error is an AppError
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Domain errors returned by the ledger engine. Every failed transition
// maps to one of these; controllers translate them to responses.
// Storage failures are returned as-is and surface as generic 500s.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenAlreadyUsed   = errors.New("token already used")
	ErrTokenExpired       = errors.New("token expired")
	ErrBadReceiptCode     = errors.New("bad receipt code")
	ErrWrongStore         = errors.New("token belongs to another store")
	ErrWrongMerchant      = errors.New("redemption belongs to another merchant")
	ErrNotPending         = errors.New("redemption is not pending")
	ErrRedeemTokenExpired = errors.New("redeem token expired")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// InsufficientPointsError reports the customer's current (clamped)
// balance along with the shortfall
type InsufficientPointsError struct {
	Balance int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points (balance %d)", e.Balance)
}

// Is makes the error match ErrInsufficientPoints under errors.Is
func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}

// RateLimitedError reports how long the caller must wait before the
// window resets
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfter)
}
