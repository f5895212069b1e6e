// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotConnected       = errors.New("not connected")
	ErrAlreadyConnected   = errors.New("already connected")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrHandshakeFailed    = errors.New("handshake failed")
	ErrUnsupportedVersion = errors.New("unsupported server version")
	ErrShortMessage       = errors.New("message ended before all fields were read")
	ErrBadField           = errors.New("field could not be parsed")
	ErrUnknownMessage     = errors.New("unknown message id")
	ErrFrameTooLarge      = errors.New("frame exceeds maximum size")
	ErrTimeout            = errors.New("operation timed out")
	ErrRequestCancelled   = errors.New("request cancelled")
	ErrRequestInFlight    = errors.New("request already in flight")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
	ErrDataNotFound       = errors.New("data not found")
)

// APIError is an error reported by TWS through the ERR_MSG message.
type APIError struct {
	ReqID                   int64
	Code                    int
	Message                 string
	AdvancedOrderRejectJSON string
	Time                    int64
}

func (e *APIError) Error() string {
	if e.AdvancedOrderRejectJSON != "" {
		return fmt.Sprintf("tws error [%d] req %d: %s (%s)", e.Code, e.ReqID, e.Message, e.AdvancedOrderRejectJSON)
	}
	return fmt.Sprintf("tws error [%d] req %d: %s", e.Code, e.ReqID, e.Message)
}

// NewAPIError creates a new APIError.
func NewAPIError(reqID int64, code int, message, rejectJSON string, errorTime int64) *APIError {
	return &APIError{
		ReqID:                   reqID,
		Code:                    code,
		Message:                 message,
		AdvancedOrderRejectJSON: rejectJSON,
		Time:                    errorTime,
	}
}

// IsInformational reports whether the code is one of the farm/connectivity notices
// TWS sends through the error channel without anything having failed.
func (e *APIError) IsInformational() bool {
	switch e.Code {
	case 2100, 2103, 2104, 2105, 2106, 2107, 2108, 2109, 2119, 2150, 2157, 2158, 10167:
		return true
	}
	return false
}

// DecodeError represents a message that could not be decoded.
type DecodeError struct {
	MsgID int
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("decode error [msg %d] field %s (%q): %v", e.MsgID, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("decode error [msg %d] field %s: %v", e.MsgID, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(msgID int, field, value string, err error) *DecodeError {
	return &DecodeError{
		MsgID: msgID,
		Field: field,
		Value: value,
		Err:   err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
