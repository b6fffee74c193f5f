// Package errors provides coded errors for the backtester.
//
// Codes are grouped by range:
//   - 100-199 validation of parameters and strategy configuration
//   - 200-299 candle data sources
//   - 300-399 indicators
//   - 400-499 strategy loading
//   - 500-599 trade and position management
//   - 600-699 the backtest engine
//   - 700-799 raw market data parsing
//   - 800-899 lifecycle callbacks
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeInvalidTimeframe, "timeframe must be positive, got %d", tf)
//	if errors.HasCode(err, errors.ErrCodeInvalidTimeframe) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is an error with a code, a message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is errors.Join from the standard library. It returns nil when every err is nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// GetCode returns the code of the first *Error in err's chain, or ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ParseError reports a raw candle row that could not be converted.
// It is always fatal for the load that produced it.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Column, e.Value, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsParseError reports whether err's chain contains a *ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError

	return errors.As(err, &parseErr)
}
