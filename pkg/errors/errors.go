// Package errors provides structured error types for harnessviz.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending harness, entity or row
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The harness build distinguishes five failure classes:
//   - UNIT_ERROR: unrecognized unit or out-of-range gauge conversion
//   - COLOR_CODE_ERROR: unknown color token or color-code standard overflow
//   - RESOLUTION_ERROR: malformed or inconsistent connection row
//   - AGGREGATOR_STATE_ERROR: BOM aggregator used after finalization
//   - SCHEMA_ERROR: missing required field or reference to an undeclared entity
//
// # Usage
//
//	err := errors.Resolution(3, "X1", "unknown pin %q", "9")
//	if errors.Is(err, errors.ErrCodeResolution) {
//	    // Handle malformed row
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "failed to parse %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Harness build errors
	ErrCodeUnit            Code = "UNIT_ERROR"
	ErrCodeColorCode       Code = "COLOR_CODE_ERROR"
	ErrCodeResolution      Code = "RESOLUTION_ERROR"
	ErrCodeAggregatorState Code = "AGGREGATOR_STATE_ERROR"
	ErrCodeSchema          Code = "SCHEMA_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// NoRow marks an error that is not tied to a connection row.
const NoRow = -1

// Error is a structured error with a code, optional location and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	Harness string // Harness name (optional, set by the pipeline)
	Entity  string // Connector or cable ID (optional)
	Row     int    // 0-based connection row index, or NoRow
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if loc := e.location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) location() string {
	var parts []string
	if e.Harness != "" {
		parts = append(parts, "harness "+e.Harness)
	}
	if e.Row != NoRow {
		parts = append(parts, fmt.Sprintf("row %d", e.Row))
	}
	if e.Entity != "" {
		parts = append(parts, e.Entity)
	}
	return strings.Join(parts, ", ")
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Row:     NoRow,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
		Row:     NoRow,
	}
}

// Unit creates a UNIT_ERROR.
func Unit(format string, args ...any) *Error {
	return New(ErrCodeUnit, format, args...)
}

// ColorCode creates a COLOR_CODE_ERROR.
func ColorCode(format string, args ...any) *Error {
	return New(ErrCodeColorCode, format, args...)
}

// Resolution creates a RESOLUTION_ERROR for the given row and entity.
// Pass an empty entity when the problem concerns the row as a whole.
func Resolution(row int, entity string, format string, args ...any) *Error {
	e := New(ErrCodeResolution, format, args...)
	e.Row = row
	e.Entity = entity
	return e
}

// AggregatorState creates an AGGREGATOR_STATE_ERROR.
func AggregatorState(format string, args ...any) *Error {
	return New(ErrCodeAggregatorState, format, args...)
}

// Schema creates a SCHEMA_ERROR for the given entity.
func Schema(entity string, format string, args ...any) *Error {
	e := New(ErrCodeSchema, format, args...)
	e.Entity = entity
	return e
}

// WithEntity attaches an entity ID to err if it is an *Error without one.
// Other errors are wrapped into a SCHEMA_ERROR naming the entity.
func WithEntity(err error, entity string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Entity == "" {
			c := *e
			c.Entity = entity
			return &c
		}
		return err
	}
	return &Error{Code: ErrCodeSchema, Message: err.Error(), Entity: entity, Row: NoRow}
}

// WithHarness attaches a harness name to err if it is an *Error.
// Other errors are wrapped as INTERNAL_ERROR so callers always see the harness.
func WithHarness(err error, harness string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		c := *e
		c.Harness = harness
		return &c
	}
	return &Error{Code: ErrCodeInternal, Message: "build failed", Cause: err, Harness: harness, Row: NoRow}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// RowOf returns the connection row attached to err, or NoRow.
func RowOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Row
	}
	return NoRow
}

// EntityOf returns the entity attached to err, or "".
func EntityOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Entity
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the location and message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if loc := e.location(); loc != "" {
			return loc + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
