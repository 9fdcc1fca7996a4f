package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	if err.Row != NoRow {
		t.Errorf("Row = %d, want NoRow", err.Row)
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidFormat, cause, "failed to parse")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestResolutionLocation(t *testing.T) {
	err := Resolution(2, "X1", "unknown pin %q", "9")

	if err.Row != 2 {
		t.Errorf("Row = %d, want 2", err.Row)
	}
	want := `RESOLUTION_ERROR: row 2, X1: unknown pin "9"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if RowOf(fmt.Errorf("outer: %w", err)) != 2 {
		t.Error("RowOf() should unwrap to the resolution error")
	}
	if EntityOf(fmt.Errorf("outer: %w", err)) != "X1" {
		t.Error("EntityOf() should unwrap to the resolution error")
	}
	if EntityOf(errors.New("plain")) != "" {
		t.Error("EntityOf() of a plain error should be empty")
	}
}

func TestWithHarness(t *testing.T) {
	err := WithHarness(Schema("W9", "undeclared cable"), "main")

	want := "SCHEMA_ERROR: harness main, W9: undeclared cable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	plain := WithHarness(errors.New("boom"), "aux")
	if !Is(plain, ErrCodeInternal) {
		t.Errorf("plain error should become %v, got %v", ErrCodeInternal, GetCode(plain))
	}
	if WithHarness(nil, "aux") != nil {
		t.Error("WithHarness(nil) should be nil")
	}
}

func TestWithEntity(t *testing.T) {
	base := Unit("unknown unit %q", "furlong")
	err := WithEntity(base, "W1")

	if got := UserMessage(err); got != `W1: unknown unit "furlong"` {
		t.Errorf("UserMessage() = %q", got)
	}
	if base.Entity != "" {
		t.Error("WithEntity must not mutate the original error")
	}
	if !Is(WithEntity(errors.New("bad"), "X1"), ErrCodeSchema) {
		t.Error("plain errors should be reported as schema errors")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeUnit, "test"),
			code:     ErrCodeUnit,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnit, "test"),
			code:     ErrCodeColorCode,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("build: %w", Resolution(0, "", "span mismatch")),
			code:     ErrCodeResolution,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      AggregatorState("finalized"),
			expected: ErrCodeAggregatorState,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "with location",
			err:      ColorCode("unknown color %q", "XX"),
			expected: `unknown color "XX"`,
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeUnit, ErrCodeColorCode, ErrCodeResolution, ErrCodeAggregatorState,
		ErrCodeSchema, ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeFileNotFound,
		ErrCodeInternal, ErrCodeUnsupported,
	}
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code %q", c)
		}
		seen[c] = true
	}
}
