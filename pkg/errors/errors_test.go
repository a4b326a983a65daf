package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeContractViolation, "expected %d results", 3)

	if err.Code != ErrCodeContractViolation {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeContractViolation)
	}

	if err.Message != "expected 3 results" {
		t.Errorf("Message = %v, want %v", err.Message, "expected 3 results")
	}

	expected := "CONTRACT_VIOLATION: expected 3 results"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeTransport, cause, "POST /eval")

	if err.Code != ErrCodeTransport {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeTransport)
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

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidDiscourse, "test"),
			code:     ErrCodeInvalidDiscourse,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidDiscourse, "test"),
			code:     ErrCodeTransport,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeTransport, New(ErrCodeContractViolation, "inner"), "outer"),
			code:     ErrCodeTransport,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("session: %w", New(ErrCodeStale, "superseded")),
			code:     ErrCodeStale,
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
		{"Error type", New(ErrCodeDegenerateLayout, "test"), ErrCodeDegenerateLayout},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
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
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsInterpretationFailure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeTransport, "x"), true},
		{New(ErrCodeContractViolation, "x"), true},
		{New(ErrCodeTimeout, "x"), true},
		{New(ErrCodeStale, "x"), false},
		{New(ErrCodeInvalidDiscourse, "x"), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsInterpretationFailure(tt.err); got != tt.want {
			t.Errorf("IsInterpretationFailure(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
