package csvflow

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is(t *testing.T) {
	err := newParseError(ColumnCountMismatch, Location{RowNumber: 3}, "", "record has %d fields", 5)
	if !errors.Is(err, ErrColumnCountMismatch) {
		t.Error("expected errors.Is to match ErrColumnCountMismatch")
	}
	if errors.Is(err, ErrFieldCountExceeded) {
		t.Error("did not expect errors.Is to match a different sentinel")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := newCancelledError("src", AbortError, cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to see through Unwrap to the cause")
	}
	if !errors.Is(err, ErrCancelled) {
		t.Error("expected errors.Is to also match the Cancelled sentinel")
	}
}

func TestError_Message(t *testing.T) {
	err := newParseError(UnexpectedEOFInQuotedField, Location{Start: Pos{Line: 2, Column: 5}, RowNumber: 2}, "file.csv", "eof in quote")
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a non-empty message")
	}
	if !errors.Is(err, ErrUnexpectedEOFInQuotedField) {
		t.Error("expected sentinel match for UnexpectedEOFInQuotedField")
	}
}

func TestAsError(t *testing.T) {
	var err error = newOptionError("bad option")
	e, ok := AsError(err)
	if !ok {
		t.Fatal("expected AsError to succeed")
	}
	if e.Kind != InvalidOption {
		t.Errorf("Kind = %v, want InvalidOption", e.Kind)
	}
	if _, ok := AsError(nil); ok {
		t.Error("AsError(nil) should return ok=false")
	}
	if _, ok := AsError(fmt.Errorf("plain")); ok {
		t.Error("AsError on a non-*Error should return ok=false")
	}
}

func TestCancelReason_String(t *testing.T) {
	if AbortError.String() != "AbortError" {
		t.Errorf("AbortError.String() = %q", AbortError.String())
	}
	if TimeoutError.String() != "TimeoutError" {
		t.Errorf("TimeoutError.String() = %q", TimeoutError.String())
	}
}
