package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGraphbenchError_Error(t *testing.T) {
	err := New(ErrCategoryInput, CodeMissingColumn, "missing column population")
	expected := "[INPUT:MISSING_COLUMN] missing column population"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestGraphbenchError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryLoad, CodeConnectFailed, "connect to neo4j", cause)
	expected := "[LOAD:CONNECT_FAILED] connect to neo4j: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestGraphbenchError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryLoad, CodeBatchFailed, "batch 3", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestGraphbenchError_Is(t *testing.T) {
	err1 := New(ErrCategoryInput, CodeMalformedValue, "first")
	err2 := New(ErrCategoryInput, CodeMalformedValue, "second")
	err3 := New(ErrCategoryInput, CodeMissingFile, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestGetCategory(t *testing.T) {
	err := fmt.Errorf("loading: %w", NewQueryError(CodeUnknownQuery, "query 12", nil))
	if GetCategory(err) != ErrCategoryQuery {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryQuery)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-GraphbenchError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := NewValidationError(CodeInvalidGender, "gender must be male or female")
	if GetCode(err) != CodeInvalidGender {
		t.Errorf("got %q, want %q", GetCode(err), CodeInvalidGender)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-GraphbenchError should return empty code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCategoryBench, CodeExpectationFailed, "q1 mismatch")
	detailed := err.WithDetails(map[string]interface{}{"query": "q1"})

	if detailed.Details["query"] != "q1" {
		t.Error("WithDetails should set details")
	}
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	tests := []struct {
		name     string
		err      *GraphbenchError
		category ErrorCategory
		wrapped  bool
	}{
		{"validation", NewValidationError(CodeInvalidConfig, "bad"), ErrCategoryValidation, false},
		{"input", NewInputError(CodeMissingFile, "persons", cause), ErrCategoryInput, true},
		{"generate", NewGenerateError(CodeEmptyPopulation, "no cities", cause), ErrCategoryGenerate, true},
		{"load", NewLoadError(CodeBatchFailed, "batch", cause), ErrCategoryLoad, true},
		{"query", NewQueryError(CodeExecutionFailed, "q8", cause), ErrCategoryQuery, true},
		{"bench", NewBenchError(CodeGoldenInvalid, "golden"), ErrCategoryBench, false},
		{"storage", NewStorageError(CodeUploadFailed, "s3 down", cause), ErrCategoryStorage, true},
		{"internal", NewInternalError("unexpected", cause), ErrCategoryInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.wrapped && !errors.Is(tt.err, cause) {
				t.Error("expected cause to be wrapped")
			}
		})
	}
}
