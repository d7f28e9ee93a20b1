// Package errors provides structured error types for graphbench.
// Every error carries a category, code and message so the CLI can report
// which phase failed. Nothing in the harness retries: any error is fatal to
// the current phase.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline phase.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryInput      ErrorCategory = "INPUT"
	ErrCategoryGenerate   ErrorCategory = "GENERATE"
	ErrCategoryLoad       ErrorCategory = "LOAD"
	ErrCategoryQuery      ErrorCategory = "QUERY"
	ErrCategoryBench      ErrorCategory = "BENCH"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeInvalidGender = "INVALID_GENDER"
	CodeInvalidParam  = "INVALID_PARAM"

	// Input codes
	CodeMissingFile    = "MISSING_FILE"
	CodeMissingColumn  = "MISSING_COLUMN"
	CodeMalformedValue = "MALFORMED_VALUE"
	CodeCorruptFile    = "CORRUPT_FILE"

	// Generate codes
	CodeEmptyPopulation = "EMPTY_POPULATION"
	CodeWriteFailed     = "WRITE_FAILED"

	// Load codes
	CodeConnectFailed = "CONNECT_FAILED"
	CodeSchemaFailed  = "SCHEMA_FAILED"
	CodeBatchFailed   = "BATCH_FAILED"

	// Query codes
	CodeUnknownQuery    = "UNKNOWN_QUERY"
	CodeExecutionFailed = "EXECUTION_FAILED"

	// Bench codes
	CodeExpectationFailed = "EXPECTATION_FAILED"
	CodeGoldenInvalid     = "GOLDEN_INVALID"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeDigestMismatch = "DIGEST_MISMATCH"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// GraphbenchError is the structured error type used throughout the harness.
type GraphbenchError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *GraphbenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *GraphbenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *GraphbenchError) Is(target error) bool {
	var t *GraphbenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new GraphbenchError.
func New(category ErrorCategory, code, message string) *GraphbenchError {
	return &GraphbenchError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new GraphbenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *GraphbenchError {
	return &GraphbenchError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *GraphbenchError) WithDetails(details map[string]interface{}) *GraphbenchError {
	cp := *e
	cp.Details = details
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a GraphbenchError.
func GetCategory(err error) ErrorCategory {
	var ge *GraphbenchError
	if errors.As(err, &ge) {
		return ge.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a GraphbenchError.
func GetCode(err error) string {
	var ge *GraphbenchError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *GraphbenchError {
	return New(ErrCategoryValidation, code, message)
}

func NewInputError(code, message string, cause error) *GraphbenchError {
	return Wrap(ErrCategoryInput, code, message, cause)
}

func NewGenerateError(code, message string, cause error) *GraphbenchError {
	return Wrap(ErrCategoryGenerate, code, message, cause)
}

func NewLoadError(code, message string, cause error) *GraphbenchError {
	return Wrap(ErrCategoryLoad, code, message, cause)
}

func NewQueryError(code, message string, cause error) *GraphbenchError {
	return Wrap(ErrCategoryQuery, code, message, cause)
}

func NewBenchError(code, message string) *GraphbenchError {
	return New(ErrCategoryBench, code, message)
}

func NewStorageError(code, message string, cause error) *GraphbenchError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *GraphbenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
