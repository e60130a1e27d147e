// Package errors provides standardized error handling for the certificate
// verification workers.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDocumentNotFound    ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeDocumentUnreadable  ErrorCode = "DOCUMENT_UNREADABLE"
	ErrCodeDocumentFetchFailed ErrorCode = "DOCUMENT_FETCH_FAILED"

	ErrCodeCheckFailed ErrorCode = "CHECK_FAILED"
	ErrCodeCheckPanic  ErrorCode = "CHECK_PANIC"

	ErrCodeScrapeFailed   ErrorCode = "SCRAPE_FAILED"
	ErrCodeScrapeTimeout  ErrorCode = "SCRAPE_TIMEOUT"
	ErrCodeRenderFailed   ErrorCode = "RENDER_FAILED"
	ErrCodeDownloadFailed ErrorCode = "DOWNLOAD_FAILED"

	ErrCodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMCallFailed    ErrorCode = "LLM_CALL_FAILED"
	ErrCodeLLMParsingFailed ErrorCode = "LLM_PARSING_FAILED"

	ErrCodeOCRFailed ErrorCode = "OCR_FAILED"

	ErrCodeReferenceStoreFailed ErrorCode = "REFERENCE_STORE_FAILED"

	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewDocumentNotFoundError creates a non-retryable input error.
func NewDocumentNotFoundError(ref string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentNotFound,
		Message:   "Document not found",
		Details:   fmt.Sprintf("ref: %s", ref),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentUnreadableError creates a non-retryable input error.
func NewDocumentUnreadableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentUnreadable,
		Message:   "Document could not be read or parsed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentFetchFailedError creates a retryable acquisition error.
func NewDocumentFetchFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentFetchFailed,
		Message:   "Failed to download document",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCheckFailedError records a single analyzer failure. Never fatal to the
// verification; the orchestrator converts it into an error result for that
// check only.
func NewCheckFailedError(check string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCheckFailed,
		Message:   "Forensic check failed",
		Details:   fmt.Sprintf("check: %s, error: %s", check, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"check": check},
		Timestamp: time.Now().UTC(),
	}
}

// NewScrapeFailedError creates a retryable external-service error.
func NewScrapeFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScrapeFailed,
		Message:   "Website scraping failed",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMCallFailedError creates a retryable external-service error.
func NewLLMCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "Text generation call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMParsingFailedError creates a non-retryable parsing error.
func NewLLMParsingFailedError(raw string) *StandardError {
	details := raw
	if len(details) > 500 {
		details = details[:500]
	}
	return &StandardError{
		Code:      ErrCodeLLMParsingFailed,
		Message:   "Model output was not parseable JSON",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOCRFailedError creates a non-retryable OCR error.
func NewOCRFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOCRFailed,
		Message:   "OCR extraction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReferenceStoreError creates a retryable database error.
func NewReferenceStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceStoreFailed,
		Message:   "Reference fingerprint store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingFailedError creates a non-retryable job input error.
func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable job input error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code from any error, defaulting to UNKNOWN.
func CodeOf(err error) string {
	if stdErr, ok := err.(*StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
