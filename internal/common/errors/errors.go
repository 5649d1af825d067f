// Package errors provides standardized error handling for BPMN workflow integration
// and the HTTP API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors: never retried, surfaced as BPMN errors or HTTP 400.
	ErrCodeDocumentsMissing   ErrorCode = "DOCUMENTS_MISSING"
	ErrCodeProfileMalformed   ErrorCode = "PROFILE_MALFORMED"
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeUnknownAssessor    ErrorCode = "UNKNOWN_ASSESSOR"

	// Assessor errors.
	ErrCodeAssessorTimeout         ErrorCode = "ASSESSOR_TIMEOUT"
	ErrCodeAssessorFailed          ErrorCode = "ASSESSOR_FAILED"
	ErrCodeAssessorResponseInvalid ErrorCode = "ASSESSOR_RESPONSE_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a metadata entry and returns e.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewDocumentsMissingError creates a non-retryable precondition error.
func NewDocumentsMissingError(err error) *StandardError {
	return newError(ErrCodeDocumentsMissing, "Required documents are missing", err.Error(), false, err)
}

// NewProfileMalformedError creates a non-retryable profile decoding error.
func NewProfileMalformedError(err error) *StandardError {
	return newError(ErrCodeProfileMalformed, "Applicant profile could not be parsed", err.Error(), false, err)
}

// NewInputParsingFailedError is used when the request or job variables themselves cannot be decoded.
func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Input could not be parsed", err.Error(), false, err)
}

func NewUnknownAssessorError(name string) *StandardError {
	return newError(ErrCodeUnknownAssessor, "Unknown assessor", fmt.Sprintf("assessor: %s", name), false, nil)
}

// NewAssessorTimeoutError creates a retryable timeout error.
func NewAssessorTimeoutError(assessor string, err error) *StandardError {
	return newError(ErrCodeAssessorTimeout, "Assessment timed out",
		fmt.Sprintf("assessor: %s, error: %s", assessor, err.Error()), true, err)
}

// NewAssessorFailedError creates a retryable external service error.
func NewAssessorFailedError(assessor string, err error) *StandardError {
	return newError(ErrCodeAssessorFailed, "Assessment service error",
		fmt.Sprintf("assessor: %s, error: %s", assessor, err.Error()), true, err)
}

// NewAssessorResponseInvalidError creates a non-retryable error for unusable model output.
func NewAssessorResponseInvalidError(assessor string, err error) *StandardError {
	return newError(ErrCodeAssessorResponseInvalid, "Assessment service returned an invalid result",
		fmt.Sprintf("assessor: %s, error: %s", assessor, err.Error()), false, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeDocumentsMissing:        "VISA_DOCUMENTS_MISSING",
	ErrCodeProfileMalformed:        "VISA_PROFILE_MALFORMED",
	ErrCodeInputParsingFailed:      "VISA_INPUT_INVALID",
	ErrCodeUnknownAssessor:         "VISA_INPUT_INVALID",
	ErrCodeAssessorTimeout:         "VISA_ASSESSMENT_TIMEOUT",
	ErrCodeAssessorFailed:          "VISA_ASSESSMENT_FAILED",
	ErrCodeAssessorResponseInvalid: "VISA_ASSESSMENT_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAssessorFailed:
		return 3
	case ErrCodeAssessorTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DOCUMENTS"), strings.Contains(codeStr, "PROFILE"),
		strings.Contains(codeStr, "PARSING"), strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	case strings.Contains(codeStr, "ASSESSOR"):
		return "ASSESSMENT"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error code to the status returned by the HTTP API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeDocumentsMissing, ErrCodeProfileMalformed, ErrCodeInputParsingFailed, ErrCodeUnknownAssessor:
		return http.StatusBadRequest
	case ErrCodeAssessorFailed, ErrCodeAssessorResponseInvalid:
		return http.StatusBadGateway
	case ErrCodeAssessorTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
