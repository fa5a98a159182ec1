// Package errors provides the chatbot error taxonomy shared by the HTTP layer and the workflow worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEmptyInput             ErrorCode = "EMPTY_INPUT"
	ErrCodeMalformedIntentJSON    ErrorCode = "MALFORMED_INTENT_JSON"
	ErrCodeInvalidStructuredQuery ErrorCode = "INVALID_STRUCTURED_QUERY"
	ErrCodeDataAccessFailure      ErrorCode = "DATA_ACCESS_FAILURE"
	ErrCodeUpstreamLLMFailure     ErrorCode = "UPSTREAM_LLM_FAILURE"
	ErrCodeInvalidRequest         ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// User facing messages. These never carry internal detail.
const (
	MsgEmptyInput      = "Pesan kosong"
	MsgMalformedIntent = "Gagal memproses instruksi LLM (JSON invalid)"
	MsgInvalidQuery    = "Invalid structured query: "
	MsgInternal        = "Terjadi kesalahan internal"
	MsgAgentFailure    = "Maaf, terjadi kesalahan saat memproses pesan Anda. Silakan coba lagi."
	MsgInvalidRequest  = "Permintaan tidak valid"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key to the metadata map and returns the receiver.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is matching on code.
var (
	ErrEmptyInput             = &StandardError{Code: ErrCodeEmptyInput}
	ErrMalformedIntentJSON    = &StandardError{Code: ErrCodeMalformedIntentJSON}
	ErrInvalidStructuredQuery = &StandardError{Code: ErrCodeInvalidStructuredQuery}
	ErrDataAccessFailure      = &StandardError{Code: ErrCodeDataAccessFailure}
	ErrUpstreamLLMFailure     = &StandardError{Code: ErrCodeUpstreamLLMFailure}
)

// ==========================
// 2. Error Constructors
// ==========================

func NewEmptyInputError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyInput,
		Message:   "Empty question",
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedIntentJSONError keeps the raw model output in Metadata for logging only.
func NewMalformedIntentJSONError(raw string, err error) *StandardError {
	e := &StandardError{
		Code:      ErrCodeMalformedIntentJSON,
		Message:   "LLM output is not a JSON object",
		Timestamp: time.Now().UTC(),
		Metadata:  map[string]interface{}{"raw": raw},
		cause:     err,
	}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewInvalidStructuredQueryError wraps a validator rejection. reason is safe to show to the client.
func NewInvalidStructuredQueryError(reason string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStructuredQuery,
		Message:   "Structured query rejected",
		Details:   reason,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDataAccessFailureError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataAccessFailure,
		Message:   "Data store query failed",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewUpstreamLLMFailureError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamLLMFailure,
		Message:   fmt.Sprintf("LLM provider '%s' call failed", provider),
		Details:   fmt.Sprint(err),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request body failed validation",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

// Normalize ensures callers always deal with a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the taxonomy code of err, INTERNAL_ERROR when unclassified.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// HTTPStatus maps a code to the response status of the chat endpoints.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeEmptyInput, ErrCodeInvalidStructuredQuery, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the client facing text for err.
func UserMessage(err error) string {
	stdErr := Normalize(err)
	switch stdErr.Code {
	case ErrCodeEmptyInput:
		return MsgEmptyInput
	case ErrCodeMalformedIntentJSON:
		return MsgMalformedIntent
	case ErrCodeInvalidStructuredQuery:
		return MsgInvalidQuery + stdErr.Details
	case ErrCodeInvalidRequest:
		return MsgInvalidRequest
	default:
		return MsgInternal
	}
}

// GetErrorCategory groups codes for logs and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeEmptyInput, ErrCodeInvalidRequest:
		return "INPUT"
	case ErrCodeMalformedIntentJSON, ErrCodeInvalidStructuredQuery:
		return "VALIDATION"
	case ErrCodeDataAccessFailure:
		return "DATABASE"
	case ErrCodeUpstreamLLMFailure:
		return "AI"
	default:
		return "OTHER"
	}
}

// ==========================
// 4. BPMN Error Integration
// ==========================

// BPMNError is the shape thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a thrown job error.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError converts a StandardError for the workflow engine. The
// message is the user facing text so processes can surface it directly.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:    string(stdErr.Code),
		Message: UserMessage(stdErr),
		Details: stdErr.Details,
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
			"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}
