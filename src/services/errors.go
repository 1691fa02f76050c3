package services

import "errors"

// ErrorCode identifies a workflow precondition failure. Codes are part of the
// API contract and must stay stable.
type ErrorCode string

const (
	CodeInvalidOperation ErrorCode = "InvalidOperation"
	CodeAlreadyConnected ErrorCode = "AlreadyConnected"
	CodeDuplicateRequest ErrorCode = "DuplicateRequest"
	CodeInvalidState     ErrorCode = "InvalidState"
	CodeForbidden        ErrorCode = "Forbidden"
	CodeNotConnected     ErrorCode = "NotConnected"
	CodeNotFound         ErrorCode = "NotFound"
)

// WorkflowError is a precondition violation reported synchronously to the
// caller. It is never retried.
type WorkflowError struct {
	Code    ErrorCode
	Message string
}

func (e *WorkflowError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func workflowError(code ErrorCode, message string) *WorkflowError {
	return &WorkflowError{Code: code, Message: message}
}

// CodeOf extracts the workflow error code, if err carries one
func CodeOf(err error) (ErrorCode, bool) {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Code, true
	}
	return "", false
}
