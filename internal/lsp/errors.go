package lsp

import (
	"errors"
	"fmt"
)

// JSON-RPC error codes used by the server.
const (
	codeInvalidRequest       = -32600
	codeMethodNotFound       = -32601
	codeInvalidParams        = -32602
	codeInternalError        = -32603
	codeServerNotInitialized = -32002
)

// ResponseError is an error that maps onto a JSON-RPC error response.
// Message is what the client sees; Err keeps the cause for logs.
type ResponseError struct {
	Code    int
	Message string
	Err     error
}

func (e *ResponseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

func invalidParams(format string, args ...any) *ResponseError {
	return &ResponseError{Code: codeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func internalError(message string, err error) *ResponseError {
	return &ResponseError{Code: codeInternalError, Message: message, Err: err}
}

// asResponseError classifies err for the wire. Unclassified errors are internal.
func asResponseError(err error) *ResponseError {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr
	}
	return internalError("internal error", err)
}
