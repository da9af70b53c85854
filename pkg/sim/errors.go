package sim

import (
	"fmt"
	"net/http"
)

// Error types surfaced by simulated services. These mirror the error codes
// the real services put on the wire.
const (
	TypeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	TypeNotFound               = "NOT_FOUND"
	TypeTableNotFound          = "TABLE_NOT_FOUND"
	TypeInvalidRequestBody     = "INVALID_REQUEST_BODY"
	TypeInvalidRequestUnknown  = "INVALID_REQUEST_UNKNOWN"
	TypeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
)

// statusByType maps an error type to its HTTP status code.
// Types not listed here classify as 400.
var statusByType = map[string]int{
	TypeAuthenticationRequired: http.StatusUnauthorized,
	TypeNotFound:               http.StatusNotFound,
	TypeTableNotFound:          http.StatusNotFound,
	TypeInvalidRequestBody:     http.StatusBadRequest,
	TypeInvalidRequestUnknown:  http.StatusUnprocessableEntity,
	TypeRateLimitExceeded:      http.StatusTooManyRequests,
}

// Error is the tagged failure result of a routed operation. Operations return
// it as a value; it never crosses the boundary as a panic.
type Error struct {
	Type    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// StatusCode returns the HTTP status code for this error.
func (e *Error) StatusCode() int {
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusBadRequest
}

// Body returns the wire shape of the error: {"error":{"type":...,"message":...}}.
func (e *Error) Body() any {
	return map[string]any{
		"error": map[string]string{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NotFound builds a NOT_FOUND error.
func NotFound(format string, args ...any) *Error {
	return &Error{Type: TypeNotFound, Message: fmt.Sprintf(format, args...)}
}

// TableNotFound builds a TABLE_NOT_FOUND error.
func TableNotFound(format string, args ...any) *Error {
	return &Error{Type: TypeTableNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidRequestBody builds an INVALID_REQUEST_BODY error.
func InvalidRequestBody(format string, args ...any) *Error {
	return &Error{Type: TypeInvalidRequestBody, Message: fmt.Sprintf(format, args...)}
}

// InvalidRequestUnknown builds an INVALID_REQUEST_UNKNOWN error.
func InvalidRequestUnknown(format string, args ...any) *Error {
	return &Error{Type: TypeInvalidRequestUnknown, Message: fmt.Sprintf(format, args...)}
}

// AuthenticationRequired builds an AUTHENTICATION_REQUIRED error.
func AuthenticationRequired() *Error {
	return &Error{
		Type:    TypeAuthenticationRequired,
		Message: "Authentication required",
	}
}

// Respond classifies an operation result into a Response. A nil error yields
// a 200 with the body; a non-nil error yields its mapped status code and the
// error envelope. A nil body becomes an empty JSON object.
func Respond(body any, err *Error) *Response {
	if err != nil {
		return &Response{Status: err.StatusCode(), Body: err.Body()}
	}
	if body == nil {
		body = map[string]any{}
	}
	return &Response{Status: http.StatusOK, Body: body}
}
