package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures talking to the FRED API or the local store.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a typed error carrying the HTTP status code when there is one.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a typed error without a status code.
func New(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// TypeForStatus maps an HTTP status code to an ErrorType.
// FRED answers a bad or missing api_key with 400, so 400 counts as auth.
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusBadRequest,
		statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// apiErrorBody is the error envelope FRED returns on non-2xx responses.
type apiErrorBody struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// FromResponse builds a typed error from a failed HTTP response.
func FromResponse(statusCode int, status string, body []byte) *Error {
	message := status
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.ErrorMessage != "" {
		message = envelope.ErrorMessage
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{
		Type:    TypeForStatus(statusCode),
		Message: message,
		Code:    statusCode,
	}
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}
