package fbsr

import (
	"errors"
	"fmt"
)

// ErrorCode represents signed request error categories.
type ErrorCode string

const (
	ErrCodeFormat           ErrorCode = "format_error"
	ErrCodeIntegrity        ErrorCode = "integrity_error"
	ErrCodeDecode           ErrorCode = "decode_error"
	ErrCodeConfiguration    ErrorCode = "configuration_error"
	ErrCodeEncode           ErrorCode = "encode_error"
	ErrCodeMissing          ErrorCode = "signed_request_missing"
	ErrCodeAppNotRegistered ErrorCode = "application_not_registered"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeFormat:           "Malformed signed request",
	ErrCodeIntegrity:        "Invalid signed request signature",
	ErrCodeDecode:           "Cannot decode signed request payload",
	ErrCodeConfiguration:    "Invalid application configuration",
	ErrCodeEncode:           "Cannot encode signed request claims",
	ErrCodeMissing:          "Signed request not found",
	ErrCodeAppNotRegistered: "Application not registered",
}

// Error wraps signed request errors with a stable code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error carrying the same code,
// so callers can match with errors.Is(err, &Error{Code: ErrCodeIntegrity}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}
