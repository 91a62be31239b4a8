package domain

import "errors"

// Error codes for well-known failure conditions that cross package
// boundaries. Callers should use [HasCode] or [ErrorCode] to match these.
const (
	CodeNetworkError        = "network_error"
	CodeUnauthorized        = "unauthorized"
	CodeInvalidPhone        = "invalid_phone"
	CodePermissionDenied    = "permission_denied"
	CodeServiceUnavailable  = "service_unavailable"
	CodeUnsupportedPlatform = "unsupported_platform"
	CodeBadRequest          = "bad_request"
	CodeUnknown             = "unknown_error"
)

// Error is a coded failure surfaced to the host application, usually through
// the manager's error callback.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a coded error with a human-readable message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates a coded error preserving the underlying cause.
func WrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the code from err, or returns [CodeUnknown] when err
// carries no code.
func ErrorCode(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnknown
}

// HasCode reports whether err is a coded error with the given code.
func HasCode(err error, code string) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// Canonical errors for conditions raised from more than one call site.

// ErrInvalidCredentials is reported when the static application credentials
// are missing or rejected by the sign-in service.
func ErrInvalidCredentials() *Error {
	return NewError(CodeUnauthorized, "Invalid credentials provided")
}

// ErrInvalidPhone is reported when the sign-in service rejects the phone
// number.
func ErrInvalidPhone() *Error {
	return NewError(CodeInvalidPhone, "Invalid phone number provided")
}

// ErrUnsupportedPlatform is reported when the host platform is neither
// Android nor iOS.
func ErrUnsupportedPlatform() *Error {
	return NewError(CodeUnsupportedPlatform, "platform is not supported")
}
