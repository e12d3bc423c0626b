package domain

import (
	"errors"
	"fmt"
)

// Machine-readable error codes. The HTTP layer maps these to status codes;
// everything else treats them as opaque kinds.
const (
	ECONFLICT          = "conflict"
	EEMPTYCART         = "empty_cart"
	EFORBIDDEN         = "forbidden"
	EINSUFFICIENTSTOCK = "insufficient_stock"
	EINTERNAL          = "internal"
	EINVALID           = "invalid"
	EINVALIDTRANSITION = "invalid_transition"
	ENOTFOUND          = "not_found"
)

// Error is the application error type. Code is stable and machine-readable,
// Message is safe to show to the caller.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the code from err. Non-application errors report
// EINTERNAL so that driver details never leak through the API.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage extracts the user-facing message from err.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
