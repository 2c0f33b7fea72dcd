package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes a business failure. The set is closed; handlers map each
// code to exactly one HTTP status.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidState      Code = "INVALID_STATE"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeCrossShopConflict Code = "CROSS_SHOP_CONFLICT"
	CodeEmptyCart         Code = "EMPTY_CART"
	CodeInvalidVoucher    Code = "INVALID_VOUCHER"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string

	// Reasons carries the human-readable rejection list for INVALID_VOUCHER.
	Reasons []string

	cause error
}

func (e *Error) Error() string {
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Reasons, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *Error {
	return New(CodeNotFound, "%s not found", what)
}

func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return New(CodeInvalidState, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return New(CodeInvalidTransition, format, args...)
}

func Unavailable(format string, args ...any) *Error {
	return New(CodeUnavailable, format, args...)
}

func CrossShopConflict(format string, args ...any) *Error {
	return New(CodeCrossShopConflict, format, args...)
}

func EmptyCart() *Error {
	return New(CodeEmptyCart, "no active cart items")
}

func InvalidVoucher(reasons ...string) *Error {
	return &Error{Code: CodeInvalidVoucher, Message: "voucher not applicable", Reasons: reasons}
}

func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

// Internal wraps an unexpected failure. The cause stays reachable via
// errors.Unwrap for logging; callers only see the opaque code.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: err}
}

// CodeOf extracts the taxonomy code, defaulting to INTERNAL for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
