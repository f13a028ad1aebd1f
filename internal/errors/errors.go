package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ValidationError   ErrorCode = "validation_error"
	InsufficientFunds ErrorCode = "insufficient_funds"
	Unauthorized      ErrorCode = "unauthorized"
	AccountNotFound   ErrorCode = "account_not_found"
	DuplicateAccount  ErrorCode = "duplicate_account"
	Conflict          ErrorCode = "conflict"
	StoreUnavailable  ErrorCode = "store_unavailable"
	InternalError     ErrorCode = "internal_error"
)

// AppError is the value returned for every expected failure mode. The
// service boundary never panics or throws for these; callers branch on Code.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationError:
		return http.StatusBadRequest
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case Unauthorized:
		return http.StatusForbidden
	case AccountNotFound:
		return http.StatusNotFound
	case DuplicateAccount, Conflict:
		return http.StatusConflict
	case StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound   = NewAppError(AccountNotFound, "account not found")
	ErrDuplicateAccount  = NewAppError(DuplicateAccount, "username already taken")
	ErrInsufficientFunds = NewAppError(InsufficientFunds, "insufficient funds")
	ErrUnauthorized      = NewAppError(Unauthorized, "admin privileges required")
)

// FromStore classifies an unknown collaborator failure. Anything the
// repositories could not classify themselves surfaces as StoreUnavailable
// so callers can decide whether to retry.
func FromStore(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewAppError(StoreUnavailable, "ledger store unavailable").WithDetails(err.Error())
}
