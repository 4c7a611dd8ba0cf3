package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind separates user-correctable failures from integrity failures.
type Kind string

const (
	KindValidation Kind = "validation"
	KindFatal      Kind = "fatal"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string            `json:"error_code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Kind       Kind              `json:"-"`
	Err        error             `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail returns the error with an extra detail attached.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError. Errors with a 4xx status are validation errors.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Kind:       kindFor(httpStatus),
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Kind:       kindFor(httpStatus),
		Err:        err,
	}
}

func kindFor(httpStatus int) Kind {
	if httpStatus >= 400 && httpStatus < 500 {
		return KindValidation
	}
	return KindFatal
}

// IsValidation reports whether err carries a user-correctable AppError.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == KindValidation
}

// IsFatal reports whether err is anything other than a validation error.
func IsFatal(err error) bool {
	return err != nil && !IsValidation(err)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Trading (TRD) ----

const (
	CodePriceOutOfBand       = "TRD_001"
	CodeInsufficientBalance  = "TRD_002"
	CodeInsufficientHoldings = "TRD_003"
	CodeUnsupportedCurrency  = "TRD_004"
	CodeNoSuchHolding        = "TRD_005"
	CodeInvalidOrder         = "TRD_006"
	CodeTickerNotFound       = "TRD_007"
	CodeInvalidSearch        = "TRD_008"
)

// ErrPriceOutOfBand carries the accepted [lower, upper] range for display.
func ErrPriceOutOfBand(lower, upper string) *AppError {
	return New(CodePriceOutOfBand,
		fmt.Sprintf("Unit price must be between %s and %s", lower, upper),
		http.StatusUnprocessableEntity).
		WithDetail("lower", lower).
		WithDetail("upper", upper)
}

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInsufficientHoldings() *AppError {
	return New(CodeInsufficientHoldings, "Insufficient holdings for sell order", http.StatusUnprocessableEntity)
}

func ErrUnsupportedCurrency(currency string) *AppError {
	return New(CodeUnsupportedCurrency, fmt.Sprintf("Unsupported settlement currency %q", currency), http.StatusBadRequest).
		WithDetail("currency", currency)
}

func ErrNoSuchHolding() *AppError {
	return New(CodeNoSuchHolding, "No holding for this instrument", http.StatusUnprocessableEntity)
}

func ErrInvalidOrder(message string) *AppError {
	return New(CodeInvalidOrder, message, http.StatusBadRequest)
}

func ErrTickerNotFound() *AppError {
	return New(CodeTickerNotFound, "Ticker not found", http.StatusNotFound)
}

func ErrInvalidSearch(message string) *AppError {
	return New(CodeInvalidSearch, message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Request (REQ) ----

func ErrBodyTooLarge() *AppError {
	return New("REQ_001", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrInvalidRequest(message string) *AppError {
	return New("REQ_002", message, http.StatusBadRequest)
}

// ---- System & Infrastructure (SYS) ----

const (
	CodeInternal           = "SYS_001"
	CodeOwnershipMismatch  = "SYS_004"
	CodePriceUnavailable   = "SYS_005"
	CodeLazyCreateConflict = "SYS_006"
)

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// ErrOwnershipMismatch signals a trade applied against another user's wallet.
func ErrOwnershipMismatch() *AppError {
	return New(CodeOwnershipMismatch, "Trade and wallet belong to different users", http.StatusInternalServerError)
}

func ErrPriceUnavailable(err error) *AppError {
	return Wrap(CodePriceUnavailable, "Price source unavailable", http.StatusServiceUnavailable, err)
}

func ErrLazyCreateConflict(entity string, err error) *AppError {
	return Wrap(CodeLazyCreateConflict, fmt.Sprintf("%s vanished after concurrent create", entity),
		http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
