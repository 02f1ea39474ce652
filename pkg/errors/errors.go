package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrForbidden            = errors.New("no permission to access this loan")
	ErrLoanNotActive        = errors.New("loan is not active")
	ErrLoanPaidOff          = errors.New("loan is already paid off")
	ErrAlreadyConfirmed     = errors.New("payment already confirmed for today")
	ErrInvalidLoanAmount    = errors.New("invalid loan amount")
	ErrDailyExceedsTotal    = errors.New("daily amount cannot exceed total")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrInvalidLoanState     = errors.New("loan state violates ledger preconditions")
	ErrValidation           = errors.New("request validation failed")
)

// Kind classifies an error for the caller. Only KindInternal hides details.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
	KindInvalidState Kind = "INVALID_STATE"
	KindInternal     Kind = "INTERNAL_FAILURE"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Kind    Kind
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// KindOf reports the kind of err. Errors that were never classified are internal.
func KindOf(err error) Kind {
	if be, ok := AsBusinessError(err); ok {
		return be.Kind
	}
	return KindInternal
}

// AsBusinessError finds the first BusinessError in err's chain.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// Error codes
const (
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeLoanNotActive        = "LOAN_NOT_ACTIVE"
	ErrCodeLoanPaidOff          = "LOAN_PAID_OFF"
	ErrCodeAlreadyConfirmed     = "PAYMENT_ALREADY_CONFIRMED"
	ErrCodeInvalidLoanAmount    = "INVALID_LOAN_AMOUNT"
	ErrCodeDailyExceedsTotal    = "DAILY_EXCEEDS_TOTAL"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidLoanState     = "INVALID_LOAN_STATE"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCodeRenderError      = "CODE_RENDER_ERROR"
	ErrCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %d not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapForbidden(loanID int64) *BusinessError {
	return NewBusinessError(
		KindForbidden,
		ErrCodeForbidden,
		fmt.Sprintf("No permission to access loan %d", loanID),
		ErrForbidden,
	)
}

func WrapElevatedRoleRequired(action string) *BusinessError {
	return NewBusinessError(
		KindForbidden,
		ErrCodeForbidden,
		fmt.Sprintf("Only elevated users can %s", action),
		ErrForbidden,
	)
}

func WrapLoanNotActive(loanID int64) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan with ID %d is not active", loanID),
		ErrLoanNotActive,
	)
}

func WrapLoanPaidOff(loanID int64) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeLoanPaidOff,
		fmt.Sprintf("Loan with ID %d is already paid off", loanID),
		ErrLoanPaidOff,
	)
}

func WrapAlreadyConfirmed(loanID int64, day string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeAlreadyConfirmed,
		fmt.Sprintf("Payment for loan %d already confirmed on %s", loanID, day),
		ErrAlreadyConfirmed,
	)
}

func WrapInvalidLoanAmount(field, value string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("%s must be a decimal greater than zero, got %q", field, value),
		ErrInvalidLoanAmount,
	)
}

func WrapDailyExceedsTotal(daily, total string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeDailyExceedsTotal,
		fmt.Sprintf("Daily amount %s cannot exceed total amount %s", daily, total),
		ErrDailyExceedsTotal,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %q", amount),
		ErrInvalidPaymentAmount,
	)
}

// WrapInvalidLoanState flags a stored loan that breaks creation-time guarantees.
// It is an internal failure: the caller cannot fix it.
func WrapInvalidLoanState(loanID int64, reason string) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeInvalidLoanState,
		fmt.Sprintf("Loan with ID %d is inconsistent: %s", loanID, reason),
		ErrInvalidLoanState,
	)
}

func WrapValidation(err error) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeValidation,
		"request validation failed",
		errors.Join(ErrValidation, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCodeRenderError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCodeRenderError,
		"payment code rendering failed",
		err,
	)
}
