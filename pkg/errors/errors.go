package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidTransition   = errors.New("invalid loan status transition")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrMalformedStore      = errors.New("persisted document is malformed")
	ErrLoanNotApproved     = errors.New("loan is not approved")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
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
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodeMemberNotFound      = "MEMBER_NOT_FOUND"
	ErrCodeInstallmentNotFound = "INSTALLMENT_NOT_FOUND"
	ErrCodeMalformedStore      = "MALFORMED_STORE"
	ErrCodeStoreError          = "STORE_ERROR"
	ErrCodeValidationError     = "VALIDATION_ERROR"
)

// Wrap common errors with business context
func WrapInvalidTransition(loanID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Loan %s cannot move from %s to %s", loanID, from, to),
		ErrInvalidTransition,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapInstallmentNotFound(loanID string, index int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Loan %s has no installment at index %d", loanID, index),
		ErrInstallmentNotFound,
	)
}

func WrapLoanNotApproved(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Loan %s is %s; repayments require an approved loan", loanID, status),
		ErrLoanNotApproved,
	)
}

func WrapMalformedStore(key string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeMalformedStore,
		fmt.Sprintf("Document %q failed to parse", key),
		errors.Join(ErrMalformedStore, err),
	)
}

func WrapStoreError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStoreError,
		"Document store operation failed",
		err,
	)
}
