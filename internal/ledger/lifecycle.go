// Package ledger holds the loan state machine and the payment ledger.
// Every operation maps over the whole flattened loan list and returns a
// fresh list; callers never diff, they persist the result wholesale.
package ledger

import (
	"time"

	"github.com/coopsoc/lending-engine/internal/domain"
	"github.com/coopsoc/lending-engine/internal/schedule"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
)

// Approve moves a pending loan to approved, generates its repayment
// schedule as of now, and opens the balance at the full payable amount.
// Any other status is an invalid transition.
func Approve(loans []domain.LoanView, loanID string, now time.Time) ([]domain.LoanView, error) {
	target, err := find(loans, loanID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.LoanStatusPending {
		return nil, customError.WrapInvalidTransition(loanID, string(target.Status), string(domain.LoanStatusApproved))
	}

	updated := make([]domain.LoanView, 0, len(loans))
	for _, v := range loans {
		if v.LoanID == loanID {
			outstanding := v.TotalPayable
			v.Status = domain.LoanStatusApproved
			v.Repayments = schedule.Generate(v.Loan, now)
			v.Outstanding = &outstanding
		}
		updated = append(updated, v)
	}
	return updated, nil
}

// Reject moves a pending loan to rejected. Rejected loans keep an empty
// schedule and carry no balance.
func Reject(loans []domain.LoanView, loanID string) ([]domain.LoanView, error) {
	target, err := find(loans, loanID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.LoanStatusPending {
		return nil, customError.WrapInvalidTransition(loanID, string(target.Status), string(domain.LoanStatusRejected))
	}

	updated := make([]domain.LoanView, 0, len(loans))
	for _, v := range loans {
		if v.LoanID == loanID {
			v.Status = domain.LoanStatusRejected
		}
		updated = append(updated, v)
	}
	return updated, nil
}

func find(loans []domain.LoanView, loanID string) (*domain.LoanView, error) {
	for i := range loans {
		if loans[i].LoanID == loanID {
			return &loans[i], nil
		}
	}
	return nil, customError.WrapLoanNotFound(loanID)
}
