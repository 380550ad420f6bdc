package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coopsoc/lending-engine/internal/domain"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
)

// MarkPaid records a payment against one installment of an approved
// loan and recomputes the outstanding balance. Idempotent: an already
// paid installment is left untouched, PaidOn included. There is no
// operation to unmark a payment; the ledger is one-way.
func MarkPaid(loans []domain.LoanView, loanID string, index int, now time.Time) ([]domain.LoanView, error) {
	target, err := find(loans, loanID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.LoanStatusApproved {
		return nil, customError.WrapLoanNotApproved(loanID, string(target.Status))
	}
	if index < 0 || index >= len(target.Repayments) {
		return nil, customError.WrapInstallmentNotFound(loanID, index)
	}

	updated := make([]domain.LoanView, 0, len(loans))
	for _, v := range loans {
		if v.LoanID == loanID {
			repayments := make([]domain.Installment, len(v.Repayments))
			copy(repayments, v.Repayments)
			if !repayments[index].Paid {
				paidOn := domain.NewDate(now)
				repayments[index].Paid = true
				repayments[index].PaidOn = &paidOn
			}
			v.Repayments = repayments
			outstanding := Outstanding(&v.Loan)
			v.Outstanding = &outstanding
		}
		updated = append(updated, v)
	}
	return updated, nil
}

// Outstanding recomputes the balance from scratch: total payable minus
// the sum over all paid installments, clamped at zero. Summing the full
// schedule rather than updating incrementally keeps the value correct
// even after external corrections to the paid flags, and the clamp
// absorbs any EMI-versus-total rounding residual.
func Outstanding(loan *domain.Loan) decimal.Decimal {
	outstanding := loan.TotalPayable.Sub(loan.TotalPaid())
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}
