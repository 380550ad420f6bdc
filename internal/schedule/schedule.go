// Package schedule generates repayment schedules for approved loans.
package schedule

import (
	"time"

	"github.com/coopsoc/lending-engine/internal/domain"
)

// DueDay is the day of month every installment falls due on.
const DueDay = 5

// Generate produces the repayment schedule for a loan approved at
// approvedAt: one installment per calendar month for tenureMonths
// months, each for the loan's flat EMI, starting on the 5th of the
// month after the approval month. Pure function; the loan itself is
// not touched.
//
// EMI x tenure is deliberately not reconciled against the loan's total
// payable here; see Loan.ScheduleMismatch.
func Generate(loan domain.Loan, approvedAt time.Time) []domain.Installment {
	installments := make([]domain.Installment, 0, loan.TenureMonths)

	year, month, _ := approvedAt.Date()
	for i := 0; i < loan.TenureMonths; i++ {
		// time.Date normalizes month overflow, so December approvals
		// roll into January of the next year.
		due := time.Date(year, month+1+time.Month(i), DueDay, 0, 0, 0, 0, time.UTC)
		installments = append(installments, domain.Installment{
			DueDate: domain.Date{Time: due},
			Amount:  loan.EMI,
			Paid:    false,
			PaidOn:  nil,
		})
	}

	return installments
}
