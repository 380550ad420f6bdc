package domain

import (
	"github.com/shopspring/decimal"
)

// LoanStatus is the closed set of loan lifecycle states. Transitions
// are one-way: pending moves to approved or rejected, then nothing.
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
)

// Installment is one scheduled repayment. DueDate and Amount are fixed
// at schedule generation; only Paid/PaidOn ever change, and PaidOn is
// set exactly once, when Paid flips to true.
type Installment struct {
	DueDate Date            `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
	PaidOn  *Date           `json:"paidOn"`
}

// Loan represents a loan application and, once approved, its repayment
// schedule and running balance. The financial terms are computed by the
// intake form and are immutable here; this service never derives EMI or
// total payable from principal and rate.
type Loan struct {
	LoanID       string          `json:"loanId"`
	MemberID     string          `json:"memberId"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interestRate"`
	TenureMonths int             `json:"tenureMonths"`
	EMI          decimal.Decimal `json:"emi"`
	TotalPayable decimal.Decimal `json:"totalPayable"`
	Status       LoanStatus      `json:"status"`
	// Outstanding is derived: totalPayable minus the sum of paid
	// installments, clamped at zero. Unset until approval.
	Outstanding *decimal.Decimal `json:"outstanding,omitempty"`
	Repayments  []Installment    `json:"repayments"`
}

// ScheduleMismatch reports whether EMI x tenure differs from the total
// payable. The intake form does not reconcile the two; the ledger
// absorbs the residual via the clamp at zero, and this flag keeps the
// discrepancy observable instead of silently lost.
func (l *Loan) ScheduleMismatch() bool {
	if l.TenureMonths <= 0 {
		return false
	}
	expected := l.EMI.Mul(decimal.NewFromInt(int64(l.TenureMonths)))
	return !expected.Equal(l.TotalPayable)
}

// TotalPaid sums the amounts of all paid installments.
func (l *Loan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, r := range l.Repayments {
		if r.Paid {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// DTOs for requests and responses

type ApplyLoanRequest struct {
	Principal    decimal.Decimal `json:"principal" validate:"dgt"`
	InterestRate decimal.Decimal `json:"interestRate" validate:"dgte"`
	TenureMonths int             `json:"tenureMonths" validate:"required,gt=0"`
	EMI          decimal.Decimal `json:"emi" validate:"dgt"`
	TotalPayable decimal.Decimal `json:"totalPayable" validate:"dgt"`
}

type ScheduleResponse struct {
	LoanID     string        `json:"loanId"`
	Status     LoanStatus    `json:"status"`
	Repayments []Installment `json:"repayments"`
}

type OutstandingResponse struct {
	LoanID           string           `json:"loanId"`
	Status           LoanStatus       `json:"status"`
	Outstanding      *decimal.Decimal `json:"outstanding"`
	ScheduleMismatch bool             `json:"scheduleMismatch"`
}
