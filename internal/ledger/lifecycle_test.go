package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopsoc/lending-engine/internal/domain"
	"github.com/coopsoc/lending-engine/internal/ledger"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
)

// testLoans flattens a two-member document: Asha owns the loan under
// test plus a second pending loan, Ravi owns none.
func testLoans(t *testing.T) []domain.LoanView {
	t.Helper()

	members := []domain.Member{
		{
			MemberID: "M-001",
			Name:     "Asha",
			Mobile:   "9876543210",
			Loans: []domain.Loan{
				{
					LoanID:       "LN-001",
					MemberID:     "M-001",
					Principal:    decimal.NewFromInt(12000),
					InterestRate: decimal.NewFromFloat(2.5),
					TenureMonths: 3,
					EMI:          decimal.NewFromInt(4100),
					TotalPayable: decimal.NewFromInt(12300),
					Status:       domain.LoanStatusPending,
					Repayments:   []domain.Installment{},
				},
				{
					LoanID:       "LN-002",
					MemberID:     "M-001",
					Principal:    decimal.NewFromInt(5000),
					InterestRate: decimal.NewFromFloat(2.5),
					TenureMonths: 5,
					EMI:          decimal.NewFromInt(1050),
					TotalPayable: decimal.NewFromInt(5250),
					Status:       domain.LoanStatusPending,
					Repayments:   []domain.Installment{},
				},
			},
		},
		{MemberID: "M-002", Name: "Ravi", Mobile: "9123456780", Loans: []domain.Loan{}},
	}

	return domain.Flatten(members)
}

func TestApprove(t *testing.T) {
	approvedAt := time.Date(2024, time.January, 15, 11, 0, 0, 0, time.UTC)

	loans := testLoans(t)
	updated, err := ledger.Approve(loans, "LN-001", approvedAt)
	require.NoError(t, err)

	var target, other domain.LoanView
	for _, v := range updated {
		switch v.LoanID {
		case "LN-001":
			target = v
		case "LN-002":
			other = v
		}
	}

	assert.Equal(t, domain.LoanStatusApproved, target.Status)
	require.Len(t, target.Repayments, 3)
	assert.Equal(t, "2024-02-05", target.Repayments[0].DueDate.String())
	assert.Equal(t, "2024-03-05", target.Repayments[1].DueDate.String())
	assert.Equal(t, "2024-04-05", target.Repayments[2].DueDate.String())
	require.NotNil(t, target.Outstanding)
	assert.True(t, target.Outstanding.Equal(decimal.NewFromInt(12300)))

	// Sibling loan untouched
	assert.Equal(t, domain.LoanStatusPending, other.Status)
	assert.Empty(t, other.Repayments)
	assert.Nil(t, other.Outstanding)

	// Input list untouched: the operation returns a fresh collection
	assert.Equal(t, domain.LoanStatusPending, loans[0].Status)
	assert.Empty(t, loans[0].Repayments)
}

func TestReject(t *testing.T) {
	loans := testLoans(t)

	updated, err := ledger.Reject(loans, "LN-001")
	require.NoError(t, err)

	assert.Equal(t, domain.LoanStatusRejected, updated[0].Status)
	assert.Empty(t, updated[0].Repayments)
	assert.Nil(t, updated[0].Outstanding)
	assert.Equal(t, domain.LoanStatusPending, updated[1].Status)
}

func TestTransitionsAreOneWay(t *testing.T) {
	now := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func([]domain.LoanView) []domain.LoanView
		op    func([]domain.LoanView) ([]domain.LoanView, error)
	}{
		{
			name: "Reject after approve",
			setup: func(loans []domain.LoanView) []domain.LoanView {
				approved, err := ledger.Approve(loans, "LN-001", now)
				require.NoError(t, err)
				return approved
			},
			op: func(loans []domain.LoanView) ([]domain.LoanView, error) {
				return ledger.Reject(loans, "LN-001")
			},
		},
		{
			name: "Approve after reject",
			setup: func(loans []domain.LoanView) []domain.LoanView {
				rejected, err := ledger.Reject(loans, "LN-001")
				require.NoError(t, err)
				return rejected
			},
			op: func(loans []domain.LoanView) ([]domain.LoanView, error) {
				return ledger.Approve(loans, "LN-001", now)
			},
		},
		{
			name: "Approve twice",
			setup: func(loans []domain.LoanView) []domain.LoanView {
				approved, err := ledger.Approve(loans, "LN-001", now)
				require.NoError(t, err)
				return approved
			},
			op: func(loans []domain.LoanView) ([]domain.LoanView, error) {
				return ledger.Approve(loans, "LN-001", now)
			},
		},
		{
			name: "Reject twice",
			setup: func(loans []domain.LoanView) []domain.LoanView {
				rejected, err := ledger.Reject(loans, "LN-001")
				require.NoError(t, err)
				return rejected
			},
			op: func(loans []domain.LoanView) ([]domain.LoanView, error) {
				return ledger.Reject(loans, "LN-001")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loans := tt.setup(testLoans(t))

			updated, err := tt.op(loans)

			assert.Nil(t, updated)
			require.Error(t, err)
			assert.True(t, errors.Is(err, customError.ErrInvalidTransition))

			var bizErr *customError.BusinessError
			require.True(t, errors.As(err, &bizErr))
			assert.Equal(t, customError.ErrCodeInvalidTransition, bizErr.Code)
		})
	}
}

func TestLifecycleUnknownLoan(t *testing.T) {
	loans := testLoans(t)

	_, err := ledger.Approve(loans, "LN-999", time.Now())
	assert.True(t, errors.Is(err, customError.ErrLoanNotFound))

	_, err = ledger.Reject(loans, "LN-999")
	assert.True(t, errors.Is(err, customError.ErrLoanNotFound))
}
