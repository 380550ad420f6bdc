package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopsoc/lending-engine/internal/domain"
)

func sampleMembers() []domain.Member {
	paidOn, _ := domain.ParseDate("2024-02-06")
	outstanding := decimal.NewFromInt(8200)

	return []domain.Member{
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
					Status:       domain.LoanStatusApproved,
					Outstanding:  &outstanding,
					Repayments: []domain.Installment{
						{DueDate: mustDate("2024-02-05"), Amount: decimal.NewFromInt(4100), Paid: true, PaidOn: &paidOn},
						{DueDate: mustDate("2024-03-05"), Amount: decimal.NewFromInt(4100)},
						{DueDate: mustDate("2024-04-05"), Amount: decimal.NewFromInt(4100)},
					},
				},
			},
		},
		{
			MemberID: "M-002",
			Name:     "Ravi",
			Mobile:   "",
			Loans: []domain.Loan{
				{
					LoanID:       "LN-002",
					MemberID:     "M-002",
					Principal:    decimal.NewFromInt(5000),
					InterestRate: decimal.NewFromFloat(2.5),
					TenureMonths: 5,
					EMI:          decimal.NewFromInt(1050),
					TotalPayable: decimal.NewFromInt(5250),
					Status:       domain.LoanStatusPending,
					Repayments:   []domain.Installment{},
				},
				{
					LoanID:       "LN-003",
					MemberID:     "M-002",
					Principal:    decimal.NewFromInt(2000),
					InterestRate: decimal.NewFromFloat(2.5),
					TenureMonths: 2,
					EMI:          decimal.NewFromInt(1025),
					TotalPayable: decimal.NewFromInt(2050),
					Status:       domain.LoanStatusRejected,
					Repayments:   []domain.Installment{},
				},
			},
		},
		{MemberID: "M-003", Name: "Meera", Mobile: "9000000001", Loans: []domain.Loan{}},
	}
}

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFlatten(t *testing.T) {
	loans := domain.Flatten(sampleMembers())

	require.Len(t, loans, 3)
	assert.Equal(t, "LN-001", loans[0].LoanID)
	assert.Equal(t, "LN-002", loans[1].LoanID)
	assert.Equal(t, "LN-003", loans[2].LoanID)

	// Member display fields ride along with each loan
	assert.Equal(t, "Asha", loans[0].MemberName)
	assert.Equal(t, "9876543210", loans[0].MemberMobile)
	assert.Equal(t, "Ravi", loans[1].MemberName)
	assert.Equal(t, "-", loans[1].MemberMobile, "missing mobile reads as dash")

	assert.False(t, loans[0].ScheduleMismatch)
	assert.False(t, loans[1].ScheduleMismatch)
}

func TestFlattenNormalizesFreshApplications(t *testing.T) {
	members := []domain.Member{
		{
			MemberID: "M-001",
			Name:     "Asha",
			Loans: []domain.Loan{
				{LoanID: "LN-RAW", TenureMonths: 3, EMI: decimal.NewFromInt(100), TotalPayable: decimal.NewFromInt(300)},
			},
		},
	}

	loans := domain.Flatten(members)

	require.Len(t, loans, 1)
	assert.Equal(t, domain.LoanStatusPending, loans[0].Status)
	assert.NotNil(t, loans[0].Repayments)
	assert.Empty(t, loans[0].Repayments)
	assert.Equal(t, "M-001", loans[0].MemberID, "owner id stamped onto the loan")
}

func TestRoundTrip(t *testing.T) {
	members := sampleMembers()

	rebuilt := domain.Reaggregate(members, domain.Flatten(members))

	assert.Equal(t, members, rebuilt)
}

func TestReaggregatePreservesLoanlessMembers(t *testing.T) {
	members := sampleMembers()

	rebuilt := domain.Reaggregate(members, []domain.LoanView{})

	require.Len(t, rebuilt, 3)
	for i, m := range rebuilt {
		assert.Equal(t, members[i].MemberID, m.MemberID)
		assert.Equal(t, members[i].Name, m.Name)
		assert.Equal(t, members[i].Mobile, m.Mobile)
		assert.Empty(t, m.Loans)
	}
}

func TestReaggregateAssignsByOwner(t *testing.T) {
	members := sampleMembers()
	loans := domain.Flatten(members)

	// Swap the flat order; ownership, not position, decides placement.
	loans[0], loans[2] = loans[2], loans[0]

	rebuilt := domain.Reaggregate(members, loans)

	require.Len(t, rebuilt[0].Loans, 1)
	assert.Equal(t, "LN-001", rebuilt[0].Loans[0].LoanID)
	require.Len(t, rebuilt[1].Loans, 2)
	assert.Empty(t, rebuilt[2].Loans)
}

func TestDateJSON(t *testing.T) {
	d := domain.NewDate(time.Date(2024, time.February, 5, 17, 45, 12, 0, time.UTC))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-05"`, string(raw))

	var parsed domain.Date
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, d, parsed)

	assert.Error(t, json.Unmarshal([]byte(`"05/02/2024"`), &parsed))
}

func TestScheduleMismatch(t *testing.T) {
	loan := domain.Loan{
		TenureMonths: 3,
		EMI:          decimal.NewFromInt(4100),
		TotalPayable: decimal.NewFromInt(12300),
	}
	assert.False(t, loan.ScheduleMismatch())

	loan.TotalPayable = decimal.NewFromInt(12000)
	assert.True(t, loan.ScheduleMismatch())
}
