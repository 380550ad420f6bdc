package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/coopsoc/lending-engine/internal/config"
	"github.com/coopsoc/lending-engine/internal/domain"
	"github.com/coopsoc/lending-engine/internal/ledger"
	"github.com/coopsoc/lending-engine/internal/store"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
)

// LendingService wires the member document to the lifecycle and ledger
// operations. Every mutation follows the same path: load the document,
// flatten to the loan list, apply one pure operation, reaggregate, and
// persist the whole document. The service holds no loan state of its
// own between calls.
type LendingService struct {
	Members *store.MemberRepository
	Cheques *store.ChequeRepository
	redis   *redis.Client
	config  *config.Config
	now     func() time.Time
}

func NewLendingService(
	members *store.MemberRepository,
	cheques *store.ChequeRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LendingService {
	return &LendingService{
		Members: members,
		Cheques: cheques,
		redis:   redisClient,
		config:  cfg,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Used by tests and the
// scheduler to pin approval and payment dates.
func (s *LendingService) WithClock(now func() time.Time) *LendingService {
	s.now = now
	return s
}

// RegisterMember creates a member with no loans.
func (s *LendingService) RegisterMember(ctx context.Context, request *domain.RegisterMemberRequest) (*domain.Member, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}

	member := domain.Member{
		MemberID: uuid.NewString(),
		Name:     request.Name,
		Mobile:   request.Mobile,
		Loans:    []domain.Loan{},
	}
	members = append(members, member)

	if err := s.Members.Save(ctx, members); err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers returns the full member document.
func (s *LendingService) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return s.Members.Load(ctx)
}

// ApplyLoan records a new pending loan application against a member.
// The financial terms arrive precomputed from the intake form; they are
// stored as-is and never recalculated here.
func (s *LendingService) ApplyLoan(ctx context.Context, memberID string, request *domain.ApplyLoanRequest) (*domain.Loan, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}

	loan := domain.Loan{
		LoanID:       uuid.NewString(),
		MemberID:     memberID,
		Principal:    request.Principal,
		InterestRate: request.InterestRate,
		TenureMonths: request.TenureMonths,
		EMI:          request.EMI,
		TotalPayable: request.TotalPayable,
		Status:       domain.LoanStatusPending,
		Repayments:   []domain.Installment{},
	}

	found := false
	for i := range members {
		if members[i].MemberID == memberID {
			members[i].Loans = append(members[i].Loans, loan)
			found = true
			break
		}
	}
	if !found {
		return nil, customError.WrapMemberNotFound(memberID)
	}

	if err := s.Members.Save(ctx, members); err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoans returns the flattened, member-annotated loan list,
// optionally filtered by status.
func (s *LendingService) ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.LoanView, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}

	loans := domain.Flatten(members)
	if status == "" {
		return loans, nil
	}

	filtered := make([]domain.LoanView, 0, len(loans))
	for _, v := range loans {
		if v.Status == status {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// ApproveLoan approves a pending loan, generating its repayment
// schedule as of the service clock.
func (s *LendingService) ApproveLoan(ctx context.Context, loanID string) (*domain.LoanView, error) {
	return s.mutateLoans(ctx, loanID, func(loans []domain.LoanView) ([]domain.LoanView, error) {
		return ledger.Approve(loans, loanID, s.now())
	})
}

// RejectLoan rejects a pending loan.
func (s *LendingService) RejectLoan(ctx context.Context, loanID string) (*domain.LoanView, error) {
	return s.mutateLoans(ctx, loanID, func(loans []domain.LoanView) ([]domain.LoanView, error) {
		return ledger.Reject(loans, loanID)
	})
}

// MarkInstallmentPaid records a payment against one installment of an
// approved loan.
func (s *LendingService) MarkInstallmentPaid(ctx context.Context, loanID string, index int) (*domain.LoanView, error) {
	return s.mutateLoans(ctx, loanID, func(loans []domain.LoanView) ([]domain.LoanView, error) {
		return ledger.MarkPaid(loans, loanID, index, s.now())
	})
}

// mutateLoans runs one pure operation over the flattened loan list and
// commits the reaggregated document. Nothing is persisted when the
// operation fails, so the prior committed state stays readable.
func (s *LendingService) mutateLoans(ctx context.Context, loanID string, op func([]domain.LoanView) ([]domain.LoanView, error)) (*domain.LoanView, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}

	loans, err := op(domain.Flatten(members))
	if err != nil {
		return nil, err
	}

	if err := s.Members.Save(ctx, domain.Reaggregate(members, loans)); err != nil {
		return nil, err
	}

	for i := range loans {
		if loans[i].LoanID == loanID {
			return &loans[i], nil
		}
	}
	return nil, customError.WrapLoanNotFound(loanID)
}

// GetSchedule returns the repayment schedule for a loan.
func (s *LendingService) GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error) {
	view, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &domain.ScheduleResponse{
		LoanID:     view.LoanID,
		Status:     view.Status,
		Repayments: view.Repayments,
	}, nil
}

// GetOutstanding returns the outstanding balance for a loan, nil when
// the loan carries no balance (pending or rejected), plus the schedule
// mismatch indicator.
func (s *LendingService) GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, error) {
	view, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &domain.OutstandingResponse{
		LoanID:           view.LoanID,
		Status:           view.Status,
		Outstanding:      view.Outstanding,
		ScheduleMismatch: view.ScheduleMismatch,
	}, nil
}

func (s *LendingService) findLoan(ctx context.Context, loanID string) (*domain.LoanView, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}
	loans := domain.Flatten(members)
	for i := range loans {
		if loans[i].LoanID == loanID {
			return &loans[i], nil
		}
	}
	return nil, customError.WrapLoanNotFound(loanID)
}

// LogCheque appends a cheque to the cheque log, annotated with the
// member's name.
func (s *LendingService) LogCheque(ctx context.Context, request *domain.LogChequeRequest) (*domain.Cheque, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}

	var memberName string
	found := false
	for _, m := range members {
		if m.MemberID == request.MemberID {
			memberName = m.Name
			found = true
			break
		}
	}
	if !found {
		return nil, customError.WrapMemberNotFound(request.MemberID)
	}

	cheques, err := s.Cheques.Load(ctx)
	if err != nil {
		return nil, err
	}

	cheque := domain.Cheque{
		ChequeID:   uuid.NewString(),
		MemberID:   request.MemberID,
		MemberName: memberName,
		ChequeNo:   request.ChequeNo,
		Dated:      request.Dated,
		BankBranch: request.BankBranch,
		Amount:     request.Amount,
		LoggedAt:   s.now(),
	}
	cheques = append(cheques, cheque)

	if err := s.Cheques.Save(ctx, cheques); err != nil {
		return nil, err
	}
	return &cheque, nil
}

// ListCheques returns the cheque log.
func (s *LendingService) ListCheques(ctx context.Context) ([]domain.Cheque, error) {
	return s.Cheques.Load(ctx)
}

// OverdueStatus is one row of the scheduler's overdue report.
type OverdueStatus struct {
	LoanID       string `json:"loanId"`
	MemberName   string `json:"memberName"`
	OverdueCount int    `json:"overdueCount"`
}

// OverdueReport scans approved loans for unpaid installments due
// before asOf. Read-only with respect to the member document; when a
// redis client is present, per-loan counts are cached for the display
// layer under overdue:<loanId>.
func (s *LendingService) OverdueReport(ctx context.Context, asOf time.Time) ([]OverdueStatus, error) {
	members, err := s.Members.Load(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.NewDate(asOf)
	report := make([]OverdueStatus, 0)
	for _, v := range domain.Flatten(members) {
		if v.Status != domain.LoanStatusApproved {
			continue
		}
		overdue := 0
		for _, r := range v.Repayments {
			if !r.Paid && r.DueDate.Before(today.Time) {
				overdue++
			}
		}
		if overdue == 0 {
			continue
		}
		report = append(report, OverdueStatus{
			LoanID:       v.LoanID,
			MemberName:   v.MemberName,
			OverdueCount: overdue,
		})
		if s.redis != nil {
			cacheKey := fmt.Sprintf("overdue:%s", v.LoanID)
			if err := s.redis.Set(ctx, cacheKey, overdue, 24*time.Hour).Err(); err != nil {
				return nil, customError.WrapStoreError(err)
			}
		}
	}
	return report, nil
}
