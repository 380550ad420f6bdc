package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/coopsoc/lending-engine/internal/domain"
	"github.com/coopsoc/lending-engine/internal/service"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
	"github.com/coopsoc/lending-engine/pkg/response"
)

type LendingHandler struct {
	service   *service.LendingService
	validator *validator.Validate
}

func NewLendingHandler(svc *service.LendingService) *LendingHandler {
	v := validator.New()

	// decimal.Decimal fields need their own comparisons; the builtin
	// gt/gte tags only understand numeric kinds.
	_ = v.RegisterValidation("dgt", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.GreaterThan(decimal.Zero)
	})
	_ = v.RegisterValidation("dgte", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.GreaterThanOrEqual(decimal.Zero)
	})

	return &LendingHandler{
		service:   svc,
		validator: v,
	}
}

// RegisterMember handles POST /members
func (h *LendingHandler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	member, err := h.service.RegisterMember(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, member)
}

// ListMembers handles GET /members
func (h *LendingHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, members)
}

// ApplyLoan handles POST /members/{memberId}/loans
func (h *LendingHandler) ApplyLoan(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["memberId"]

	var request domain.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.ApplyLoan(r.Context(), memberID, &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, loan)
}

// ListLoans handles GET /loans?status=
func (h *LendingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	status := domain.LoanStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.LoanStatusPending, domain.LoanStatusApproved, domain.LoanStatusRejected:
	default:
		response.BadRequest(w, "Unknown status filter", nil)
		return
	}

	loans, err := h.service.ListLoans(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loans)
}

// ApproveLoan handles POST /loans/{loanId}/approve
func (h *LendingHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	loan, err := h.service.ApproveLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

// RejectLoan handles POST /loans/{loanId}/reject
func (h *LendingHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	loan, err := h.service.RejectLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

// MarkInstallmentPaid handles POST /loans/{loanId}/repayments/{index}/pay
func (h *LendingHandler) MarkInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	loanID := vars["loanId"]

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		response.BadRequest(w, "Installment index must be an integer", err)
		return
	}

	loan, err := h.service.MarkInstallmentPaid(r.Context(), loanID, index)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *LendingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, schedule)
}

// GetOutstanding handles GET /loans/{loanId}/outstanding
func (h *LendingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, outstanding)
}

// LogCheque handles POST /cheques
func (h *LendingHandler) LogCheque(w http.ResponseWriter, r *http.Request) {
	var request domain.LogChequeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	cheque, err := h.service.LogCheque(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, cheque)
}

// ListCheques handles GET /cheques
func (h *LendingHandler) ListCheques(w http.ResponseWriter, r *http.Request) {
	cheques, err := h.service.ListCheques(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, cheques)
}

// writeError maps business errors onto HTTP statuses. Invalid
// transitions conflict with current state (409); missing entities are
// 404; anything else is a store-level failure.
func writeError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		switch bizErr.Code {
		case customError.ErrCodeLoanNotFound,
			customError.ErrCodeMemberNotFound,
			customError.ErrCodeInstallmentNotFound:
			response.NotFound(w, bizErr.Message)
			return
		case customError.ErrCodeInvalidTransition:
			response.Conflict(w, bizErr.Message, bizErr.Err)
			return
		case customError.ErrCodeValidationError:
			response.BadRequest(w, bizErr.Message, bizErr.Err)
			return
		}
	}
	response.InternalServerError(w, "Internal server error", err)
}
