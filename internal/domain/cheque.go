package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cheque is a logged member cheque. Cheques live in their own keyed
// document and carry no invariants of their own; the log is append and
// list only.
type Cheque struct {
	ChequeID   string          `json:"chequeId"`
	MemberID   string          `json:"memberId"`
	MemberName string          `json:"memberName"`
	ChequeNo   string          `json:"chequeNo"`
	Dated      Date            `json:"dated"`
	BankBranch string          `json:"bankBranch"`
	Amount     decimal.Decimal `json:"amount"`
	LoggedAt   time.Time       `json:"loggedAt"`
}

type LogChequeRequest struct {
	MemberID   string          `json:"memberId" validate:"required"`
	ChequeNo   string          `json:"chequeNo" validate:"required"`
	Dated      Date            `json:"dated" validate:"required"`
	BankBranch string          `json:"bankBranch"`
	Amount     decimal.Decimal `json:"amount" validate:"dgt"`
}
