package domain

// LoanView is a loan annotated with its owning member's display fields.
// The lifecycle and ledger operate on the flat []LoanView produced by
// Flatten; Reaggregate folds the result back into the member document.
type LoanView struct {
	Loan
	MemberName       string `json:"memberName"`
	MemberMobile     string `json:"memberMobile"`
	ScheduleMismatch bool   `json:"scheduleMismatch"`
}

// Flatten produces the flat loan list for a member document. Loans are
// normalized on the way out: a missing status reads as pending and a
// nil repayment list reads as empty, mirroring how the intake form
// persists fresh applications.
func Flatten(members []Member) []LoanView {
	views := make([]LoanView, 0)
	for _, m := range members {
		mobile := m.Mobile
		if mobile == "" {
			mobile = "-"
		}
		for _, l := range m.Loans {
			if l.Status == "" {
				l.Status = LoanStatusPending
			}
			if l.Repayments == nil {
				l.Repayments = []Installment{}
			}
			l.MemberID = m.MemberID
			views = append(views, LoanView{
				Loan:             l,
				MemberName:       m.Name,
				MemberMobile:     mobile,
				ScheduleMismatch: l.ScheduleMismatch(),
			})
		}
	}
	return views
}

// Reaggregate replaces each member's loans with the subset of the flat
// list owned by that member, preserving member order, identity fields,
// and members that own no loans. Together with Flatten it satisfies the
// round-trip law: Reaggregate(members, Flatten(members)) reproduces
// members.
func Reaggregate(members []Member, loans []LoanView) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		owned := make([]Loan, 0)
		for _, v := range loans {
			if v.MemberID == m.MemberID {
				owned = append(owned, v.Loan)
			}
		}
		m.Loans = owned
		out = append(out, m)
	}
	return out
}
