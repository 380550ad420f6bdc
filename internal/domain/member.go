package domain

// Member is the aggregate root for persistence: loans are stored
// embedded in their owning member, and the whole member list is read
// and written as a single document.
type Member struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Loans    []Loan `json:"loans"`
}

type RegisterMemberRequest struct {
	Name   string `json:"name" validate:"required"`
	Mobile string `json:"mobile"`
}
