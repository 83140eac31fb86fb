package domain

// Role represents a user role in the system
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Decision represents a reviewer decision on an application stage
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Actor is the authenticated caller of a request. It is resolved once by the
// auth middleware and carries everything handlers need for authorization, so
// role strings are never compared inside handlers.
type Actor struct {
	UserID      uint
	PhoneNumber string
	FullName    string
	Role        Role
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanReview reports whether the actor may review applications and verify
// contributions or documents.
func (a Actor) CanReview() bool {
	return a.IsAdmin()
}

// CanAccessMember reports whether the actor may read or mutate data owned by
// the given member.
func (a Actor) CanAccessMember(memberID uint) bool {
	return a.IsAdmin() || a.UserID == memberID
}
