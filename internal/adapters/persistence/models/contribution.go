package models

import "time"

// Contribution statuses. VERIFIED and REJECTED are terminal; balance and
// summary side effects fire exactly once, on PENDING -> VERIFIED.
const (
	ContributionStatusPending  = "PENDING"
	ContributionStatusVerified = "VERIFIED"
	ContributionStatusRejected = "REJECTED"
)

// ContributionType is a named contribution category (SACCO, MMF, ...)
type ContributionType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ContributionType) TableName() string {
	return "contribution_types"
}

// Contribution represents a member contribution backed by an M-Pesa
// transaction. The transaction code is globally unique across all statuses.
type Contribution struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	MemberID           uint    `gorm:"index;not null" json:"member_id"`
	ContributionTypeID uint    `gorm:"not null" json:"contribution_type_id"`
	Amount             float64 `gorm:"type:decimal(10,2);not null" json:"amount"`

	MpesaTransactionCode string `gorm:"size:20;uniqueIndex;not null" json:"mpesa_transaction_code"`
	MpesaPhoneNumber     string `gorm:"size:15" json:"mpesa_phone_number"`

	Status string `gorm:"size:10;not null;default:'PENDING';index" json:"status"`

	VerifiedByID    *uint      `json:"verified_by_id,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	SubmittedAt time.Time `gorm:"autoCreateTime;index" json:"submitted_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member           *User             `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ContributionType *ContributionType `gorm:"foreignKey:ContributionTypeID" json:"contribution_type,omitempty"`
	VerifiedBy       *User             `gorm:"foreignKey:VerifiedByID" json:"verified_by,omitempty"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// SACCOBalance is the running total of verified contributions for one
// (member, contribution type) pair. Mutated exclusively by the verification
// transition.
type SACCOBalance struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	MemberID             uint       `gorm:"not null;uniqueIndex:idx_member_type" json:"member_id"`
	ContributionTypeID   uint       `gorm:"not null;uniqueIndex:idx_member_type" json:"contribution_type_id"`
	TotalBalance         float64    `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_balance"`
	LastContributionDate *time.Time `json:"last_contribution_date,omitempty"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Member           *User             `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ContributionType *ContributionType `gorm:"foreignKey:ContributionTypeID" json:"contribution_type,omitempty"`
}

func (SACCOBalance) TableName() string {
	return "sacco_balances"
}

// ContributionSummary holds aggregate statistics per contribution type.
// Mutated exclusively by the verification transition.
type ContributionSummary struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ContributionTypeID uint      `gorm:"uniqueIndex;not null" json:"contribution_type_id"`
	TotalAmount        float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"total_amount"`
	TotalContributions int       `gorm:"not null;default:0" json:"total_contributions"`
	ActiveMembers      int       `gorm:"not null;default:0" json:"active_members"`
	LastUpdated        time.Time `gorm:"autoUpdateTime" json:"last_updated"`

	// Relations
	ContributionType *ContributionType `gorm:"foreignKey:ContributionTypeID" json:"contribution_type,omitempty"`
}

func (ContributionSummary) TableName() string {
	return "contribution_summaries"
}

// MemberBalance DTO for the balance query endpoint
type MemberBalance struct {
	ContributionType     string     `json:"contribution_type"`
	TotalBalance         float64    `json:"total_balance"`
	LastContributionDate *time.Time `json:"last_contribution_date,omitempty"`
}
