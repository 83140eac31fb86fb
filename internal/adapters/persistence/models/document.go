package models

import "time"

// Document statuses
const (
	DocumentStatusPending  = "PENDING"
	DocumentStatusVerified = "VERIFIED"
	DocumentStatusRejected = "REJECTED"
	DocumentStatusExpired  = "EXPIRED"
)

// Document category names
const (
	DocumentCategoryIdentity    = "IDENTITY"
	DocumentCategoryBeneficiary = "BENEFICIARY"
	DocumentCategoryBirth       = "BIRTH"
	DocumentCategoryDeath       = "DEATH"
	DocumentCategoryAdditional  = "ADDITIONAL"
	DocumentCategoryFinancial   = "FINANCIAL"
	DocumentCategoryMedical     = "MEDICAL"
)

// DocumentCategory groups documents for organization
type DocumentCategory struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description,omitempty"`
	IsActive             bool      `gorm:"default:true" json:"is_active"`
	RequiresVerification bool      `gorm:"default:true" json:"requires_verification"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DocumentCategory) TableName() string {
	return "document_categories"
}

// Document is a file-backed record with a verification status and a
// self-referential version chain.
type Document struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	UserID     uint `gorm:"index;not null" json:"user_id"`
	CategoryID uint `gorm:"not null;index" json:"category_id"`

	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	FileHandle string `gorm:"size:100;not null" json:"file_handle"`
	FileSize   int64  `gorm:"not null" json:"file_size"`
	FileType   string `gorm:"size:50" json:"file_type"`

	Status string `gorm:"size:10;not null;default:'PENDING';index" json:"status"`

	VerifiedByID    *uint      `json:"verified_by_id,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	DocumentNumber string     `gorm:"size:100" json:"document_number,omitempty"`
	IssueDate      *time.Time `gorm:"type:date" json:"issue_date,omitempty"`
	ExpiryDate     *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`

	Version    int   `gorm:"not null;default:1" json:"version"`
	ReplacedBy *uint `json:"replaced_by,omitempty"`

	UploadedAt time.Time `gorm:"autoCreateTime;index" json:"uploaded_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User       *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category   *DocumentCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	VerifiedBy *User             `gorm:"foreignKey:VerifiedByID" json:"verified_by,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}
