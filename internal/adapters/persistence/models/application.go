package models

import "time"

// Application types
const (
	ApplicationTypeEntry = "ENTRY"
	ApplicationTypeExit  = "EXIT"
)

// Application workflow statuses. PENDING means "awaiting stage-1 review";
// STAGE_N means "awaiting stage-N review". APPROVED and REJECTED are
// terminal.
const (
	ApplicationStatusPending  = "PENDING"
	ApplicationStatusStage1   = "STAGE_1"
	ApplicationStatusStage2   = "STAGE_2"
	ApplicationStatusStage3   = "STAGE_3"
	ApplicationStatusApproved = "APPROVED"
	ApplicationStatusRejected = "REJECTED"
)

// Application represents an entry/exit application and its three-stage
// review trail. Once the status is APPROVED or REJECTED the record is
// immutable.
type Application struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	ApplicationType string `gorm:"size:10;not null" json:"application_type"`

	// Prefilled member information
	FullName     string `gorm:"size:200" json:"full_name"`
	PhoneNumber  string `gorm:"size:17" json:"phone_number"`
	Email        string `gorm:"size:100" json:"email,omitempty"`
	MemberNumber string `gorm:"size:50" json:"member_number,omitempty"`

	Reason          string `gorm:"type:text;not null" json:"reason"`
	AdditionalNotes string `gorm:"type:text" json:"additional_notes,omitempty"`

	SupportingDocument1 string `gorm:"size:100" json:"supporting_document_1,omitempty"`
	SupportingDocument2 string `gorm:"size:100" json:"supporting_document_2,omitempty"`

	Status       string `gorm:"size:10;not null;default:'PENDING';index" json:"status"`
	CurrentStage int    `gorm:"not null;default:0" json:"current_stage"`

	Stage1ReviewerID *uint      `json:"stage_1_reviewer_id,omitempty"`
	Stage1ReviewedAt *time.Time `json:"stage_1_reviewed_at,omitempty"`
	Stage1Comments   string     `gorm:"type:text" json:"stage_1_comments,omitempty"`
	Stage1Decision   string     `gorm:"size:10" json:"stage_1_decision,omitempty"`

	Stage2ReviewerID *uint      `json:"stage_2_reviewer_id,omitempty"`
	Stage2ReviewedAt *time.Time `json:"stage_2_reviewed_at,omitempty"`
	Stage2Comments   string     `gorm:"type:text" json:"stage_2_comments,omitempty"`
	Stage2Decision   string     `gorm:"size:10" json:"stage_2_decision,omitempty"`

	Stage3ReviewerID *uint      `json:"stage_3_reviewer_id,omitempty"`
	Stage3ReviewedAt *time.Time `json:"stage_3_reviewed_at,omitempty"`
	Stage3Comments   string     `gorm:"type:text" json:"stage_3_comments,omitempty"`
	Stage3Decision   string     `gorm:"size:10" json:"stage_3_decision,omitempty"`

	FinalDecision string     `gorm:"size:10" json:"final_decision,omitempty"`
	FinalComments string     `gorm:"type:text" json:"final_comments,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`

	SubmittedAt time.Time `gorm:"autoCreateTime;index" json:"submitted_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User           *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Stage1Reviewer *User `gorm:"foreignKey:Stage1ReviewerID" json:"stage_1_reviewer,omitempty"`
	Stage2Reviewer *User `gorm:"foreignKey:Stage2ReviewerID" json:"stage_2_reviewer,omitempty"`
	Stage3Reviewer *User `gorm:"foreignKey:Stage3ReviewerID" json:"stage_3_reviewer,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// IsTerminal reports whether the application has reached a final decision.
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationStatusApproved || a.Status == ApplicationStatusRejected
}
