package models

import "time"

// SMS delivery statuses
const (
	SMSStatusPending = "PENDING"
	SMSStatusSent    = "SENT"
	SMSStatusFailed  = "FAILED"
)

// Seeded template names
const (
	TemplateContributionVerified = "contribution_verified"
	TemplateContributionRejected = "contribution_rejected"
	TemplateApplicationApproved  = "application_approved"
	TemplateApplicationRejected  = "application_rejected"
)

// SMSNotification logs an SMS dispatched to a member and the gateway outcome.
type SMSNotification struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RecipientID uint   `gorm:"index;not null" json:"recipient_id"`
	PhoneNumber string `gorm:"size:15;not null" json:"phone_number"`
	Message     string `gorm:"type:text;not null" json:"message"`

	Status string `gorm:"size:10;not null;default:'PENDING'" json:"status"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// External gateway response
	ExternalID   string `gorm:"size:100" json:"external_id,omitempty"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	// Relations
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (SMSNotification) TableName() string {
	return "sms_notifications"
}

// NotificationTemplate is a reusable message template. Placeholders use the
// {variable_name} form.
type NotificationTemplate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	TemplateText string    `gorm:"type:text;not null" json:"template_text"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NotificationTemplate) TableName() string {
	return "notification_templates"
}
