package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts: identity, profile, dependents
// ============================================================

// User roles
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User represents the users table. Identity is keyed by phone number.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PhoneNumber string         `gorm:"uniqueIndex;size:17;not null" json:"phone_number"`
	FirstName   string         `gorm:"size:100;not null" json:"first_name"`
	LastName    string         `gorm:"size:100;not null" json:"last_name"`
	Email       string         `gorm:"size:100" json:"email,omitempty"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Role        string         `gorm:"size:10;default:'MEMBER'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`

	// Extended profile
	Age           *int    `json:"age,omitempty"`
	Gender        string  `gorm:"size:10" json:"gender,omitempty"`
	MaritalStatus string  `gorm:"size:10" json:"marital_status,omitempty"`
	NumberOfKids  int     `gorm:"default:0" json:"number_of_kids"`
	Profession    string  `gorm:"size:200" json:"profession,omitempty"`
	SalaryRange   string  `gorm:"size:50" json:"salary_range,omitempty"`

	// Stored file handles
	PassportPhoto    string `gorm:"size:100" json:"passport_photo,omitempty"`
	IdentityDocument string `gorm:"size:100" json:"identity_document,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName returns the member's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// SpouseDetails represents spouse details for married members (0..1 per user)
type SpouseDetails struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName    string `gorm:"size:200" json:"full_name"`
	Age         int    `json:"age"`
	PhoneNumber string `gorm:"size:17" json:"phone_number"`
	Email       string `gorm:"size:100" json:"email,omitempty"`
	Profession  string `gorm:"size:200" json:"profession,omitempty"`
	IDNumber    string `gorm:"size:20" json:"id_number"`

	IdentityDocument string `gorm:"size:100" json:"identity_document,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SpouseDetails) TableName() string {
	return "spouse_details"
}

// Child represents a member's child. The birth certificate is mandatory.
type Child struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	UserID           uint   `gorm:"index;not null" json:"user_id"`
	FullName         string `gorm:"size:200;not null" json:"full_name"`
	Age              int    `json:"age"`
	Gender           string `gorm:"size:10" json:"gender"`
	BirthCertificate string `gorm:"size:100;not null" json:"birth_certificate"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Child) TableName() string {
	return "children"
}

// Beneficiary statuses
const (
	BeneficiaryStatusActive   = "ACTIVE"
	BeneficiaryStatusDeceased = "DECEASED"
	BeneficiaryStatusReplaced = "REPLACED"
)

// Beneficiary represents a member's beneficiary. The sum of percentage
// shares over a member's ACTIVE beneficiaries must not exceed 100.
type Beneficiary struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"index;not null" json:"user_id"`
	FullName     string `gorm:"size:200;not null" json:"full_name"`
	Age          int    `json:"age"`
	Relationship string `gorm:"size:50" json:"relationship"`
	PhoneNumber  string `gorm:"size:17" json:"phone_number"`
	Email        string `gorm:"size:100" json:"email,omitempty"`
	Profession   string `gorm:"size:200" json:"profession,omitempty"`
	SalaryRange  string `gorm:"size:50" json:"salary_range,omitempty"`

	IdentityDocument   string `gorm:"size:100" json:"identity_document"`
	BirthCertificate   string `gorm:"size:100" json:"birth_certificate"`
	AdditionalDocument string `gorm:"size:100" json:"additional_document,omitempty"`

	Status                 string     `gorm:"size:10;default:'ACTIVE'" json:"status"`
	DeathCertificate       string     `gorm:"size:100" json:"death_certificate,omitempty"`
	DeathCertificateNumber string     `gorm:"size:50" json:"death_certificate_number,omitempty"`
	DateOfDeath            *time.Time `gorm:"type:date" json:"date_of_death,omitempty"`

	PercentageShare float64 `gorm:"type:decimal(5,2);default:100.00" json:"percentage_share"`
	IsPrimary       bool    `gorm:"default:true" json:"is_primary"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Beneficiary) TableName() string {
	return "beneficiaries"
}

// NextOfKin represents a member's next of kin (0..1 per user)
type NextOfKin struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName     string `gorm:"size:200;not null" json:"full_name"`
	Relationship string `gorm:"size:50" json:"relationship"`
	PhoneNumber  string `gorm:"size:17" json:"phone_number"`
	Email        string `gorm:"size:100" json:"email,omitempty"`
	Address      string `gorm:"type:text" json:"address,omitempty"`
	IDNumber     string `gorm:"size:20" json:"id_number,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NextOfKin) TableName() string {
	return "next_of_kin"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Accounts
		&User{},
		&RefreshToken{},
		&SpouseDetails{},
		&Child{},
		&Beneficiary{},
		&NextOfKin{},
		// Applications
		&Application{},
		// Contributions
		&ContributionType{},
		&Contribution{},
		&SACCOBalance{},
		&ContributionSummary{},
		// Documents
		&DocumentCategory{},
		&Document{},
		// Notifications
		&SMSNotification{},
		&NotificationTemplate{},
	)
}
