package services

import (
	"context"
	"time"

	"sacco-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregation queries
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// Member statistics
	TotalMembers  int64 `json:"total_members"`
	ActiveMembers int64 `json:"active_members"`
	TotalAdmins   int64 `json:"total_admins"`

	// Application statistics
	PendingApplications  int64 `json:"pending_applications"`
	ApprovedApplications int64 `json:"approved_applications"`
	RejectedApplications int64 `json:"rejected_applications"`

	// Contribution statistics
	PendingContributions  int64   `json:"pending_contributions"`
	VerifiedContributions int64   `json:"verified_contributions"`
	TotalVerifiedAmount   float64 `json:"total_verified_amount"`
	AmountThisMonth       float64 `json:"amount_this_month"`

	// Document statistics
	PendingDocuments int64 `json:"pending_documents"`

	// Per-type aggregates
	Summaries []models.ContributionSummary `json:"summaries"`

	// Recent activity
	RecentContributions []ContributionSummaryRow `json:"recent_contributions"`
}

// ContributionSummaryRow is one row of recent contribution activity
type ContributionSummaryRow struct {
	ID          uint      `json:"id"`
	MemberName  string    `json:"member_name"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// Member counts
	s.db.WithContext(ctx).Table("users").
		Where("role = ? AND deleted_at IS NULL", models.RoleMember).
		Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("users").
		Where("role = ? AND is_active = ? AND deleted_at IS NULL", models.RoleMember, true).
		Count(&data.ActiveMembers)
	s.db.WithContext(ctx).Table("users").
		Where("role = ? AND deleted_at IS NULL", models.RoleAdmin).
		Count(&data.TotalAdmins)

	// Application counts. Every non-terminal status is pending review.
	s.db.WithContext(ctx).Table("applications").
		Where("status NOT IN ?", []string{models.ApplicationStatusApproved, models.ApplicationStatusRejected}).
		Count(&data.PendingApplications)
	s.db.WithContext(ctx).Table("applications").
		Where("status = ?", models.ApplicationStatusApproved).
		Count(&data.ApprovedApplications)
	s.db.WithContext(ctx).Table("applications").
		Where("status = ?", models.ApplicationStatusRejected).
		Count(&data.RejectedApplications)

	// Contribution counts and amounts
	s.db.WithContext(ctx).Table("contributions").
		Where("status = ?", models.ContributionStatusPending).
		Count(&data.PendingContributions)
	s.db.WithContext(ctx).Table("contributions").
		Where("status = ?", models.ContributionStatusVerified).
		Count(&data.VerifiedContributions)
	s.db.WithContext(ctx).Table("contributions").
		Where("status = ?", models.ContributionStatusVerified).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalVerifiedAmount)

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("contributions").
		Where("status = ? AND submitted_at >= ?", models.ContributionStatusVerified, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.AmountThisMonth)

	// Document counts
	s.db.WithContext(ctx).Table("documents").
		Where("status = ?", models.DocumentStatusPending).
		Count(&data.PendingDocuments)

	// Per-type summaries
	s.db.WithContext(ctx).
		Preload("ContributionType").
		Find(&data.Summaries)

	// Recent contributions
	var recent []struct {
		ID          uint
		FirstName   string
		LastName    string
		Type        string
		Amount      float64
		Status      string
		SubmittedAt time.Time
	}
	s.db.WithContext(ctx).Table("contributions").
		Select("contributions.id, users.first_name, users.last_name, contribution_types.name as type, contributions.amount, contributions.status, contributions.submitted_at").
		Joins("LEFT JOIN users ON contributions.member_id = users.id").
		Joins("LEFT JOIN contribution_types ON contributions.contribution_type_id = contribution_types.id").
		Order("contributions.submitted_at DESC").
		Limit(10).
		Scan(&recent)

	data.RecentContributions = make([]ContributionSummaryRow, len(recent))
	for i, r := range recent {
		data.RecentContributions[i] = ContributionSummaryRow{
			ID:          r.ID,
			MemberName:  r.FirstName + " " + r.LastName,
			Type:        r.Type,
			Amount:      r.Amount,
			Status:      r.Status,
			SubmittedAt: r.SubmittedAt,
		}
	}

	return data, nil
}

// ============================================================
// Member Dashboard
// ============================================================

// MemberDashboardData represents member dashboard data
type MemberDashboardData struct {
	Balances             []models.MemberBalance `json:"balances"`
	TotalBalance         float64                `json:"total_balance"`
	PendingContributions int64                  `json:"pending_contributions"`
	PendingApplications  int64                  `json:"pending_applications"`
	PendingDocuments     int64                  `json:"pending_documents"`
	RecentNotifications  int64                  `json:"recent_notifications"`
}

// GetMemberDashboard returns the calling member's dashboard data
func (s *DashboardService) GetMemberDashboard(ctx context.Context, memberID uint) (*MemberDashboardData, error) {
	data := &MemberDashboardData{}

	var balances []models.SACCOBalance
	s.db.WithContext(ctx).
		Preload("ContributionType").
		Where("member_id = ?", memberID).
		Find(&balances)

	data.Balances = make([]models.MemberBalance, len(balances))
	for i, b := range balances {
		data.Balances[i] = models.MemberBalance{
			TotalBalance:         b.TotalBalance,
			LastContributionDate: b.LastContributionDate,
		}
		if b.ContributionType != nil {
			data.Balances[i].ContributionType = b.ContributionType.Name
		}
		data.TotalBalance += b.TotalBalance
	}

	s.db.WithContext(ctx).Table("contributions").
		Where("member_id = ? AND status = ?", memberID, models.ContributionStatusPending).
		Count(&data.PendingContributions)

	s.db.WithContext(ctx).Table("applications").
		Where("user_id = ? AND status NOT IN ?", memberID,
			[]string{models.ApplicationStatusApproved, models.ApplicationStatusRejected}).
		Count(&data.PendingApplications)

	s.db.WithContext(ctx).Table("documents").
		Where("user_id = ? AND status = ?", memberID, models.DocumentStatusPending).
		Count(&data.PendingDocuments)

	weekAgo := time.Now().AddDate(0, 0, -7)
	s.db.WithContext(ctx).Table("sms_notifications").
		Where("recipient_id = ? AND created_at >= ?", memberID, weekAgo).
		Count(&data.RecentNotifications)

	return data, nil
}
