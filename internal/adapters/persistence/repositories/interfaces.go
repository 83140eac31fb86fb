package repositories

import (
	"context"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByPhoneNumber(ctx context.Context, phoneNumber string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// AccountRepository defines data access for a member's owned collections:
// spouse details, children, beneficiaries and next of kin.
type AccountRepository interface {
	GetSpouse(ctx context.Context, userID uint) (*models.SpouseDetails, error)
	SaveSpouse(ctx context.Context, spouse *models.SpouseDetails) error

	ListChildren(ctx context.Context, userID uint) ([]*models.Child, error)
	GetChild(ctx context.Context, id uint) (*models.Child, error)
	CreateChild(ctx context.Context, child *models.Child) error
	SaveChild(ctx context.Context, child *models.Child) error
	DeleteChild(ctx context.Context, id uint) error

	ListBeneficiaries(ctx context.Context, userID uint) ([]*models.Beneficiary, error)
	ListActiveBeneficiaries(ctx context.Context, userID uint) ([]*models.Beneficiary, error)
	GetBeneficiary(ctx context.Context, id uint) (*models.Beneficiary, error)
	CreateBeneficiary(ctx context.Context, b *models.Beneficiary) error
	SaveBeneficiary(ctx context.Context, b *models.Beneficiary) error
	DeleteBeneficiary(ctx context.Context, id uint) error

	GetNextOfKin(ctx context.Context, userID uint) (*models.NextOfKin, error)
	SaveNextOfKin(ctx context.Context, nok *models.NextOfKin) error
}

// ApplicationRepository defines application repository interface.
// UpdateFromStatus persists the application only if its stored status still
// equals fromStatus; the false return means a concurrent reviewer won.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Application, error)
	List(ctx context.Context, offset, limit int) ([]*models.Application, int64, error)
	ListPending(ctx context.Context) ([]*models.Application, error)
	CountPending(ctx context.Context) (int64, error)
	UpdateFromStatus(ctx context.Context, app *models.Application, fromStatus string) (bool, error)
}

// LedgerRepository defines data access for contributions, balances and
// summaries. Transaction runs fn against a repository bound to one database
// transaction; MarkVerified/MarkRejected are status-guarded compare-and-set
// updates (false means the contribution was no longer PENDING).
type LedgerRepository interface {
	Transaction(ctx context.Context, fn func(LedgerRepository) error) error

	CreateContribution(ctx context.Context, c *models.Contribution) error
	GetContribution(ctx context.Context, id uint) (*models.Contribution, error)
	ExistsByTransactionCode(ctx context.Context, code string) (bool, error)
	ListContributions(ctx context.Context, offset, limit int) ([]*models.Contribution, int64, error)
	ListContributionsByMember(ctx context.Context, memberID uint) ([]*models.Contribution, error)
	ListPendingContributions(ctx context.Context) ([]*models.Contribution, error)
	CountPendingContributions(ctx context.Context) (int64, error)
	MarkVerified(ctx context.Context, id, verifierID uint, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, verifierID uint, at time.Time, reason string) (bool, error)

	GetOrCreateBalance(ctx context.Context, memberID, typeID uint) (*models.SACCOBalance, error)
	SaveBalance(ctx context.Context, b *models.SACCOBalance) error
	ListBalancesByMember(ctx context.Context, memberID uint) ([]*models.SACCOBalance, error)
	ListBalances(ctx context.Context) ([]*models.SACCOBalance, error)
	CountActiveMembers(ctx context.Context, typeID uint) (int64, error)

	GetOrCreateSummary(ctx context.Context, typeID uint) (*models.ContributionSummary, error)
	SaveSummary(ctx context.Context, s *models.ContributionSummary) error
	ListSummaries(ctx context.Context) ([]*models.ContributionSummary, error)

	ListContributionTypes(ctx context.Context, activeOnly bool) ([]*models.ContributionType, error)
	GetContributionType(ctx context.Context, id uint) (*models.ContributionType, error)
}

// DocumentRepository defines document repository interface
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Document, error)
	List(ctx context.Context, offset, limit int) ([]*models.Document, int64, error)
	ListPending(ctx context.Context) ([]*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	UpdateFromStatus(ctx context.Context, doc *models.Document, fromStatus string) (bool, error)
	Delete(ctx context.Context, id uint) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	ListCategories(ctx context.Context) ([]*models.DocumentCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.DocumentCategory, error)
}

// NotificationRepository defines SMS notification log and template access
type NotificationRepository interface {
	Create(ctx context.Context, n *models.SMSNotification) error
	Update(ctx context.Context, n *models.SMSNotification) error
	ListByRecipient(ctx context.Context, userID uint) ([]*models.SMSNotification, error)
	List(ctx context.Context, offset, limit int) ([]*models.SMSNotification, int64, error)

	GetTemplateByName(ctx context.Context, name string) (*models.NotificationTemplate, error)
	ListTemplates(ctx context.Context) ([]*models.NotificationTemplate, error)
	SaveTemplate(ctx context.Context, t *models.NotificationTemplate) error
}
