package services

import (
	"context"
	"errors"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/adapters/persistence/repositories"
	"sacco-hub/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContributionNotifier receives verification outcomes. Dispatch is
// best-effort; implementations must not return errors.
type ContributionNotifier interface {
	ContributionVerified(c *models.Contribution)
	ContributionRejected(c *models.Contribution, reason string)
}

// ContributionService handles contribution submission and the verification
// transition that feeds balances and summaries.
type ContributionService struct {
	ledger   repositories.LedgerRepository
	userRepo repositories.UserRepository
	notifier ContributionNotifier
}

// NewContributionService creates a new contribution service
func NewContributionService(
	ledger repositories.LedgerRepository,
	userRepo repositories.UserRepository,
	notifier ContributionNotifier,
) *ContributionService {
	return &ContributionService{
		ledger:   ledger,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// SubmitContributionInput represents a contribution submission
type SubmitContributionInput struct {
	ContributionTypeID   uint    `json:"contribution_type_id" validate:"required"`
	Amount               float64 `json:"amount" validate:"required,gt=0"`
	MpesaTransactionCode string  `json:"mpesa_transaction_code" validate:"required,max=20"`
	MpesaPhoneNumber     string  `json:"mpesa_phone_number"`
	Notes                string  `json:"notes"`
}

// VerifyContributionInput represents a verifier decision
type VerifyContributionInput struct {
	Status          string `json:"status" validate:"required,oneof=VERIFIED REJECTED"`
	RejectionReason string `json:"rejection_reason"`
}

// Submit records a new PENDING contribution. The M-Pesa transaction code
// must be unique across the whole ledger regardless of status.
func (s *ContributionService) Submit(ctx context.Context, actor domain.Actor, input *SubmitContributionInput) (*models.Contribution, error) {
	if input.Amount <= 0 {
		return nil, domain.Validationf("amount", "must be greater than zero")
	}
	if input.MpesaTransactionCode == "" {
		return nil, domain.Validationf("mpesa_transaction_code", "transaction code is required")
	}

	ct, err := s.ledger.GetContributionType(ctx, input.ContributionTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("contribution type")
		}
		return nil, err
	}
	if !ct.IsActive {
		return nil, domain.Validationf("contribution_type_id", "contribution type %s is not active", ct.Name)
	}

	exists, err := s.ledger.ExistsByTransactionCode(ctx, input.MpesaTransactionCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflictf("transaction code %s already recorded", input.MpesaTransactionCode)
	}

	c := &models.Contribution{
		MemberID:             actor.UserID,
		ContributionTypeID:   input.ContributionTypeID,
		Amount:               input.Amount,
		MpesaTransactionCode: input.MpesaTransactionCode,
		MpesaPhoneNumber:     input.MpesaPhoneNumber,
		Notes:                input.Notes,
		Status:               models.ContributionStatusPending,
	}

	if err := s.ledger.CreateContribution(ctx, c); err != nil {
		// A concurrent submission can slip past the existence check; the
		// unique index on the code is the backstop.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflictf("transaction code %s already recorded", input.MpesaTransactionCode)
		}
		return nil, err
	}

	logrus.Infof("💰 Contribution %d submitted by member %d: KES %.2f (%s)",
		c.ID, actor.UserID, c.Amount, c.MpesaTransactionCode)
	return c, nil
}

// Get returns a single contribution. Members see only their own.
func (s *ContributionService) Get(ctx context.Context, actor domain.Actor, id uint) (*models.Contribution, error) {
	c, err := s.ledger.GetContribution(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("contribution")
		}
		return nil, err
	}
	if !actor.CanAccessMember(c.MemberID) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// ListMine returns the calling member's contributions
func (s *ContributionService) ListMine(ctx context.Context, actor domain.Actor) ([]*models.Contribution, error) {
	return s.ledger.ListContributionsByMember(ctx, actor.UserID)
}

// List returns a page of all contributions (admin only)
func (s *ContributionService) List(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.Contribution, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	return s.ledger.ListContributions(ctx, offset, limit)
}

// ListPending returns all contributions awaiting verification (admin only)
func (s *ContributionService) ListPending(ctx context.Context, actor domain.Actor) ([]*models.Contribution, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.ledger.ListPendingContributions(ctx)
}

// Verify applies a verifier decision to a PENDING contribution.
//
// On VERIFIED, the member's balance and the type summary are updated in the
// same database transaction as the status flip. The flip is a compare-and-set
// on PENDING, so two concurrent verifiers cannot both apply the increment:
// the loser's CAS matches zero rows and the transaction rolls back with a
// ConflictError.
func (s *ContributionService) Verify(ctx context.Context, actor domain.Actor, id uint, input *VerifyContributionInput) (*models.Contribution, error) {
	if !actor.CanReview() {
		return nil, domain.ErrForbidden
	}

	c, err := s.ledger.GetContribution(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("contribution")
		}
		return nil, err
	}

	if c.Status != models.ContributionStatusPending {
		return nil, domain.Conflictf("contribution is already %s", c.Status)
	}

	switch input.Status {
	case models.ContributionStatusRejected:
		return s.reject(ctx, actor, c, input.RejectionReason)
	case models.ContributionStatusVerified:
		return s.approve(ctx, actor, c)
	default:
		return nil, domain.Validationf("status", "must be VERIFIED or REJECTED")
	}
}

func (s *ContributionService) reject(ctx context.Context, actor domain.Actor, c *models.Contribution, reason string) (*models.Contribution, error) {
	if reason == "" {
		return nil, domain.Validationf("rejection_reason", "rejection reason is required")
	}

	now := time.Now()
	updated, err := s.ledger.MarkRejected(ctx, c.ID, actor.UserID, now, reason)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.Conflictf("contribution was processed concurrently")
	}

	c.Status = models.ContributionStatusRejected
	c.VerifiedByID = &actor.UserID
	c.VerifiedAt = &now
	c.RejectionReason = reason

	logrus.Infof("💰 Contribution %d rejected by admin %d: %s", c.ID, actor.UserID, reason)

	if s.notifier != nil {
		s.notifier.ContributionRejected(c, reason)
	}
	return c, nil
}

func (s *ContributionService) approve(ctx context.Context, actor domain.Actor, c *models.Contribution) (*models.Contribution, error) {
	now := time.Now()

	err := s.ledger.Transaction(ctx, func(tx repositories.LedgerRepository) error {
		updated, err := tx.MarkVerified(ctx, c.ID, actor.UserID, now)
		if err != nil {
			return err
		}
		if !updated {
			return domain.Conflictf("contribution was processed concurrently")
		}

		balance, err := tx.GetOrCreateBalance(ctx, c.MemberID, c.ContributionTypeID)
		if err != nil {
			return err
		}
		balance.TotalBalance += c.Amount
		// Member-facing recency reflects when the money moved, not when an
		// admin got around to verifying it.
		submittedAt := c.SubmittedAt
		balance.LastContributionDate = &submittedAt
		if err := tx.SaveBalance(ctx, balance); err != nil {
			return err
		}

		summary, err := tx.GetOrCreateSummary(ctx, c.ContributionTypeID)
		if err != nil {
			return err
		}
		summary.TotalAmount += c.Amount
		summary.TotalContributions++

		activeMembers, err := tx.CountActiveMembers(ctx, c.ContributionTypeID)
		if err != nil {
			return err
		}
		summary.ActiveMembers = int(activeMembers)

		return tx.SaveSummary(ctx, summary)
	})
	if err != nil {
		return nil, err
	}

	c.Status = models.ContributionStatusVerified
	c.VerifiedByID = &actor.UserID
	c.VerifiedAt = &now

	logrus.Infof("💰 Contribution %d verified by admin %d: KES %.2f", c.ID, actor.UserID, c.Amount)

	if s.notifier != nil {
		s.notifier.ContributionVerified(c)
	}
	return c, nil
}

// ListTypes returns contribution types
func (s *ContributionService) ListTypes(ctx context.Context, activeOnly bool) ([]*models.ContributionType, error) {
	return s.ledger.ListContributionTypes(ctx, activeOnly)
}

// MyBalances returns the calling member's balances per contribution type
func (s *ContributionService) MyBalances(ctx context.Context, actor domain.Actor) ([]*models.MemberBalance, error) {
	balances, err := s.ledger.ListBalancesByMember(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.MemberBalance, 0, len(balances))
	for _, b := range balances {
		mb := &models.MemberBalance{
			TotalBalance:         b.TotalBalance,
			LastContributionDate: b.LastContributionDate,
		}
		if b.ContributionType != nil {
			mb.ContributionType = b.ContributionType.Name
		}
		out = append(out, mb)
	}
	return out, nil
}

// AllBalances returns every member balance (admin only)
func (s *ContributionService) AllBalances(ctx context.Context, actor domain.Actor) ([]*models.SACCOBalance, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.ledger.ListBalances(ctx)
}

// Summaries returns per-type aggregate statistics (admin only)
func (s *ContributionService) Summaries(ctx context.Context, actor domain.Actor) ([]*models.ContributionSummary, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.ledger.ListSummaries(ctx)
}

// CountPending returns the number of contributions awaiting verification
func (s *ContributionService) CountPending(ctx context.Context) (int64, error) {
	return s.ledger.CountPendingContributions(ctx)
}
