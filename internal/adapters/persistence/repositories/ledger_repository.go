package repositories

import (
	"context"
	"time"

	"sacco-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ledgerRepository implements LedgerRepository with GORM
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Transaction runs fn against a repository bound to one database
// transaction; any error rolls the whole unit back.
func (r *ledgerRepository) Transaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

// Contributions

func (r *ledgerRepository) CreateContribution(ctx context.Context, c *models.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ledgerRepository) GetContribution(ctx context.Context, id uint) (*models.Contribution, error) {
	var c models.Contribution
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("ContributionType").
		Preload("VerifiedBy").
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ledgerRepository) ExistsByTransactionCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("mpesa_transaction_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepository) ListContributions(ctx context.Context, offset, limit int) ([]*models.Contribution, int64, error) {
	var list []*models.Contribution
	var total int64

	r.db.WithContext(ctx).Model(&models.Contribution{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("ContributionType").
		Order("submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error

	return list, total, err
}

func (r *ledgerRepository) ListContributionsByMember(ctx context.Context, memberID uint) ([]*models.Contribution, error) {
	var list []*models.Contribution
	err := r.db.WithContext(ctx).
		Preload("ContributionType").
		Where("member_id = ?", memberID).
		Order("submitted_at DESC").
		Find(&list).Error
	return list, err
}

func (r *ledgerRepository) ListPendingContributions(ctx context.Context) ([]*models.Contribution, error) {
	var list []*models.Contribution
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("ContributionType").
		Where("status = ?", models.ContributionStatusPending).
		Order("submitted_at ASC").
		Find(&list).Error
	return list, err
}

func (r *ledgerRepository) CountPendingContributions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("status = ?", models.ContributionStatusPending).
		Count(&count).Error
	return count, err
}

// MarkVerified flips PENDING -> VERIFIED. The status predicate is the
// compare-and-set guard: a false return means another verifier got there
// first and no side effects may be applied.
func (r *ledgerRepository) MarkVerified(ctx context.Context, id, verifierID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ?", id, models.ContributionStatusPending).
		Updates(map[string]interface{}{
			"status":         models.ContributionStatusVerified,
			"verified_by_id": verifierID,
			"verified_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkRejected flips PENDING -> REJECTED under the same guard.
func (r *ledgerRepository) MarkRejected(ctx context.Context, id, verifierID uint, at time.Time, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND status = ?", id, models.ContributionStatusPending).
		Updates(map[string]interface{}{
			"status":           models.ContributionStatusRejected,
			"verified_by_id":   verifierID,
			"verified_at":      at,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Balances

func (r *ledgerRepository) GetOrCreateBalance(ctx context.Context, memberID, typeID uint) (*models.SACCOBalance, error) {
	var balance models.SACCOBalance
	err := r.db.WithContext(ctx).
		Where(models.SACCOBalance{MemberID: memberID, ContributionTypeID: typeID}).
		Attrs(models.SACCOBalance{TotalBalance: 0}).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *ledgerRepository) SaveBalance(ctx context.Context, b *models.SACCOBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *ledgerRepository) ListBalancesByMember(ctx context.Context, memberID uint) ([]*models.SACCOBalance, error) {
	var list []*models.SACCOBalance
	err := r.db.WithContext(ctx).
		Preload("ContributionType").
		Where("member_id = ?", memberID).
		Find(&list).Error
	return list, err
}

func (r *ledgerRepository) ListBalances(ctx context.Context) ([]*models.SACCOBalance, error) {
	var list []*models.SACCOBalance
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("ContributionType").
		Order("total_balance DESC").
		Find(&list).Error
	return list, err
}

func (r *ledgerRepository) CountActiveMembers(ctx context.Context, typeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SACCOBalance{}).
		Where("contribution_type_id = ? AND total_balance > 0", typeID).
		Count(&count).Error
	return count, err
}

// Summaries

func (r *ledgerRepository) GetOrCreateSummary(ctx context.Context, typeID uint) (*models.ContributionSummary, error) {
	var summary models.ContributionSummary
	err := r.db.WithContext(ctx).
		Where(models.ContributionSummary{ContributionTypeID: typeID}).
		Attrs(models.ContributionSummary{TotalAmount: 0, TotalContributions: 0, ActiveMembers: 0}).
		FirstOrCreate(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *ledgerRepository) SaveSummary(ctx context.Context, s *models.ContributionSummary) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ledgerRepository) ListSummaries(ctx context.Context) ([]*models.ContributionSummary, error) {
	var list []*models.ContributionSummary
	err := r.db.WithContext(ctx).
		Preload("ContributionType").
		Find(&list).Error
	return list, err
}

// Contribution types

func (r *ledgerRepository) ListContributionTypes(ctx context.Context, activeOnly bool) ([]*models.ContributionType, error) {
	var list []*models.ContributionType
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *ledgerRepository) GetContributionType(ctx context.Context, id uint) (*models.ContributionType, error) {
	var ct models.ContributionType
	err := r.db.WithContext(ctx).First(&ct, id).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}
