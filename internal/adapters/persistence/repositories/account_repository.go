package repositories

import (
	"context"

	"sacco-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// accountRepository implements AccountRepository with GORM
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Spouse

func (r *accountRepository) GetSpouse(ctx context.Context, userID uint) (*models.SpouseDetails, error) {
	var spouse models.SpouseDetails
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&spouse).Error
	if err != nil {
		return nil, err
	}
	return &spouse, nil
}

func (r *accountRepository) SaveSpouse(ctx context.Context, spouse *models.SpouseDetails) error {
	return r.db.WithContext(ctx).Save(spouse).Error
}

// Children

func (r *accountRepository) ListChildren(ctx context.Context, userID uint) ([]*models.Child, error) {
	var children []*models.Child
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("age DESC").
		Find(&children).Error
	return children, err
}

func (r *accountRepository) GetChild(ctx context.Context, id uint) (*models.Child, error) {
	var child models.Child
	err := r.db.WithContext(ctx).First(&child, id).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *accountRepository) CreateChild(ctx context.Context, child *models.Child) error {
	return r.db.WithContext(ctx).Create(child).Error
}

func (r *accountRepository) SaveChild(ctx context.Context, child *models.Child) error {
	return r.db.WithContext(ctx).Save(child).Error
}

func (r *accountRepository) DeleteChild(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Child{}, id).Error
}

// Beneficiaries

func (r *accountRepository) ListBeneficiaries(ctx context.Context, userID uint) ([]*models.Beneficiary, error) {
	var list []*models.Beneficiary
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *accountRepository) ListActiveBeneficiaries(ctx context.Context, userID uint) ([]*models.Beneficiary, error) {
	var list []*models.Beneficiary
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.BeneficiaryStatusActive).
		Find(&list).Error
	return list, err
}

func (r *accountRepository) GetBeneficiary(ctx context.Context, id uint) (*models.Beneficiary, error) {
	var b models.Beneficiary
	err := r.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *accountRepository) CreateBeneficiary(ctx context.Context, b *models.Beneficiary) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *accountRepository) SaveBeneficiary(ctx context.Context, b *models.Beneficiary) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *accountRepository) DeleteBeneficiary(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Beneficiary{}, id).Error
}

// Next of kin

func (r *accountRepository) GetNextOfKin(ctx context.Context, userID uint) (*models.NextOfKin, error) {
	var nok models.NextOfKin
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&nok).Error
	if err != nil {
		return nil, err
	}
	return &nok, nil
}

func (r *accountRepository) SaveNextOfKin(ctx context.Context, nok *models.NextOfKin) error {
	return r.db.WithContext(ctx).Save(nok).Error
}
