package repositories

import (
	"context"
	"time"

	"sacco-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// documentRepository implements DocumentRepository with GORM
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("VerifiedBy").
		First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) List(ctx context.Context, offset, limit int) ([]*models.Document, int64, error) {
	var docs []*models.Document
	var total int64

	r.db.WithContext(ctx).Model(&models.Document{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error

	return docs, total, err
}

func (r *documentRepository) ListPending(ctx context.Context) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Where("status = ?", models.DocumentStatusPending).
		Order("uploaded_at ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Save(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// UpdateFromStatus saves the document only if its stored status still equals
// fromStatus; false means a concurrent verification won.
func (r *documentRepository) UpdateFromStatus(ctx context.Context, doc *models.Document, fromStatus string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ? AND status = ?", doc.ID, fromStatus).
		Select("*").
		Omit("id", "user_id", "uploaded_at").
		Updates(doc)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, id).Error
}

// ExpireOverdue marks VERIFIED documents whose expiry date has passed as
// EXPIRED and returns how many were affected.
func (r *documentRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", models.DocumentStatusVerified, now).
		Update("status", models.DocumentStatusExpired)
	return res.RowsAffected, res.Error
}

// Categories

func (r *documentRepository) ListCategories(ctx context.Context) ([]*models.DocumentCategory, error) {
	var cats []*models.DocumentCategory
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&cats).Error
	return cats, err
}

func (r *documentRepository) GetCategory(ctx context.Context, id uint) (*models.DocumentCategory, error) {
	var cat models.DocumentCategory
	err := r.db.WithContext(ctx).First(&cat, id).Error
	if err != nil {
		return nil, err
	}
	return &cat, nil
}
