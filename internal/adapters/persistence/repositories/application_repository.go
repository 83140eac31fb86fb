package repositories

import (
	"context"

	"sacco-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

var reviewableStatuses = []string{
	models.ApplicationStatusPending,
	models.ApplicationStatusStage1,
	models.ApplicationStatusStage2,
	models.ApplicationStatusStage3,
}

// applicationRepository implements ApplicationRepository with GORM
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Stage1Reviewer").
		Preload("Stage2Reviewer").
		Preload("Stage3Reviewer").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) List(ctx context.Context, offset, limit int) ([]*models.Application, int64, error) {
	var apps []*models.Application
	var total int64

	r.db.WithContext(ctx).Model(&models.Application{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("User").
		Order("submitted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}

func (r *applicationRepository) ListPending(ctx context.Context) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status IN ?", reviewableStatuses).
		Order("submitted_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("status IN ?", reviewableStatuses).
		Count(&count).Error
	return count, err
}

// UpdateFromStatus saves the application only if its stored status still
// equals fromStatus. A false return means a concurrent review committed
// first and nothing was written.
func (r *applicationRepository) UpdateFromStatus(ctx context.Context, app *models.Application, fromStatus string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ? AND status = ?", app.ID, fromStatus).
		Select("*").
		Omit("id", "user_id", "submitted_at").
		Updates(app)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
