package repositories

import (
	"context"

	"sacco-hub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// notificationRepository implements NotificationRepository with GORM
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.SMSNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) Update(ctx context.Context, n *models.SMSNotification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID uint) ([]*models.SMSNotification, error) {
	var list []*models.SMSNotification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *notificationRepository) List(ctx context.Context, offset, limit int) ([]*models.SMSNotification, int64, error) {
	var list []*models.SMSNotification
	var total int64

	r.db.WithContext(ctx).Model(&models.SMSNotification{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Recipient").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error

	return list, total, err
}

// Templates

func (r *notificationRepository) GetTemplateByName(ctx context.Context, name string) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *notificationRepository) ListTemplates(ctx context.Context) ([]*models.NotificationTemplate, error) {
	var list []*models.NotificationTemplate
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *notificationRepository) SaveTemplate(ctx context.Context, t *models.NotificationTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}
