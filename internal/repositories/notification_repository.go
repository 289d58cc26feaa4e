package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/social-graph/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id uint) (*models.Notification, error)
	GetByRecipient(ctx context.Context, recipient string) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id uint) error
}

type gormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository works with any GORM dialect; production
// runs it on PostgreSQL, local development and tests on SQLite.
func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

// MigrateNotifications creates or updates the notifications table
func MigrateNotifications(db *gorm.DB) error {
	return db.AutoMigrate(&models.Notification{})
}

func (r *gormNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *gormNotificationRepository) GetNotificationByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// GetByRecipient returns the recipient's notifications, newest first
func (r *gormNotificationRepository) GetByRecipient(ctx context.Context, recipient string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).
		Where(&models.Notification{To: recipient}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *gormNotificationRepository) DeleteNotification(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
