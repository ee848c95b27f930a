package repository

import (
	"context"

	"dtalks/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, notificationID int64) (*models.Notification, error)
	FindByRefIDAndType(ctx context.Context, refID int64, notificationType models.NotificationType) (*models.Notification, error)
	MarkReadDataGone(ctx context.Context, notificationID int64) error
	Delete(ctx context.Context, notificationID int64) error
	ReleaseByPost(ctx context.Context, postID int64) error
	ListByReceiver(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(notification).Error)
}

func (r *notificationRepository) FindByID(ctx context.Context, notificationID int64) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", notificationID).Error; err != nil {
		return nil, translate(err)
	}
	return &notification, nil
}

func (r *notificationRepository) FindByRefIDAndType(ctx context.Context, refID int64, notificationType models.NotificationType) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("ref_id = ? AND type = ?", refID, notificationType).
		First(&notification).Error
	if err != nil {
		return nil, translate(err)
	}
	return &notification, nil
}

// MarkReadDataGone keeps the row but drops every pointer to the deleted source
func (r *notificationRepository) MarkReadDataGone(ctx context.Context, notificationID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]any{
			"read_status": models.ReadStatusReadDataGone,
			"ref_id":      nil,
			"post_id":     nil,
			"message":     "",
		}).Error
}

func (r *notificationRepository) Delete(ctx context.Context, notificationID int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", notificationID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseByPost is MarkReadDataGone or Delete, by read state, for every
// notification of a post that is about to be removed.
func (r *notificationRepository) ReleaseByPost(ctx context.Context, postID int64) error {
	db := r.db.WithContext(ctx)
	err := db.
		Where("post_id = ? AND read_status = ?", postID, models.ReadStatusUnread).
		Delete(&models.Notification{}).Error
	if err != nil {
		return err
	}
	return db.
		Model(&models.Notification{}).
		Where("post_id = ?", postID).
		Updates(map[string]any{
			"read_status": models.ReadStatusReadDataGone,
			"ref_id":      nil,
			"post_id":     nil,
			"message":     "",
		}).Error
}

func (r *notificationRepository) ListByReceiver(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Notification{}).Where("receiver_id = ?", userID)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND read_status = ?", userID, models.ReadStatusUnread).
		Count(&count).Error
	return count, err
}

// MarkAsRead only moves UNREAD rows; READ_DATA_GONE stays as it is
func (r *notificationRepository) MarkAsRead(ctx context.Context, notificationID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read_status = ?", notificationID, models.ReadStatusUnread).
		Update("read_status", models.ReadStatusRead).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("receiver_id = ? AND read_status = ?", userID, models.ReadStatusUnread).
		Update("read_status", models.ReadStatusRead)
	return result.RowsAffected, result.Error
}
