package mysql

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(&ns).Error, "create notifications")
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID uint64) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, errors.Wrap(err, "list notifications")
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&n).Error
	return n, errors.Wrap(err, "count unread")
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uint64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		q := tx.Model(&domain.Notification{}).Where("id = ? AND recipient_id = ?", id, recipientID)
		if err := q.Count(&n).Error; err != nil || n == 0 {
			return err
		}
		found = true
		return tx.Model(&domain.Notification{}).Where("id = ?", id).Update("is_read", true).Error
	})
	return found, errors.Wrap(err, "mark notification read")
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID uint64) error {
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).Update("is_read", true).Error
	return errors.Wrap(err, "mark all read")
}

func (r *notificationRepo) DeleteAll(ctx context.Context, recipientID uint64) error {
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&domain.Notification{}).Error
	return errors.Wrap(err, "clear notifications")
}
