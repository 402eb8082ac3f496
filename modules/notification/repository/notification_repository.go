package repository

import (
	"context"

	"baybook/core/database"
	"baybook/core/logger"
	"baybook/modules/notification/entity"

	"github.com/google/uuid"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *entity.Notification) (*entity.Notification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.NotificationStatus) error
	ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]entity.Notification, error)
	CountByRecipient(ctx context.Context, recipient string) (int, error)
}

type NotificationRepository struct {
	DB database.Database
}

func NewNotificationRepository(db database.Database) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	query := `
		INSERT INTO notifications (recipient, template, payload, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, recipient, template, payload, status, created_at, updated_at
	`

	var created entity.Notification
	err := r.DB.GetContext(ctx, &created, query, n.Recipient, n.Template, n.Payload, n.Status)
	if err != nil {
		logger.Error("NotificationRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.NotificationStatus) error {
	query := `UPDATE notifications SET status = $2, updated_at = NOW() WHERE id = $1`

	err := r.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		logger.Error("NotificationRepository:UpdateStatus", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]entity.Notification, error) {
	query := `
		SELECT id, recipient, template, payload, status, created_at, updated_at
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var list []entity.Notification
	err := r.DB.SelectContext(ctx, &list, query, recipient, limit, offset)
	if err != nil {
		logger.Error("NotificationRepository:ListByRecipient", err)
		return nil, err
	}
	return list, nil
}

func (r *NotificationRepository) CountByRecipient(ctx context.Context, recipient string) (int, error) {
	var total int
	err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE recipient = $1`, recipient)
	if err != nil {
		logger.Error("NotificationRepository:CountByRecipient", err)
		return 0, err
	}
	return total, nil
}
