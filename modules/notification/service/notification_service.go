package service

import (
	"context"
	"encoding/json"

	coreentity "baybook/core/entity"
	"baybook/core/logger"
	"baybook/core/params"
	"baybook/modules/notification/entity"
	"baybook/modules/notification/repository"
	"baybook/modules/notification/task"

	"github.com/hibiken/asynq"
)

type NotificationServiceInterface interface {
	Send(ctx context.Context, recipient, template string, data map[string]any) error
	ListByRecipient(ctx context.Context, recipient string, qp params.QueryParams) (*coreentity.Pagination[entity.Notification], error)
}

type NotificationService struct {
	notificationRepo repository.NotificationRepositoryInterface
	taskClient       *asynq.Client
}

func NewNotificationService(notificationRepo repository.NotificationRepositoryInterface, taskClient *asynq.Client) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, taskClient: taskClient}
}

// Send records the notification and queues delivery. Delivery is best-effort;
// callers on the reservation path ignore the returned error after logging.
func (s *NotificationService) Send(ctx context.Context, recipient, template string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Error("NotificationService:Send:Marshal", err)
		return err
	}

	created, err := s.notificationRepo.Create(ctx, &entity.Notification{
		Recipient: recipient,
		Template:  template,
		Payload:   payload,
		Status:    entity.NotificationQueued,
	})
	if err != nil {
		return err
	}

	emailTask, err := task.NewEmailTask(created.ID, recipient, template, data)
	if err != nil {
		logger.Error("NotificationService:Send:BuildTask", err)
		return err
	}
	if _, err := s.taskClient.EnqueueContext(ctx, emailTask, asynq.Queue("email")); err != nil {
		logger.Error("NotificationService:Send:Enqueue", err)
		return err
	}

	logger.Info("NotificationService:Send:Queued", "notificationId", created.ID, "template", template)
	return nil
}

func (s *NotificationService) ListByRecipient(ctx context.Context, recipient string, qp params.QueryParams) (*coreentity.Pagination[entity.Notification], error) {
	qp = qp.Normalized()
	offset := (qp.PageNumber - 1) * qp.PageSize

	items, err := s.notificationRepo.ListByRecipient(ctx, recipient, qp.PageSize, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.notificationRepo.CountByRecipient(ctx, recipient)
	if err != nil {
		return nil, err
	}

	return &coreentity.Pagination[entity.Notification]{
		Items:      items,
		TotalItems: total,
		PageNumber: qp.PageNumber,
		PageSize:   qp.PageSize,
	}, nil
}
