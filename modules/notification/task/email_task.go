package task

import (
	"context"
	"encoding/json"
	"fmt"

	"baybook/core/config"
	"baybook/core/logger"
	"baybook/core/utils"
	"baybook/modules/notification/entity"
	"baybook/modules/notification/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeEmailSend = "email:send"

type emailPayload struct {
	NotificationID uuid.UUID      `json:"notificationId"`
	Recipient      string         `json:"recipient"`
	Template       string         `json:"template"`
	Data           map[string]any `json:"data"`
}

func NewEmailTask(notificationID uuid.UUID, recipient, template string, data map[string]any) (*asynq.Task, error) {
	payload, err := json.Marshal(emailPayload{
		NotificationID: notificationID,
		Recipient:      recipient,
		Template:       template,
		Data:           data,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailSend, payload), nil
}

type EmailTaskHandler struct {
	emailCfg         config.EmailConfig
	notificationRepo repository.NotificationRepositoryInterface
}

func NewEmailTaskHandler(emailCfg config.EmailConfig, notificationRepo repository.NotificationRepositoryInterface) *EmailTaskHandler {
	return &EmailTaskHandler{emailCfg: emailCfg, notificationRepo: notificationRepo}
}

// ProcessTask delivers the queued email. Delivery failures mark the record
// failed and are swallowed so asynq does not retry a dead mailbox forever.
func (h *EmailTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p emailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.Error("EmailTaskHandler:Unmarshal", err)
		return nil
	}

	msg := utils.EmailMessage{
		To:      []string{p.Recipient},
		Subject: subjectFor(p.Template),
		Body:    renderBody(p.Template, p.Data),
		IsHTML:  true,
	}

	status := entity.NotificationSent
	if err := utils.SendEmailTLS(h.emailCfg, msg); err != nil {
		logger.Error("EmailTaskHandler:Send", err)
		status = entity.NotificationFailed
	}

	if err := h.notificationRepo.UpdateStatus(ctx, p.NotificationID, status); err != nil {
		logger.Error("EmailTaskHandler:UpdateStatus", err)
	}
	return nil
}

func subjectFor(template string) string {
	switch template {
	case "booking_confirmed":
		return "Your booking is confirmed"
	case "booking_cancelled":
		return "Your booking was cancelled"
	default:
		return "Notification"
	}
}

func renderBody(template string, data map[string]any) string {
	switch template {
	case "booking_confirmed":
		return fmt.Sprintf(
			"<p>Hi %v,</p><p>Your booking %v is confirmed. See you at the bay!</p>",
			data["name"], data["bookingId"])
	case "booking_cancelled":
		return fmt.Sprintf(
			"<p>Hi %v,</p><p>Your booking %v has been cancelled.</p>",
			data["name"], data["bookingId"])
	default:
		body, _ := json.Marshal(data)
		return fmt.Sprintf("<pre>%s</pre>", body)
	}
}
