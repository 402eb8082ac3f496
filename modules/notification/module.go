package notification

import (
	"baybook/core/config"
	"baybook/core/database"
	"baybook/core/middleware"
	"baybook/modules/notification/controller"
	"baybook/modules/notification/repository"
	"baybook/modules/notification/router"
	"baybook/modules/notification/service"
	"baybook/modules/notification/task"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

type Module struct {
	Service service.NotificationServiceInterface
}

// Init wires the notification store and queue client, registers the email
// delivery handler on the worker mux, and exposes the history endpoint.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware,
	taskClient *asynq.Client, mux *asynq.ServeMux, emailCfg config.EmailConfig) *Module {

	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := service.NewNotificationService(notificationRepo, taskClient)
	notificationController := controller.NewNotificationController(notificationService)

	mux.Handle(task.TypeEmailSend, task.NewEmailTaskHandler(emailCfg, notificationRepo))
	router.RegisterRoutes(e, notificationController, mw)

	return &Module{Service: notificationService}
}
