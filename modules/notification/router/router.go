package router

import (
	"baybook/core/middleware"
	"baybook/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.NotificationController, mw *middleware.Middleware) {
	notifications := e.Group("/api/v1/notifications", mw.AuthMiddleware())

	notifications.GET("", ctrl.ListMine)
}
