package router

import (
	"baybook/core/middleware"
	"baybook/modules/slot/controller"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.SlotController, mw *middleware.Middleware) {
	slots := e.Group("/api/v1/slots")

	slots.GET("/available", ctrl.ListAvailable)

	admin := slots.Group("", mw.AuthMiddleware(), mw.AdminMiddleware())
	admin.POST("/generate", ctrl.Generate)
	admin.POST("/block", ctrl.Block)
	admin.POST("/unblock", ctrl.Unblock)
}
