package router

import (
	"baybook/core/middleware"
	"baybook/modules/bay/controller"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.BayController, mw *middleware.Middleware) {
	bays := e.Group("/api/v1/bays")

	bays.GET("", ctrl.List)
	bays.GET("/:id", ctrl.GetByID)

	admin := bays.Group("", mw.AuthMiddleware(), mw.AdminMiddleware())
	admin.POST("", ctrl.Create)
	admin.PUT("/:id", ctrl.Update)
	admin.DELETE("/:id", ctrl.Delete)
}
