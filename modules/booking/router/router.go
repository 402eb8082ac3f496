package router

import (
	"baybook/core/middleware"
	"baybook/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.BookingController, mw *middleware.Middleware) {
	bookings := e.Group("/api/v1/bookings")

	bookings.POST("/guest", ctrl.ReserveGuest)

	private := bookings.Group("", mw.AuthMiddleware())
	private.POST("/quote", ctrl.Quote)
	private.POST("", ctrl.Reserve)
	private.GET("", ctrl.ListMine)
	private.GET("/:id", ctrl.GetByID)
	private.DELETE("/:id", ctrl.Cancel)

	admin := bookings.Group("", mw.AuthMiddleware(), mw.AdminMiddleware())
	admin.POST("/:id/extend", ctrl.Extend)
	admin.POST("/direct", ctrl.AdminDirectBook)
}
