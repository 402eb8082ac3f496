package router

import (
	"baybook/core/middleware"
	"baybook/modules/membership/controller"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.MembershipController, mw *middleware.Middleware) {
	memberships := e.Group("/api/v1/memberships", mw.AuthMiddleware())

	memberships.GET("/me", ctrl.Me)
}
