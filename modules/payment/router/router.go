package router

import (
	"baybook/modules/payment/controller"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl *controller.WebhookController) {
	// No auth middleware: the gateway authenticates via the signed payload.
	e.POST("/api/v1/payments/webhook", ctrl.Handle)
}
