package controller

import (
	"baybook/core/constants"
	"baybook/core/controller"
	"baybook/core/errors"
	"baybook/core/params"
	"baybook/core/utils"
	"baybook/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	controller.BaseController
	notificationService service.NotificationServiceInterface
}

func NewNotificationController(notificationService service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		BaseController:      controller.NewBaseController(),
		notificationService: notificationService,
	}
}

// ListMine returns the caller's notification history, newest first.
func (ctrl *NotificationController) ListMine(c echo.Context) error {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil || claims.Email == nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil))
	}

	var qp params.QueryParams
	if err := c.Bind(&qp); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid paging parameters", err))
	}

	page, err := ctrl.notificationService.ListByRecipient(c.Request().Context(), *claims.Email, qp)
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInternalServer, "failed to list notifications", err))
	}
	return ctrl.SuccessResponse(c, page, "notifications fetched")
}
