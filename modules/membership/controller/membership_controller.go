package controller

import (
	"baybook/core/constants"
	"baybook/core/controller"
	"baybook/core/errors"
	"baybook/core/utils"
	"baybook/modules/membership/service"

	"github.com/labstack/echo/v4"
)

type MembershipController struct {
	controller.BaseController
	membershipService service.MembershipServiceInterface
}

func NewMembershipController(membershipService service.MembershipServiceInterface) *MembershipController {
	return &MembershipController{
		BaseController:    controller.NewBaseController(),
		membershipService: membershipService,
	}
}

// Me returns the caller's profile with their current entitlement so the
// client can show remaining allowance and tier perks.
func (ctrl *MembershipController) Me(c echo.Context) error {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil))
	}

	ent, err := ctrl.membershipService.EntitlementFor(c.Request().Context(), claims.UserID)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	return ctrl.SuccessResponse(c, echo.Map{
		"user":       ent.User,
		"tierConfig": ent.Config,
		"active":     ent.Active,
	}, "membership fetched")
}
