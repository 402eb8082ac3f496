package controller

import (
	"baybook/core/controller"
	"baybook/core/errors"
	"baybook/modules/slot/dto"
	"baybook/modules/slot/service"

	"github.com/labstack/echo/v4"
)

type SlotController struct {
	controller.BaseController
	slotService service.SlotServiceInterface
}

func NewSlotController(slotService service.SlotServiceInterface) *SlotController {
	return &SlotController{
		BaseController: controller.NewBaseController(),
		slotService:    slotService,
	}
}

func (ctrl *SlotController) ListAvailable(c echo.Context) error {
	var q dto.AvailabilityQuery
	if err := c.Bind(&q); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid availability query", err))
	}
	if err := c.Validate(&q); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	slots, err := ctrl.slotService.ListAvailable(c.Request().Context(), q.BayID, q.From, q.To)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, slots, "available slots fetched")
}

func (ctrl *SlotController) Generate(c echo.Context) error {
	var req dto.GenerateSlotsRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	n, err := ctrl.slotService.Generate(c.Request().Context(), req.BayID, req.From, req.To)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.CreatedResponse(c, dto.RangeResult{Affected: n}, "slots generated")
}

func (ctrl *SlotController) Block(c echo.Context) error {
	var req dto.BlockRangeRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	n, err := ctrl.slotService.Block(c.Request().Context(), req.BayID, req.From, req.To)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, dto.RangeResult{Affected: n}, "slots blocked")
}

func (ctrl *SlotController) Unblock(c echo.Context) error {
	var req dto.BlockRangeRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	n, err := ctrl.slotService.Unblock(c.Request().Context(), req.BayID, req.From, req.To)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, dto.RangeResult{Affected: n}, "slots unblocked")
}
