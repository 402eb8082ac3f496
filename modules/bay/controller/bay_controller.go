package controller

import (
	"baybook/core/controller"
	"baybook/core/errors"
	"baybook/modules/bay/dto"
	"baybook/modules/bay/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BayController struct {
	controller.BaseController
	bayService service.BayServiceInterface
}

func NewBayController(bayService service.BayServiceInterface) *BayController {
	return &BayController{
		BaseController: controller.NewBaseController(),
		bayService:     bayService,
	}
}

func (ctrl *BayController) Create(c echo.Context) error {
	var req dto.CreateBayRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	bay, err := ctrl.bayService.Create(c.Request().Context(), &req)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.CreatedResponse(c, bay, "bay created")
}

func (ctrl *BayController) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid bay id", err))
	}

	bay, err := ctrl.bayService.GetByID(c.Request().Context(), id)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, bay, "bay fetched")
}

func (ctrl *BayController) List(c echo.Context) error {
	bays, err := ctrl.bayService.List(c.Request().Context())
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, bays, "bays fetched")
}

func (ctrl *BayController) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid bay id", err))
	}

	var req dto.UpdateBayRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	bay, err := ctrl.bayService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, bay, "bay updated")
}

func (ctrl *BayController) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid bay id", err))
	}

	if err := ctrl.bayService.Delete(c.Request().Context(), id); err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, nil, "bay deleted")
}
