package controller

import (
	"baybook/core/constants"
	"baybook/core/controller"
	"baybook/core/errors"
	"baybook/core/utils"
	"baybook/modules/booking/dto"
	"baybook/modules/booking/service"
	membershipentity "baybook/modules/membership/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	controller.BaseController
	bookingService service.BookingServiceInterface
}

func NewBookingController(bookingService service.BookingServiceInterface) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		bookingService: bookingService,
	}
}

func (ctrl *BookingController) claims(c echo.Context) (*utils.TokenClaims, error) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil)
	}
	return claims, nil
}

func (ctrl *BookingController) Quote(c echo.Context) error {
	claims, err := ctrl.claims(c)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	quote, err := ctrl.bookingService.Quote(c.Request().Context(), claims.UserID, req.SlotIDs)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, quote, "quote computed")
}

func (ctrl *BookingController) Reserve(c echo.Context) error {
	claims, err := ctrl.claims(c)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	var req dto.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	res, err := ctrl.bookingService.Reserve(c.Request().Context(), claims.UserID, req.SlotIDs)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.CreatedResponse(c, res, "booking reserved")
}

func (ctrl *BookingController) ReserveGuest(c echo.Context) error {
	var req dto.GuestReserveRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	res, err := ctrl.bookingService.ReserveGuest(c.Request().Context(), &req)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.CreatedResponse(c, res, "guest checkout started")
}

func (ctrl *BookingController) GetByID(c echo.Context) error {
	claims, err := ctrl.claims(c)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid booking id", err))
	}

	booking, err := ctrl.bookingService.GetByID(c.Request().Context(), id)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	if booking.UserID != claims.UserID && claims.Role != string(membershipentity.RoleAdmin) {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrForbidden, "not your booking", nil))
	}
	return ctrl.SuccessResponse(c, booking, "booking fetched")
}

func (ctrl *BookingController) ListMine(c echo.Context) error {
	claims, err := ctrl.claims(c)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	bookings, err := ctrl.bookingService.ListByUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, bookings, "bookings fetched")
}

func (ctrl *BookingController) Cancel(c echo.Context) error {
	claims, err := ctrl.claims(c)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid booking id", err))
	}

	isAdmin := claims.Role == string(membershipentity.RoleAdmin)
	if err := ctrl.bookingService.Cancel(c.Request().Context(), id, claims.UserID, isAdmin); err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, nil, "booking cancelled")
}

func (ctrl *BookingController) Extend(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, "invalid booking id", err))
	}

	var req dto.ExtendRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	booking, err := ctrl.bookingService.Extend(c.Request().Context(), id, req.Hours)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.SuccessResponse(c, booking, "booking extended")
}

func (ctrl *BookingController) AdminDirectBook(c echo.Context) error {
	var req dto.AdminBookRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return ctrl.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err))
	}

	booking, err := ctrl.bookingService.AdminDirectBook(c.Request().Context(), req.UserID, req.SlotIDs)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}
	return ctrl.CreatedResponse(c, booking, "booking created")
}
