package controller

import (
	"net/http"
	"time"

	"baybook/core/errors"
	"baybook/core/logger"

	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message"`
		Details   any              `json:"details,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}
)

func NewSuccessResponse(httpStatusCode int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    httpStatusCode,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func NewErrorResponse(appErrCode errors.ErrorCode, message string, details any) *ErrorResponse {
	return &ErrorResponse{
		Status:    "error",
		Code:      appErrCode,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// BaseController centralizes the response envelope and the AppError-code to
// HTTP-status mapping used by every module controller.
type BaseController interface {
	SuccessResponse(c echo.Context, data any, message string) error
	CreatedResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, data, message))
}

func (h *responseHandler) CreatedResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, NewSuccessResponse(http.StatusCreated, data, message))
}

func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"
	var details any

	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae != nil {
			appCode = ae.Code
			details = ae.Details
			if ae.Message != "" {
				msg = ae.Message
			}
			httpStatus = statusForCode(appCode)
		} else if err.Error() != "" {
			msg = err.Error()
		}
	}

	if appCode == errors.ErrPartialUpdate {
		// Inconsistent slot state needs operator attention, not just a 5xx.
		logger.Error("BaseController:ErrorResponse:PartialUpdate", "message", msg, "details", details)
	} else {
		logger.Error("BaseController:ErrorResponse", "status", httpStatus, "code", appCode, "message", msg)
	}

	return c.JSON(httpStatus, NewErrorResponse(appCode, msg, details))
}

func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData, errors.ErrInvalidHours,
		errors.ErrNonConsecutiveSlots, errors.ErrInsufficientSlots, errors.ErrNoSlots:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat,
		errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound, errors.ErrBookingNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists, errors.ErrSlotUnavailable:
		return http.StatusConflict
	case errors.ErrGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
