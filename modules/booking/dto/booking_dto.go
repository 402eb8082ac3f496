package dto

import (
	"baybook/modules/billing"
	"baybook/modules/booking/entity"

	"github.com/google/uuid"
)

type QuoteRequest struct {
	SlotIDs []uuid.UUID `json:"slotIds" validate:"required,min=1,dive,required"`
}

type ReserveRequest struct {
	SlotIDs []uuid.UUID `json:"slotIds" validate:"required,min=1,dive,required"`
}

type GuestReserveRequest struct {
	SlotIDs []uuid.UUID `json:"slotIds" validate:"required,min=1,dive,required"`
	Name    string      `json:"name" validate:"required,min=2,max=100"`
	Email   string      `json:"email" validate:"required,email"`
	Phone   *string     `json:"phone" validate:"omitempty,max=30"`
}

type ExtendRequest struct {
	Hours int `json:"hours" validate:"required"`
}

type AdminBookRequest struct {
	UserID  uuid.UUID   `json:"userId" validate:"required"`
	SlotIDs []uuid.UUID `json:"slotIds" validate:"required,min=1,dive,required"`
}

// ReserveResponse carries what the client needs to finish checkout. A nil
// ClientSecret means no payment was required and the booking is already
// confirmed.
type ReserveResponse struct {
	Booking      *entity.Booking `json:"booking"`
	ClientSecret *string         `json:"clientSecret"`
	AmountPence  int64           `json:"amountPence"`
	Quote        *billing.Quote  `json:"quote,omitempty"`
}

// GuestReserveResponse returns the intent reference for guest checkout; the
// booking itself is created once the gateway reports the intent.
type GuestReserveResponse struct {
	ClientSecret string `json:"clientSecret"`
	AmountPence  int64  `json:"amountPence"`
}
