package entity

import (
	"baybook/core/entity"
	slotentity "baybook/modules/slot/entity"

	"github.com/google/uuid"
)

type BookingStatus string

// Booking lifecycle. pending bookings hold their slots until payment settles
// or the expiry sweep releases them; confirmed and failed are terminal except
// for cancellation, and nothing is ever hard-deleted.
const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingFailed    BookingStatus = "failed"
)

type Booking struct {
	UserID        uuid.UUID     `db:"user_id" json:"userId"`
	Status        BookingStatus `db:"status" json:"status"`
	PaymentID     *string       `db:"payment_id" json:"paymentId,omitempty"`
	PaymentStatus *string       `db:"payment_status" json:"paymentStatus,omitempty"`
	AmountPence   int64         `db:"amount_pence" json:"amountPence"`
	entity.BaseEntity

	Slots []slotentity.Slot `db:"-" json:"slots,omitempty"`
}

func (b *Booking) SlotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Slots))
	for _, s := range b.Slots {
		ids = append(ids, s.ID)
	}
	return ids
}
