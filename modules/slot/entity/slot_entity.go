package entity

import (
	"time"

	"baybook/core/entity"

	"github.com/google/uuid"
)

type SlotStatus string

// Slot lifecycle. payment_hold marks slots reserved by a pending booking
// awaiting payment; maintenance marks slots withdrawn by an operator.
const (
	SlotAvailable   SlotStatus = "available"
	SlotPaymentHold SlotStatus = "payment_hold"
	SlotBooked      SlotStatus = "booked"
	SlotMaintenance SlotStatus = "maintenance"
)

type Slot struct {
	BayID     uuid.UUID  `db:"bay_id" json:"bayId"`
	StartTime time.Time  `db:"start_time" json:"startTime"`
	EndTime   time.Time  `db:"end_time" json:"endTime"`
	Status    SlotStatus `db:"status" json:"status"`
	entity.BaseEntity
}
