package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerateSlotsRequest struct {
	BayID uuid.UUID `json:"bayId" validate:"required"`
	From  time.Time `json:"from" validate:"required"`
	To    time.Time `json:"to" validate:"required,gtfield=From"`
}

type BlockRangeRequest struct {
	BayID uuid.UUID `json:"bayId" validate:"required"`
	From  time.Time `json:"from" validate:"required"`
	To    time.Time `json:"to" validate:"required,gtfield=From"`
}

type AvailabilityQuery struct {
	BayID uuid.UUID `query:"bayId" validate:"required"`
	From  time.Time `query:"from" validate:"required"`
	To    time.Time `query:"to" validate:"required,gtfield=From"`
}

type RangeResult struct {
	Affected int64 `json:"affected"`
}
