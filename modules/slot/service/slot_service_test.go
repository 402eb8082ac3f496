package service

import (
	"context"
	"testing"
	"time"

	apperrors "baybook/core/errors"
	"baybook/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlotRepo struct {
	slots []*entity.Slot
}

func (r *fakeSlotRepo) GenerateRange(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	for t := from; t.Before(to); t = t.Add(time.Hour) {
		sl := &entity.Slot{BayID: bayID, StartTime: t, EndTime: t.Add(time.Hour), Status: entity.SlotAvailable}
		sl.ID = uuid.New()
		r.slots = append(r.slots, sl)
		n++
	}
	return n, nil
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	for _, sl := range r.slots {
		if sl.ID == id {
			return sl, nil
		}
	}
	return nil, nil
}

func (r *fakeSlotRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Slot, error) {
	return nil, nil
}

func (r *fakeSlotRepo) FindAvailable(ctx context.Context, bayID uuid.UUID, from, to time.Time) ([]entity.Slot, error) {
	var out []entity.Slot
	for _, sl := range r.slots {
		if sl.BayID == bayID && sl.Status == entity.SlotAvailable &&
			!sl.StartTime.Before(from) && sl.StartTime.Before(to) {
			out = append(out, *sl)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) Transition(ctx context.Context, ids []uuid.UUID, from, to entity.SlotStatus) (int64, error) {
	return 0, nil
}

func (r *fakeSlotRepo) TransitionRange(ctx context.Context, bayID uuid.UUID, fromTime, toTime time.Time, from, to entity.SlotStatus) (int64, error) {
	var n int64
	for _, sl := range r.slots {
		if sl.BayID == bayID && sl.Status == from &&
			!sl.StartTime.Before(fromTime) && sl.StartTime.Before(toTime) {
			sl.Status = to
			n++
		}
	}
	return n, nil
}

var dayStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestGenerateRejectsOffHourBoundaries(t *testing.T) {
	svc := NewSlotService(&fakeSlotRepo{})

	_, err := svc.Generate(context.Background(), uuid.New(), dayStart.Add(30*time.Minute), dayStart.Add(2*time.Hour))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInvalidInput, appErr.Code)
}

func TestGenerateCreatesHourlySlots(t *testing.T) {
	repo := &fakeSlotRepo{}
	svc := NewSlotService(repo)
	bayID := uuid.New()

	n, err := svc.Generate(context.Background(), bayID, dayStart, dayStart.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	// Generated slots are contiguous: each starts where the previous ends.
	for i := 1; i < len(repo.slots); i++ {
		assert.True(t, repo.slots[i].StartTime.Equal(repo.slots[i-1].EndTime))
	}
}

func TestBlockOnlyTouchesAvailableSlots(t *testing.T) {
	repo := &fakeSlotRepo{}
	svc := NewSlotService(repo)
	bayID := uuid.New()
	_, err := svc.Generate(context.Background(), bayID, dayStart, dayStart.Add(4*time.Hour))
	require.NoError(t, err)
	repo.slots[1].Status = entity.SlotBooked

	n, err := svc.Block(context.Background(), bayID, dayStart, dayStart.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, entity.SlotBooked, repo.slots[1].Status)
	assert.Equal(t, entity.SlotMaintenance, repo.slots[0].Status)
}

func TestUnblockRestoresMaintenanceSlots(t *testing.T) {
	repo := &fakeSlotRepo{}
	svc := NewSlotService(repo)
	bayID := uuid.New()
	_, err := svc.Generate(context.Background(), bayID, dayStart, dayStart.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = svc.Block(context.Background(), bayID, dayStart, dayStart.Add(2*time.Hour))
	require.NoError(t, err)

	n, err := svc.Unblock(context.Background(), bayID, dayStart, dayStart.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	for _, sl := range repo.slots {
		assert.Equal(t, entity.SlotAvailable, sl.Status)
	}
}
