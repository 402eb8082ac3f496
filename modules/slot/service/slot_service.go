package service

import (
	"context"
	"time"

	"baybook/core/errors"
	"baybook/core/logger"
	"baybook/modules/slot/entity"
	"baybook/modules/slot/repository"

	"github.com/google/uuid"
)

type SlotServiceInterface interface {
	Generate(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error)
	ListAvailable(ctx context.Context, bayID uuid.UUID, from, to time.Time) ([]entity.Slot, error)
	Block(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error)
	Unblock(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error)
}

type SlotService struct {
	slotRepo repository.SlotRepositoryInterface
}

func NewSlotService(slotRepo repository.SlotRepositoryInterface) *SlotService {
	return &SlotService{slotRepo: slotRepo}
}

func (s *SlotService) Generate(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error) {
	logger.Info("SlotService:Generate:Start", "bayId", bayID, "from", from, "to", to)

	if !from.Truncate(time.Hour).Equal(from) || !to.Truncate(time.Hour).Equal(to) {
		return 0, errors.NewAppError(errors.ErrInvalidInput, "slot boundaries must fall on the hour", nil)
	}

	n, err := s.slotRepo.GenerateRange(ctx, bayID, from, to)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "failed to generate slots", err)
	}

	logger.Info("SlotService:Generate:Success", "bayId", bayID, "created", n)
	return n, nil
}

func (s *SlotService) ListAvailable(ctx context.Context, bayID uuid.UUID, from, to time.Time) ([]entity.Slot, error) {
	slots, err := s.slotRepo.FindAvailable(ctx, bayID, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list available slots", err)
	}
	return slots, nil
}

// Block withdraws every available slot in the window for maintenance. Slots
// already held or booked are skipped; the returned count says how many moved.
func (s *SlotService) Block(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error) {
	logger.Info("SlotService:Block:Start", "bayId", bayID, "from", from, "to", to)

	n, err := s.slotRepo.TransitionRange(ctx, bayID, from, to, entity.SlotAvailable, entity.SlotMaintenance)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "failed to block slots", err)
	}

	logger.Info("SlotService:Block:Success", "bayId", bayID, "blocked", n)
	return n, nil
}

func (s *SlotService) Unblock(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error) {
	logger.Info("SlotService:Unblock:Start", "bayId", bayID, "from", from, "to", to)

	n, err := s.slotRepo.TransitionRange(ctx, bayID, from, to, entity.SlotMaintenance, entity.SlotAvailable)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrInternalServer, "failed to unblock slots", err)
	}

	logger.Info("SlotService:Unblock:Success", "bayId", bayID, "unblocked", n)
	return n, nil
}
