package task

import (
	"context"
	"sync/atomic"
	"time"

	"baybook/core/constants"
	"baybook/core/database"
	"baybook/core/logger"

	"github.com/hibiken/asynq"
)

const TypeBookingCleanup = "booking:cleanup"

func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeBookingCleanup, nil)
}

// ExpiredReleaser is the slice of the booking service the sweep needs.
type ExpiredReleaser interface {
	ReleaseExpired(ctx context.Context) (int, error)
}

// CleanupHandler runs the periodic sweep that releases pending bookings whose
// payment never settled. A single sweep may run at a time per process; an
// overlapping tick is skipped without touching storage. The safety timer
// clears the flag if a sweep wedges past its deadline so the next tick can
// proceed.
type CleanupHandler struct {
	bookingService ExpiredReleaser
	running        atomic.Bool
	backoff        time.Duration
}

func NewCleanupHandler(bookingService ExpiredReleaser) *CleanupHandler {
	return &CleanupHandler{
		bookingService: bookingService,
		backoff:        constants.CleanupRetryBackoff,
	}
}

func (h *CleanupHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if !h.running.CompareAndSwap(false, true) {
		logger.Warn("CleanupHandler:Skip", "reason", "sweep already in flight")
		return nil
	}

	guard := time.AfterFunc(constants.CleanupSafetyTimeout, func() {
		logger.Warn("CleanupHandler:SafetyTimeout", "timeout", constants.CleanupSafetyTimeout)
		h.running.Store(false)
	})
	defer func() {
		guard.Stop()
		h.running.Store(false)
	}()

	released, err := h.bookingService.ReleaseExpired(ctx)
	if err != nil && database.IsTransient(err) {
		logger.Warn("CleanupHandler:TransientError", "error", err)
		time.Sleep(h.backoff)
		released, err = h.bookingService.ReleaseExpired(ctx)
	}
	if err != nil {
		logger.Error("CleanupHandler:Sweep", err)
		return err
	}

	if released > 0 {
		logger.Info("CleanupHandler:Swept", "released", released)
	}
	return nil
}
