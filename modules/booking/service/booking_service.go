package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"baybook/core/constants"
	"baybook/core/database"
	"baybook/core/errors"
	"baybook/core/logger"
	"baybook/modules/billing"
	"baybook/modules/booking/dto"
	"baybook/modules/booking/entity"
	"baybook/modules/booking/repository"
	membershipservice "baybook/modules/membership/service"
	notificationservice "baybook/modules/notification/service"
	"baybook/modules/payment"
	slotentity "baybook/modules/slot/entity"
	slotrepository "baybook/modules/slot/repository"

	"github.com/google/uuid"
)

type BookingServiceInterface interface {
	Quote(ctx context.Context, userID uuid.UUID, slotIDs []uuid.UUID) (*billing.Quote, error)
	Reserve(ctx context.Context, userID uuid.UUID, slotIDs []uuid.UUID) (*dto.ReserveResponse, error)
	ReserveGuest(ctx context.Context, req *dto.GuestReserveRequest) (*dto.GuestReserveResponse, error)
	ReserveFromIntent(ctx context.Context, intent *payment.IntentEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Booking, error)
	ConfirmByPaymentRef(ctx context.Context, paymentRef, paymentStatus string) error
	FailByPaymentRef(ctx context.Context, paymentRef, paymentStatus string) error
	Cancel(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) error
	Extend(ctx context.Context, id uuid.UUID, hours int) (*entity.Booking, error)
	AdminDirectBook(ctx context.Context, userID uuid.UUID, slotIDs []uuid.UUID) (*entity.Booking, error)
	ReleaseExpired(ctx context.Context) (int, error)
}

type BookingService struct {
	bookingRepo         repository.BookingRepositoryInterface
	slotRepo            slotrepository.SlotRepositoryInterface
	membershipService   membershipservice.MembershipServiceInterface
	notificationService notificationservice.NotificationServiceInterface
	gateway             payment.Gateway
	rates               billing.RateTable
	now                 func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepositoryInterface,
	slotRepo slotrepository.SlotRepositoryInterface,
	membershipService membershipservice.MembershipServiceInterface,
	notificationService notificationservice.NotificationServiceInterface,
	gateway payment.Gateway,
) *BookingService {
	return &BookingService{
		bookingRepo:         bookingRepo,
		slotRepo:            slotRepo,
		membershipService:   membershipService,
		notificationService: notificationService,
		gateway:             gateway,
		rates:               billing.StandardRates,
		now:                 time.Now,
	}
}

// loadBasket fetches and validates the requested slots: all must exist and
// the result keeps storage order (by start time).
func (s *BookingService) loadBasket(ctx context.Context, slotIDs []uuid.UUID) ([]slotentity.Slot, error) {
	if len(slotIDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "no slots requested", nil)
	}

	slots, err := s.slotRepo.FindByIDs(ctx, slotIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load slots", err)
	}
	if len(slots) != len(slotIDs) {
		return nil, errors.NewAppError(errors.ErrNotFound, "one or more slots do not exist", nil)
	}
	return slots, nil
}

func slotStarts(slots []slotentity.Slot) []time.Time {
	starts := make([]time.Time, len(slots))
	for i, sl := range slots {
		starts[i] = sl.StartTime
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts
}

// snapshotFor assembles the billing snapshot for the user, including hours
// already consumed against the allowance in the current period.
func (s *BookingService) snapshotFor(ctx context.Context, userID uuid.UUID) (billing.Snapshot, error) {
	ent, err := s.membershipService.EntitlementFor(ctx, userID)
	if err != nil {
		return billing.Snapshot{}, err
	}

	snap := billing.Snapshot{Config: ent.Config, Active: ent.Active}
	if !ent.Active || ent.PeriodStart.IsZero() || ent.PeriodEnd.IsZero() {
		return snap, nil
	}

	starts, err := s.bookingRepo.SlotStartTimesForUser(ctx, userID, ent.PeriodStart, ent.PeriodEnd)
	if err != nil {
		return billing.Snapshot{}, errors.NewAppError(errors.ErrInternalServer, "failed to tally used hours", err)
	}
	snap.UsedHours = billing.EligibleHours(starts, ent.Config)
	return snap, nil
}

func (s *BookingService) Quote(ctx context.Context, userID uuid.UUID, slotIDs []uuid.UUID) (*billing.Quote, error) {
	slots, err := s.loadBasket(ctx, slotIDs)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshotFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	quote := billing.Compute(slotStarts(slots), snap, s.rates, constants.MinimumChargePence)
	return &quote, nil
}

// Reserve prices the basket, creates the pending booking with its slots held,
// and opens a payment intent for the total. A zero total skips the gateway
// and confirms immediately.
func (s *BookingService) Reserve(ctx context.Context, userID uuid.UUID, slotIDs []uuid.UUID) (*dto.ReserveResponse, error) {
	logger.Info("BookingService:Reserve:Start", "userId", userID, "slots", len(slotIDs))

	slots, err := s.loadBasket(ctx, slotIDs)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshotFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	quote := billing.Compute(slotStarts(slots), snap, s.rates, constants.MinimumChargePence)

	booking, err := s.bookingRepo.CreateWithSlots(ctx, &entity.Booking{
		UserID:      userID,
		Status:      entity.BookingPending,
		AmountPence: quote.TotalPence,
	}, slotIDs)
	if err != nil {
		return nil, err
	}
	booking.Slots = slots

	if quote.TotalPence == 0 {
		if err := s.settleZeroCost(ctx, booking, slotIDs); err != nil {
			return nil, err
		}
		logger.Info("BookingService:Reserve:ConfirmedWithoutPayment", "bookingId", booking.ID)
		return &dto.ReserveResponse{Booking: booking, ClientSecret: nil, AmountPence: 0, Quote: &quote}, nil
	}

	intent, err := s.gateway.CreateIntent(ctx, quote.TotalPence, constants.Currency, map[string]string{
		"booking_id": booking.ID.String(),
		"user_id":    userID.String(),
		"slot_ids":   joinIDs(slotIDs),
	})
	if err != nil {
		// Undo the holds so the slots go straight back on sale instead of
		// waiting for the expiry sweep.
		s.release(ctx, booking.ID, slotIDs, entity.BookingFailed)
		return nil, err
	}

	if err := s.bookingRepo.SetPayment(ctx, booking.ID, intent.ID, intent.Status); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to record payment reference", err)
	}
	booking.PaymentID = &intent.ID

	logger.Info("BookingService:Reserve:Success", "bookingId", booking.ID, "amount", quote.TotalPence)
	return &dto.ReserveResponse{
		Booking:      booking,
		ClientSecret: &intent.ClientSecret,
		AmountPence:  quote.TotalPence,
		Quote:        &quote,
	}, nil
}

// settleZeroCost books a fully covered basket: slots to booked, booking to
// confirmed, confirmation email queued.
func (s *BookingService) settleZeroCost(ctx context.Context, booking *entity.Booking, slotIDs []uuid.UUID) error {
	n, err := s.slotRepo.Transition(ctx, slotIDs, slotentity.SlotPaymentHold, slotentity.SlotBooked)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to book held slots", err)
	}
	if n != int64(len(slotIDs)) {
		return errors.NewAppError(errors.ErrPartialUpdate,
			fmt.Sprintf("booked %d of %d held slots", n, len(slotIDs)), nil)
	}
	if _, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, entity.BookingPending, entity.BookingConfirmed); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to confirm booking", err)
	}
	booking.Status = entity.BookingConfirmed
	s.notifyConfirmed(ctx, booking)
	return nil
}

// ReserveGuest opens a payment intent before any booking exists. The intent
// metadata carries the slot ids and guest contact details; the gateway's
// intent-created event calls ReserveFromIntent to materialize the booking.
func (s *BookingService) ReserveGuest(ctx context.Context, req *dto.GuestReserveRequest) (*dto.GuestReserveResponse, error) {
	logger.Info("BookingService:ReserveGuest:Start", "email", req.Email, "slots", len(req.SlotIDs))

	slots, err := s.loadBasket(ctx, req.SlotIDs)
	if err != nil {
		return nil, err
	}
	for _, sl := range slots {
		if sl.Status != slotentity.SlotAvailable {
			return nil, errors.NewAppError(errors.ErrSlotUnavailable,
				"one or more slots are no longer available", nil).
				WithDetails(map[string]any{"unavailableSlotIds": []uuid.UUID{sl.ID}})
		}
	}

	quote := billing.Compute(slotStarts(slots), billing.Snapshot{}, s.rates, constants.MinimumChargePence)

	metadata := map[string]string{
		"is_guest":    "true",
		"slot_ids":    joinIDs(req.SlotIDs),
		"guest_name":  req.Name,
		"guest_email": req.Email,
	}
	if req.Phone != nil {
		metadata["guest_phone"] = *req.Phone
	}

	intent, err := s.gateway.CreateIntent(ctx, quote.TotalPence, constants.Currency, metadata)
	if err != nil {
		return nil, err
	}

	logger.Info("BookingService:ReserveGuest:Success", "intentId", intent.ID, "amount", quote.TotalPence)
	return &dto.GuestReserveResponse{ClientSecret: intent.ClientSecret, AmountPence: quote.TotalPence}, nil
}

// ReserveFromIntent handles the gateway's intent-created event. Intents made
// by Reserve already carry a booking id and need nothing; guest intents carry
// slot ids and contact details, so the guest user is upserted, the booking
// created against the existing intent, and the intent metadata backfilled
// with the booking id.
func (s *BookingService) ReserveFromIntent(ctx context.Context, intent *payment.IntentEvent) error {
	if intent.Metadata["booking_id"] != "" || intent.Metadata["is_guest"] != "true" {
		return nil
	}

	logger.Info("BookingService:ReserveFromIntent:Start", "intentId", intent.ID)

	slotIDs, err := parseIDs(intent.Metadata["slot_ids"])
	if err != nil || len(slotIDs) == 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "intent metadata has no usable slot ids", err)
	}

	var phone *string
	if p := intent.Metadata["guest_phone"]; p != "" {
		phone = &p
	}
	guest, err := s.membershipService.UpsertGuest(ctx,
		intent.Metadata["guest_name"], intent.Metadata["guest_email"], phone)
	if err != nil {
		return err
	}

	paymentRef := intent.ID
	booking, err := s.bookingRepo.CreateWithSlots(ctx, &entity.Booking{
		UserID:      guest.ID,
		Status:      entity.BookingPending,
		PaymentID:   &paymentRef,
		AmountPence: intent.Amount,
	}, slotIDs)
	if err != nil {
		return err
	}

	if err := s.gateway.UpdateIntentMetadata(ctx, intent.ID, map[string]string{
		"booking_id": booking.ID.String(),
	}); err != nil {
		// The booking is correlated by payment ref regardless; losing the
		// backfill only hurts gateway-side reporting.
		logger.Warn("BookingService:ReserveFromIntent:MetadataBackfill", "intentId", intent.ID, "error", err)
	}

	logger.Info("BookingService:ReserveFromIntent:Success", "bookingId", booking.ID, "intentId", intent.ID)
	return nil
}

func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to fetch booking", err)
	}
	if booking == nil {
		return nil, errors.NewAppError(errors.ErrBookingNotFound, "booking not found", nil)
	}
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list bookings", err)
	}
	return bookings, nil
}

// ConfirmByPaymentRef settles a successful payment: booking to confirmed and
// held slots to booked. Replayed events are no-ops once the booking is
// confirmed.
func (s *BookingService) ConfirmByPaymentRef(ctx context.Context, paymentRef, paymentStatus string) error {
	booking, err := s.bookingRepo.GetByPaymentRef(ctx, paymentRef)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to fetch booking", err)
	}
	if booking == nil {
		return errors.NewAppError(errors.ErrBookingNotFound, "no booking for payment reference", nil)
	}

	n, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, entity.BookingPending, entity.BookingConfirmed)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to confirm booking", err)
	}
	if n == 0 {
		if booking.Status == entity.BookingConfirmed {
			// A crash between the row update and the slot transition leaves
			// holds behind that the sweeper never scans; re-assert booked so
			// the gateway's retried event heals them.
			healed, err := s.slotRepo.Transition(ctx, booking.SlotIDs(), slotentity.SlotPaymentHold, slotentity.SlotBooked)
			if err != nil {
				return errors.NewAppError(errors.ErrInternalServer, "failed to book held slots", err)
			}
			if healed > 0 {
				logger.Warn("BookingService:Confirm:HealedHeldSlots", "bookingId", booking.ID, "slots", healed)
			}
			logger.Info("BookingService:Confirm:AlreadyConfirmed", "bookingId", booking.ID)
			return nil
		}
		return errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("booking is %s, cannot confirm", booking.Status), nil)
	}

	slotIDs := booking.SlotIDs()
	moved, err := s.slotRepo.Transition(ctx, slotIDs, slotentity.SlotPaymentHold, slotentity.SlotBooked)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to book held slots", err)
	}
	if moved != int64(len(slotIDs)) {
		return errors.NewAppError(errors.ErrPartialUpdate,
			fmt.Sprintf("booked %d of %d held slots", moved, len(slotIDs)), nil).
			WithDetails(map[string]any{"bookingId": booking.ID})
	}

	if err := s.bookingRepo.SetPaymentStatus(ctx, booking.ID, paymentStatus); err != nil {
		logger.Warn("BookingService:Confirm:PaymentStatus", "bookingId", booking.ID, "error", err)
	}

	booking.Status = entity.BookingConfirmed
	s.notifyConfirmed(ctx, booking)

	logger.Info("BookingService:Confirm:Success", "bookingId", booking.ID)
	return nil
}

// FailByPaymentRef releases a booking whose payment did not go through.
// Replayed events are no-ops once the booking is failed.
func (s *BookingService) FailByPaymentRef(ctx context.Context, paymentRef, paymentStatus string) error {
	booking, err := s.bookingRepo.GetByPaymentRef(ctx, paymentRef)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to fetch booking", err)
	}
	if booking == nil {
		return errors.NewAppError(errors.ErrBookingNotFound, "no booking for payment reference", nil)
	}

	n, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, entity.BookingPending, entity.BookingFailed)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to mark booking failed", err)
	}
	if n == 0 {
		if booking.Status == entity.BookingFailed {
			logger.Info("BookingService:Fail:AlreadyFailed", "bookingId", booking.ID)
			return nil
		}
		return errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("booking is %s, cannot fail", booking.Status), nil)
	}

	slotIDs := booking.SlotIDs()
	moved, err := s.slotRepo.Transition(ctx, slotIDs, slotentity.SlotPaymentHold, slotentity.SlotAvailable)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to release held slots", err)
	}
	if moved != int64(len(slotIDs)) {
		logger.Warn("BookingService:Fail:PartialRelease", "bookingId", booking.ID,
			"released", moved, "expected", len(slotIDs))
	}

	if err := s.bookingRepo.SetPaymentStatus(ctx, booking.ID, paymentStatus); err != nil {
		logger.Warn("BookingService:Fail:PaymentStatus", "bookingId", booking.ID, "error", err)
	}

	logger.Info("BookingService:Fail:Success", "bookingId", booking.ID)
	return nil
}

// Cancel releases a pending or confirmed booking. The booking row survives
// as cancelled; only the slots go back on sale. A booking with no slots
// attached indicates corrupted data and is reported rather than silently
// cancelled.
func (s *BookingService) Cancel(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && booking.UserID != requesterID {
		return errors.NewAppError(errors.ErrForbidden, "not your booking", nil)
	}
	if booking.Status != entity.BookingPending && booking.Status != entity.BookingConfirmed {
		return errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("booking is %s, cannot cancel", booking.Status), nil)
	}
	if len(booking.Slots) == 0 {
		return errors.NewAppError(errors.ErrNoSlots, "booking has no slots to cancel", nil).
			WithDetails(map[string]any{"bookingId": booking.ID})
	}

	slotIDs := booking.SlotIDs()
	fromStatus := slotentity.SlotBooked
	if booking.Status == entity.BookingPending {
		fromStatus = slotentity.SlotPaymentHold
	}
	moved, err := s.slotRepo.Transition(ctx, slotIDs, fromStatus, slotentity.SlotAvailable)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to release slots", err)
	}
	if moved != int64(len(slotIDs)) {
		return errors.NewAppError(errors.ErrPartialUpdate,
			fmt.Sprintf("released %d of %d slots", moved, len(slotIDs)), nil).
			WithDetails(map[string]any{"bookingId": booking.ID})
	}

	if _, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status, entity.BookingCancelled); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to cancel booking", err)
	}

	logger.Info("BookingService:Cancel:Success", "bookingId", booking.ID)
	return nil
}

// Extend appends whole hours to the end of a confirmed booking. The new slots
// must sit on the same bay, start exactly where the booking ends and run
// back-to-back. Payment for the extension is settled by the caller before
// this runs, so the slots move straight to booked.
func (s *BookingService) Extend(ctx context.Context, id uuid.UUID, hours int) (*entity.Booking, error) {
	if hours < 1 || hours > 2 {
		return nil, errors.NewAppError(errors.ErrInvalidHours, "extension must be 1 or 2 hours", nil)
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingConfirmed {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("booking is %s, cannot extend", booking.Status), nil)
	}
	if len(booking.Slots) == 0 {
		return nil, errors.NewAppError(errors.ErrNoSlots, "booking has no slots", nil)
	}

	last := booking.Slots[len(booking.Slots)-1]
	// Only slots inside [end, end+hours) can extend the booking, so the
	// window is bounded and the count itself is the contiguous count. A free
	// slot later in the day must not mask a shortfall here.
	until := last.EndTime.Add(time.Duration(hours) * time.Hour)
	candidates, err := s.slotRepo.FindAvailable(ctx, last.BayID, last.EndTime, until)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to find extension slots", err)
	}
	if len(candidates) < hours {
		return nil, errors.NewAppError(errors.ErrInsufficientSlots,
			fmt.Sprintf("only %d of %d extension slots available", len(candidates), hours), nil).
			WithDetails(map[string]any{"availableSlots": len(candidates)})
	}

	candidates = candidates[:hours]
	boundary := last.EndTime
	for _, c := range candidates {
		if !c.StartTime.Equal(boundary) {
			return nil, errors.NewAppError(errors.ErrNonConsecutiveSlots,
				"extension slots are not consecutive with the booking", nil)
		}
		boundary = c.EndTime
	}

	newIDs := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		newIDs[i] = c.ID
	}

	moved, err := s.slotRepo.Transition(ctx, newIDs, slotentity.SlotAvailable, slotentity.SlotBooked)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to book extension slots", err)
	}
	if moved != int64(len(newIDs)) {
		return nil, errors.NewAppError(errors.ErrSlotUnavailable,
			"extension slots were taken while booking", nil)
	}

	if err := s.bookingRepo.AttachSlots(ctx, booking.ID, newIDs); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to attach extension slots", err)
	}

	booking.Slots = append(booking.Slots, candidates...)
	logger.Info("BookingService:Extend:Success", "bookingId", booking.ID, "addedHours", hours)
	return booking, nil
}

// AdminDirectBook books slots for a user without payment. Slots move straight
// from available to booked and the booking starts out confirmed.
func (s *BookingService) AdminDirectBook(ctx context.Context, userID uuid.UUID, slotIDs []uuid.UUID) (*entity.Booking, error) {
	logger.Info("BookingService:AdminDirectBook:Start", "userId", userID, "slots", len(slotIDs))

	slots, err := s.loadBasket(ctx, slotIDs)
	if err != nil {
		return nil, err
	}

	moved, err := s.slotRepo.Transition(ctx, slotIDs, slotentity.SlotAvailable, slotentity.SlotBooked)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to book slots", err)
	}
	if moved != int64(len(slotIDs)) {
		if moved > 0 {
			// Some slots moved and some did not; surface it loudly instead of
			// leaving half a booking behind.
			return nil, errors.NewAppError(errors.ErrPartialUpdate,
				fmt.Sprintf("booked %d of %d slots", moved, len(slotIDs)), nil)
		}
		return nil, errors.NewAppError(errors.ErrSlotUnavailable, "slots are not available", nil)
	}

	booking := &entity.Booking{
		UserID:      userID,
		Status:      entity.BookingConfirmed,
		AmountPence: 0,
	}
	created, err := s.bookingRepo.CreateWithSlots(ctx, booking, nil)
	if err != nil {
		s.releaseBooked(ctx, slotIDs)
		return nil, err
	}
	if err := s.bookingRepo.AttachSlots(ctx, created.ID, slotIDs); err != nil {
		s.releaseBooked(ctx, slotIDs)
		if _, uerr := s.bookingRepo.UpdateStatus(ctx, created.ID, entity.BookingConfirmed, entity.BookingCancelled); uerr != nil {
			logger.Error("BookingService:AdminDirectBook:Cancel", uerr)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to attach slots", err)
	}
	created.Slots = slots

	logger.Info("BookingService:AdminDirectBook:Success", "bookingId", created.ID)
	return created, nil
}

// ReleaseExpired cancels pending bookings older than the hold TTL and puts
// their slots back on sale. Returns how many bookings were released.
func (s *BookingService) ReleaseExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-constants.PendingBookingTTL)
	stale, err := s.bookingRepo.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, sweepError("failed to scan stale bookings", err)
	}

	released := 0
	for i := range stale {
		b := &stale[i]
		n, err := s.bookingRepo.UpdateStatus(ctx, b.ID, entity.BookingPending, entity.BookingCancelled)
		if err != nil {
			return released, sweepError("failed to cancel stale booking", err)
		}
		if n == 0 {
			// Settled between the scan and now; leave it alone.
			continue
		}
		if ids := b.SlotIDs(); len(ids) > 0 {
			if _, err := s.slotRepo.Transition(ctx, ids, slotentity.SlotPaymentHold, slotentity.SlotAvailable); err != nil {
				return released, sweepError("failed to release held slots", err)
			}
		}
		released++
		logger.Info("BookingService:ReleaseExpired:Released", "bookingId", b.ID)
	}
	return released, nil
}

// sweepError tags transient storage failures so the cleanup task retries them
// once instead of waiting for the next tick.
func sweepError(message string, err error) *errors.AppError {
	code := errors.ErrInternalServer
	if database.IsTransient(err) {
		code = errors.ErrStorageTransient
	}
	return errors.NewAppError(code, message, err)
}

// releaseBooked returns directly booked slots to sale after a downstream
// failure. A failed release is logged and the slots stay booked for an
// operator to resolve.
func (s *BookingService) releaseBooked(ctx context.Context, slotIDs []uuid.UUID) {
	if _, err := s.slotRepo.Transition(ctx, slotIDs, slotentity.SlotBooked, slotentity.SlotAvailable); err != nil {
		logger.Error("BookingService:ReleaseBooked", err)
	}
}

// release undoes a fresh reservation after a downstream failure: holds go
// back to available and the booking lands in the given terminal status.
// Failures here are logged only; the expiry sweep will catch anything missed.
func (s *BookingService) release(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID, to entity.BookingStatus) {
	if _, err := s.slotRepo.Transition(ctx, slotIDs, slotentity.SlotPaymentHold, slotentity.SlotAvailable); err != nil {
		logger.Error("BookingService:Release:Slots", err)
	}
	if _, err := s.bookingRepo.UpdateStatus(ctx, bookingID, entity.BookingPending, to); err != nil {
		logger.Error("BookingService:Release:Booking", err)
	}
}

func (s *BookingService) notifyConfirmed(ctx context.Context, booking *entity.Booking) {
	user, err := s.membershipService.GetUser(ctx, booking.UserID)
	if err != nil {
		logger.Warn("BookingService:NotifyConfirmed:User", "bookingId", booking.ID, "error", err)
		return
	}
	if err := s.notificationService.Send(ctx, user.Email, "booking_confirmed", map[string]any{
		"name":      user.Name,
		"bookingId": booking.ID.String(),
	}); err != nil {
		logger.Warn("BookingService:NotifyConfirmed:Send", "bookingId", booking.ID, "error", err)
	}
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
