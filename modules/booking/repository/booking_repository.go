package repository

import (
	"context"
	"database/sql"
	"time"

	"baybook/core/database"
	apperrors "baybook/core/errors"
	"baybook/core/logger"
	"baybook/modules/booking/entity"
	slotentity "baybook/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type BookingRepositoryInterface interface {
	CreateWithSlots(ctx context.Context, booking *entity.Booking, slotIDs []uuid.UUID) (*entity.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (*entity.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error)
	SetPayment(ctx context.Context, id uuid.UUID, paymentRef, paymentStatus string) error
	SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
	AttachSlots(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error
	FindStalePending(ctx context.Context, olderThan time.Time) ([]entity.Booking, error)
	SlotStartTimesForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]time.Time, error)
}

type BookingRepository struct {
	DB database.Database
}

func NewBookingRepository(db database.Database) *BookingRepository {
	return &BookingRepository{DB: db}
}

// CreateWithSlots inserts the booking, links its slots and moves them from
// available to payment_hold, all in one transaction. If any slot was taken
// in the meantime the conditional update count falls short, the transaction
// rolls back and the offending slot ids are reported. This count-match is the
// only double-booking guard; there are no in-process locks.
func (r *BookingRepository) CreateWithSlots(ctx context.Context, booking *entity.Booking, slotIDs []uuid.UUID) (*entity.Booking, error) {
	var created entity.Booking

	err := r.DB.WithinTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO bookings (user_id, status, payment_id, payment_status, amount_pence)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, user_id, status, payment_id, payment_status, amount_pence, created_at, updated_at
		`
		if err := tx.GetContext(ctx, &created, insert,
			booking.UserID, booking.Status, booking.PaymentID, booking.PaymentStatus, booking.AmountPence); err != nil {
			logger.Error("BookingRepository:CreateWithSlots:Insert", err)
			return err
		}

		join := `
			INSERT INTO booking_slots (booking_id, slot_id)
			SELECT $1, unnest($2::uuid[])
		`
		if _, err := tx.ExecContext(ctx, join, created.ID, pq.Array(slotIDs)); err != nil {
			logger.Error("BookingRepository:CreateWithSlots:Join", err)
			return err
		}

		hold := `UPDATE slots SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`
		res, err := tx.ExecContext(ctx, hold, slotentity.SlotPaymentHold, pq.Array(slotIDs), slotentity.SlotAvailable)
		if err != nil {
			logger.Error("BookingRepository:CreateWithSlots:Hold", err)
			return err
		}
		held, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if held != int64(len(slotIDs)) {
			unavailable, lookupErr := unavailableIDsTx(ctx, tx, slotIDs)
			if lookupErr != nil {
				logger.Error("BookingRepository:CreateWithSlots:Lookup", lookupErr)
			}
			return apperrors.NewAppError(apperrors.ErrSlotUnavailable,
				"one or more slots are no longer available", nil).
				WithDetails(map[string]any{"unavailableSlotIds": unavailable})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// unavailableIDsTx reports which of ids are not held by the current
// transaction, i.e. were not in the available state when the hold ran.
func unavailableIDsTx(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM slots
		WHERE id = ANY($1) AND status <> $2
	`
	var out []uuid.UUID
	err := tx.SelectContext(ctx, &out, query, pq.Array(ids), slotentity.SlotPaymentHold)
	return out, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, user_id, status, payment_id, payment_status, amount_pence, created_at, updated_at
		FROM bookings WHERE id = $1
	`

	var booking entity.Booking
	err := r.DB.GetContext(ctx, &booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetByID", err)
		return nil, err
	}

	if err := r.loadSlots(ctx, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*entity.Booking, error) {
	query := `
		SELECT id, user_id, status, payment_id, payment_status, amount_pence, created_at, updated_at
		FROM bookings WHERE payment_id = $1
	`

	var booking entity.Booking
	err := r.DB.GetContext(ctx, &booking, query, paymentRef)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetByPaymentRef", err)
		return nil, err
	}

	if err := r.loadSlots(ctx, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Booking, error) {
	query := `
		SELECT id, user_id, status, payment_id, payment_status, amount_pence, created_at, updated_at
		FROM bookings WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var bookings []entity.Booking
	err := r.DB.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		logger.Error("BookingRepository:ListByUser", err)
		return nil, err
	}
	for i := range bookings {
		if err := r.loadSlots(ctx, &bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

func (r *BookingRepository) loadSlots(ctx context.Context, booking *entity.Booking) error {
	query := `
		SELECT s.id, s.bay_id, s.start_time, s.end_time, s.status, s.created_at, s.updated_at
		FROM slots s
		JOIN booking_slots bs ON bs.slot_id = s.id
		WHERE bs.booking_id = $1
		ORDER BY s.start_time
	`
	if err := r.DB.SelectContext(ctx, &booking.Slots, query, booking.ID); err != nil {
		logger.Error("BookingRepository:LoadSlots", err)
		return err
	}
	return nil
}

// UpdateStatus performs the conditional status transition. Zero affected rows
// means the booking was not in the expected state; callers decide whether
// that is an idempotent no-op or an error.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	res, err := r.DB.ExecResultContext(ctx, query, to, id, from)
	if err != nil {
		logger.Error("BookingRepository:UpdateStatus", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BookingRepository) SetPayment(ctx context.Context, id uuid.UUID, paymentRef, paymentStatus string) error {
	query := `UPDATE bookings SET payment_id = $2, payment_status = $3, updated_at = NOW() WHERE id = $1`

	err := r.DB.ExecContext(ctx, query, id, paymentRef, paymentStatus)
	if err != nil {
		logger.Error("BookingRepository:SetPayment", err)
		return err
	}
	return nil
}

func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	query := `UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`

	err := r.DB.ExecContext(ctx, query, id, paymentStatus)
	if err != nil {
		logger.Error("BookingRepository:SetPaymentStatus", err)
		return err
	}
	return nil
}

func (r *BookingRepository) AttachSlots(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error {
	query := `
		INSERT INTO booking_slots (booking_id, slot_id)
		SELECT $1, unnest($2::uuid[])
	`
	err := r.DB.ExecContext(ctx, query, bookingID, pq.Array(slotIDs))
	if err != nil {
		logger.Error("BookingRepository:AttachSlots", err)
		return err
	}
	return nil
}

// FindStalePending returns pending bookings created before the cutoff, with
// their slots loaded so the sweep can release the holds.
func (r *BookingRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]entity.Booking, error) {
	query := `
		SELECT id, user_id, status, payment_id, payment_status, amount_pence, created_at, updated_at
		FROM bookings
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	var bookings []entity.Booking
	err := r.DB.SelectContext(ctx, &bookings, query, entity.BookingPending, olderThan)
	if err != nil {
		logger.Error("BookingRepository:FindStalePending", err)
		return nil, err
	}
	for i := range bookings {
		if err := r.loadSlots(ctx, &bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

// SlotStartTimesForUser returns the start times of every slot attached to the
// user's pending or confirmed bookings with starts inside [from, to). The
// billing engine counts the allowance-eligible ones against the membership.
func (r *BookingRepository) SlotStartTimesForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT s.start_time
		FROM slots s
		JOIN booking_slots bs ON bs.slot_id = s.id
		JOIN bookings b ON b.id = bs.booking_id
		WHERE b.user_id = $1
		  AND b.status IN ($2, $3)
		  AND s.start_time >= $4 AND s.start_time < $5
		ORDER BY s.start_time
	`

	var starts []time.Time
	err := r.DB.SelectContext(ctx, &starts, query, userID,
		entity.BookingPending, entity.BookingConfirmed, from, to)
	if err != nil {
		logger.Error("BookingRepository:SlotStartTimesForUser", err)
		return nil, err
	}
	return starts, nil
}
