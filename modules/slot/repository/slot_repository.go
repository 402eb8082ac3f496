package repository

import (
	"context"
	"database/sql"
	"time"

	"baybook/core/database"
	"baybook/core/logger"
	"baybook/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type SlotRepositoryInterface interface {
	GenerateRange(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Slot, error)
	FindAvailable(ctx context.Context, bayID uuid.UUID, from, to time.Time) ([]entity.Slot, error)
	Transition(ctx context.Context, ids []uuid.UUID, from, to entity.SlotStatus) (int64, error)
	TransitionRange(ctx context.Context, bayID uuid.UUID, fromTime, toTime time.Time, from, to entity.SlotStatus) (int64, error)
}

type SlotRepository struct {
	DB database.Database
}

func NewSlotRepository(db database.Database) *SlotRepository {
	return &SlotRepository{DB: db}
}

// GenerateRange inserts hour-long slots for the bay covering [from, to).
// Existing slots at the same start time are left untouched.
func (r *SlotRepository) GenerateRange(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		INSERT INTO slots (bay_id, start_time, end_time, status)
		SELECT $1, gs, gs + interval '1 hour', 'available'
		FROM generate_series($2::timestamptz, $3::timestamptz - interval '1 hour', interval '1 hour') AS gs
		ON CONFLICT (bay_id, start_time) DO NOTHING
	`

	res, err := r.DB.ExecResultContext(ctx, query, bayID, from, to)
	if err != nil {
		logger.Error("SlotRepository:GenerateRange", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	query := `SELECT id, bay_id, start_time, end_time, status, created_at, updated_at FROM slots WHERE id = $1`

	var slot entity.Slot
	err := r.DB.GetContext(ctx, &slot, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SlotRepository:GetByID", err)
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Slot, error) {
	query := `
		SELECT id, bay_id, start_time, end_time, status, created_at, updated_at
		FROM slots
		WHERE id = ANY($1)
		ORDER BY start_time
	`

	var slots []entity.Slot
	err := r.DB.SelectContext(ctx, &slots, query, pq.Array(ids))
	if err != nil {
		logger.Error("SlotRepository:FindByIDs", err)
		return nil, err
	}
	return slots, nil
}

// FindAvailable returns the bay's available slots with starts inside
// [from, to) in start order. The extension flow bounds the window to the
// hours requested so the row count is the contiguous-window count.
func (r *SlotRepository) FindAvailable(ctx context.Context, bayID uuid.UUID, from, to time.Time) ([]entity.Slot, error) {
	query := `
		SELECT id, bay_id, start_time, end_time, status, created_at, updated_at
		FROM slots
		WHERE bay_id = $1 AND status = $2 AND start_time >= $3 AND start_time < $4
		ORDER BY start_time
	`

	var slots []entity.Slot
	err := r.DB.SelectContext(ctx, &slots, query, bayID, entity.SlotAvailable, from, to)
	if err != nil {
		logger.Error("SlotRepository:FindAvailable", err)
		return nil, err
	}
	return slots, nil
}

// Transition moves every slot in ids from one status to another in a single
// conditional update. The returned count is the number of rows that actually
// changed; callers compare it against len(ids) to detect lost races.
func (r *SlotRepository) Transition(ctx context.Context, ids []uuid.UUID, from, to entity.SlotStatus) (int64, error) {
	query := `UPDATE slots SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`

	res, err := r.DB.ExecResultContext(ctx, query, to, pq.Array(ids), from)
	if err != nil {
		logger.Error("SlotRepository:Transition", err)
		return 0, err
	}
	return res.RowsAffected()
}

// TransitionRange conditionally moves every slot on the bay whose start falls
// in [fromTime, toTime). Operators use it to block and unblock maintenance
// windows; the count tells them how many slots the sweep actually touched.
func (r *SlotRepository) TransitionRange(ctx context.Context, bayID uuid.UUID, fromTime, toTime time.Time, from, to entity.SlotStatus) (int64, error) {
	query := `
		UPDATE slots SET status = $1, updated_at = NOW()
		WHERE bay_id = $2 AND status = $3 AND start_time >= $4 AND start_time < $5
	`

	res, err := r.DB.ExecResultContext(ctx, query, to, bayID, from, fromTime, toTime)
	if err != nil {
		logger.Error("SlotRepository:TransitionRange", err)
		return 0, err
	}
	return res.RowsAffected()
}
