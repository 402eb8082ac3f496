package repository

import (
	"context"
	"database/sql"

	"baybook/core/database"
	"baybook/core/logger"
	"baybook/modules/membership/entity"

	"github.com/google/uuid"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByCustomerRef(ctx context.Context, customerRef string) (*entity.User, error)
	UpsertGuest(ctx context.Context, name, email string, phone *string) (*entity.User, error)
	UpdateSubscription(ctx context.Context, customerRef string, update *SubscriptionUpdate) error
}

// SubscriptionUpdate is the membership projection of a gateway subscription
// event. Nil tier/period fields clear the corresponding columns.
type SubscriptionUpdate struct {
	Tier              *string
	Status            entity.MembershipStatus
	PeriodStart       *sql.NullTime
	PeriodEnd         *sql.NullTime
	CancelAtPeriodEnd bool
}

type UserRepository struct {
	DB database.Database
}

func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, email, name, phone, role, membership_tier, membership_status,
	current_period_start, current_period_end, cancel_at_period_end, customer_ref,
	created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByEmail", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByCustomerRef(ctx context.Context, customerRef string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE customer_ref = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, customerRef)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByCustomerRef", err)
		return nil, err
	}
	return &user, nil
}

// UpsertGuest creates a guest user keyed by email, or refreshes the contact
// details of an existing one. Guest checkout runs this before a booking is
// created for an anonymous payer.
func (r *UserRepository) UpsertGuest(ctx context.Context, name, email string, phone *string) (*entity.User, error) {
	query := `
		INSERT INTO users (email, name, phone, role)
		VALUES ($1, $2, $3, 'guest')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = NOW()
		RETURNING ` + userColumns

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, email, name, phone)
	if err != nil {
		logger.Error("UserRepository:UpsertGuest", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, customerRef string, update *SubscriptionUpdate) error {
	query := `
		UPDATE users
		SET membership_tier = $2,
		    membership_status = $3,
		    current_period_start = $4,
		    current_period_end = $5,
		    cancel_at_period_end = $6,
		    updated_at = NOW()
		WHERE customer_ref = $1
	`

	err := r.DB.ExecContext(ctx, query, customerRef,
		update.Tier, update.Status, update.PeriodStart, update.PeriodEnd, update.CancelAtPeriodEnd)
	if err != nil {
		logger.Error("UserRepository:UpdateSubscription", err)
		return err
	}
	return nil
}
