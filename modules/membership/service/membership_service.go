package service

import (
	"context"
	"database/sql"
	"time"

	"baybook/core/errors"
	"baybook/core/logger"
	"baybook/modules/billing"
	"baybook/modules/membership/entity"
	"baybook/modules/membership/repository"

	"github.com/google/uuid"
)

// SubscriptionEvent is the gateway-agnostic projection of a subscription
// webhook. Status carries the gateway's own status string; anything other
// than "active" or "trialing" cancels the membership.
type SubscriptionEvent struct {
	CustomerRef       string
	Status            string
	PriceRef          string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
}

// Entitlement is what the reservation flow needs to price a basket: the tier
// config when the membership is active, and the billing period to tally
// consumed hours over.
type Entitlement struct {
	User        *entity.User
	Config      *billing.TierConfig
	Active      bool
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type MembershipServiceInterface interface {
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	EntitlementFor(ctx context.Context, userID uuid.UUID) (*Entitlement, error)
	UpsertGuest(ctx context.Context, name, email string, phone *string) (*entity.User, error)
	ApplySubscriptionEvent(ctx context.Context, ev *SubscriptionEvent) error
}

type MembershipService struct {
	userRepo       repository.UserRepositoryInterface
	tierByPriceRef map[string]billing.Tier
}

func NewMembershipService(userRepo repository.UserRepositoryInterface, tierByPriceRef map[string]billing.Tier) *MembershipService {
	return &MembershipService{userRepo: userRepo, tierByPriceRef: tierByPriceRef}
}

func (s *MembershipService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to fetch user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	return user, nil
}

func (s *MembershipService) EntitlementFor(ctx context.Context, userID uuid.UUID) (*Entitlement, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ent := &Entitlement{User: user}
	if !user.HasActiveMembership() {
		return ent, nil
	}

	cfg, ok := billing.Tiers[billing.Tier(*user.MembershipTier)]
	if !ok {
		// Unknown tier on record: treat as non-member rather than failing the quote.
		logger.Warn("MembershipService:EntitlementFor:UnknownTier", "userId", userID, "tier", *user.MembershipTier)
		return ent, nil
	}

	ent.Config = &cfg
	ent.Active = true
	if user.CurrentPeriodStart != nil {
		ent.PeriodStart = *user.CurrentPeriodStart
	}
	if user.CurrentPeriodEnd != nil {
		ent.PeriodEnd = *user.CurrentPeriodEnd
	}
	return ent, nil
}

func (s *MembershipService) UpsertGuest(ctx context.Context, name, email string, phone *string) (*entity.User, error) {
	user, err := s.userRepo.UpsertGuest(ctx, name, email, phone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to upsert guest user", err)
	}
	return user, nil
}

// ApplySubscriptionEvent reflects a gateway subscription change onto the user
// row. The update is a plain last-write-wins write; quotes issued before it
// lands see the previous membership state.
func (s *MembershipService) ApplySubscriptionEvent(ctx context.Context, ev *SubscriptionEvent) error {
	logger.Info("MembershipService:ApplySubscriptionEvent:Start",
		"customerRef", ev.CustomerRef, "status", ev.Status, "priceRef", ev.PriceRef)

	active := ev.Status == "active" || ev.Status == "trialing"

	update := &repository.SubscriptionUpdate{
		Status:            entity.MembershipCancelled,
		CancelAtPeriodEnd: ev.CancelAtPeriodEnd,
	}
	if active {
		tier, ok := s.tierByPriceRef[ev.PriceRef]
		if !ok {
			logger.Warn("MembershipService:ApplySubscriptionEvent:UnknownPriceRef", "priceRef", ev.PriceRef)
			return errors.NewAppError(errors.ErrInvalidInput, "unknown subscription price", nil)
		}
		tierStr := string(tier)
		update.Tier = &tierStr
		update.Status = entity.MembershipActive
		update.PeriodStart = &sql.NullTime{Time: ev.PeriodStart, Valid: true}
		update.PeriodEnd = &sql.NullTime{Time: ev.PeriodEnd, Valid: true}
	}

	if err := s.userRepo.UpdateSubscription(ctx, ev.CustomerRef, update); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to update membership", err)
	}

	logger.Info("MembershipService:ApplySubscriptionEvent:Success", "customerRef", ev.CustomerRef, "active", active)
	return nil
}
