package service

import (
	"context"
	"testing"
	"time"

	apperrors "baybook/core/errors"
	"baybook/modules/billing"
	"baybook/modules/membership/entity"
	"baybook/modules/membership/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users   map[uuid.UUID]*entity.User
	updates map[string]*repository.SubscriptionUpdate
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[uuid.UUID]*entity.User),
		updates: make(map[string]*repository.SubscriptionUpdate),
	}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByCustomerRef(ctx context.Context, customerRef string) (*entity.User, error) {
	for _, u := range r.users {
		if u.CustomerRef != nil && *u.CustomerRef == customerRef {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpsertGuest(ctx context.Context, name, email string, phone *string) (*entity.User, error) {
	if existing, _ := r.GetByEmail(ctx, email); existing != nil {
		existing.Name = name
		existing.Phone = phone
		return existing, nil
	}
	u := &entity.User{Email: email, Name: name, Phone: phone, Role: entity.RoleGuest}
	u.ID = uuid.New()
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) UpdateSubscription(ctx context.Context, customerRef string, update *repository.SubscriptionUpdate) error {
	r.updates[customerRef] = update
	return nil
}

var tierByPriceRef = map[string]billing.Tier{
	"price_par":    billing.TierPar,
	"price_birdie": billing.TierBirdie,
	"price_eagle":  billing.TierEagle,
}

func TestApplySubscriptionEventActive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewMembershipService(repo, tierByPriceRef)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := svc.ApplySubscriptionEvent(context.Background(), &SubscriptionEvent{
		CustomerRef: "cus_1",
		Status:      "active",
		PriceRef:    "price_birdie",
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	update := repo.updates["cus_1"]
	require.NotNil(t, update)
	require.NotNil(t, update.Tier)
	assert.Equal(t, "birdie", *update.Tier)
	assert.Equal(t, entity.MembershipActive, update.Status)
	require.NotNil(t, update.PeriodStart)
	assert.Equal(t, start, update.PeriodStart.Time)
}

func TestApplySubscriptionEventNonActiveClearsMembership(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewMembershipService(repo, tierByPriceRef)

	err := svc.ApplySubscriptionEvent(context.Background(), &SubscriptionEvent{
		CustomerRef: "cus_1",
		Status:      "canceled",
		PriceRef:    "price_birdie",
	})
	require.NoError(t, err)

	update := repo.updates["cus_1"]
	require.NotNil(t, update)
	assert.Nil(t, update.Tier)
	assert.Equal(t, entity.MembershipCancelled, update.Status)
	assert.Nil(t, update.PeriodStart)
	assert.Nil(t, update.PeriodEnd)
}

func TestApplySubscriptionEventUnknownPriceRef(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewMembershipService(repo, tierByPriceRef)

	err := svc.ApplySubscriptionEvent(context.Background(), &SubscriptionEvent{
		CustomerRef: "cus_1",
		Status:      "active",
		PriceRef:    "price_unknown",
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInvalidInput, appErr.Code)
	assert.Empty(t, repo.updates)
}

func TestEntitlementForActiveMember(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewMembershipService(repo, tierByPriceRef)

	tier := "eagle"
	status := entity.MembershipActive
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	user := &entity.User{
		Email: "m@example.com", Name: "M", Role: entity.RoleMember,
		MembershipTier: &tier, MembershipStatus: &status,
		CurrentPeriodStart: &start, CurrentPeriodEnd: &end,
	}
	user.ID = uuid.New()
	repo.users[user.ID] = user

	ent, err := svc.EntitlementFor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, ent.Active)
	require.NotNil(t, ent.Config)
	assert.Equal(t, billing.TierEagle, ent.Config.Tier)
	assert.Equal(t, start, ent.PeriodStart)
	assert.Equal(t, end, ent.PeriodEnd)
}

func TestEntitlementForCancelledMemberIsInactive(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewMembershipService(repo, tierByPriceRef)

	tier := "eagle"
	status := entity.MembershipCancelled
	user := &entity.User{
		Email: "m@example.com", Name: "M", Role: entity.RoleMember,
		MembershipTier: &tier, MembershipStatus: &status,
	}
	user.ID = uuid.New()
	repo.users[user.ID] = user

	ent, err := svc.EntitlementFor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, ent.Active)
	assert.Nil(t, ent.Config)
}

func TestEntitlementForUnknownUser(t *testing.T) {
	svc := NewMembershipService(newFakeUserRepo(), tierByPriceRef)

	_, err := svc.EntitlementFor(context.Background(), uuid.New())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
