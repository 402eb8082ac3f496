package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	coreentity "baybook/core/entity"
	apperrors "baybook/core/errors"
	"baybook/core/params"
	"baybook/modules/billing"
	"baybook/modules/booking/entity"
	membershipentity "baybook/modules/membership/entity"
	membershipservice "baybook/modules/membership/service"
	notificationentity "baybook/modules/notification/entity"
	"baybook/modules/payment"
	slotentity "baybook/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore backs the fake repositories. All mutations take the store lock,
// so concurrent reservations race exactly like they would against the
// database's conditional updates.
type memoryStore struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]*slotentity.Slot
	bookings     map[uuid.UUID]*entity.Booking
	bookingSlots map[uuid.UUID][]uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		slots:        make(map[uuid.UUID]*slotentity.Slot),
		bookings:     make(map[uuid.UUID]*entity.Booking),
		bookingSlots: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (st *memoryStore) addSlot(bayID uuid.UUID, start time.Time, status slotentity.SlotStatus) *slotentity.Slot {
	st.mu.Lock()
	defer st.mu.Unlock()
	sl := &slotentity.Slot{BayID: bayID, StartTime: start, EndTime: start.Add(time.Hour), Status: status}
	sl.ID = uuid.New()
	st.slots[sl.ID] = sl
	return sl
}

func (st *memoryStore) slotStatus(id uuid.UUID) slotentity.SlotStatus {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slots[id].Status
}

type fakeSlotRepo struct{ store *memoryStore }

func (r *fakeSlotRepo) GenerateRange(ctx context.Context, bayID uuid.UUID, from, to time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*slotentity.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sl, ok := r.store.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *sl
	return &cp, nil
}

func (r *fakeSlotRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]slotentity.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []slotentity.Slot
	for _, id := range ids {
		if sl, ok := r.store.slots[id]; ok {
			out = append(out, *sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeSlotRepo) FindAvailable(ctx context.Context, bayID uuid.UUID, from, to time.Time) ([]slotentity.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []slotentity.Slot
	for _, sl := range r.store.slots {
		if sl.BayID == bayID && sl.Status == slotentity.SlotAvailable &&
			!sl.StartTime.Before(from) && sl.StartTime.Before(to) {
			out = append(out, *sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeSlotRepo) Transition(ctx context.Context, ids []uuid.UUID, from, to slotentity.SlotStatus) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, id := range ids {
		if sl, ok := r.store.slots[id]; ok && sl.Status == from {
			sl.Status = to
			n++
		}
	}
	return n, nil
}

func (r *fakeSlotRepo) TransitionRange(ctx context.Context, bayID uuid.UUID, fromTime, toTime time.Time, from, to slotentity.SlotStatus) (int64, error) {
	return 0, nil
}

type fakeBookingRepo struct {
	store      *memoryStore
	failCreate bool
	failAttach bool
	staleErr   error
}

func (r *fakeBookingRepo) CreateWithSlots(ctx context.Context, booking *entity.Booking, slotIDs []uuid.UUID) (*entity.Booking, error) {
	if r.failCreate {
		return nil, apperrors.NewAppError(apperrors.ErrInternalServer, "storage unavailable", nil)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var unavailable []uuid.UUID
	for _, id := range slotIDs {
		sl, ok := r.store.slots[id]
		if !ok || sl.Status != slotentity.SlotAvailable {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return nil, apperrors.NewAppError(apperrors.ErrSlotUnavailable,
			"one or more slots are no longer available", nil).
			WithDetails(map[string]any{"unavailableSlotIds": unavailable})
	}
	for _, id := range slotIDs {
		r.store.slots[id].Status = slotentity.SlotPaymentHold
	}

	created := *booking
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	r.store.bookings[created.ID] = &created
	r.store.bookingSlots[created.ID] = append([]uuid.UUID(nil), slotIDs...)

	cp := created
	return &cp, nil
}

func (r *fakeBookingRepo) getLocked(id uuid.UUID) *entity.Booking {
	b, ok := r.store.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	cp.Slots = nil
	for _, sid := range r.store.bookingSlots[id] {
		cp.Slots = append(cp.Slots, *r.store.slots[sid])
	}
	sort.Slice(cp.Slots, func(i, j int) bool { return cp.Slots[i].StartTime.Before(cp.Slots[j].StartTime) })
	return &cp
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getLocked(id), nil
}

func (r *fakeBookingRepo) GetByPaymentRef(ctx context.Context, paymentRef string) (*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, b := range r.store.bookings {
		if b.PaymentID != nil && *b.PaymentID == paymentRef {
			return r.getLocked(id), nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []entity.Booking
	for id, b := range r.store.bookings {
		if b.UserID == userID {
			out = append(out, *r.getLocked(id))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok || b.Status != from {
		return 0, nil
	}
	b.Status = to
	return 1, nil
}

func (r *fakeBookingRepo) SetPayment(ctx context.Context, id uuid.UUID, paymentRef, paymentStatus string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if b, ok := r.store.bookings[id]; ok {
		b.PaymentID = &paymentRef
		b.PaymentStatus = &paymentStatus
	}
	return nil
}

func (r *fakeBookingRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if b, ok := r.store.bookings[id]; ok {
		b.PaymentStatus = &paymentStatus
	}
	return nil
}

func (r *fakeBookingRepo) AttachSlots(ctx context.Context, bookingID uuid.UUID, slotIDs []uuid.UUID) error {
	if r.failAttach {
		return apperrors.NewAppError(apperrors.ErrInternalServer, "storage unavailable", nil)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.bookingSlots[bookingID] = append(r.store.bookingSlots[bookingID], slotIDs...)
	return nil
}

func (r *fakeBookingRepo) FindStalePending(ctx context.Context, olderThan time.Time) ([]entity.Booking, error) {
	if r.staleErr != nil {
		return nil, r.staleErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []entity.Booking
	for id, b := range r.store.bookings {
		if b.Status == entity.BookingPending && b.CreatedAt.Before(olderThan) {
			out = append(out, *r.getLocked(id))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) SlotStartTimesForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var starts []time.Time
	for id, b := range r.store.bookings {
		if b.UserID != userID || (b.Status != entity.BookingPending && b.Status != entity.BookingConfirmed) {
			continue
		}
		for _, sid := range r.store.bookingSlots[id] {
			st := r.store.slots[sid].StartTime
			if !st.Before(from) && st.Before(to) {
				starts = append(starts, st)
			}
		}
	}
	return starts, nil
}

type fakeMembership struct {
	user *membershipentity.User
	ent  *membershipservice.Entitlement
}

func (m *fakeMembership) GetUser(ctx context.Context, id uuid.UUID) (*membershipentity.User, error) {
	return m.user, nil
}

func (m *fakeMembership) EntitlementFor(ctx context.Context, userID uuid.UUID) (*membershipservice.Entitlement, error) {
	if m.ent != nil {
		return m.ent, nil
	}
	return &membershipservice.Entitlement{User: m.user}, nil
}

func (m *fakeMembership) UpsertGuest(ctx context.Context, name, email string, phone *string) (*membershipentity.User, error) {
	u := &membershipentity.User{Email: email, Name: name, Phone: phone, Role: membershipentity.RoleGuest}
	u.ID = uuid.New()
	return u, nil
}

func (m *fakeMembership) ApplySubscriptionEvent(ctx context.Context, ev *membershipservice.SubscriptionEvent) error {
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (n *fakeNotifier) Send(ctx context.Context, recipient, template string, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, template)
	return nil
}

func (n *fakeNotifier) ListByRecipient(ctx context.Context, recipient string, qp params.QueryParams) (*coreentity.Pagination[notificationentity.Notification], error) {
	return nil, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	failing bool
	updates map[string]map[string]string
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountPence int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return nil, apperrors.NewAppError(apperrors.ErrGateway, "gateway unavailable", nil)
	}
	g.calls++
	id := fmt.Sprintf("pi_%d", g.calls)
	return &payment.Intent{ID: id, ClientSecret: id + "_secret", AmountPence: amountPence, Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) UpdateIntentMetadata(ctx context.Context, intentID string, metadata map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updates == nil {
		g.updates = make(map[string]map[string]string)
	}
	g.updates[intentID] = metadata
	return nil
}

type fixture struct {
	store      *memoryStore
	service    *BookingService
	bookings   *fakeBookingRepo
	gateway    *fakeGateway
	notifier   *fakeNotifier
	membership *fakeMembership
	userID     uuid.UUID
	bayID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemoryStore()
	bookings := &fakeBookingRepo{store: store}
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}

	user := &membershipentity.User{Email: "golfer@example.com", Name: "Sam", Role: membershipentity.RoleMember}
	user.ID = uuid.New()
	membership := &fakeMembership{user: user}

	svc := NewBookingService(
		bookings,
		&fakeSlotRepo{store: store},
		membership,
		notifier,
		gateway,
	)
	return &fixture{
		store: store, service: svc, bookings: bookings, gateway: gateway, notifier: notifier,
		membership: membership, userID: user.ID, bayID: uuid.New(),
	}
}

var weekdayEvening = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) // Monday

func TestReserveCreatesIntentAndHoldsSlots(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)

	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)

	require.NotNil(t, res.ClientSecret)
	assert.Equal(t, int64(4500), res.AmountPence)
	assert.Equal(t, entity.BookingPending, res.Booking.Status)
	assert.Equal(t, slotentity.SlotPaymentHold, f.store.slotStatus(sl.ID))
	assert.Equal(t, 1, f.gateway.calls)
}

func TestReserveZeroTotalSkipsGateway(t *testing.T) {
	f := newFixture(t)
	cfg := billing.Tiers[billing.TierEagle]
	f.membership.ent = &membershipservice.Entitlement{
		User: f.membership.user, Config: &cfg, Active: true,
		PeriodStart: weekdayEvening.AddDate(0, 0, -7), PeriodEnd: weekdayEvening.AddDate(0, 0, 21),
	}
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)

	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)

	assert.Nil(t, res.ClientSecret)
	assert.Equal(t, int64(0), res.AmountPence)
	assert.Equal(t, entity.BookingConfirmed, res.Booking.Status)
	assert.Equal(t, slotentity.SlotBooked, f.store.slotStatus(sl.ID))
	assert.Equal(t, 0, f.gateway.calls)
	assert.Equal(t, []string{"booking_confirmed"}, f.notifier.sends)
}

func TestReserveGatewayFailureReleasesHold(t *testing.T) {
	f := newFixture(t)
	f.gateway.failing = true
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)

	_, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrGateway, appErr.Code)
	assert.Equal(t, slotentity.SlotAvailable, f.store.slotStatus(sl.ID))
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	won, lost := 0, 0
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrSlotUnavailable, appErr.Code)
		lost++
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)
	assert.Equal(t, slotentity.SlotPaymentHold, f.store.slotStatus(sl.ID))
}

func TestConfirmByPaymentRefIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)
	ref := *res.Booking.PaymentID

	require.NoError(t, f.service.ConfirmByPaymentRef(context.Background(), ref, "succeeded"))
	assert.Equal(t, slotentity.SlotBooked, f.store.slotStatus(sl.ID))

	// Replayed success event: no error, no second notification.
	require.NoError(t, f.service.ConfirmByPaymentRef(context.Background(), ref, "succeeded"))
	assert.Equal(t, []string{"booking_confirmed"}, f.notifier.sends)
}

func TestConfirmRetryHealsHeldSlots(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)
	ref := *res.Booking.PaymentID

	// A crash after the booking row flipped but before the slot transition:
	// the row reads confirmed while the slot is still held.
	f.store.mu.Lock()
	f.store.bookings[res.Booking.ID].Status = entity.BookingConfirmed
	f.store.mu.Unlock()
	require.Equal(t, slotentity.SlotPaymentHold, f.store.slotStatus(sl.ID))

	// The gateway redelivers the success event; the retry must book the
	// stranded hold instead of acking and leaving it behind.
	require.NoError(t, f.service.ConfirmByPaymentRef(context.Background(), ref, "succeeded"))
	assert.Equal(t, slotentity.SlotBooked, f.store.slotStatus(sl.ID))
}

func TestFailByPaymentRefReleasesAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)
	ref := *res.Booking.PaymentID

	require.NoError(t, f.service.FailByPaymentRef(context.Background(), ref, "payment_failed"))
	assert.Equal(t, slotentity.SlotAvailable, f.store.slotStatus(sl.ID))

	booking, err := f.service.GetByID(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingFailed, booking.Status)

	require.NoError(t, f.service.FailByPaymentRef(context.Background(), ref, "payment_failed"))
}

func TestCancelReleasesSlots(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)
	require.NoError(t, f.service.ConfirmByPaymentRef(context.Background(), *res.Booking.PaymentID, "succeeded"))

	require.NoError(t, f.service.Cancel(context.Background(), res.Booking.ID, f.userID, false))
	assert.Equal(t, slotentity.SlotAvailable, f.store.slotStatus(sl.ID))

	booking, err := f.service.GetByID(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingCancelled, booking.Status)
}

func TestCancelWithoutSlotsReportsCorruption(t *testing.T) {
	f := newFixture(t)
	repo := &fakeBookingRepo{store: f.store}
	orphan, err := repo.CreateWithSlots(context.Background(), &entity.Booking{
		UserID: f.userID, Status: entity.BookingPending,
	}, nil)
	require.NoError(t, err)

	err = f.service.Cancel(context.Background(), orphan.ID, f.userID, false)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNoSlots, appErr.Code)
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	res, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)

	err = f.service.Cancel(context.Background(), res.Booking.ID, uuid.New(), false)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func confirmedBooking(t *testing.T, f *fixture, starts ...time.Time) *entity.Booking {
	t.Helper()
	ids := make([]uuid.UUID, len(starts))
	for i, st := range starts {
		ids[i] = f.store.addSlot(f.bayID, st, slotentity.SlotAvailable).ID
	}
	res, err := f.service.Reserve(context.Background(), f.userID, ids)
	require.NoError(t, err)
	require.NoError(t, f.service.ConfirmByPaymentRef(context.Background(), *res.Booking.PaymentID, "succeeded"))
	booking, err := f.service.GetByID(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	return booking
}

func TestExtendRejectsInvalidHours(t *testing.T) {
	f := newFixture(t)
	booking := confirmedBooking(t, f, weekdayEvening)

	for _, hours := range []int{0, 3, -1} {
		_, err := f.service.Extend(context.Background(), booking.ID, hours)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrInvalidHours, appErr.Code)
	}
}

func TestExtendInsufficientSlotsReportsAvailableCount(t *testing.T) {
	f := newFixture(t)
	booking := confirmedBooking(t, f, weekdayEvening)
	// Only one follow-on slot exists but two hours are requested.
	f.store.addSlot(f.bayID, weekdayEvening.Add(time.Hour), slotentity.SlotAvailable)

	_, err := f.service.Extend(context.Background(), booking.ID, 2)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInsufficientSlots, appErr.Code)
	assert.Equal(t, map[string]any{"availableSlots": 1}, appErr.Details)
}

func TestExtendRejectsNonConsecutiveSlots(t *testing.T) {
	f := newFixture(t)
	booking := confirmedBooking(t, f, weekdayEvening)
	// A half-hour-offset slot sits inside the extension window but does not
	// butt against the booking's end.
	f.store.addSlot(f.bayID, weekdayEvening.Add(90*time.Minute), slotentity.SlotAvailable)

	_, err := f.service.Extend(context.Background(), booking.ID, 1)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNonConsecutiveSlots, appErr.Code)
}

func TestExtendIgnoresSlotsBeyondWindow(t *testing.T) {
	f := newFixture(t)
	booking := confirmedBooking(t, f, weekdayEvening)
	// One contiguous slot plus a free slot hours later: the distant slot must
	// not turn a shortfall into a consecutiveness complaint.
	f.store.addSlot(f.bayID, weekdayEvening.Add(time.Hour), slotentity.SlotAvailable)
	f.store.addSlot(f.bayID, weekdayEvening.Add(5*time.Hour), slotentity.SlotAvailable)

	_, err := f.service.Extend(context.Background(), booking.ID, 2)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInsufficientSlots, appErr.Code)
	assert.Equal(t, map[string]any{"availableSlots": 1}, appErr.Details)
}

func TestExtendBooksConsecutiveSlots(t *testing.T) {
	f := newFixture(t)
	booking := confirmedBooking(t, f, weekdayEvening)
	next := f.store.addSlot(f.bayID, weekdayEvening.Add(time.Hour), slotentity.SlotAvailable)
	after := f.store.addSlot(f.bayID, weekdayEvening.Add(2*time.Hour), slotentity.SlotAvailable)

	extended, err := f.service.Extend(context.Background(), booking.ID, 2)
	require.NoError(t, err)

	assert.Len(t, extended.Slots, 3)
	assert.Equal(t, slotentity.SlotBooked, f.store.slotStatus(next.ID))
	assert.Equal(t, slotentity.SlotBooked, f.store.slotStatus(after.ID))
}

func TestAdminDirectBookConfirmsWithoutPayment(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)

	booking, err := f.service.AdminDirectBook(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingConfirmed, booking.Status)
	assert.Equal(t, int64(0), booking.AmountPence)
	assert.Equal(t, slotentity.SlotBooked, f.store.slotStatus(sl.ID))
	assert.Equal(t, 0, f.gateway.calls)
}

func TestAdminDirectBookReleasesSlotsWhenCreateFails(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	f.bookings.failCreate = true

	_, err := f.service.AdminDirectBook(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.Error(t, err)
	assert.Equal(t, slotentity.SlotAvailable, f.store.slotStatus(sl.ID))
}

func TestAdminDirectBookReleasesSlotsWhenAttachFails(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	f.bookings.failAttach = true

	_, err := f.service.AdminDirectBook(context.Background(), f.userID, []uuid.UUID{sl.ID})
	require.Error(t, err)
	assert.Equal(t, slotentity.SlotAvailable, f.store.slotStatus(sl.ID))

	// The slotless booking row is cancelled, not left confirmed.
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, b := range f.store.bookings {
		assert.NotEqual(t, entity.BookingConfirmed, b.Status)
	}
}

func TestReleaseExpiredSweepsOnlyStaleHolds(t *testing.T) {
	f := newFixture(t)
	stale := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	fresh := f.store.addSlot(f.bayID, weekdayEvening.Add(time.Hour), slotentity.SlotAvailable)

	staleRes, err := f.service.Reserve(context.Background(), f.userID, []uuid.UUID{stale.ID})
	require.NoError(t, err)
	_, err = f.service.Reserve(context.Background(), f.userID, []uuid.UUID{fresh.ID})
	require.NoError(t, err)

	// Age the first booking past the hold TTL.
	f.store.mu.Lock()
	f.store.bookings[staleRes.Booking.ID].CreatedAt = time.Now().Add(-20 * time.Minute)
	f.store.mu.Unlock()

	released, err := f.service.ReleaseExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	assert.Equal(t, slotentity.SlotAvailable, f.store.slotStatus(stale.ID))
	assert.Equal(t, slotentity.SlotPaymentHold, f.store.slotStatus(fresh.ID))

	booking, err := f.service.GetByID(context.Background(), staleRes.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingCancelled, booking.Status)
}

func TestReleaseExpiredTagsTransientErrors(t *testing.T) {
	f := newFixture(t)
	f.bookings.staleErr = context.DeadlineExceeded

	_, err := f.service.ReleaseExpired(context.Background())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrStorageTransient, appErr.Code)

	f.bookings.staleErr = fmt.Errorf("relation does not exist")
	_, err = f.service.ReleaseExpired(context.Background())
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInternalServer, appErr.Code)
}

func TestQuoteCountsConsumedAllowance(t *testing.T) {
	f := newFixture(t)
	cfg := billing.Tiers[billing.TierPar]
	f.membership.ent = &membershipservice.Entitlement{
		User: f.membership.user, Config: &cfg, Active: true,
		PeriodStart: weekdayEvening.AddDate(0, 0, -7), PeriodEnd: weekdayEvening.AddDate(0, 0, 21),
	}

	// Four weekday hours already confirmed this period leave one allowance
	// hour; quoting two more covers one and charges one peak hour with the
	// 10% member discount: 4500 * 0.9 = 4050.
	confirmedBooking(t, f,
		weekdayEvening.AddDate(0, 0, -1),
		weekdayEvening.AddDate(0, 0, -1).Add(time.Hour),
		weekdayEvening.AddDate(0, 0, -2),
		weekdayEvening.AddDate(0, 0, -2).Add(time.Hour),
	)

	s1 := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)
	s2 := f.store.addSlot(f.bayID, weekdayEvening.Add(time.Hour), slotentity.SlotAvailable)

	quote, err := f.service.Quote(context.Background(), f.userID, []uuid.UUID{s1.ID, s2.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, quote.CoveredHours)
	assert.Equal(t, 1, quote.PaidHours)
	assert.Equal(t, int64(4050), quote.TotalPence)
}

func TestReserveFromIntentCreatesGuestBooking(t *testing.T) {
	f := newFixture(t)
	sl := f.store.addSlot(f.bayID, weekdayEvening, slotentity.SlotAvailable)

	intent := &payment.IntentEvent{
		ID:     "pi_guest",
		Amount: 4500,
		Metadata: map[string]string{
			"is_guest":    "true",
			"slot_ids":    sl.ID.String(),
			"guest_name":  "Visitor",
			"guest_email": "visitor@example.com",
		},
	}
	require.NoError(t, f.service.ReserveFromIntent(context.Background(), intent))

	assert.Equal(t, slotentity.SlotPaymentHold, f.store.slotStatus(sl.ID))

	booking, err := f.service.GetByID(context.Background(), mustFindByPaymentRef(t, f, "pi_guest"))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingPending, booking.Status)
	assert.Contains(t, f.gateway.updates["pi_guest"], "booking_id")
}

func mustFindByPaymentRef(t *testing.T, f *fixture, ref string) uuid.UUID {
	t.Helper()
	repo := &fakeBookingRepo{store: f.store}
	b, err := repo.GetByPaymentRef(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.ID
}
