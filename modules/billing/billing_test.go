package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// 2026-03-02 is a Monday.
	weekdayMorning = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	weekdayEvening = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	// 2026-03-07 is a Saturday.
	saturdayMorning = time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
)

func tierSnapshot(t Tier, usedHours int) Snapshot {
	cfg := Tiers[t]
	return Snapshot{Config: &cfg, Active: true, UsedHours: usedHours}
}

func TestRateFor(t *testing.T) {
	assert.Equal(t, int64(3500), StandardRates.RateFor(weekdayMorning))
	assert.Equal(t, int64(4500), StandardRates.RateFor(weekdayEvening))
	assert.Equal(t, int64(4500), StandardRates.RateFor(saturdayMorning))

	// The peak boundary is the slot's own start hour.
	fourPM := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	fivePM := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(3500), StandardRates.RateFor(fourPM))
	assert.Equal(t, int64(4500), StandardRates.RateFor(fivePM))
}

func TestComputeNonMember(t *testing.T) {
	q := Compute([]time.Time{weekdayEvening}, Snapshot{}, StandardRates, 30)
	assert.Equal(t, int64(4500), q.TotalPence)
	assert.Equal(t, 1, q.PaidHours)
	assert.Equal(t, 0, q.CoveredHours)
	assert.Equal(t, int64(0), q.DiscountPence)
}

func TestComputeAllowanceCoversEligibleHours(t *testing.T) {
	q := Compute([]time.Time{weekdayMorning, weekdayEvening}, tierSnapshot(TierPar, 0), StandardRates, 30)
	assert.Equal(t, int64(0), q.TotalPence)
	assert.Equal(t, 2, q.CoveredHours)
	assert.Equal(t, 0, q.PaidHours)
}

func TestComputeExhaustedAllowanceDiscounted(t *testing.T) {
	// Par has 10% off: 4500 * 0.9 = 4050.
	q := Compute([]time.Time{weekdayEvening}, tierSnapshot(TierPar, 5), StandardRates, 30)
	assert.Equal(t, int64(4050), q.TotalPence)
	assert.Equal(t, int64(4500), q.SubtotalPence)
	assert.Equal(t, int64(450), q.DiscountPence)

	// Birdie has 15% off: 4500 * 0.85 = 3825.
	q = Compute([]time.Time{weekdayEvening}, tierSnapshot(TierBirdie, 10), StandardRates, 30)
	assert.Equal(t, int64(3825), q.TotalPence)
}

func TestComputeWeekendWithoutAccessIsPaid(t *testing.T) {
	// Par excludes weekends, so the allowance cannot absorb a Saturday hour
	// even when hours remain. The member discount still applies to the charge.
	q := Compute([]time.Time{saturdayMorning}, tierSnapshot(TierPar, 0), StandardRates, 30)
	assert.Equal(t, 0, q.CoveredHours)
	assert.Equal(t, 1, q.PaidHours)
	assert.Equal(t, int64(4050), q.TotalPence)

	// Birdie includes weekends, so the same hour is covered.
	q = Compute([]time.Time{saturdayMorning}, tierSnapshot(TierBirdie, 0), StandardRates, 30)
	assert.Equal(t, 1, q.CoveredHours)
	assert.Equal(t, int64(0), q.TotalPence)
}

func TestComputePartialAllowance(t *testing.T) {
	// One hour of allowance left, three weekday hours booked: one covered,
	// two paid at mixed rates (3500 + 4500) with 10% off.
	starts := []time.Time{weekdayMorning, weekdayMorning.Add(time.Hour), weekdayEvening}
	q := Compute(starts, tierSnapshot(TierPar, 4), StandardRates, 30)
	assert.Equal(t, 1, q.CoveredHours)
	assert.Equal(t, 2, q.PaidHours)
	assert.Equal(t, int64(8000), q.SubtotalPence)
	assert.Equal(t, int64(7200), q.TotalPence)
}

func TestComputeInactiveMembershipMatchesNonMember(t *testing.T) {
	cfg := Tiers[TierEagle]
	cancelled := Snapshot{Config: &cfg, Active: false, UsedHours: 0}
	starts := []time.Time{weekdayMorning, saturdayMorning}

	got := Compute(starts, cancelled, StandardRates, 30)
	want := Compute(starts, Snapshot{}, StandardRates, 30)
	assert.Equal(t, want, got)
}

func TestComputeZeroDiscountParityWithExhaustedAllowance(t *testing.T) {
	// With no discount in play, a member past their allowance pays exactly
	// the non-member price.
	cfg := TierConfig{Tier: "flat", IncludedHours: 2, DiscountPercent: 0, WeekendAccess: true}
	member := Snapshot{Config: &cfg, Active: true, UsedHours: 2}
	starts := []time.Time{weekdayMorning, weekdayEvening}

	assert.Equal(t,
		Compute(starts, Snapshot{}, StandardRates, 30).TotalPence,
		Compute(starts, member, StandardRates, 30).TotalPence,
	)
}

func TestComputeEmptyBasket(t *testing.T) {
	q := Compute(nil, tierSnapshot(TierEagle, 0), StandardRates, 30)
	assert.Equal(t, Quote{}, q)
}

func TestComputeMinimumChargeClamp(t *testing.T) {
	cheap := RateTable{PeakPence: 20, OffPeakPence: 10, PeakStartHour: 17}
	q := Compute([]time.Time{weekdayMorning}, Snapshot{}, cheap, 30)
	assert.Equal(t, int64(30), q.TotalPence)

	// Zero stays zero: the clamp only applies to positive totals.
	q = Compute([]time.Time{weekdayMorning}, tierSnapshot(TierEagle, 0), cheap, 30)
	assert.Equal(t, int64(0), q.TotalPence)
}

func TestComputeMonotonicInBasketSize(t *testing.T) {
	snap := tierSnapshot(TierPar, 3)
	starts := []time.Time{}
	prev := int64(0)
	for i := 0; i < 8; i++ {
		starts = append(starts, weekdayMorning.Add(time.Duration(i)*time.Hour))
		total := Compute(starts, snap, StandardRates, 30).TotalPence
		assert.GreaterOrEqual(t, total, prev)
		prev = total
	}
}

func TestEligibleHours(t *testing.T) {
	starts := []time.Time{weekdayMorning, weekdayEvening, saturdayMorning}

	par := Tiers[TierPar]
	birdie := Tiers[TierBirdie]
	assert.Equal(t, 2, EligibleHours(starts, &par))
	assert.Equal(t, 3, EligibleHours(starts, &birdie))
	assert.Equal(t, 0, EligibleHours(starts, nil))
}

func TestBindPriceRefs(t *testing.T) {
	byRef := BindPriceRefs("price_par", "price_birdie", "price_eagle")

	require.Equal(t, TierBirdie, byRef["price_birdie"])
	assert.Equal(t, "price_eagle", Tiers[TierEagle].PriceRef)
}
