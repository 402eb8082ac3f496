// Package billing prices a basket of hourly slots against the rate card and
// the booker's membership snapshot. It is pure: no storage, no clock, no
// gateway. Callers load the snapshot and slot times, billing does arithmetic.
package billing

import (
	"math"
	"time"
)

type Tier string

const (
	TierPar    Tier = "par"
	TierBirdie Tier = "birdie"
	TierEagle  Tier = "eagle"
)

// TierConfig describes what a membership tier grants per billing period.
type TierConfig struct {
	Tier            Tier
	IncludedHours   int
	DiscountPercent int
	WeekendAccess   bool
	PricePence      int64
	PriceRef        string
}

// Tiers is the standard tier catalogue. PriceRef values are bound to the
// gateway price identifiers at startup from configuration.
var Tiers = map[Tier]TierConfig{
	TierPar: {
		Tier:            TierPar,
		IncludedHours:   5,
		DiscountPercent: 10,
		WeekendAccess:   false,
		PricePence:      4999,
	},
	TierBirdie: {
		Tier:            TierBirdie,
		IncludedHours:   10,
		DiscountPercent: 15,
		WeekendAccess:   true,
		PricePence:      8999,
	},
	TierEagle: {
		Tier:            TierEagle,
		IncludedHours:   15,
		DiscountPercent: 20,
		WeekendAccess:   true,
		PricePence:      12999,
	},
}

// BindPriceRefs attaches gateway price identifiers to the catalogue and
// returns a lookup keyed by those identifiers, used when mapping subscription
// webhook events back to a tier.
func BindPriceRefs(par, birdie, eagle string) map[string]Tier {
	parCfg := Tiers[TierPar]
	parCfg.PriceRef = par
	Tiers[TierPar] = parCfg

	birdieCfg := Tiers[TierBirdie]
	birdieCfg.PriceRef = birdie
	Tiers[TierBirdie] = birdieCfg

	eagleCfg := Tiers[TierEagle]
	eagleCfg.PriceRef = eagle
	Tiers[TierEagle] = eagleCfg

	return map[string]Tier{
		par:    TierPar,
		birdie: TierBirdie,
		eagle:  TierEagle,
	}
}

// RateTable holds per-hour prices in pence. An hour is peak when it falls on
// a weekend or starts at PeakStartHour or later.
type RateTable struct {
	PeakPence     int64
	OffPeakPence  int64
	PeakStartHour int
}

var StandardRates = RateTable{
	PeakPence:     4500,
	OffPeakPence:  3500,
	PeakStartHour: 17,
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// RateFor prices a single slot by its own start time, so a basket straddling
// the peak boundary mixes rates per hour.
func (r RateTable) RateFor(start time.Time) int64 {
	if IsWeekend(start) || start.Hour() >= r.PeakStartHour {
		return r.PeakPence
	}
	return r.OffPeakPence
}

// Snapshot is the booker's membership state at quote time. Config is nil for
// non-members. UsedHours counts allowance-eligible hours already consumed in
// the current billing period.
type Snapshot struct {
	Config    *TierConfig
	Active    bool
	UsedHours int
}

func (s Snapshot) entitled() bool {
	return s.Active && s.Config != nil
}

// covers reports whether the membership allowance may absorb an hour starting
// at the given time. Tiers without weekend access pay full rate on weekends.
func (s Snapshot) covers(start time.Time) bool {
	if !s.entitled() {
		return false
	}
	return s.Config.WeekendAccess || !IsWeekend(start)
}

// Quote is the priced basket. TotalPence is what the gateway is asked to
// charge; zero means no payment is needed at all.
type Quote struct {
	TotalPence    int64 `json:"totalPence"`
	SubtotalPence int64 `json:"subtotalPence"`
	DiscountPence int64 `json:"discountPence"`
	CoveredHours  int   `json:"coveredHours"`
	PaidHours     int   `json:"paidHours"`
}

// Compute walks the slot start times in order, spending the remaining
// allowance on eligible hours first, then pricing the rest at the rate card
// with the member discount applied to the paid subtotal. A positive total is
// clamped up to minCharge.
func Compute(starts []time.Time, snap Snapshot, rates RateTable, minCharge int64) Quote {
	var q Quote

	remaining := 0
	if snap.entitled() {
		remaining = snap.Config.IncludedHours - snap.UsedHours
		if remaining < 0 {
			remaining = 0
		}
	}

	for _, start := range starts {
		if remaining > 0 && snap.covers(start) {
			remaining--
			q.CoveredHours++
			continue
		}
		q.SubtotalPence += rates.RateFor(start)
		q.PaidHours++
	}

	q.TotalPence = q.SubtotalPence
	if snap.entitled() && snap.Config.DiscountPercent > 0 && q.SubtotalPence > 0 {
		discounted := float64(q.SubtotalPence) * (1 - float64(snap.Config.DiscountPercent)/100)
		q.TotalPence = int64(math.Round(discounted))
		q.DiscountPence = q.SubtotalPence - q.TotalPence
	}

	if q.TotalPence > 0 && q.TotalPence < minCharge {
		q.TotalPence = minCharge
	}
	return q
}

// EligibleHours counts the hours in starts that a membership with the given
// config may charge against its allowance. Used when tallying consumed hours
// across existing bookings in a billing period.
func EligibleHours(starts []time.Time, cfg *TierConfig) int {
	if cfg == nil {
		return 0
	}
	n := 0
	for _, start := range starts {
		if cfg.WeekendAccess || !IsWeekend(start) {
			n++
		}
	}
	return n
}
