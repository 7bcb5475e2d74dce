package pricing

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

// Rule is a dated daily rate scoped to either one vehicle or one vehicle
// category. Exactly one of VehicleID/CategoryID is set.
type Rule struct {
	ID                     uuid.UUID
	TenantID               uuid.UUID
	VehicleID              *uuid.UUID
	CategoryID             *uuid.UUID
	ValidFrom              shared.Date // inclusive
	ValidUntil             shared.Date // inclusive
	PricePerDayCents       int64
	MinRentalDays          int
	WeeklyDiscountPercent  decimal.Decimal // 0 = no weekly discount
	MonthlyDiscountPercent decimal.Decimal // 0 = no monthly discount
	Priority               int
	CreatedAt              time.Time
}

// IsVehicleScoped reports whether the rule targets a single vehicle.
func (r *Rule) IsVehicleScoped() bool { return r.VehicleID != nil }

// Covers reports whether day falls inside the rule's validity interval.
func (r *Rule) Covers(day shared.Date) bool {
	return !day.Before(r.ValidFrom) && !r.ValidUntil.Before(day)
}

// outranks reports whether r wins over other for the same day. Highest
// priority wins; on equal priority a vehicle-scoped rule beats a
// category-scoped one; a final byte-order comparison on the rule ID keeps the
// outcome independent of fetch order.
func (r *Rule) outranks(other *Rule) bool {
	if r.Priority != other.Priority {
		return r.Priority > other.Priority
	}
	if r.IsVehicleScoped() != other.IsVehicleScoped() {
		return r.IsVehicleScoped()
	}
	return bytes.Compare(r.ID[:], other.ID[:]) < 0
}

// BasePrice is the output of rule resolution for one rental interval.
type BasePrice struct {
	BaseCents           int64 // per-day sum minus any volume discount, never negative
	VolumeDiscountCents int64
	// PickupRule is the rule covering the pickup day, if any. It decides
	// which weekly/monthly discount percents apply to the whole rental.
	PickupRule *Rule
}

// Volume discount thresholds in rental days.
const (
	weeklyThresholdDays  = 7
	monthlyThresholdDays = 30
)

// ResolveBase computes the undiscounted per-day sum for the interval and then
// applies at most one volume discount. For each calendar day the winning rule
// supplies the rate; days no rule covers fall back to defaultDailyRateCents.
// Rules whose MinRentalDays exceeds the rental duration are ineligible for
// every day of that rental.
//
// The weekly/monthly percents come from the rule covering the pickup day:
// monthly applies at >= 30 days when that rule defines it, else weekly at
// >= 7 days. The two are mutually exclusive.
func ResolveBase(rules []*Rule, defaultDailyRateCents int64, rng shared.DateRange) BasePrice {
	days := rng.Days()

	eligible := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.MinRentalDays > days {
			continue
		}
		eligible = append(eligible, r)
	}

	var subtotal int64
	rng.EachDay(func(day shared.Date) {
		if w := winningRule(eligible, day); w != nil {
			subtotal += w.PricePerDayCents
			return
		}
		subtotal += defaultDailyRateCents
	})

	result := BasePrice{BaseCents: subtotal, PickupRule: winningRule(eligible, rng.From)}
	if result.PickupRule == nil {
		return result
	}

	switch {
	case days >= monthlyThresholdDays && result.PickupRule.MonthlyDiscountPercent.IsPositive():
		result.VolumeDiscountCents = shared.PercentOf(subtotal, result.PickupRule.MonthlyDiscountPercent)
	case days >= weeklyThresholdDays && result.PickupRule.WeeklyDiscountPercent.IsPositive():
		result.VolumeDiscountCents = shared.PercentOf(subtotal, result.PickupRule.WeeklyDiscountPercent)
	}

	result.BaseCents = shared.ClampNonNegative(subtotal - result.VolumeDiscountCents)
	return result
}

// winningRule returns the highest-ranked rule covering day, or nil.
func winningRule(rules []*Rule, day shared.Date) *Rule {
	var best *Rule
	for _, r := range rules {
		if !r.Covers(day) {
			continue
		}
		if best == nil || r.outranks(best) {
			best = r
		}
	}
	return best
}
