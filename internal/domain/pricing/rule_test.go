package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

func day(t *testing.T, s string) shared.Date {
	t.Helper()
	d, err := shared.ParseDate(s)
	require.NoError(t, err)
	return d
}

func span(t *testing.T, from, until string) shared.DateRange {
	t.Helper()
	r, err := shared.NewDateRange(day(t, from), day(t, until))
	require.NoError(t, err)
	return r
}

func categoryRule(t *testing.T, from, until string, rateCents int64) *Rule {
	t.Helper()
	catID := uuid.New()
	return &Rule{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		CategoryID:       &catID,
		ValidFrom:        day(t, from),
		ValidUntil:       day(t, until),
		PricePerDayCents: rateCents,
	}
}

func TestResolveBase_DefaultFallback(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-06-04")

	base := ResolveBase(nil, 5000, rng)
	assert.Equal(t, int64(15000), base.BaseCents)
	assert.Zero(t, base.VolumeDiscountCents)
	assert.Nil(t, base.PickupRule)
}

func TestResolveBase_RuleCoversSomeDays(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-06-05")

	// covers the first two days only; the rest falls back to the default
	r := categoryRule(t, "2024-05-01", "2024-06-02", 8000)

	base := ResolveBase([]*Rule{r}, 5000, rng)
	assert.Equal(t, int64(8000+8000+5000+5000), base.BaseCents)
	assert.Same(t, r, base.PickupRule)
}

func TestResolveBase_PriorityAndScope(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-06-04")
	vehicleID := uuid.New()

	catRule := categoryRule(t, "2024-01-01", "2024-12-31", 5000)
	vehRule := &Rule{
		ID:               uuid.New(),
		VehicleID:        &vehicleID,
		ValidFrom:        day(t, "2024-01-01"),
		ValidUntil:       day(t, "2024-12-31"),
		PricePerDayCents: 7000,
	}

	// same priority: vehicle scope beats category scope
	base := ResolveBase([]*Rule{catRule, vehRule}, 0, rng)
	assert.Equal(t, int64(21000), base.BaseCents)

	// higher priority beats narrower scope
	catRule.Priority = 10
	base = ResolveBase([]*Rule{catRule, vehRule}, 0, rng)
	assert.Equal(t, int64(15000), base.BaseCents)

	// outcome does not depend on slice order
	base = ResolveBase([]*Rule{vehRule, catRule}, 0, rng)
	assert.Equal(t, int64(15000), base.BaseCents)
}

func TestResolveBase_MinRentalDaysGate(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-06-04") // 3 days

	r := categoryRule(t, "2024-01-01", "2024-12-31", 3000)
	r.MinRentalDays = 7

	// the long-rental rate never applies to a short rental, not even for
	// single days
	base := ResolveBase([]*Rule{r}, 5000, rng)
	assert.Equal(t, int64(15000), base.BaseCents)
	assert.Nil(t, base.PickupRule)
}

func TestResolveBase_WeeklyDiscount(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-06-08") // 7 days

	r := categoryRule(t, "2024-01-01", "2024-12-31", 10000)
	r.WeeklyDiscountPercent = decimal.NewFromInt(10)

	base := ResolveBase([]*Rule{r}, 0, rng)
	assert.Equal(t, int64(7000), base.VolumeDiscountCents)
	assert.Equal(t, int64(63000), base.BaseCents)
}

func TestResolveBase_MonthlyBeatsWeekly(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-07-01") // 30 days

	r := categoryRule(t, "2024-01-01", "2024-12-31", 10000)
	r.WeeklyDiscountPercent = decimal.NewFromInt(10)
	r.MonthlyDiscountPercent = decimal.NewFromInt(20)

	base := ResolveBase([]*Rule{r}, 0, rng)
	assert.Equal(t, int64(60000), base.VolumeDiscountCents)
	assert.Equal(t, int64(240000), base.BaseCents)
}

func TestResolveBase_NoDiscountBelowThreshold(t *testing.T) {
	rng := span(t, "2024-06-01", "2024-06-07") // 6 days

	r := categoryRule(t, "2024-01-01", "2024-12-31", 10000)
	r.WeeklyDiscountPercent = decimal.NewFromInt(10)

	base := ResolveBase([]*Rule{r}, 0, rng)
	assert.Zero(t, base.VolumeDiscountCents)
	assert.Equal(t, int64(60000), base.BaseCents)
}

func TestRuleCovers(t *testing.T) {
	r := categoryRule(t, "2024-06-01", "2024-06-30", 1000)

	assert.True(t, r.Covers(day(t, "2024-06-01")))
	assert.True(t, r.Covers(day(t, "2024-06-30")), "valid_until is inclusive")
	assert.False(t, r.Covers(day(t, "2024-05-31")))
	assert.False(t, r.Covers(day(t, "2024-07-01")))
}
