package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/drivehub/service-booking/internal/domain/tenant"
)

// Category rate 50.00/day, 3 days, one-time extra 20.00, insurance 10.00/day,
// pickup fee 15.00, no discount, 24% VAT.
func TestCompose_ThreeDayRental(t *testing.T) {
	base := BasePrice{BaseCents: 15000}

	b := Compose(base, 2000, 3000, 1500, 0, 3, decimal.NewFromFloat(0.24))

	assert.Equal(t, 3, b.RentalDays)
	assert.Equal(t, int64(15000), b.BaseCents)
	assert.Equal(t, int64(2000), b.ExtrasCents)
	assert.Equal(t, int64(3000), b.InsuranceCents)
	assert.Equal(t, int64(1500), b.LocationFeeCents)
	assert.Equal(t, int64(21500), b.Subtotal())
	assert.Equal(t, int64(5160), b.TaxCents)
	assert.Equal(t, int64(26660), b.TotalCents)
}

func TestCompose_DiscountReducesTaxBase(t *testing.T) {
	base := BasePrice{BaseCents: 10000}

	b := Compose(base, 0, 0, 0, 1000, 2, decimal.NewFromFloat(0.24))

	assert.Equal(t, int64(1000), b.DiscountCents)
	assert.Equal(t, int64(2160), b.TaxCents) // 24% of 9000
	assert.Equal(t, int64(11160), b.TotalCents)
}

func TestCompose_OversizedDiscountClampsAtZero(t *testing.T) {
	base := BasePrice{BaseCents: 5000}

	b := Compose(base, 0, 0, 0, 99999, 1, decimal.NewFromFloat(0.24))

	assert.Zero(t, b.TaxCents)
	assert.Zero(t, b.TotalCents)
}

func TestDeposit(t *testing.T) {
	full := &tenant.PaymentMethod{ID: uuid.New(), RequiresFullPayment: true}
	assert.Equal(t, int64(26660), Deposit(26660, full))

	percent := &tenant.PaymentMethod{ID: uuid.New(), DepositPercent: decimal.NewFromInt(20)}
	assert.Equal(t, int64(5332), Deposit(26660, percent))

	t.Run("minimum floor", func(t *testing.T) {
		m := &tenant.PaymentMethod{ID: uuid.New(), DepositPercent: decimal.NewFromInt(10), MinimumDepositCents: 5000}
		assert.Equal(t, int64(5000), Deposit(26660, m))
	})

	t.Run("floor capped at total", func(t *testing.T) {
		m := &tenant.PaymentMethod{ID: uuid.New(), DepositPercent: decimal.NewFromInt(10), MinimumDepositCents: 5000}
		assert.Equal(t, int64(3000), Deposit(3000, m))
	})

	t.Run("no method means nothing due", func(t *testing.T) {
		assert.Zero(t, Deposit(26660, nil))
	})
}
