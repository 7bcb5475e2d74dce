package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/drivehub/service-booking/internal/domain/shared"
	"github.com/drivehub/service-booking/internal/domain/tenant"
)

// Breakdown is the full price composition of a rental. BaseCents already
// includes any weekly/monthly volume discount; DiscountCents is the discount
// code amount only.
type Breakdown struct {
	RentalDays          int
	BaseCents           int64
	VolumeDiscountCents int64
	ExtrasCents         int64
	InsuranceCents      int64
	LocationFeeCents    int64
	DiscountCents       int64
	TaxCents            int64
	TotalCents          int64
}

// Subtotal is the discount engine's input: every component except the
// discount itself and tax.
func (b Breakdown) Subtotal() int64 {
	return b.BaseCents + b.ExtrasCents + b.InsuranceCents + b.LocationFeeCents
}

// Compose combines the component amounts into a taxed total. The pre-tax sum
// is floored at zero before tax so an oversized fixed discount can never
// produce a negative invoice.
func Compose(base BasePrice, extrasCents, insuranceCents, locationFeeCents, discountCents int64, rentalDays int, taxRate decimal.Decimal) Breakdown {
	beforeTax := shared.ClampNonNegative(base.BaseCents - discountCents + extrasCents + insuranceCents + locationFeeCents)
	tax := shared.RateOf(beforeTax, taxRate)

	return Breakdown{
		RentalDays:          rentalDays,
		BaseCents:           base.BaseCents,
		VolumeDiscountCents: base.VolumeDiscountCents,
		ExtrasCents:         extrasCents,
		InsuranceCents:      insuranceCents,
		LocationFeeCents:    locationFeeCents,
		DiscountCents:       discountCents,
		TaxCents:            tax,
		TotalCents:          beforeTax + tax,
	}
}

// Deposit returns the amount due at booking time under the given payment
// method: the full total when the method requires it, otherwise the
// configured percentage raised to the method's minimum deposit floor.
// A nil method means payment is settled out of band; nothing is due now.
func Deposit(totalCents int64, method *tenant.PaymentMethod) int64 {
	if method == nil {
		return 0
	}
	if method.RequiresFullPayment {
		return totalCents
	}
	deposit := shared.PercentOf(totalCents, method.DepositPercent)
	if method.MinimumDepositCents > 0 && deposit < method.MinimumDepositCents {
		deposit = method.MinimumDepositCents
	}
	if deposit > totalCents {
		deposit = totalCents
	}
	return deposit
}
