package pricing

import (
	"time"

	"github.com/google/uuid"
)

// ExtraOption is a tenant-owned add-on (GPS, child seat, roof box...).
type ExtraOption struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Name             string
	PricePerDayCents int64
	IsOneTimeFee     bool // charged once regardless of rental duration
	IsActive         bool
	CreatedAt        time.Time
}

// ExtraSelection is the caller's choice of one extra and a quantity.
type ExtraSelection struct {
	ExtraID  uuid.UUID
	Quantity int
}

// ExtraCharge is a priced extra, the template for a reservation line item.
type ExtraCharge struct {
	Option     *ExtraOption
	Quantity   int
	UnitCents  int64
	TotalCents int64
	PerDay     bool
}

// SkippedExtra records a selection that could not be priced. Skips are
// surfaced as warnings, never as booking failures.
type SkippedExtra struct {
	ExtraID uuid.UUID
	Reason  string
}

// PriceExtras prices each selection against the tenant's known options.
// Unknown or inactive ids and non-positive quantities are skipped; one-time
// fees charge unit × quantity, everything else unit × quantity × rentalDays.
func PriceExtras(options map[uuid.UUID]*ExtraOption, selections []ExtraSelection, rentalDays int) ([]ExtraCharge, []SkippedExtra) {
	var charges []ExtraCharge
	var skipped []SkippedExtra

	for _, sel := range selections {
		if sel.Quantity <= 0 {
			skipped = append(skipped, SkippedExtra{ExtraID: sel.ExtraID, Reason: "non-positive quantity"})
			continue
		}
		opt, ok := options[sel.ExtraID]
		if !ok {
			skipped = append(skipped, SkippedExtra{ExtraID: sel.ExtraID, Reason: "unknown extra option"})
			continue
		}
		if !opt.IsActive {
			skipped = append(skipped, SkippedExtra{ExtraID: sel.ExtraID, Reason: "extra option inactive"})
			continue
		}

		total := opt.PricePerDayCents * int64(sel.Quantity)
		if !opt.IsOneTimeFee {
			total *= int64(rentalDays)
		}
		charges = append(charges, ExtraCharge{
			Option:     opt,
			Quantity:   sel.Quantity,
			UnitCents:  opt.PricePerDayCents,
			TotalCents: total,
			PerDay:     !opt.IsOneTimeFee,
		})
	}
	return charges, skipped
}

// SumExtras totals a slice of priced extras.
func SumExtras(charges []ExtraCharge) int64 {
	var sum int64
	for _, c := range charges {
		sum += c.TotalCents
	}
	return sum
}
