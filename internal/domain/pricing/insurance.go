package pricing

import (
	"time"

	"github.com/google/uuid"
)

// InsuranceType is a tenant-owned coverage tier.
type InsuranceType struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Name             string
	PricePerDayCents int64
	DeductibleCents  int64
	IsDefault        bool
	CreatedAt        time.Time
}

// PriceInsurance returns price_per_day × rentalDays, or 0 when no insurance
// was selected. An unknown id is handed in as nil and prices as no coverage.
func PriceInsurance(ins *InsuranceType, rentalDays int) int64 {
	if ins == nil {
		return 0
	}
	return ins.PricePerDayCents * int64(rentalDays)
}
