package pricing

import (
	"time"

	"github.com/google/uuid"
)

// Location is a tenant-owned pickup/drop-off station with optional surcharges.
type Location struct {
	ID                    uuid.UUID
	TenantID              uuid.UUID
	Name                  string
	ExtraPickupFeeCents   int64
	ExtraDeliveryFeeCents int64
	CreatedAt             time.Time
}

// LocationFees sums the pickup surcharge of the pickup location and the
// delivery surcharge of the drop-off location. The two are distinct cost
// centers: both apply even when pickup and drop-off are the same location.
func LocationFees(pickup, dropoff *Location) int64 {
	var fees int64
	if pickup != nil {
		fees += pickup.ExtraPickupFeeCents
	}
	if dropoff != nil {
		fees += dropoff.ExtraDeliveryFeeCents
	}
	return fees
}
