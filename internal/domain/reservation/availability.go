package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

// BlockReason explains why a vehicle is unavailable for an interval.
type BlockReason string

const (
	BlockReasonBooked      BlockReason = "booked"
	BlockReasonMaintenance BlockReason = "maintenance"
	BlockReasonBlocked     BlockReason = "blocked"
)

// AvailabilityBlock is the authoritative record that a vehicle is taken for a
// half-open interval. A booked block is created in the same transaction as
// the reservation it backs and deleted when that reservation releases.
type AvailabilityBlock struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	VehicleID     uuid.UUID
	ReservationID *uuid.UUID // nil for maintenance/manual blocks
	Period        shared.DateRange
	Reason        BlockReason
	CreatedAt     time.Time
}

// NewBookedBlock builds the availability block backing a reservation.
func NewBookedBlock(r *Reservation) *AvailabilityBlock {
	resID := r.ID()
	return &AvailabilityBlock{
		ID:            uuid.New(),
		TenantID:      r.TenantID(),
		VehicleID:     r.VehicleID(),
		ReservationID: &resID,
		Period:        r.Period(),
		Reason:        BlockReasonBooked,
		CreatedAt:     time.Now().UTC(),
	}
}

// ExtraLine is a priced snapshot of one selected extra. Option prices may
// change later; the line is immutable once written.
type ExtraLine struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	ExtraOptionID uuid.UUID
	Description   string
	Quantity      int
	UnitCents     int64
	TotalCents    int64
	IsPerDay      bool
	CreatedAt     time.Time
}
