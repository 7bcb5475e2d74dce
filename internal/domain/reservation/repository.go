package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

// Conflict identifies an existing reservation blocking a candidate interval.
type Conflict struct {
	ReservationID uuid.UUID
	BookingNumber string
	Period        shared.DateRange
}

// TxRunner executes fn inside a single serializable database transaction.
// Repositories called with the context fn receives participate in that
// transaction. The reservation-creation protocol, cancellation and the expiry
// sweep all run under it.
type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository defines persistence operations for reservations, their extra
// lines and their availability blocks.
type Repository interface {
	// Create inserts the reservation, its extra lines and its availability
	// block. Must be called inside a TxRunner transaction.
	Create(ctx context.Context, r *Reservation, lines []ExtraLine, block *AvailabilityBlock) error

	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Reservation, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Reservation, error)
	FindLines(ctx context.Context, reservationID uuid.UUID) ([]ExtraLine, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, status Status, page, limit int) ([]*Reservation, int64, error)

	// Update persists aggregate changes with optimistic locking on version.
	Update(ctx context.Context, r *Reservation) error

	// LockVehicle takes a row lock on the vehicle, serializing concurrent
	// reservation attempts for it. Must run inside a transaction; returns a
	// NotFound domain error when the vehicle does not belong to the tenant.
	LockVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) error

	// FindConflicts returns reservations whose availability blocks overlap
	// the candidate interval and whose status still blocks the vehicle.
	// Pending reservations past their expiry are treated as released.
	FindConflicts(ctx context.Context, tenantID, vehicleID uuid.UUID, period shared.DateRange, now time.Time) ([]Conflict, error)

	// FindDuplicate returns a blocking reservation by the same customer for
	// the same vehicle over an overlapping interval, or (nil, nil).
	FindDuplicate(ctx context.Context, tenantID, vehicleID uuid.UUID, customerEmail string, period shared.DateRange) (*Reservation, error)

	// ReleaseBlock deletes the availability block backing a reservation.
	ReleaseBlock(ctx context.Context, reservationID uuid.UUID) error

	// FindExpiredPending returns pending reservations whose hold window
	// passed before now, up to limit rows.
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Reservation, error)
}
