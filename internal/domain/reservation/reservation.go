package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// PaymentStatus tracks how much of the total has been settled.
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentPaid        PaymentStatus = "paid"
)

// Blocking reports whether a reservation in this status holds its vehicle.
// Cancelled, no-show and completed reservations release the interval.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

// Customer carries the renter's identity fields.
type Customer struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	DriverLicense string
}

// Reservation is the aggregate root for a customer's claim on a vehicle over
// a half-open date interval, with a frozen price breakdown.
type Reservation struct {
	id                uuid.UUID
	tenantID          uuid.UUID
	vehicleID         uuid.UUID
	categoryID        uuid.UUID
	bookingNumber     string
	period            shared.DateRange
	pickupTime        string // HH:MM, display only
	dropoffTime       string
	pickupLocationID  uuid.UUID
	dropoffLocationID uuid.UUID
	customer          Customer
	breakdown         pricing.Breakdown
	depositCents      int64
	amountPaidCents   int64
	insuranceID       *uuid.UUID
	discountCodeID    *uuid.UUID
	paymentMethodID   *uuid.UUID
	paymentStatus     PaymentStatus
	status            Status
	expiresAt         time.Time
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

// NewReservation creates a pending reservation that expires if not confirmed
// within holdFor.
func NewReservation(
	tenantID, vehicleID, categoryID uuid.UUID,
	period shared.DateRange,
	pickupTime, dropoffTime string,
	pickupLocationID, dropoffLocationID uuid.UUID,
	customer Customer,
	breakdown pricing.Breakdown,
	depositCents int64,
	insuranceID, discountCodeID, paymentMethodID *uuid.UUID,
	holdFor time.Duration,
) *Reservation {
	now := time.Now().UTC()
	id := uuid.New()
	return &Reservation{
		id:                id,
		tenantID:          tenantID,
		vehicleID:         vehicleID,
		categoryID:        categoryID,
		bookingNumber:     BookingNumber(id),
		period:            period,
		pickupTime:        pickupTime,
		dropoffTime:       dropoffTime,
		pickupLocationID:  pickupLocationID,
		dropoffLocationID: dropoffLocationID,
		customer:          customer,
		breakdown:         breakdown,
		depositCents:      depositCents,
		insuranceID:       insuranceID,
		discountCodeID:    discountCodeID,
		paymentMethodID:   paymentMethodID,
		paymentStatus:     PaymentUnpaid,
		status:            StatusPending,
		expiresAt:         now.Add(holdFor),
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}
}

// BookingNumber derives the human-readable reference from a reservation id.
func BookingNumber(id uuid.UUID) string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// --- State transitions ---

// RecordPayment applies an acknowledged payment and confirms a pending
// reservation. Amounts accumulate; the payment status reflects whether the
// total is fully covered.
func (r *Reservation) RecordPayment(amountCents int64) error {
	if amountCents <= 0 {
		return shared.NewValidationError("payment amount must be positive")
	}
	if r.status != StatusPending && r.status != StatusConfirmed {
		return shared.NewInvalidStateError(string(r.status), string(StatusConfirmed))
	}
	r.amountPaidCents += amountCents
	if r.amountPaidCents >= r.breakdown.TotalCents {
		r.paymentStatus = PaymentPaid
	} else {
		r.paymentStatus = PaymentDepositPaid
	}
	r.status = StatusConfirmed
	r.touch()
	return nil
}

// StartRental marks the vehicle as picked up.
func (r *Reservation) StartRental() error {
	if r.status != StatusConfirmed {
		return shared.NewInvalidStateError(string(r.status), string(StatusInProgress))
	}
	r.status = StatusInProgress
	r.touch()
	return nil
}

// Complete marks the vehicle as returned.
func (r *Reservation) Complete() error {
	if r.status != StatusInProgress {
		return shared.NewInvalidStateError(string(r.status), string(StatusCompleted))
	}
	r.status = StatusCompleted
	r.touch()
	return nil
}

// Cancel releases the reservation. Allowed any time before pickup.
func (r *Reservation) Cancel() error {
	if r.status != StatusPending && r.status != StatusConfirmed {
		return shared.NewInvalidStateError(string(r.status), string(StatusCancelled))
	}
	r.status = StatusCancelled
	r.touch()
	return nil
}

// MarkNoShow records that the customer never picked up the vehicle.
func (r *Reservation) MarkNoShow() error {
	if r.status != StatusConfirmed {
		return shared.NewInvalidStateError(string(r.status), string(StatusNoShow))
	}
	r.status = StatusNoShow
	r.touch()
	return nil
}

// Expire releases an unconfirmed reservation past its hold window.
func (r *Reservation) Expire(now time.Time) error {
	if r.status != StatusPending {
		return shared.NewInvalidStateError(string(r.status), string(StatusCancelled))
	}
	if now.Before(r.expiresAt) {
		return shared.NewValidationError(fmt.Sprintf("reservation %s has not expired yet", r.bookingNumber))
	}
	r.status = StatusCancelled
	r.touch()
	return nil
}

// IsExpired reports whether a pending reservation's hold window has passed.
// Expired pendings no longer block the vehicle even before the sweep runs.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.status == StatusPending && now.After(r.expiresAt)
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reservation) IncrementVersion() {
	r.version++
	r.touch()
}

func (r *Reservation) touch() { r.updatedAt = time.Now().UTC() }

// AmountRemainingCents is what the customer still owes.
func (r *Reservation) AmountRemainingCents() int64 {
	return shared.ClampNonNegative(r.breakdown.TotalCents - r.amountPaidCents)
}

// --- Getters ---

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) TenantID() uuid.UUID         { return r.tenantID }
func (r *Reservation) VehicleID() uuid.UUID        { return r.vehicleID }
func (r *Reservation) CategoryID() uuid.UUID       { return r.categoryID }
func (r *Reservation) Number() string              { return r.bookingNumber }
func (r *Reservation) Period() shared.DateRange    { return r.period }
func (r *Reservation) PickupTime() string          { return r.pickupTime }
func (r *Reservation) DropoffTime() string         { return r.dropoffTime }
func (r *Reservation) PickupLocationID() uuid.UUID { return r.pickupLocationID }
func (r *Reservation) DropoffLocationID() uuid.UUID { return r.dropoffLocationID }
func (r *Reservation) Customer() Customer          { return r.customer }
func (r *Reservation) Breakdown() pricing.Breakdown { return r.breakdown }
func (r *Reservation) DepositCents() int64         { return r.depositCents }
func (r *Reservation) AmountPaidCents() int64      { return r.amountPaidCents }
func (r *Reservation) InsuranceID() *uuid.UUID     { return r.insuranceID }
func (r *Reservation) DiscountCodeID() *uuid.UUID  { return r.discountCodeID }
func (r *Reservation) PaymentMethodID() *uuid.UUID { return r.paymentMethodID }
func (r *Reservation) PaymentStatus() PaymentStatus { return r.paymentStatus }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) ExpiresAt() time.Time        { return r.expiresAt }
func (r *Reservation) Version() int64              { return r.version }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time        { return r.updatedAt }

// Reconstitute rebuilds a Reservation from persisted data.
func Reconstitute(
	id, tenantID, vehicleID, categoryID uuid.UUID,
	bookingNumber string,
	period shared.DateRange,
	pickupTime, dropoffTime string,
	pickupLocationID, dropoffLocationID uuid.UUID,
	customer Customer,
	breakdown pricing.Breakdown,
	depositCents, amountPaidCents int64,
	insuranceID, discountCodeID, paymentMethodID *uuid.UUID,
	paymentStatus PaymentStatus,
	status Status,
	expiresAt time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                id,
		tenantID:          tenantID,
		vehicleID:         vehicleID,
		categoryID:        categoryID,
		bookingNumber:     bookingNumber,
		period:            period,
		pickupTime:        pickupTime,
		dropoffTime:       dropoffTime,
		pickupLocationID:  pickupLocationID,
		dropoffLocationID: dropoffLocationID,
		customer:          customer,
		breakdown:         breakdown,
		depositCents:      depositCents,
		amountPaidCents:   amountPaidCents,
		insuranceID:       insuranceID,
		discountCodeID:    discountCodeID,
		paymentMethodID:   paymentMethodID,
		paymentStatus:     paymentStatus,
		status:            status,
		expiresAt:         expiresAt,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}
