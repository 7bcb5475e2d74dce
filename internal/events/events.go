package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics the booking service consumes and produces.
const (
	TopicPaymentEvents = "payment.events"
	TopicBookingEvents = "booking.events"
)

// Event types carried on payment.events.
const (
	PaymentConfirmed = "payment.confirmed"
	PaymentFailed    = "payment.failed"
)

// Event types carried on booking.events.
const (
	ReservationCreated   = "reservation.created"
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
	ReservationExpired   = "reservation.expired"
)

// EventSource identifies this service in outbound cloud events.
const EventSource = "service-booking"

// PaymentConfirmedEvent is emitted by the payment service once a charge
// for a reservation settles.
type PaymentConfirmedEvent struct {
	ReservationID         uuid.UUID `json:"reservation_id"`
	TenantID              uuid.UUID `json:"tenant_id"`
	AmountCents           int64     `json:"amount_cents"`
	ProviderTransactionID string    `json:"provider_transaction_id"`
	PaidAt                time.Time `json:"paid_at"`
}

// PaymentFailedEvent is emitted when a charge attempt is declined.
type PaymentFailedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	Reason        string    `json:"reason"`
}

// ReservationEvent is the payload for all outbound reservation lifecycle
// events. Consumers switch on the cloud event type.
type ReservationEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	BookingNumber string    `json:"booking_number"`
	TenantID      uuid.UUID `json:"tenant_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	Status        string    `json:"status"`
	TotalCents    int64     `json:"total_cents"`
	CustomerEmail string    `json:"customer_email"`
	OccurredAt    time.Time `json:"occurred_at"`
}
