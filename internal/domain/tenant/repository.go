package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for tenants and their payment
// methods. Both are read-only from the booking engine's perspective.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*PaymentMethod, error)

	// CountBookingsInMonth returns how many reservations the tenant created
	// in the calendar month containing at. Used for contract quota checks.
	CountBookingsInMonth(ctx context.Context, tenantID uuid.UUID, at time.Time) (int, error)
}
