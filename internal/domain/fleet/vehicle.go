package fleet

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Vehicle is the rentable unit. The booking engine only needs its identity,
// category and tenant ownership; make/model/plate are carried for display.
type Vehicle struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CategoryID uuid.UUID
	Make       string
	Model      string
	Plate      string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines read operations for vehicles.
type Repository interface {
	// FindByID returns the vehicle only if it exists and belongs to the
	// tenant; otherwise a NotFound domain error.
	FindByID(ctx context.Context, tenantID, vehicleID uuid.UUID) (*Vehicle, error)
}
