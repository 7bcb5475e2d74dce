package discount

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for discount codes.
type Repository interface {
	Save(ctx context.Context, c *Code) error

	// FindByCode performs a case-insensitive lookup within the tenant.
	// Returns (nil, nil) when no such code exists.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Code, error)

	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Code, error)

	// Redeem atomically increments times_used, refusing when the usage quota
	// is already exhausted. It must run inside the caller's reservation
	// transaction so a failed booking never consumes a redemption.
	Redeem(ctx context.Context, codeID uuid.UUID) error
}
