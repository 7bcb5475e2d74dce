package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

// Repository defines read operations for tenant-owned pricing reference data.
type Repository interface {
	// FindRulesIntersecting returns every rule of the tenant scoped to the
	// vehicle or its category whose validity interval intersects rng.
	FindRulesIntersecting(ctx context.Context, tenantID, vehicleID, categoryID uuid.UUID, rng shared.DateRange) ([]*Rule, error)

	// FindExtras returns the tenant's extra options for the given ids,
	// keyed by id. Missing ids are simply absent from the map.
	FindExtras(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*ExtraOption, error)

	// FindInsurance returns the insurance tier, or (nil, nil) when the id is
	// unknown to the tenant.
	FindInsurance(ctx context.Context, tenantID, insuranceID uuid.UUID) (*InsuranceType, error)

	// FindLocation returns the location or a NotFound domain error.
	FindLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*Location, error)
}
