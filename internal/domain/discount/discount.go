package discount

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drivehub/service-booking/internal/domain/shared"
)

// Type represents how the discount value is interpreted.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// Code is the aggregate root for tenant discount codes. Codes are shared
// reference data except for the redemption counter, which is mutated
// atomically inside the reservation transaction.
type Code struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	code       string
	kind       Type
	value      int64 // percentage points for TypePercentage, cents for TypeFixed
	validFrom  *time.Time
	validUntil *time.Time
	maxUses    int // 0 = unlimited
	timesUsed  int
	isActive   bool
	createdAt  time.Time
	updatedAt  time.Time
}

// NewCode creates a discount code. The code string is stored uppercase;
// lookups are case-insensitive.
func NewCode(tenantID uuid.UUID, code string, kind Type, value int64, validFrom, validUntil *time.Time, maxUses int) (*Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewValidationError("discount code is required")
	}
	if kind != TypePercentage && kind != TypeFixed {
		return nil, shared.NewValidationError("discount type must be percentage or fixed")
	}
	if value <= 0 {
		return nil, shared.NewValidationError("discount value must be positive")
	}
	if kind == TypePercentage && value > 100 {
		return nil, shared.NewValidationError("percentage discount cannot exceed 100")
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return nil, shared.NewValidationError("valid_until must be after valid_from")
	}

	now := time.Now().UTC()
	return &Code{
		id:         uuid.New(),
		tenantID:   tenantID,
		code:       code,
		kind:       kind,
		value:      value,
		validFrom:  validFrom,
		validUntil: validUntil,
		maxUses:    maxUses,
		isActive:   true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Code from persistence.
func Reconstruct(id, tenantID uuid.UUID, code string, kind Type, value int64, validFrom, validUntil *time.Time, maxUses, timesUsed int, isActive bool, createdAt, updatedAt time.Time) *Code {
	return &Code{
		id: id, tenantID: tenantID, code: code, kind: kind, value: value,
		validFrom: validFrom, validUntil: validUntil,
		maxUses: maxUses, timesUsed: timesUsed, isActive: isActive,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Result is the outcome of applying a code against a subtotal. An invalid or
// exhausted code yields a Skipped result with a zero amount instead of an
// error; the booking proceeds without the discount.
type Result struct {
	Applied     bool
	AmountCents int64
	Code        *Code  // set only when Applied
	Reason      string // set only when skipped
}

// Skipped builds a non-applied result.
func Skipped(reason string) Result { return Result{Reason: reason} }

// Apply validates the code at the given instant and computes the discount for
// the subtotal. Checks run in order: active flag, validity window, usage
// quota. A fixed discount is capped at the subtotal.
func (c *Code) Apply(subtotalCents int64, now time.Time) Result {
	if !c.isActive {
		return Skipped("discount code is not active")
	}
	if c.validFrom != nil && now.Before(*c.validFrom) {
		return Skipped("discount code is not yet valid")
	}
	if c.validUntil != nil && now.After(*c.validUntil) {
		return Skipped("discount code has expired")
	}
	if c.maxUses > 0 && c.timesUsed >= c.maxUses {
		return Skipped("discount code has reached its usage limit")
	}

	var amount int64
	switch c.kind {
	case TypePercentage:
		amount = shared.PercentOf(subtotalCents, decimal.NewFromInt(c.value))
	case TypeFixed:
		amount = c.value
	}
	if amount > subtotalCents {
		amount = subtotalCents
	}

	return Result{Applied: true, AmountCents: amount, Code: c}
}

// Getters.
func (c *Code) ID() uuid.UUID          { return c.id }
func (c *Code) TenantID() uuid.UUID    { return c.tenantID }
func (c *Code) CodeString() string     { return c.code }
func (c *Code) Kind() Type             { return c.kind }
func (c *Code) Value() int64           { return c.value }
func (c *Code) ValidFrom() *time.Time  { return c.validFrom }
func (c *Code) ValidUntil() *time.Time { return c.validUntil }
func (c *Code) MaxUses() int           { return c.maxUses }
func (c *Code) TimesUsed() int         { return c.timesUsed }
func (c *Code) IsActive() bool         { return c.isActive }
func (c *Code) CreatedAt() time.Time   { return c.createdAt }
func (c *Code) UpdatedAt() time.Time   { return c.updatedAt }
