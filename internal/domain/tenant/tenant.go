package tenant

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the tenant account status.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
)

// Tenant is an organization renting out vehicles. Pricing rules, extras,
// insurance tiers, locations and discount codes all belong to exactly one
// tenant; the booking engine reads the tax rate and fallback daily rate from
// here.
type Tenant struct {
	ID                    uuid.UUID
	Name                  string
	Status                Status
	Currency              string
	TaxRate               decimal.Decimal // e.g. 0.24 for 24% VAT
	DefaultDailyRateCents int64           // applied to days no pricing rule covers
	MonthlyContractLimit  int             // bookings per calendar month, 0 = unlimited
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsActive reports whether the tenant may accept new reservations.
func (t *Tenant) IsActive() bool { return t.Status == StatusActive }

// WithinContractLimit reports whether usedThisMonth leaves room for one more
// booking under the tenant's monthly contract quota.
func (t *Tenant) WithinContractLimit(usedThisMonth int) bool {
	return t.MonthlyContractLimit == 0 || usedThisMonth < t.MonthlyContractLimit
}

// PaymentMethod configures how much of the total is collected at booking time.
type PaymentMethod struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	Name                string
	RequiresFullPayment bool
	DepositPercent      decimal.Decimal // ignored when RequiresFullPayment
	MinimumDepositCents int64           // floor for percentage deposits, 0 = no floor
	IsActive            bool
}
