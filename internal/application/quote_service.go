package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/domain/discount"
	"github.com/drivehub/service-booking/internal/domain/fleet"
	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/shared"
	"github.com/drivehub/service-booking/internal/domain/tenant"
)

// ExtraSelectionDTO is one requested add-on.
type ExtraSelectionDTO struct {
	ExtraID  uuid.UUID `json:"extra_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required"`
}

// QuoteRequest describes the rental to price.
type QuoteRequest struct {
	VehicleID         uuid.UUID           `json:"vehicle_id" binding:"required"`
	PickupDate        string              `json:"pickup_date" binding:"required"`
	DropoffDate       string              `json:"dropoff_date" binding:"required"`
	PickupTime        string              `json:"pickup_time"`
	DropoffTime       string              `json:"dropoff_time"`
	PickupLocationID  uuid.UUID           `json:"pickup_location_id" binding:"required"`
	DropoffLocationID uuid.UUID           `json:"dropoff_location_id" binding:"required"`
	InsuranceID       *uuid.UUID          `json:"insurance_id,omitempty"`
	PaymentMethodID   *uuid.UUID          `json:"payment_method_id,omitempty"`
	DiscountCode      string              `json:"discount_code,omitempty"`
	Extras            []ExtraSelectionDTO `json:"extras,omitempty"`
}

// QuoteDTO is the priced breakdown returned to the caller.
type QuoteDTO struct {
	RentalDays          int      `json:"rental_days"`
	Currency            string   `json:"currency"`
	BaseCents           int64    `json:"base_cents"`
	VolumeDiscountCents int64    `json:"volume_discount_cents"`
	ExtrasCents         int64    `json:"extras_cents"`
	InsuranceCents      int64    `json:"insurance_cents"`
	LocationFeeCents    int64    `json:"location_fee_cents"`
	DiscountCents       int64    `json:"discount_cents"`
	DiscountApplied     bool     `json:"discount_applied"`
	DiscountReason      string   `json:"discount_reason,omitempty"`
	TaxCents            int64    `json:"tax_cents"`
	TotalCents          int64    `json:"total_cents"`
	DepositCents        int64    `json:"deposit_cents"`
	Warnings            []string `json:"warnings,omitempty"`
}

// pricedQuote is the internal pricing result shared between quoting and
// booking. It keeps the aggregates a booking transaction needs.
type pricedQuote struct {
	tenant    *tenant.Tenant
	vehicle   *fleet.Vehicle
	period    shared.DateRange
	breakdown pricing.Breakdown
	deposit   int64
	method    *tenant.PaymentMethod
	charges   []pricing.ExtraCharge
	discount  discount.Result
	code      *discount.Code
	warnings  []string
}

// QuoteService prices rentals without reserving anything.
type QuoteService struct {
	tenants   tenant.Repository
	fleet     fleet.Repository
	pricing   pricing.Repository
	discounts discount.Repository
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	tenants tenant.Repository,
	fleet fleet.Repository,
	pricingRepo pricing.Repository,
	discounts discount.Repository,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		tenants:   tenants,
		fleet:     fleet,
		pricing:   pricingRepo,
		discounts: discounts,
		logger:    logger,
	}
}

// Quote prices the requested rental and returns the full breakdown.
func (s *QuoteService) Quote(ctx context.Context, tenantID uuid.UUID, req QuoteRequest) (*QuoteDTO, error) {
	pq, err := s.price(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	dto := toQuoteDTO(pq)
	return &dto, nil
}

// price runs the whole pricing pipeline. Called both for quotes and, inside
// the booking transaction, for the authoritative price at reservation time.
func (s *QuoteService) price(ctx context.Context, tenantID uuid.UUID, req QuoteRequest) (*pricedQuote, error) {
	period, err := parsePeriod(req.PickupDate, req.DropoffDate)
	if err != nil {
		return nil, err
	}
	days := period.Days()

	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, shared.NewValidationError("tenant is not accepting reservations")
	}

	v, err := s.fleet.FindByID(ctx, tenantID, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, shared.NewValidationError("vehicle is not available for rental")
	}

	pq := &pricedQuote{tenant: t, vehicle: v, period: period}

	rules, err := s.pricing.FindRulesIntersecting(ctx, tenantID, v.ID, v.CategoryID, period)
	if err != nil {
		return nil, err
	}
	base := pricing.ResolveBase(rules, t.DefaultDailyRateCents, period)

	extrasCents, err := s.priceExtras(ctx, tenantID, req.Extras, days, pq)
	if err != nil {
		return nil, err
	}

	insuranceCents, err := s.priceInsurance(ctx, tenantID, req.InsuranceID, days, pq)
	if err != nil {
		return nil, err
	}

	locationCents, err := s.locationFees(ctx, tenantID, req.PickupLocationID, req.DropoffLocationID)
	if err != nil {
		return nil, err
	}

	// The discount applies to the pre-tax subtotal of everything above.
	subtotal := base.BaseCents + extrasCents + insuranceCents + locationCents
	if err := s.applyDiscount(ctx, tenantID, req.DiscountCode, subtotal, pq); err != nil {
		return nil, err
	}

	pq.breakdown = pricing.Compose(base, extrasCents, insuranceCents, locationCents, pq.discount.AmountCents, days, t.TaxRate)

	if req.PaymentMethodID != nil {
		method, err := s.tenants.FindPaymentMethod(ctx, tenantID, *req.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		pq.method = method
	}
	pq.deposit = pricing.Deposit(pq.breakdown.TotalCents, pq.method)

	return pq, nil
}

func (s *QuoteService) priceExtras(ctx context.Context, tenantID uuid.UUID, selections []ExtraSelectionDTO, days int, pq *pricedQuote) (int64, error) {
	if len(selections) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(selections))
	sels := make([]pricing.ExtraSelection, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ExtraID)
		sels = append(sels, pricing.ExtraSelection{ExtraID: sel.ExtraID, Quantity: sel.Quantity})
	}

	options, err := s.pricing.FindExtras(ctx, tenantID, ids)
	if err != nil {
		return 0, err
	}

	charges, skipped := pricing.PriceExtras(options, sels, days)
	pq.charges = charges
	for _, sk := range skipped {
		pq.warnings = append(pq.warnings, fmt.Sprintf("extra %s skipped: %s", sk.ExtraID, sk.Reason))
	}
	return pricing.SumExtras(charges), nil
}

func (s *QuoteService) priceInsurance(ctx context.Context, tenantID uuid.UUID, insuranceID *uuid.UUID, days int, pq *pricedQuote) (int64, error) {
	if insuranceID == nil {
		return 0, nil
	}
	ins, err := s.pricing.FindInsurance(ctx, tenantID, *insuranceID)
	if err != nil {
		return 0, err
	}
	if ins == nil {
		pq.warnings = append(pq.warnings, fmt.Sprintf("insurance %s skipped: unknown insurance type", insuranceID))
		return 0, nil
	}
	return pricing.PriceInsurance(ins, days), nil
}

func (s *QuoteService) locationFees(ctx context.Context, tenantID, pickupID, dropoffID uuid.UUID) (int64, error) {
	pickup, err := s.pricing.FindLocation(ctx, tenantID, pickupID)
	if err != nil {
		return 0, err
	}
	dropoff := pickup
	if dropoffID != pickupID {
		dropoff, err = s.pricing.FindLocation(ctx, tenantID, dropoffID)
		if err != nil {
			return 0, err
		}
	}
	return pricing.LocationFees(pickup, dropoff), nil
}

// applyDiscount resolves the code and applies it to the subtotal. A code
// that cannot be applied degrades to a skipped discount, never an error.
func (s *QuoteService) applyDiscount(ctx context.Context, tenantID uuid.UUID, code string, subtotalCents int64, pq *pricedQuote) error {
	if code == "" {
		return nil
	}
	c, err := s.discounts.FindByCode(ctx, tenantID, code)
	if err != nil {
		return err
	}
	if c == nil {
		pq.discount = discount.Skipped("unknown discount code")
		pq.warnings = append(pq.warnings, fmt.Sprintf("discount %q skipped: unknown code", code))
		return nil
	}
	pq.code = c
	pq.discount = c.Apply(subtotalCents, time.Now().UTC())
	if !pq.discount.Applied {
		pq.warnings = append(pq.warnings, fmt.Sprintf("discount %q skipped: %s", code, pq.discount.Reason))
	}
	return nil
}

func parsePeriod(pickup, dropoff string) (shared.DateRange, error) {
	from, err := shared.ParseDate(pickup)
	if err != nil {
		return shared.DateRange{}, shared.NewValidationError(fmt.Sprintf("invalid pickup_date: %v", err))
	}
	until, err := shared.ParseDate(dropoff)
	if err != nil {
		return shared.DateRange{}, shared.NewValidationError(fmt.Sprintf("invalid dropoff_date: %v", err))
	}
	rng, err := shared.NewDateRange(from, until)
	if err != nil {
		return shared.DateRange{}, shared.NewValidationError(err.Error())
	}
	return rng, nil
}

func toQuoteDTO(pq *pricedQuote) QuoteDTO {
	b := pq.breakdown
	return QuoteDTO{
		RentalDays:          b.RentalDays,
		Currency:            pq.tenant.Currency,
		BaseCents:           b.BaseCents,
		VolumeDiscountCents: b.VolumeDiscountCents,
		ExtrasCents:         b.ExtrasCents,
		InsuranceCents:      b.InsuranceCents,
		LocationFeeCents:    b.LocationFeeCents,
		DiscountCents:       b.DiscountCents,
		DiscountApplied:     pq.discount.Applied,
		DiscountReason:      pq.discount.Reason,
		TaxCents:            b.TaxCents,
		TotalCents:          b.TotalCents,
		DepositCents:        pq.deposit,
		Warnings:            pq.warnings,
	}
}
