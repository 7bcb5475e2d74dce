package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/domain/discount"
	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/reservation"
	"github.com/drivehub/service-booking/internal/domain/shared"
	"github.com/drivehub/service-booking/internal/domain/tenant"
	"github.com/drivehub/service-booking/internal/events"
	"github.com/drivehub/service-booking/internal/saga"
)

// CustomerDTO carries the renter's details on a booking request.
type CustomerDTO struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	DriverLicense string `json:"driver_license"`
}

// CreateReservationRequest is the DTO for booking a vehicle.
type CreateReservationRequest struct {
	QuoteRequest
	Customer CustomerDTO `json:"customer" binding:"required"`
}

// ExtraLineDTO is one priced add-on line on a reservation.
type ExtraLineDTO struct {
	ExtraOptionID uuid.UUID `json:"extra_option_id"`
	Description   string    `json:"description"`
	Quantity      int       `json:"quantity"`
	UnitCents     int64     `json:"unit_cents"`
	TotalCents    int64     `json:"total_cents"`
	IsPerDay      bool      `json:"is_per_day"`
}

// ReservationDTO is the API response representation of a reservation.
type ReservationDTO struct {
	ID                uuid.UUID      `json:"id"`
	BookingNumber     string         `json:"booking_number"`
	TenantID          uuid.UUID      `json:"tenant_id"`
	VehicleID         uuid.UUID      `json:"vehicle_id"`
	PickupDate        string         `json:"pickup_date"`
	DropoffDate       string         `json:"dropoff_date"`
	PickupTime        string         `json:"pickup_time,omitempty"`
	DropoffTime       string         `json:"dropoff_time,omitempty"`
	PickupLocationID  uuid.UUID      `json:"pickup_location_id"`
	DropoffLocationID uuid.UUID      `json:"dropoff_location_id"`
	Customer          CustomerDTO    `json:"customer"`
	Quote             QuoteDTO       `json:"quote"`
	Extras            []ExtraLineDTO `json:"extras,omitempty"`
	DepositCents      int64          `json:"deposit_cents"`
	AmountPaidCents   int64          `json:"amount_paid_cents"`
	PaymentStatus     string         `json:"payment_status"`
	Status            string         `json:"status"`
	CheckoutURL       string         `json:"checkout_url,omitempty"`
	ExpiresAt         time.Time      `json:"expires_at"`
	Version           int64          `json:"version"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// BookingService orchestrates the reservation lifecycle.
type BookingService struct {
	repo       reservation.Repository
	tx         reservation.TxRunner
	tenants    tenant.Repository
	discounts  discount.Repository
	quotes     *QuoteService
	sagaSvc    *saga.BookingSagaService
	holdWindow time.Duration
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo reservation.Repository,
	tx reservation.TxRunner,
	tenants tenant.Repository,
	discounts discount.Repository,
	quotes *QuoteService,
	sagaSvc *saga.BookingSagaService,
	holdWindow time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		tx:         tx,
		tenants:    tenants,
		discounts:  discounts,
		quotes:     quotes,
		sagaSvc:    sagaSvc,
		holdWindow: holdWindow,
		logger:     logger,
	}
}

// CreateReservation books a vehicle. Availability, quota and price are all
// decided inside one serializable transaction holding the vehicle row lock,
// so two rivals for the same vehicle and dates cannot both succeed.
func (s *BookingService) CreateReservation(ctx context.Context, tenantID uuid.UUID, req CreateReservationRequest) (*ReservationDTO, error) {
	s.logger.Info("creating reservation",
		zap.String("tenant_id", tenantID.String()),
		zap.String("vehicle_id", req.VehicleID.String()),
		zap.String("pickup_date", req.PickupDate),
		zap.String("dropoff_date", req.DropoffDate),
	)

	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, shared.NewValidationError("tenant is not accepting reservations")
	}

	var (
		res   *reservation.Reservation
		pq    *pricedQuote
		lines []reservation.ExtraLine
	)

	persist := func(txCtx context.Context) error {
		if err := s.repo.LockVehicle(txCtx, tenantID, req.VehicleID); err != nil {
			return err
		}

		// Prices and eligibility are re-read under the lock; any earlier
		// quote shown to the customer is advisory only.
		var err error
		pq, err = s.quotes.price(txCtx, tenantID, req.QuoteRequest)
		if err != nil {
			return err
		}

		used, err := s.tenants.CountBookingsInMonth(txCtx, tenantID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !pq.tenant.WithinContractLimit(used) {
			return shared.NewLimitExceededError("monthly booking quota reached")
		}

		conflicts, err := s.repo.FindConflicts(txCtx, tenantID, req.VehicleID, pq.period, time.Now().UTC())
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return shared.NewConflictError(fmt.Sprintf("vehicle already booked for %s to %s (booking %s)",
				conflicts[0].Period.From, conflicts[0].Period.Until, conflicts[0].BookingNumber))
		}

		dup, err := s.repo.FindDuplicate(txCtx, tenantID, req.VehicleID, req.Customer.Email, pq.period)
		if err != nil {
			return err
		}
		if dup != nil {
			return shared.NewConflictError(fmt.Sprintf("duplicate booking %s for this customer, vehicle and dates", dup.Number()))
		}

		// Consume the discount quota before pricing is final. Losing the
		// race for the last redemption downgrades the quote, it does not
		// fail the booking.
		if pq.discount.Applied {
			if err := s.discounts.Redeem(txCtx, pq.code.ID()); err != nil {
				if !shared.IsKind(err, shared.KindConflict) {
					return err
				}
				s.logger.Info("discount exhausted during booking, repricing without it",
					zap.String("code", pq.code.CodeString()),
				)
				s.repriceWithoutDiscount(pq)
			}
		}

		res = s.newReservation(tenantID, req, pq)
		lines = buildLines(res.ID(), pq.charges)
		return s.repo.Create(txCtx, res, lines, reservation.NewBookedBlock(res))
	}

	runTx := func(ctx context.Context) error {
		return s.tx.RunSerializable(ctx, persist)
	}
	createdRes := func() *reservation.Reservation { return res }

	session, err := s.sagaSvc.CreateReservationSaga(ctx, runTx, createdRes, t.Currency)
	if err != nil {
		s.logger.Error("failed to create reservation", zap.Error(err))
		return nil, err
	}

	dto := toReservationDTO(res, lines, pq.tenant.Currency, pq.discount, pq.warnings)
	dto.CheckoutURL = session.CheckoutURL
	return &dto, nil
}

// newReservation builds the aggregate from the authoritative in-transaction
// price.
func (s *BookingService) newReservation(tenantID uuid.UUID, req CreateReservationRequest, pq *pricedQuote) *reservation.Reservation {
	var discountCodeID *uuid.UUID
	if pq.discount.Applied {
		id := pq.code.ID()
		discountCodeID = &id
	}
	customer := reservation.Customer{
		FirstName:     req.Customer.FirstName,
		LastName:      req.Customer.LastName,
		Email:         req.Customer.Email,
		Phone:         req.Customer.Phone,
		DriverLicense: req.Customer.DriverLicense,
	}
	return reservation.NewReservation(
		tenantID, req.VehicleID, pq.vehicle.CategoryID,
		pq.period,
		req.PickupTime, req.DropoffTime,
		req.PickupLocationID, req.DropoffLocationID,
		customer,
		pq.breakdown,
		pq.deposit,
		req.InsuranceID, discountCodeID, req.PaymentMethodID,
		s.holdWindow,
	)
}

// repriceWithoutDiscount recomputes the breakdown after a lost redemption
// race. All other components are unchanged.
func (s *BookingService) repriceWithoutDiscount(pq *pricedQuote) {
	b := pq.breakdown
	base := pricing.BasePrice{BaseCents: b.BaseCents, VolumeDiscountCents: b.VolumeDiscountCents}
	pq.discount = discount.Skipped("code fully redeemed")
	pq.warnings = append(pq.warnings, fmt.Sprintf("discount %q skipped: code fully redeemed", pq.code.CodeString()))
	pq.breakdown = pricing.Compose(base, b.ExtrasCents, b.InsuranceCents, b.LocationFeeCents, 0, b.RentalDays, pq.tenant.TaxRate)
	pq.deposit = pricing.Deposit(pq.breakdown.TotalCents, pq.method)
}

func buildLines(reservationID uuid.UUID, charges []pricing.ExtraCharge) []reservation.ExtraLine {
	lines := make([]reservation.ExtraLine, 0, len(charges))
	now := time.Now().UTC()
	for _, ch := range charges {
		lines = append(lines, reservation.ExtraLine{
			ID:            uuid.New(),
			ReservationID: reservationID,
			ExtraOptionID: ch.Option.ID,
			Description:   ch.Option.Name,
			Quantity:      ch.Quantity,
			UnitCents:     ch.UnitCents,
			TotalCents:    ch.TotalCents,
			IsPerDay:      ch.PerDay,
			CreatedAt:     now,
		})
	}
	return lines
}

// HandlePaymentConfirmed records a settled payment against the reservation.
// A deposit or full payment confirms a pending reservation.
func (s *BookingService) HandlePaymentConfirmed(ctx context.Context, tenantID, reservationID uuid.UUID, amountCents int64, providerTransactionID string) error {
	s.logger.Info("payment confirmed",
		zap.String("reservation_id", reservationID.String()),
		zap.Int64("amount_cents", amountCents),
		zap.String("provider_transaction_id", providerTransactionID),
	)

	var res *reservation.Reservation
	err := s.tx.RunSerializable(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.repo.FindByID(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}
		if err := res.RecordPayment(amountCents); err != nil {
			return err
		}
		res.IncrementVersion()
		return s.repo.Update(ctx, res)
	})
	if err != nil {
		return err
	}

	if res.Status() == reservation.StatusConfirmed {
		if err := s.sagaSvc.PublishReservationEvent(ctx, events.ReservationConfirmed, res); err != nil {
			s.logger.Error("failed to publish confirmation event", zap.Error(err))
		}
	}
	return nil
}

// HandlePaymentFailed logs a declined charge. The reservation stays pending
// and the customer may retry until the hold window runs out.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, tenantID, reservationID uuid.UUID, reason string) error {
	s.logger.Warn("payment failed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("reservation_id", reservationID.String()),
		zap.String("reason", reason),
	)
	return nil
}

// Cancel cancels a pending or confirmed reservation and frees the vehicle.
func (s *BookingService) Cancel(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.transition(ctx, tenantID, reservationID, func(txCtx context.Context, r *reservation.Reservation) error {
		if err := r.Cancel(); err != nil {
			return err
		}
		return s.repo.ReleaseBlock(txCtx, r.ID())
	})
	if err != nil {
		return nil, err
	}

	if err := s.sagaSvc.PublishReservationEvent(ctx, events.ReservationCancelled, res); err != nil {
		s.logger.Error("failed to publish cancellation event", zap.Error(err))
	}

	dto := toReservationDTO(res, nil, "", discount.Result{}, nil)
	return &dto, nil
}

// Pickup marks the rental as started when the customer collects the vehicle.
func (s *BookingService) Pickup(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.transition(ctx, tenantID, reservationID, func(_ context.Context, r *reservation.Reservation) error {
		return r.StartRental()
	})
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res, nil, "", discount.Result{}, nil)
	return &dto, nil
}

// Dropoff completes the rental when the vehicle is returned.
func (s *BookingService) Dropoff(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.transition(ctx, tenantID, reservationID, func(_ context.Context, r *reservation.Reservation) error {
		return r.Complete()
	})
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res, nil, "", discount.Result{}, nil)
	return &dto, nil
}

// MarkNoShow releases the vehicle when the customer never arrived.
func (s *BookingService) MarkNoShow(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.transition(ctx, tenantID, reservationID, func(txCtx context.Context, r *reservation.Reservation) error {
		if err := r.MarkNoShow(); err != nil {
			return err
		}
		return s.repo.ReleaseBlock(txCtx, r.ID())
	})
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res, nil, "", discount.Result{}, nil)
	return &dto, nil
}

// transition loads, mutates and persists one reservation inside a
// serializable transaction.
func (s *BookingService) transition(ctx context.Context, tenantID, reservationID uuid.UUID, mutate func(context.Context, *reservation.Reservation) error) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		var err error
		res, err = s.repo.FindByID(txCtx, tenantID, reservationID)
		if err != nil {
			return err
		}
		if err := mutate(txCtx, res); err != nil {
			return err
		}
		res.IncrementVersion()
		return s.repo.Update(txCtx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetReservation retrieves one reservation with its extra lines.
func (s *BookingService) GetReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, tenantID, reservationID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.FindLines(ctx, res.ID())
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res, lines, "", discount.Result{}, nil)
	return &dto, nil
}

// GetReservationByNumber retrieves one reservation by its booking number.
func (s *BookingService) GetReservationByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ReservationDTO, error) {
	res, err := s.repo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.FindLines(ctx, res.ID())
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res, lines, "", discount.Result{}, nil)
	return &dto, nil
}

// ListReservations returns a page of the tenant's reservations, optionally
// filtered by status.
func (s *BookingService) ListReservations(ctx context.Context, tenantID uuid.UUID, status reservation.Status, page, limit int) ([]ReservationDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := s.repo.ListByTenant(ctx, tenantID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]ReservationDTO, 0, len(items))
	for _, res := range items {
		dtos = append(dtos, toReservationDTO(res, nil, "", discount.Result{}, nil))
	}
	return dtos, total, nil
}

// ExpireOverdue cancels pending reservations whose hold window has passed
// and frees their vehicles. It returns how many were expired.
func (s *BookingService) ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error) {
	overdue, err := s.repo.FindExpiredPending(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, res := range overdue {
		err := s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
			if err := res.Expire(now); err != nil {
				return err
			}
			res.IncrementVersion()
			if err := s.repo.Update(txCtx, res); err != nil {
				return err
			}
			return s.repo.ReleaseBlock(txCtx, res.ID())
		})
		if err != nil {
			// Another node may have expired or confirmed it first.
			s.logger.Warn("skipping reservation during expiry sweep",
				zap.String("reservation_id", res.ID().String()),
				zap.Error(err),
			)
			continue
		}
		expired++

		if err := s.sagaSvc.PublishReservationEvent(ctx, events.ReservationExpired, res); err != nil {
			s.logger.Error("failed to publish expiry event", zap.Error(err))
		}
	}
	return expired, nil
}

func toReservationDTO(r *reservation.Reservation, lines []reservation.ExtraLine, currency string, disc discount.Result, warnings []string) ReservationDTO {
	b := r.Breakdown()
	dto := ReservationDTO{
		ID:                r.ID(),
		BookingNumber:     r.Number(),
		TenantID:          r.TenantID(),
		VehicleID:         r.VehicleID(),
		PickupDate:        r.Period().From.String(),
		DropoffDate:       r.Period().Until.String(),
		PickupTime:        r.PickupTime(),
		DropoffTime:       r.DropoffTime(),
		PickupLocationID:  r.PickupLocationID(),
		DropoffLocationID: r.DropoffLocationID(),
		Customer: CustomerDTO{
			FirstName:     r.Customer().FirstName,
			LastName:      r.Customer().LastName,
			Email:         r.Customer().Email,
			Phone:         r.Customer().Phone,
			DriverLicense: r.Customer().DriverLicense,
		},
		Quote: QuoteDTO{
			RentalDays:          b.RentalDays,
			Currency:            currency,
			BaseCents:           b.BaseCents,
			VolumeDiscountCents: b.VolumeDiscountCents,
			ExtrasCents:         b.ExtrasCents,
			InsuranceCents:      b.InsuranceCents,
			LocationFeeCents:    b.LocationFeeCents,
			DiscountCents:       b.DiscountCents,
			DiscountApplied:     disc.Applied,
			DiscountReason:      disc.Reason,
			TaxCents:            b.TaxCents,
			TotalCents:          b.TotalCents,
			DepositCents:        r.DepositCents(),
			Warnings:            warnings,
		},
		DepositCents:    r.DepositCents(),
		AmountPaidCents: r.AmountPaidCents(),
		PaymentStatus:   string(r.PaymentStatus()),
		Status:          string(r.Status()),
		ExpiresAt:       r.ExpiresAt(),
		Version:         r.Version(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
	for _, ln := range lines {
		dto.Extras = append(dto.Extras, ExtraLineDTO{
			ExtraOptionID: ln.ExtraOptionID,
			Description:   ln.Description,
			Quantity:      ln.Quantity,
			UnitCents:     ln.UnitCents,
			TotalCents:    ln.TotalCents,
			IsPerDay:      ln.IsPerDay,
		})
	}
	return dto
}
