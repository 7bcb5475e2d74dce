package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/reservation"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

// ReservationModel is the GORM persistence model for the reservations table.
// The price breakdown is denormalized into columns so a persisted reservation
// can reproduce its total without recomputation.
type ReservationModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehicleID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	CategoryID          uuid.UUID  `gorm:"type:uuid;not null"`
	BookingNumber       string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	PickupDate          time.Time  `gorm:"type:date;not null"`
	DropoffDate         time.Time  `gorm:"type:date;not null"`
	PickupTime          string     `gorm:"type:varchar(5)"`
	DropoffTime         string     `gorm:"type:varchar(5)"`
	PickupLocationID    uuid.UUID  `gorm:"type:uuid;not null"`
	DropoffLocationID   uuid.UUID  `gorm:"type:uuid;not null"`
	CustomerFirstName   string     `gorm:"type:varchar(100);not null"`
	CustomerLastName    string     `gorm:"type:varchar(100);not null"`
	CustomerEmail       string     `gorm:"type:varchar(255);not null;index"`
	CustomerPhone       string     `gorm:"type:varchar(50)"`
	CustomerLicense     string     `gorm:"type:varchar(50)"`
	RentalDays          int        `gorm:"not null"`
	BaseCents           int64      `gorm:"not null"`
	VolumeDiscountCents int64      `gorm:"not null;default:0"`
	ExtrasCents         int64      `gorm:"not null;default:0"`
	InsuranceCents      int64      `gorm:"not null;default:0"`
	LocationFeeCents    int64      `gorm:"not null;default:0"`
	DiscountCents       int64      `gorm:"not null;default:0"`
	TaxCents            int64      `gorm:"not null"`
	TotalCents          int64      `gorm:"not null"`
	DepositCents        int64      `gorm:"not null;default:0"`
	AmountPaidCents     int64      `gorm:"not null;default:0"`
	InsuranceID         *uuid.UUID `gorm:"type:uuid"`
	DiscountCodeID      *uuid.UUID `gorm:"type:uuid"`
	PaymentMethodID     *uuid.UUID `gorm:"type:uuid"`
	PaymentStatus       string     `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiresAt           time.Time  `gorm:"type:timestamptz;not null"`
	Version             int64      `gorm:"not null;default:1"`
	CreatedAt           time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt           time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (ReservationModel) TableName() string { return "reservations" }

// AvailabilityBlockModel is the GORM model for the availability_blocks table.
type AvailabilityBlockModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehicleID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_blocks_vehicle_interval"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index"`
	BlockedFrom   time.Time  `gorm:"type:date;not null;index:idx_blocks_vehicle_interval"`
	BlockedUntil  time.Time  `gorm:"type:date;not null"`
	Reason        string     `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (AvailabilityBlockModel) TableName() string { return "availability_blocks" }

// ReservationExtraLineModel is the GORM model for reservation_extra_lines.
type ReservationExtraLineModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReservationID uuid.UUID `gorm:"type:uuid;not null;index"`
	ExtraOptionID uuid.UUID `gorm:"type:uuid;not null"`
	Description   string    `gorm:"type:varchar(255);not null"`
	Quantity      int       `gorm:"not null"`
	UnitCents     int64     `gorm:"not null"`
	TotalCents    int64     `gorm:"not null"`
	IsPerDay      bool      `gorm:"not null"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (ReservationExtraLineModel) TableName() string { return "reservation_extra_lines" }

// GormReservationRepository implements reservation.Repository using GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// LockVehicle takes a FOR UPDATE row lock on the vehicle. Every creation,
// cancellation and expiry transaction for a vehicle funnels through this
// lock, so two concurrent bookings of the same vehicle serialize even before
// the serializable isolation level has to step in.
func (r *GormReservationRepository) LockVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) error {
	var model VehicleModel
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", vehicleID, tenantID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError("vehicle", vehicleID.String())
	}
	return err
}

// FindConflicts returns blocking reservations (and manual/maintenance
// blocks) whose interval overlaps the half-open candidate period. Pending
// reservations past their expiry no longer block.
func (r *GormReservationRepository) FindConflicts(ctx context.Context, tenantID, vehicleID uuid.UUID, period shared.DateRange, now time.Time) ([]reservation.Conflict, error) {
	type row struct {
		ReservationID *uuid.UUID
		BookingNumber *string
		BlockedFrom   time.Time
		BlockedUntil  time.Time
	}
	var rows []row

	err := dbFrom(ctx, r.db).
		Table("availability_blocks AS b").
		Select("b.reservation_id, r.booking_number, b.blocked_from, b.blocked_until").
		Joins("LEFT JOIN reservations r ON r.id = b.reservation_id").
		Where("b.tenant_id = ? AND b.vehicle_id = ?", tenantID, vehicleID).
		Where("b.blocked_from < ? AND ? < b.blocked_until", period.Until.Time(), period.From.Time()).
		Where("b.reservation_id IS NULL OR (r.status IN ? AND NOT (r.status = ? AND r.expires_at <= ?))",
			[]string{string(reservation.StatusPending), string(reservation.StatusConfirmed), string(reservation.StatusInProgress)},
			string(reservation.StatusPending), now).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	conflicts := make([]reservation.Conflict, 0, len(rows))
	for _, rw := range rows {
		c := reservation.Conflict{
			Period: shared.DateRange{From: shared.DateOf(rw.BlockedFrom), Until: shared.DateOf(rw.BlockedUntil)},
		}
		if rw.ReservationID != nil {
			c.ReservationID = *rw.ReservationID
		}
		if rw.BookingNumber != nil {
			c.BookingNumber = *rw.BookingNumber
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, nil
}

// FindDuplicate looks for a blocking reservation by the same customer email
// for the same vehicle over an overlapping interval.
func (r *GormReservationRepository) FindDuplicate(ctx context.Context, tenantID, vehicleID uuid.UUID, customerEmail string, period shared.DateRange) (*reservation.Reservation, error) {
	var model ReservationModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND vehicle_id = ? AND LOWER(customer_email) = LOWER(?)", tenantID, vehicleID, customerEmail).
		Where("status IN ?", []string{string(reservation.StatusPending), string(reservation.StatusConfirmed), string(reservation.StatusInProgress)}).
		Where("pickup_date < ? AND ? < dropoff_date", period.Until.Time(), period.From.Time()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toReservationDomain(&model), nil
}

// Create inserts the reservation, its extra lines and its availability block.
// All three ride the caller's transaction; a failure in any insert rolls back
// the whole unit.
func (r *GormReservationRepository) Create(ctx context.Context, res *reservation.Reservation, lines []reservation.ExtraLine, block *reservation.AvailabilityBlock) error {
	db := dbFrom(ctx, r.db)

	model := toReservationModel(res)
	if err := db.Create(&model).Error; err != nil {
		return err
	}

	for _, line := range lines {
		lm := ReservationExtraLineModel{
			ID:            line.ID,
			ReservationID: line.ReservationID,
			ExtraOptionID: line.ExtraOptionID,
			Description:   line.Description,
			Quantity:      line.Quantity,
			UnitCents:     line.UnitCents,
			TotalCents:    line.TotalCents,
			IsPerDay:      line.IsPerDay,
			CreatedAt:     line.CreatedAt,
		}
		if err := db.Create(&lm).Error; err != nil {
			return err
		}
	}

	bm := AvailabilityBlockModel{
		ID:            block.ID,
		TenantID:      block.TenantID,
		VehicleID:     block.VehicleID,
		ReservationID: block.ReservationID,
		BlockedFrom:   block.Period.From.Time(),
		BlockedUntil:  block.Period.Until.Time(),
		Reason:        string(block.Reason),
		CreatedAt:     block.CreatedAt,
	}
	return db.Create(&bm).Error
}

// FindByID retrieves a reservation scoped to the tenant.
func (r *GormReservationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	err := dbFrom(ctx, r.db).Where("id = ? AND tenant_id = ?", id, tenantID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("reservation", id.String())
		}
		return nil, err
	}
	return toReservationDomain(&model), nil
}

// FindByNumber retrieves a reservation by its booking number.
func (r *GormReservationRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*reservation.Reservation, error) {
	var model ReservationModel
	err := dbFrom(ctx, r.db).Where("booking_number = ? AND tenant_id = ?", number, tenantID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("reservation", number)
		}
		return nil, err
	}
	return toReservationDomain(&model), nil
}

// FindLines returns the immutable extra lines of a reservation.
func (r *GormReservationRepository) FindLines(ctx context.Context, reservationID uuid.UUID) ([]reservation.ExtraLine, error) {
	var models []ReservationExtraLineModel
	err := dbFrom(ctx, r.db).
		Where("reservation_id = ?", reservationID).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	lines := make([]reservation.ExtraLine, len(models))
	for i, m := range models {
		lines[i] = reservation.ExtraLine{
			ID:            m.ID,
			ReservationID: m.ReservationID,
			ExtraOptionID: m.ExtraOptionID,
			Description:   m.Description,
			Quantity:      m.Quantity,
			UnitCents:     m.UnitCents,
			TotalCents:    m.TotalCents,
			IsPerDay:      m.IsPerDay,
			CreatedAt:     m.CreatedAt,
		}
	}
	return lines, nil
}

// ListByTenant returns a page of the tenant's reservations, optionally
// filtered by status.
func (r *GormReservationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, status reservation.Status, page, limit int) ([]*reservation.Reservation, int64, error) {
	query := dbFrom(ctx, r.db).Model(&ReservationModel{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationDomain(&models[i])
	}
	return reservations, total, nil
}

// Update persists aggregate changes with optimistic locking.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)
	previousVersion := res.Version() - 1

	result := dbFrom(ctx, r.db).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"amount_paid_cents": model.AmountPaidCents,
			"payment_status":    model.PaymentStatus,
			"status":            model.Status,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

// ReleaseBlock deletes the availability block backing a reservation.
func (r *GormReservationRepository) ReleaseBlock(ctx context.Context, reservationID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Where("reservation_id = ?", reservationID).
		Delete(&AvailabilityBlockModel{}).Error
}

// FindExpiredPending returns pending reservations whose hold window passed.
func (r *GormReservationRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	err := dbFrom(ctx, r.db).
		Where("status = ? AND expires_at <= ?", string(reservation.StatusPending), now).
		Order("expires_at").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	reservations := make([]*reservation.Reservation, len(models))
	for i := range models {
		reservations[i] = toReservationDomain(&models[i])
	}
	return reservations, nil
}

// toReservationModel maps the aggregate to its persistence model.
func toReservationModel(r *reservation.Reservation) ReservationModel {
	b := r.Breakdown()
	c := r.Customer()
	return ReservationModel{
		ID:                  r.ID(),
		TenantID:            r.TenantID(),
		VehicleID:           r.VehicleID(),
		CategoryID:          r.CategoryID(),
		BookingNumber:       r.Number(),
		PickupDate:          r.Period().From.Time(),
		DropoffDate:         r.Period().Until.Time(),
		PickupTime:          r.PickupTime(),
		DropoffTime:         r.DropoffTime(),
		PickupLocationID:    r.PickupLocationID(),
		DropoffLocationID:   r.DropoffLocationID(),
		CustomerFirstName:   c.FirstName,
		CustomerLastName:    c.LastName,
		CustomerEmail:       c.Email,
		CustomerPhone:       c.Phone,
		CustomerLicense:     c.DriverLicense,
		RentalDays:          b.RentalDays,
		BaseCents:           b.BaseCents,
		VolumeDiscountCents: b.VolumeDiscountCents,
		ExtrasCents:         b.ExtrasCents,
		InsuranceCents:      b.InsuranceCents,
		LocationFeeCents:    b.LocationFeeCents,
		DiscountCents:       b.DiscountCents,
		TaxCents:            b.TaxCents,
		TotalCents:          b.TotalCents,
		DepositCents:        r.DepositCents(),
		AmountPaidCents:     r.AmountPaidCents(),
		InsuranceID:         r.InsuranceID(),
		DiscountCodeID:      r.DiscountCodeID(),
		PaymentMethodID:     r.PaymentMethodID(),
		PaymentStatus:       string(r.PaymentStatus()),
		Status:              string(r.Status()),
		ExpiresAt:           r.ExpiresAt(),
		Version:             r.Version(),
		CreatedAt:           r.CreatedAt(),
		UpdatedAt:           r.UpdatedAt(),
	}
}

// toReservationDomain rebuilds the aggregate from its persistence model.
func toReservationDomain(m *ReservationModel) *reservation.Reservation {
	return reservation.Reconstitute(
		m.ID, m.TenantID, m.VehicleID, m.CategoryID,
		m.BookingNumber,
		shared.DateRange{From: shared.DateOf(m.PickupDate), Until: shared.DateOf(m.DropoffDate)},
		m.PickupTime, m.DropoffTime,
		m.PickupLocationID, m.DropoffLocationID,
		reservation.Customer{
			FirstName:     m.CustomerFirstName,
			LastName:      m.CustomerLastName,
			Email:         m.CustomerEmail,
			Phone:         m.CustomerPhone,
			DriverLicense: m.CustomerLicense,
		},
		pricing.Breakdown{
			RentalDays:          m.RentalDays,
			BaseCents:           m.BaseCents,
			VolumeDiscountCents: m.VolumeDiscountCents,
			ExtrasCents:         m.ExtrasCents,
			InsuranceCents:      m.InsuranceCents,
			LocationFeeCents:    m.LocationFeeCents,
			DiscountCents:       m.DiscountCents,
			TaxCents:            m.TaxCents,
			TotalCents:          m.TotalCents,
		},
		m.DepositCents, m.AmountPaidCents,
		m.InsuranceID, m.DiscountCodeID, m.PaymentMethodID,
		reservation.PaymentStatus(m.PaymentStatus),
		reservation.Status(m.Status),
		m.ExpiresAt,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
