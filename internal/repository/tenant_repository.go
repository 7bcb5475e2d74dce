package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/drivehub/service-booking/internal/domain/shared"
	"github.com/drivehub/service-booking/internal/domain/tenant"
)

// TenantModel is the GORM model for the tenants table.
type TenantModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                  string          `gorm:"type:varchar(255);not null"`
	Status                string          `gorm:"type:varchar(20);not null;default:'active'"`
	Currency              string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	TaxRate               decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0.24"`
	DefaultDailyRateCents int64           `gorm:"not null;default:0"`
	MonthlyContractLimit  int             `gorm:"not null;default:0"`
	CreatedAt             time.Time       `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt             time.Time       `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (TenantModel) TableName() string { return "tenants" }

// PaymentMethodModel is the GORM model for tenant payment methods.
type PaymentMethodModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name                string          `gorm:"type:varchar(100);not null"`
	RequiresFullPayment bool            `gorm:"not null;default:false"`
	DepositPercent      decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0"`
	MinimumDepositCents int64           `gorm:"not null;default:0"`
	IsActive            bool            `gorm:"not null;default:true"`
}

// TableName sets the table name.
func (PaymentMethodModel) TableName() string { return "payment_methods" }

// GormTenantRepository implements tenant.Repository using GORM.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository.
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID returns the tenant or a NotFound domain error.
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var model TenantModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("tenant", id.String())
		}
		return nil, err
	}
	return &tenant.Tenant{
		ID:                    model.ID,
		Name:                  model.Name,
		Status:                tenant.Status(model.Status),
		Currency:              model.Currency,
		TaxRate:               model.TaxRate,
		DefaultDailyRateCents: model.DefaultDailyRateCents,
		MonthlyContractLimit:  model.MonthlyContractLimit,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}, nil
}

// FindPaymentMethod returns an active payment method of the tenant.
func (r *GormTenantRepository) FindPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*tenant.PaymentMethod, error) {
	var model PaymentMethodModel
	err := dbFrom(ctx, r.db).
		Where("id = ? AND tenant_id = ? AND is_active = true", methodID, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("payment method", methodID.String())
		}
		return nil, err
	}
	return &tenant.PaymentMethod{
		ID:                  model.ID,
		TenantID:            model.TenantID,
		Name:                model.Name,
		RequiresFullPayment: model.RequiresFullPayment,
		DepositPercent:      model.DepositPercent,
		MinimumDepositCents: model.MinimumDepositCents,
		IsActive:            model.IsActive,
	}, nil
}

// CountBookingsInMonth counts reservations created by the tenant in the
// calendar month containing at.
func (r *GormTenantRepository) CountBookingsInMonth(ctx context.Context, tenantID uuid.UUID, at time.Time) (int, error) {
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var count int64
	err := dbFrom(ctx, r.db).
		Model(&ReservationModel{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, monthStart, monthEnd).
		Count(&count).Error
	return int(count), err
}
