package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

// PricingRuleModel is the GORM model for the pricing_rules table.
type PricingRuleModel struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	VehicleID              *uuid.UUID      `gorm:"type:uuid;index"`
	CategoryID             *uuid.UUID      `gorm:"type:uuid;index"`
	ValidFrom              time.Time       `gorm:"type:date;not null"`
	ValidUntil             time.Time       `gorm:"type:date;not null"`
	PricePerDayCents       int64           `gorm:"not null"`
	MinRentalDays          int             `gorm:"not null;default:0"`
	WeeklyDiscountPercent  decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0"`
	MonthlyDiscountPercent decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0"`
	Priority               int             `gorm:"not null;default:0"`
	CreatedAt              time.Time       `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (PricingRuleModel) TableName() string { return "pricing_rules" }

// ExtraOptionModel is the GORM model for the extra_options table.
type ExtraOptionModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Name             string    `gorm:"type:varchar(255);not null"`
	PricePerDayCents int64     `gorm:"not null"`
	IsOneTimeFee     bool      `gorm:"not null;default:false"`
	IsActive         bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (ExtraOptionModel) TableName() string { return "extra_options" }

// InsuranceTypeModel is the GORM model for the insurance_types table.
type InsuranceTypeModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Name             string    `gorm:"type:varchar(255);not null"`
	PricePerDayCents int64     `gorm:"not null"`
	DeductibleCents  int64     `gorm:"not null;default:0"`
	IsDefault        bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (InsuranceTypeModel) TableName() string { return "insurance_types" }

// LocationModel is the GORM model for the locations table.
type LocationModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID              uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                  string    `gorm:"type:varchar(255);not null"`
	ExtraPickupFeeCents   int64     `gorm:"not null;default:0"`
	ExtraDeliveryFeeCents int64     `gorm:"not null;default:0"`
	CreatedAt             time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (LocationModel) TableName() string { return "locations" }

// GormPricingRepository implements pricing.Repository using GORM.
type GormPricingRepository struct {
	db *gorm.DB
}

// NewGormPricingRepository creates a new GormPricingRepository.
func NewGormPricingRepository(db *gorm.DB) *GormPricingRepository {
	return &GormPricingRepository{db: db}
}

// FindRulesIntersecting fetches rules scoped to the vehicle or its category
// whose inclusive validity interval touches the half-open rental interval.
func (r *GormPricingRepository) FindRulesIntersecting(ctx context.Context, tenantID, vehicleID, categoryID uuid.UUID, rng shared.DateRange) ([]*pricing.Rule, error) {
	var models []PricingRuleModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Where("vehicle_id = ? OR category_id = ?", vehicleID, categoryID).
		Where("valid_from < ? AND valid_until >= ?", rng.Until.Time(), rng.From.Time()).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rules := make([]*pricing.Rule, len(models))
	for i, m := range models {
		rules[i] = &pricing.Rule{
			ID:                     m.ID,
			TenantID:               m.TenantID,
			VehicleID:              m.VehicleID,
			CategoryID:             m.CategoryID,
			ValidFrom:              shared.DateOf(m.ValidFrom),
			ValidUntil:             shared.DateOf(m.ValidUntil),
			PricePerDayCents:       m.PricePerDayCents,
			MinRentalDays:          m.MinRentalDays,
			WeeklyDiscountPercent:  m.WeeklyDiscountPercent,
			MonthlyDiscountPercent: m.MonthlyDiscountPercent,
			Priority:               m.Priority,
			CreatedAt:              m.CreatedAt,
		}
	}
	return rules, nil
}

// FindExtras returns the tenant's options among ids, keyed by id.
func (r *GormPricingRepository) FindExtras(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*pricing.ExtraOption, error) {
	result := make(map[uuid.UUID]*pricing.ExtraOption, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []ExtraOptionModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for i := range models {
		m := models[i]
		result[m.ID] = &pricing.ExtraOption{
			ID:               m.ID,
			TenantID:         m.TenantID,
			Name:             m.Name,
			PricePerDayCents: m.PricePerDayCents,
			IsOneTimeFee:     m.IsOneTimeFee,
			IsActive:         m.IsActive,
			CreatedAt:        m.CreatedAt,
		}
	}
	return result, nil
}

// FindInsurance returns the tier or (nil, nil) when unknown. Unknown ids
// price as "no insurance" further up, so absence is not an error here.
func (r *GormPricingRepository) FindInsurance(ctx context.Context, tenantID, insuranceID uuid.UUID) (*pricing.InsuranceType, error) {
	var model InsuranceTypeModel
	err := dbFrom(ctx, r.db).
		Where("id = ? AND tenant_id = ?", insuranceID, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pricing.InsuranceType{
		ID:               model.ID,
		TenantID:         model.TenantID,
		Name:             model.Name,
		PricePerDayCents: model.PricePerDayCents,
		DeductibleCents:  model.DeductibleCents,
		IsDefault:        model.IsDefault,
		CreatedAt:        model.CreatedAt,
	}, nil
}

// FindLocation returns the location or a NotFound domain error.
func (r *GormPricingRepository) FindLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*pricing.Location, error) {
	var model LocationModel
	err := dbFrom(ctx, r.db).
		Where("id = ? AND tenant_id = ?", locationID, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("location", locationID.String())
		}
		return nil, err
	}
	return &pricing.Location{
		ID:                    model.ID,
		TenantID:              model.TenantID,
		Name:                  model.Name,
		ExtraPickupFeeCents:   model.ExtraPickupFeeCents,
		ExtraDeliveryFeeCents: model.ExtraDeliveryFeeCents,
		CreatedAt:             model.CreatedAt,
	}, nil
}
