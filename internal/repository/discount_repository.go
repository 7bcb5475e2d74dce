package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivehub/service-booking/internal/domain/discount"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

// DiscountCodeModel is the GORM model for the discount_codes table.
type DiscountCodeModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_discount_tenant_code,priority:1"`
	Code         string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_discount_tenant_code,priority:2"`
	DiscountType string     `gorm:"type:varchar(20);not null"`
	Value        int64      `gorm:"not null"`
	ValidFrom    *time.Time `gorm:"type:timestamptz"`
	ValidUntil   *time.Time `gorm:"type:timestamptz"`
	MaxUses      int        `gorm:"not null;default:0"`
	TimesUsed    int        `gorm:"not null;default:0"`
	IsActive     bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (DiscountCodeModel) TableName() string { return "discount_codes" }

// GormDiscountRepository implements discount.Repository using GORM.
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository.
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// Save persists a new discount code.
func (r *GormDiscountRepository) Save(ctx context.Context, c *discount.Code) error {
	model := toDiscountModel(c)
	return dbFrom(ctx, r.db).Create(&model).Error
}

// FindByCode does a case-insensitive lookup within the tenant. A missing code
// is (nil, nil): absence degrades to "no discount", it is not a failure.
func (r *GormDiscountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*discount.Code, error) {
	var model DiscountCodeModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND UPPER(code) = UPPER(?)", tenantID, code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDiscountDomain(&model), nil
}

// FindByID returns a discount code by ID.
func (r *GormDiscountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*discount.Code, error) {
	var model DiscountCodeModel
	err := dbFrom(ctx, r.db).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("discount code", id.String())
		}
		return nil, err
	}
	return toDiscountDomain(&model), nil
}

// Redeem is the atomic increment-with-check: the storage engine enforces
// times_used < max_uses, never a read-then-write in the application.
func (r *GormDiscountRepository) Redeem(ctx context.Context, codeID uuid.UUID) error {
	result := dbFrom(ctx, r.db).
		Model(&DiscountCodeModel{}).
		Where("id = ? AND (max_uses = 0 OR times_used < max_uses)", codeID).
		Updates(map[string]interface{}{
			"times_used": gorm.Expr("times_used + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("discount code usage limit reached")
	}
	return nil
}

func toDiscountModel(c *discount.Code) DiscountCodeModel {
	return DiscountCodeModel{
		ID:           c.ID(),
		TenantID:     c.TenantID(),
		Code:         c.CodeString(),
		DiscountType: string(c.Kind()),
		Value:        c.Value(),
		ValidFrom:    c.ValidFrom(),
		ValidUntil:   c.ValidUntil(),
		MaxUses:      c.MaxUses(),
		TimesUsed:    c.TimesUsed(),
		IsActive:     c.IsActive(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toDiscountDomain(m *DiscountCodeModel) *discount.Code {
	return discount.Reconstruct(
		m.ID, m.TenantID, m.Code, discount.Type(m.DiscountType),
		m.Value, m.ValidFrom, m.ValidUntil,
		m.MaxUses, m.TimesUsed, m.IsActive,
		m.CreatedAt, m.UpdatedAt,
	)
}
