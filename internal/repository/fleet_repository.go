package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivehub/service-booking/internal/domain/fleet"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Make       string    `gorm:"type:varchar(100)"`
	Model      string    `gorm:"type:varchar(100)"`
	Plate      string    `gorm:"type:varchar(20)"`
	IsActive   bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName sets the table name.
func (VehicleModel) TableName() string { return "vehicles" }

// GormFleetRepository implements fleet.Repository using GORM.
type GormFleetRepository struct {
	db *gorm.DB
}

// NewGormFleetRepository creates a new GormFleetRepository.
func NewGormFleetRepository(db *gorm.DB) *GormFleetRepository {
	return &GormFleetRepository{db: db}
}

// FindByID returns the vehicle only when it belongs to the tenant.
func (r *GormFleetRepository) FindByID(ctx context.Context, tenantID, vehicleID uuid.UUID) (*fleet.Vehicle, error) {
	var model VehicleModel
	err := dbFrom(ctx, r.db).
		Where("id = ? AND tenant_id = ?", vehicleID, tenantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("vehicle", vehicleID.String())
		}
		return nil, err
	}
	return &fleet.Vehicle{
		ID:         model.ID,
		TenantID:   model.TenantID,
		CategoryID: model.CategoryID,
		Make:       model.Make,
		Model:      model.Model,
		Plate:      model.Plate,
		IsActive:   model.IsActive,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}
