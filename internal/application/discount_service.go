package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/domain/discount"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

// CreateDiscountRequest holds data to create a discount code.
type CreateDiscountRequest struct {
	Code       string `json:"code" binding:"required"`
	Type       string `json:"type" binding:"required"`
	Value      int64  `json:"value" binding:"required"`
	MaxUses    int    `json:"max_uses"`
	ValidFrom  string `json:"valid_from,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`
}

// ValidateDiscountRequest holds data to validate a discount code against a
// prospective subtotal.
type ValidateDiscountRequest struct {
	Code          string `json:"code" binding:"required"`
	SubtotalCents int64  `json:"subtotal_cents" binding:"required,gt=0"`
}

// DiscountDTO is the API response representation of a discount code.
type DiscountDTO struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Type       string     `json:"type"`
	Value      int64      `json:"value"`
	MaxUses    int        `json:"max_uses"`
	TimesUsed  int        `json:"times_used"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// DiscountValidationDTO is the result of validating a discount code.
type DiscountValidationDTO struct {
	Valid         bool   `json:"valid"`
	Code          string `json:"code"`
	DiscountCents int64  `json:"discount_cents"`
	Message       string `json:"message,omitempty"`
}

// DiscountService handles discount code use cases.
type DiscountService struct {
	repo   discount.Repository
	logger *zap.Logger
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(repo discount.Repository, logger *zap.Logger) *DiscountService {
	return &DiscountService{repo: repo, logger: logger}
}

// CreateDiscount creates a new discount code for the tenant (admin only).
func (s *DiscountService) CreateDiscount(ctx context.Context, tenantID uuid.UUID, req CreateDiscountRequest) (*DiscountDTO, error) {
	validFrom, err := parseOptionalTime(req.ValidFrom, "valid_from")
	if err != nil {
		return nil, err
	}
	validUntil, err := parseOptionalTime(req.ValidUntil, "valid_until")
	if err != nil {
		return nil, err
	}

	code, err := discount.NewCode(tenantID, req.Code, discount.Type(req.Type), req.Value, validFrom, validUntil, req.MaxUses)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, code); err != nil {
		return nil, err
	}

	s.logger.Info("discount code created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", code.CodeString()),
	)
	return toDiscountDTO(code), nil
}

// GetDiscount retrieves a discount code by its code string.
func (s *DiscountService) GetDiscount(ctx context.Context, tenantID uuid.UUID, code string) (*DiscountDTO, error) {
	c, err := s.repo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.NewNotFoundError("discount code", code)
	}
	return toDiscountDTO(c), nil
}

// ValidateDiscount checks whether a code would apply to the given subtotal
// and how much it would take off. It never reserves a redemption.
func (s *DiscountService) ValidateDiscount(ctx context.Context, tenantID uuid.UUID, req ValidateDiscountRequest) (*DiscountValidationDTO, error) {
	c, err := s.repo.FindByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &DiscountValidationDTO{Valid: false, Code: req.Code, Message: "discount code not found"}, nil
	}

	result := c.Apply(req.SubtotalCents, time.Now().UTC())
	if !result.Applied {
		return &DiscountValidationDTO{Valid: false, Code: c.CodeString(), Message: result.Reason}, nil
	}

	return &DiscountValidationDTO{
		Valid:         true,
		Code:          c.CodeString(),
		DiscountCents: result.AmountCents,
	}, nil
}

func parseOptionalTime(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, shared.NewValidationError("invalid " + field + " format (use RFC3339)")
	}
	return &t, nil
}

func toDiscountDTO(c *discount.Code) *DiscountDTO {
	return &DiscountDTO{
		ID:         c.ID(),
		Code:       c.CodeString(),
		Type:       string(c.Kind()),
		Value:      c.Value(),
		MaxUses:    c.MaxUses(),
		TimesUsed:  c.TimesUsed(),
		ValidFrom:  c.ValidFrom(),
		ValidUntil: c.ValidUntil(),
		IsActive:   c.IsActive(),
		CreatedAt:  c.CreatedAt(),
	}
}
