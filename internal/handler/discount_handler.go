package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivehub/service-booking/internal/application"
	"github.com/drivehub/service-booking/internal/auth"
	"github.com/drivehub/service-booking/internal/middleware"
	"github.com/drivehub/service-booking/internal/response"
)

// DiscountHandler handles HTTP requests for discount code operations.
type DiscountHandler struct {
	service *application.DiscountService
}

// NewDiscountHandler creates a new DiscountHandler.
func NewDiscountHandler(service *application.DiscountService) *DiscountHandler {
	return &DiscountHandler{service: service}
}

// RegisterRoutes registers all discount routes on the given router group.
func (h *DiscountHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	discounts := r.Group("/discounts")
	discounts.Use(middleware.Auth(jwtManager))
	{
		discounts.POST("", middleware.RequireRole(auth.RoleAdmin), h.CreateDiscount)
		discounts.GET("/:code", h.GetDiscount)
		discounts.POST("/validate", h.ValidateDiscount)
	}
}

// CreateDiscount handles POST /api/v1/discounts
func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreateDiscount(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// GetDiscount handles GET /api/v1/discounts/:code
func (h *DiscountHandler) GetDiscount(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dto, err := h.service.GetDiscount(c.Request.Context(), tenantID, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ValidateDiscount handles POST /api/v1/discounts/validate
func (h *DiscountHandler) ValidateDiscount(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.ValidateDiscount(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
