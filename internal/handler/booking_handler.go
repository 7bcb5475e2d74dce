package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivehub/service-booking/internal/application"
	"github.com/drivehub/service-booking/internal/auth"
	"github.com/drivehub/service-booking/internal/domain/reservation"
	"github.com/drivehub/service-booking/internal/middleware"
	"github.com/drivehub/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for reservation operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all reservation routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	reservations := r.Group("/reservations")
	reservations.Use(middleware.Auth(jwtManager))
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.GET("/number/:number", h.GetReservationByNumber)
		reservations.POST("/:id/cancel", h.CancelReservation)
		reservations.POST("/:id/pickup", h.Pickup)
		reservations.POST("/:id/dropoff", h.Dropoff)
		reservations.POST("/:id/no-show", middleware.RequireRole(auth.RoleAdmin), h.MarkNoShow)
	}
}

// CreateReservation handles POST /api/v1/reservations
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreateReservation(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListReservations handles GET /api/v1/reservations
func (h *BookingHandler) ListReservations(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status := reservation.Status(c.Query("status"))
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	dtos, total, err := h.service.ListReservations(c.Request.Context(), tenantID, status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"items": dtos,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetReservation handles GET /api/v1/reservations/:id
func (h *BookingHandler) GetReservation(c *gin.Context) {
	tenantID, reservationID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	dto, err := h.service.GetReservation(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetReservationByNumber handles GET /api/v1/reservations/number/:number
func (h *BookingHandler) GetReservationByNumber(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dto, err := h.service.GetReservationByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CancelReservation handles POST /api/v1/reservations/:id/cancel
func (h *BookingHandler) CancelReservation(c *gin.Context) {
	tenantID, reservationID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	dto, err := h.service.Cancel(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// Pickup handles POST /api/v1/reservations/:id/pickup
func (h *BookingHandler) Pickup(c *gin.Context) {
	tenantID, reservationID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	dto, err := h.service.Pickup(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// Dropoff handles POST /api/v1/reservations/:id/dropoff
func (h *BookingHandler) Dropoff(c *gin.Context) {
	tenantID, reservationID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	dto, err := h.service.Dropoff(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// MarkNoShow handles POST /api/v1/reservations/:id/no-show
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	tenantID, reservationID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	dto, err := h.service.MarkNoShow(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

func (h *BookingHandler) tenantAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, reservationID, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
