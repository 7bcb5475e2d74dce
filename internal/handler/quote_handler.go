package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivehub/service-booking/internal/application"
	"github.com/drivehub/service-booking/internal/auth"
	"github.com/drivehub/service-booking/internal/middleware"
	"github.com/drivehub/service-booking/internal/response"
)

// QuoteHandler handles HTTP requests for price quotes.
type QuoteHandler struct {
	service *application.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(service *application.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// RegisterRoutes registers the quote routes on the given router group.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	quotes := r.Group("/quotes")
	quotes.Use(middleware.Auth(jwtManager))
	{
		quotes.POST("", h.Quote)
	}
}

// Quote handles POST /api/v1/quotes
func (h *QuoteHandler) Quote(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.Quote(c.Request.Context(), tenantID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
