package bookings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/middleware"
	"github.com/roomatlas/pg-marketplace/pkg/pagination"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers authenticated booking routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	b := rg.Group("/bookings")
	{
		b.POST("", h.CreateBooking)
		b.GET("", h.ListMyBookings)
		b.GET("/:id", h.GetBooking)
		b.POST("/:id/cancel", h.CancelBooking)
	}
}

// RegisterWebhookRoutes registers the payment provider callback. The provider
// authenticates with a shared-secret header checked upstream, not user JWTs.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/callback", h.PaymentCallback)
}

// CreateBooking reserves a listing for the authenticated tenant
func (h *Handler) CreateBooking(c *gin.Context) {
	tenantID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), tenantID, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to create booking")
		return
	}

	common.CreatedResponse(c, booking)
}

// GetBooking returns one of the authenticated user's bookings
func (h *Handler) GetBooking(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking ID")
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to get booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// CancelBooking cancels one of the authenticated tenant's bookings
func (h *Handler) CancelBooking(c *gin.Context) {
	tenantID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking ID")
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), id, tenantID)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// ListMyBookings lists the authenticated user's bookings. Owners see bookings
// against their listings; tenants see their own reservations.
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	params := pagination.ParseParams(c)

	var (
		items []*Booking
		total int64
	)
	if role, ok := c.Get("user_role"); ok && role == middleware.RoleOwner {
		items, total, err = h.service.ListOwnerBookings(c.Request.Context(), userID, params.Limit, params.Offset)
	} else {
		items, total, err = h.service.ListTenantBookings(c.Request.Context(), userID, params.Limit, params.Offset)
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list bookings")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// PaymentCallback applies a payment provider notification
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.HandlePaymentCallback(c.Request.Context(), &req); err != nil {
		respondServiceError(c, err, "Failed to process payment callback")
		return
	}

	common.SuccessResponse(c, gin.H{"processed": true})
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
