package reviews

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/middleware"
	"github.com/roomatlas/pg-marketplace/pkg/pagination"
)

// Handler handles HTTP requests for reviews and fraud reports
type Handler struct {
	service *Service
}

// NewHandler creates a new reviews handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes registers unauthenticated review reads
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/properties/:id/reviews", h.ListReviews)
	rg.GET("/properties/:id/rating", h.GetRating)
}

// RegisterTenantRoutes registers authenticated tenant actions
func (h *Handler) RegisterTenantRoutes(rg *gin.RouterGroup) {
	rg.POST("/properties/:id/reviews", h.SubmitReview)
	rg.POST("/owners/:id/report", h.ReportOwner)
}

// ListReviews lists a listing's reviews
func (h *Handler) ListReviews(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid property ID")
		return
	}

	params := pagination.ParseParams(c)
	items, total, err := h.service.ListPropertyReviews(c.Request.Context(), propertyID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list reviews")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetRating returns a listing's aggregate rating
func (h *Handler) GetRating(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid property ID")
		return
	}

	summary, err := h.service.GetRatingSummary(c.Request.Context(), propertyID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get rating")
		return
	}

	common.SuccessResponse(c, summary)
}

// SubmitReview records the authenticated tenant's review of a listing
func (h *Handler) SubmitReview(c *gin.Context) {
	tenantID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid property ID")
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), propertyID, tenantID, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to submit review")
		return
	}

	common.CreatedResponse(c, review)
}

// ReportOwner records the authenticated tenant's fraud report against an owner
func (h *Handler) ReportOwner(c *gin.Context) {
	tenantID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid owner ID")
		return
	}

	var req FraudReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ReportOwner(c.Request.Context(), ownerID, tenantID, &req); err != nil {
		respondServiceError(c, err, "Failed to submit report")
		return
	}

	common.SuccessResponse(c, gin.H{"reported": true})
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
