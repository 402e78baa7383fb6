package properties

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/middleware"
	"github.com/roomatlas/pg-marketplace/pkg/pagination"
)

// Handler handles HTTP requests for property listings
type Handler struct {
	service *Service
}

// NewHandler creates a new properties handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes registers tenant-facing routes. Auth is optional here:
// anonymous browsing is allowed, but a logged-in viewer is attributed on the
// impression record.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/properties")
	{
		p.GET("", h.SearchProperties)
		p.GET("/:id", h.GetProperty)
	}
}

// RegisterOwnerRoutes registers owner-facing listing management routes
func (h *Handler) RegisterOwnerRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/properties")
	{
		p.POST("", h.CreateProperty)
		p.GET("/mine", h.ListMyProperties)
		p.PUT("/:id", h.UpdateProperty)
		p.DELETE("/:id", h.DeactivateProperty)
	}
}

// SearchProperties lists active listings matching query filters
func (h *Handler) SearchProperties(c *gin.Context) {
	filters := SearchFilters{
		City:         c.Query("city"),
		PropertyType: PropertyType(c.Query("type")),
	}

	if minRent := c.Query("min_rent"); minRent != "" {
		parsed, err := strconv.ParseInt(minRent, 10, 64)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid min_rent value")
			return
		}
		filters.MinRent = parsed
	}
	if maxRent := c.Query("max_rent"); maxRent != "" {
		parsed, err := strconv.ParseInt(maxRent, 10, 64)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid max_rent value")
			return
		}
		filters.MaxRent = parsed
	}

	params := pagination.ParseParams(c)
	items, total, err := h.service.SearchProperties(c.Request.Context(), filters, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to search properties")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetProperty returns a listing detail page
func (h *Handler) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid property ID")
		return
	}

	var viewerID *uuid.UUID
	if userID, err := middleware.GetUserID(c); err == nil {
		viewerID = &userID
	}

	property, err := h.service.GetProperty(c.Request.Context(), id, viewerID)
	if err != nil {
		respondServiceError(c, err, "Failed to get property")
		return
	}

	common.SuccessResponse(c, property)
}

// CreateProperty creates a listing for the authenticated owner
func (h *Handler) CreateProperty(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to create property")
		return
	}

	common.CreatedResponse(c, property)
}

// ListMyProperties lists the authenticated owner's listings
func (h *Handler) ListMyProperties(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := h.service.ListOwnerProperties(c.Request.Context(), ownerID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list properties")
		return
	}

	common.SuccessResponse(c, items)
}

// UpdateProperty updates one of the authenticated owner's listings
func (h *Handler) UpdateProperty(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid property ID")
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	property, err := h.service.UpdateProperty(c.Request.Context(), id, ownerID, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update property")
		return
	}

	common.SuccessResponse(c, property)
}

// DeactivateProperty takes one of the authenticated owner's listings off the market
func (h *Handler) DeactivateProperty(c *gin.Context) {
	ownerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid property ID")
		return
	}

	if err := h.service.DeactivateProperty(c.Request.Context(), id, ownerID); err != nil {
		respondServiceError(c, err, "Failed to deactivate property")
		return
	}

	common.SuccessResponse(c, gin.H{"deactivated": true})
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.AppErrorResponse(c, appErr)
		return
	}
	common.ErrorResponse(c, http.StatusInternalServerError, fallback)
}
