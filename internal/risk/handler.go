package risk

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/pkg/common"
)

// Handler handles HTTP requests for the risk back office
type Handler struct {
	service *Service
}

// NewHandler creates a new risk handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes registers risk routes on an admin router group.
// Authentication and the admin-role check are the caller's middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	riskGroup := rg.Group("/risk")
	{
		riskGroup.GET("/dashboard", h.GetDashboard)
		riskGroup.GET("/owners/:id", h.GetOwnerRisk)
		riskGroup.POST("/owners/:id/recompute", h.RecomputeOwner)
	}
}

// GetDashboard returns the top-risk owners and recent suspicious events
func (h *Handler) GetDashboard(c *gin.Context) {
	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	dashboard, err := h.service.GetAdminRiskDashboard(c.Request.Context(), limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load risk dashboard")
		return
	}

	common.SuccessResponse(c, dashboard)
}

// GetOwnerRisk returns the current risk snapshot for one owner
func (h *Handler) GetOwnerRisk(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid owner ID")
		return
	}

	summary, err := h.service.GetOwnerRisk(c.Request.Context(), ownerID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get owner risk")
		return
	}
	if summary == nil {
		common.ErrorResponse(c, http.StatusNotFound, "owner risk not found")
		return
	}

	common.SuccessResponse(c, summary)
}

// RecomputeOwner triggers a manual recompute for one owner
func (h *Handler) RecomputeOwner(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid owner ID")
		return
	}

	summary, err := h.service.RecomputeOwnerRisk(c.Request.Context(), ownerID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to recompute owner risk")
		return
	}

	common.SuccessResponse(c, summary)
}
