package risk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRiskRouter(repo *mockRiskRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewHandler(newTestService(repo))

	admin := router.Group("/api/v1/admin")
	handler.RegisterAdminRoutes(admin)

	return router
}

func TestGetDashboardEndpoint(t *testing.T) {
	repo := new(mockRiskRepository)
	router := setupRiskRouter(repo)

	top := []*OwnerRiskSummary{
		{OwnerID: uuid.New(), RiskScore: 80, RiskLevel: RiskLevelHigh},
		{OwnerID: uuid.New(), RiskScore: 45, RiskLevel: RiskLevelMedium},
	}
	repo.On("GetTopRiskOwners", mock.Anything, 2).Return(top, nil).Once()
	repo.On("GetRecentEvents", mock.Anything, 50).Return([]*SuspiciousEvent{}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/risk/dashboard?limit=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool      `json:"success"`
		Data    Dashboard `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.TopOwners, 2)
	assert.Equal(t, 80, resp.Data.TopOwners[0].RiskScore)
	assert.Equal(t, 45, resp.Data.TopOwners[1].RiskScore)
	repo.AssertExpectations(t)
}

func TestGetDashboardEndpointInvalidLimit(t *testing.T) {
	repo := new(mockRiskRepository)
	router := setupRiskRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/risk/dashboard?limit=abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOwnerRiskEndpoint(t *testing.T) {
	repo := new(mockRiskRepository)
	router := setupRiskRouter(repo)
	ownerID := uuid.New()

	summary := &OwnerRiskSummary{OwnerID: ownerID, RiskScore: 35, RiskLevel: RiskLevelMedium}
	repo.On("GetOwnerRisk", mock.Anything, ownerID).Return(summary, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/risk/owners/"+ownerID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool             `json:"success"`
		Data    OwnerRiskSummary `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ownerID, resp.Data.OwnerID)
	assert.Equal(t, 35, resp.Data.RiskScore)
	repo.AssertExpectations(t)
}

func TestGetOwnerRiskEndpointInvalidID(t *testing.T) {
	repo := new(mockRiskRepository)
	router := setupRiskRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/risk/owners/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOwnerRiskEndpointNotFound(t *testing.T) {
	repo := new(mockRiskRepository)
	router := setupRiskRouter(repo)
	ownerID := uuid.New()

	repo.On("GetOwnerRisk", mock.Anything, ownerID).Return((*OwnerRiskSummary)(nil), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/risk/owners/"+ownerID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecomputeOwnerEndpoint(t *testing.T) {
	repo := new(mockRiskRepository)
	router := setupRiskRouter(repo)
	ownerID := uuid.New()
	since := serviceNow.Add(-Window)

	repo.On("GetOwnerEvents", mock.Anything, ownerID, since).Return([]SuspiciousEvent(nil), nil).Once()
	repo.On("CountOwnerViews", mock.Anything, ownerID, since).Return(0, nil).Once()
	repo.On("GetOwnerBookingOutcomes", mock.Anything, ownerID, since).Return([]BookingOutcome(nil), nil).Once()
	repo.On("UpsertOwnerRisk", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("ApplyOwnerPenalty", mock.Anything, ownerID, PenaltyNone, true, serviceNow).Return(int64(0), nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/risk/owners/"+ownerID.String()+"/recompute", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}
