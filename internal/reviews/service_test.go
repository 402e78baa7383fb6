package reviews

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*Review, int64, error) {
	args := m.Called(ctx, propertyID, limit, offset)
	items, _ := args.Get(0).([]*Review)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockReviewRepository) GetRatingSummary(ctx context.Context, propertyID uuid.UUID) (*RatingSummary, error) {
	args := m.Called(ctx, propertyID)
	summary, _ := args.Get(0).(*RatingSummary)
	return summary, args.Error(1)
}

func (m *mockReviewRepository) HasReviewed(ctx context.Context, propertyID, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, propertyID, tenantID)
	return args.Bool(0), args.Error(1)
}

type mockRiskRecorder struct {
	mock.Mock
}

func (m *mockRiskRecorder) TrackSuspiciousEvent(ctx context.Context, in risk.TrackEventInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *mockRiskRecorder) RecomputeOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*risk.OwnerRiskSummary, error) {
	args := m.Called(ctx, ownerID)
	summary, _ := args.Get(0).(*risk.OwnerRiskSummary)
	return summary, args.Error(1)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewRepository)
	service := NewService(repo, nil, nil)

	propertyID := uuid.New()
	tenantID := uuid.New()

	repo.On("HasReviewed", ctx, propertyID, tenantID).Return(false, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(r *Review) bool {
		return r.PropertyID == propertyID && r.TenantID == tenantID && r.Rating == 4
	})).Return(nil).Once()

	review, err := service.SubmitReview(ctx, propertyID, tenantID, &SubmitReviewRequest{
		Rating:  4,
		Comment: "Clean rooms, responsive owner",
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, review.Rating)
	repo.AssertExpectations(t)
}

func TestSubmitReviewRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewRepository)
	service := NewService(repo, nil, nil)

	propertyID := uuid.New()
	tenantID := uuid.New()
	repo.On("HasReviewed", ctx, propertyID, tenantID).Return(true, nil).Once()

	_, err := service.SubmitReview(ctx, propertyID, tenantID, &SubmitReviewRequest{Rating: 5})

	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReportOwnerTracksFraudReportAndRecomputes(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewRepository)
	riskSvc := new(mockRiskRecorder)
	service := NewService(repo, riskSvc, nil)

	ownerID := uuid.New()
	tenantID := uuid.New()
	propertyID := uuid.New()

	riskSvc.On("TrackSuspiciousEvent", ctx, mock.MatchedBy(func(in risk.TrackEventInput) bool {
		return in.EventType == risk.EventTypeFraudReport &&
			in.OwnerID == ownerID &&
			in.Severity == risk.SeverityFraudReport &&
			in.UserID != nil && *in.UserID == tenantID
	})).Return(nil).Once()
	riskSvc.On("RecomputeOwnerRisk", ctx, ownerID).Return(&risk.OwnerRiskSummary{
		OwnerID: ownerID, RiskScore: 18, RiskLevel: risk.RiskLevelLow,
	}, nil).Once()

	err := service.ReportOwner(ctx, ownerID, tenantID, &FraudReportRequest{
		PropertyID: &propertyID,
		Reason:     "listing photos belong to a different building",
	})

	assert.NoError(t, err)
	riskSvc.AssertExpectations(t)
}

func TestReportOwnerPropagatesRecomputeError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewRepository)
	riskSvc := new(mockRiskRecorder)
	service := NewService(repo, riskSvc, nil)

	ownerID := uuid.New()
	expectedErr := errors.New("db down")

	riskSvc.On("TrackSuspiciousEvent", ctx, mock.Anything).Return(nil).Once()
	riskSvc.On("RecomputeOwnerRisk", ctx, ownerID).Return((*risk.OwnerRiskSummary)(nil), expectedErr).Once()

	err := service.ReportOwner(ctx, ownerID, uuid.New(), &FraudReportRequest{Reason: "fake listing"})

	assert.ErrorIs(t, err, expectedErr)
}
