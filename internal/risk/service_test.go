package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRiskRepository struct {
	mock.Mock
}

func (m *mockRiskRepository) InsertEvent(ctx context.Context, event *SuspiciousEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockRiskRepository) InsertView(ctx context.Context, view *PropertyView) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *mockRiskRepository) GetOwnerEvents(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]SuspiciousEvent, error) {
	args := m.Called(ctx, ownerID, since)
	events, _ := args.Get(0).([]SuspiciousEvent)
	return events, args.Error(1)
}

func (m *mockRiskRepository) CountOwnerViews(ctx context.Context, ownerID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, ownerID, since)
	return args.Int(0), args.Error(1)
}

func (m *mockRiskRepository) GetOwnerBookingOutcomes(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]BookingOutcome, error) {
	args := m.Called(ctx, ownerID, since)
	outcomes, _ := args.Get(0).([]BookingOutcome)
	return outcomes, args.Error(1)
}

func (m *mockRiskRepository) UpsertOwnerRisk(ctx context.Context, summary *OwnerRiskSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *mockRiskRepository) ApplyOwnerPenalty(ctx context.Context, ownerID uuid.UUID, level PenaltyLevel, featuredEligible bool, updatedAt time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, level, featuredEligible, updatedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRiskRepository) GetOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*OwnerRiskSummary, error) {
	args := m.Called(ctx, ownerID)
	summary, _ := args.Get(0).(*OwnerRiskSummary)
	return summary, args.Error(1)
}

func (m *mockRiskRepository) GetTopRiskOwners(ctx context.Context, limit int) ([]*OwnerRiskSummary, error) {
	args := m.Called(ctx, limit)
	summaries, _ := args.Get(0).([]*OwnerRiskSummary)
	return summaries, args.Error(1)
}

func (m *mockRiskRepository) GetRecentEvents(ctx context.Context, limit int) ([]*SuspiciousEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*SuspiciousEvent)
	return events, args.Error(1)
}

var serviceNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRiskRepository) *Service {
	return NewService(repo, nil, nil).WithClock(func() time.Time { return serviceNow })
}

func TestTrackSuspiciousEventInvalidOwnerIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	err := service.TrackSuspiciousEvent(ctx, TrackEventInput{
		EventType: EventTypeFraudReport,
		OwnerID:   uuid.Nil,
	})

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything)
}

func TestTrackSuspiciousEventEmptyTypeIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	err := service.TrackSuspiciousEvent(ctx, TrackEventInput{
		EventType: "",
		OwnerID:   uuid.New(),
	})

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything)
}

func TestTrackSuspiciousEventDefaultsSeverity(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)
	ownerID := uuid.New()

	repo.On("InsertEvent", ctx, mock.MatchedBy(func(e *SuspiciousEvent) bool {
		return e.OwnerID == ownerID && e.Severity == 1 && e.CreatedAt == serviceNow
	})).Return(nil).Once()

	err := service.TrackSuspiciousEvent(ctx, TrackEventInput{
		EventType: EventTypePaymentFailed,
		OwnerID:   ownerID,
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTrackSuspiciousEventKeepsCallerSeverity(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	repo.On("InsertEvent", ctx, mock.MatchedBy(func(e *SuspiciousEvent) bool {
		return e.Severity == SeverityFraudReport
	})).Return(nil).Once()

	err := service.TrackSuspiciousEvent(ctx, TrackEventInput{
		EventType: EventTypeFraudReport,
		OwnerID:   uuid.New(),
		Severity:  SeverityFraudReport,
	})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordPropertyViewAppends(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)
	propertyID := uuid.New()
	ownerID := uuid.New()

	repo.On("InsertView", ctx, mock.MatchedBy(func(v *PropertyView) bool {
		return v.PropertyID == propertyID && v.OwnerID == ownerID && v.UserID == nil
	})).Return(nil).Once()

	err := service.RecordPropertyView(ctx, propertyID, ownerID, nil)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordPropertyViewInvalidIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	err := service.RecordPropertyView(ctx, uuid.Nil, uuid.New(), nil)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "InsertView", mock.Anything, mock.Anything)
}

func TestRecomputeOwnerRiskInvalidOwnerReturnsNil(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	summary, err := service.RecomputeOwnerRisk(ctx, uuid.Nil)

	assert.NoError(t, err)
	assert.Nil(t, summary)
	repo.AssertNotCalled(t, "GetOwnerEvents", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecomputeOwnerRiskHappyPath(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)
	ownerID := uuid.New()
	since := serviceNow.Add(-Window)

	events := []SuspiciousEvent{{ID: uuid.New(), EventType: EventTypePaymentFailed, OwnerID: ownerID, Severity: 16}}
	repo.On("GetOwnerEvents", ctx, ownerID, since).Return(events, nil).Once()
	repo.On("CountOwnerViews", ctx, ownerID, since).Return(10, nil).Once()
	repo.On("GetOwnerBookingOutcomes", ctx, ownerID, since).Return([]BookingOutcome(nil), nil).Once()

	repo.On("UpsertOwnerRisk", ctx, mock.MatchedBy(func(s *OwnerRiskSummary) bool {
		return s.OwnerID == ownerID &&
			s.RiskScore == 16 &&
			s.RiskLevel == RiskLevelLow &&
			s.Metrics.RecentViews == 10 &&
			s.UpdatedAt == serviceNow
	})).Return(nil).Once()

	repo.On("ApplyOwnerPenalty", ctx, ownerID, PenaltyLow, true, serviceNow).Return(int64(3), nil).Once()

	summary, err := service.RecomputeOwnerRisk(ctx, ownerID)

	assert.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Equal(t, 16, summary.RiskScore)
	assert.Equal(t, RiskLevelLow, summary.RiskLevel)
	repo.AssertExpectations(t)
}

func TestRecomputeOwnerRiskPropagatesReadError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)
	ownerID := uuid.New()
	since := serviceNow.Add(-Window)
	expectedErr := errors.New("db down")

	repo.On("GetOwnerEvents", ctx, ownerID, since).Return([]SuspiciousEvent(nil), expectedErr).Once()

	summary, err := service.RecomputeOwnerRisk(ctx, ownerID)

	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, summary)
	repo.AssertNotCalled(t, "UpsertOwnerRisk", mock.Anything, mock.Anything)
}

func TestRecomputeOwnerRiskPenaltyMatchesScore(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)
	ownerID := uuid.New()
	since := serviceNow.Add(-Window)

	events := []SuspiciousEvent{{ID: uuid.New(), EventType: EventTypeFraudReport, OwnerID: ownerID, Severity: 70}}
	repo.On("GetOwnerEvents", ctx, ownerID, since).Return(events, nil).Once()
	repo.On("CountOwnerViews", ctx, ownerID, since).Return(0, nil).Once()
	repo.On("GetOwnerBookingOutcomes", ctx, ownerID, since).Return([]BookingOutcome(nil), nil).Once()
	repo.On("UpsertOwnerRisk", ctx, mock.Anything).Return(nil).Once()

	// High score must revoke featured placement on every listing
	repo.On("ApplyOwnerPenalty", ctx, ownerID, PenaltyHigh, false, serviceNow).Return(int64(12), nil).Once()

	summary, err := service.RecomputeOwnerRisk(ctx, ownerID)

	assert.NoError(t, err)
	assert.Equal(t, RiskLevelHigh, summary.RiskLevel)
	repo.AssertExpectations(t)
}

func TestGetAdminRiskDashboardDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	repo.On("GetTopRiskOwners", ctx, 20).Return([]*OwnerRiskSummary{}, nil).Once()
	repo.On("GetRecentEvents", ctx, 50).Return([]*SuspiciousEvent{}, nil).Once()

	dashboard, err := service.GetAdminRiskDashboard(ctx, 0)

	assert.NoError(t, err)
	assert.NotNil(t, dashboard.TopOwners)
	assert.NotNil(t, dashboard.RecentEvents)
	repo.AssertExpectations(t)
}

func TestGetAdminRiskDashboardClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	repo.On("GetTopRiskOwners", ctx, 100).Return([]*OwnerRiskSummary{}, nil).Once()
	repo.On("GetRecentEvents", ctx, 50).Return([]*SuspiciousEvent{}, nil).Once()

	_, err := service.GetAdminRiskDashboard(ctx, 1000)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetAdminRiskDashboardOrdering(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := newTestService(repo)

	top := []*OwnerRiskSummary{
		{OwnerID: uuid.New(), RiskScore: 80, RiskLevel: RiskLevelHigh},
		{OwnerID: uuid.New(), RiskScore: 45, RiskLevel: RiskLevelMedium},
	}
	repo.On("GetTopRiskOwners", ctx, 2).Return(top, nil).Once()
	repo.On("GetRecentEvents", ctx, 50).Return([]*SuspiciousEvent{}, nil).Once()

	dashboard, err := service.GetAdminRiskDashboard(ctx, 2)

	assert.NoError(t, err)
	assert.Len(t, dashboard.TopOwners, 2)
	assert.Equal(t, 80, dashboard.TopOwners[0].RiskScore)
	assert.Equal(t, 45, dashboard.TopOwners[1].RiskScore)
	repo.AssertExpectations(t)
}
