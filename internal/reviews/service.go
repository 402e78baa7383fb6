package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/eventbus"
	"github.com/roomatlas/pg-marketplace/pkg/logger"
	"go.uber.org/zap"
)

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// Service handles review business logic and routes tenant fraud reports into
// the risk pipeline.
type Service struct {
	repo RepositoryInterface
	risk RiskRecorder
	bus  Publisher
}

// NewService creates a new reviews service. risk and bus may be nil.
func NewService(repo RepositoryInterface, riskService RiskRecorder, bus Publisher) *Service {
	return &Service{repo: repo, risk: riskService, bus: bus}
}

// SubmitReview records a tenant's review of a listing, one per tenant
func (s *Service) SubmitReview(ctx context.Context, propertyID, tenantID uuid.UUID, req *SubmitReviewRequest) (*Review, error) {
	reviewed, err := s.repo.HasReviewed(ctx, propertyID, tenantID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, common.NewConflictError("property already reviewed")
	}

	review := &Review{
		PropertyID: propertyID,
		TenantID:   tenantID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListPropertyReviews lists a listing's reviews with pagination
func (s *Service) ListPropertyReviews(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*Review, int64, error) {
	return s.repo.ListByProperty(ctx, propertyID, limit, offset)
}

// GetRatingSummary aggregates a listing's rating
func (s *Service) GetRatingSummary(ctx context.Context, propertyID uuid.UUID) (*RatingSummary, error) {
	return s.repo.GetRatingSummary(ctx, propertyID)
}

// ReportOwner records a tenant fraud report against an owner. The report is
// the heaviest single risk signal and triggers an immediate re-score.
func (s *Service) ReportOwner(ctx context.Context, ownerID, tenantID uuid.UUID, req *FraudReportRequest) error {
	err := s.risk.TrackSuspiciousEvent(ctx, risk.TrackEventInput{
		EventType:  risk.EventTypeFraudReport,
		OwnerID:    ownerID,
		UserID:     &tenantID,
		PropertyID: req.PropertyID,
		Severity:   risk.SeverityFraudReport,
		Details:    map[string]interface{}{"reason": req.Reason},
	})
	if err != nil {
		return err
	}

	summary, err := s.risk.RecomputeOwnerRisk(ctx, ownerID)
	if err != nil {
		return err
	}

	s.publishFraudReport(ctx, summary)
	return nil
}

func (s *Service) publishFraudReport(ctx context.Context, summary *risk.OwnerRiskSummary) {
	if s.bus == nil || summary == nil {
		return
	}

	event, err := eventbus.NewEvent(eventbus.SubjectFraudReported, "reviews-service", eventbus.RiskEvent{
		OwnerID:   summary.OwnerID,
		RiskScore: summary.RiskScore,
		RiskLevel: string(summary.RiskLevel),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build fraud report event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectFraudReported, event); err != nil {
		logger.WarnContext(ctx, "failed to publish fraud report event", zap.Error(err))
	}
}
