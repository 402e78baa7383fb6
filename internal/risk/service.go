package risk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/roomatlas/pg-marketplace/pkg/cache"
	"github.com/roomatlas/pg-marketplace/pkg/eventbus"
	"github.com/roomatlas/pg-marketplace/pkg/logger"
	"go.uber.org/zap"
)

var eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "risk_events_dropped_total",
	Help: "Suspicious-activity events dropped due to invalid input",
})

// Service orchestrates the risk pipeline: signal recording, score
// recomputation, penalty application and the operator dashboard.
type Service struct {
	repo  RepositoryInterface
	cache *cache.Manager
	bus   Publisher
	now   func() time.Time
}

// NewService creates a new risk service. cache and bus may be nil; both are
// best-effort collaborators.
func NewService(repo RepositoryInterface, cacheManager *cache.Manager, bus Publisher) *Service {
	return &Service{
		repo:  repo,
		cache: cacheManager,
		bus:   bus,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TrackSuspiciousEvent appends a suspicious-activity event. Invalid input is a
// silent no-op: this is a best-effort telemetry sink and must never fail the
// caller's primary operation. The drop is still counted and logged.
func (s *Service) TrackSuspiciousEvent(ctx context.Context, in TrackEventInput) error {
	if in.EventType == "" || in.OwnerID == uuid.Nil {
		eventsDroppedTotal.Inc()
		logger.WarnContext(ctx, "dropped suspicious event with invalid input",
			zap.String("event_type", in.EventType),
			zap.String("owner_id", in.OwnerID.String()),
		)
		return nil
	}

	severity := in.Severity
	if severity < 1 {
		severity = SeverityDefault
	}

	event := &SuspiciousEvent{
		ID:         uuid.New(),
		EventType:  in.EventType,
		OwnerID:    in.OwnerID,
		UserID:     in.UserID,
		PropertyID: in.PropertyID,
		Severity:   severity,
		Details:    in.Details,
		CreatedAt:  s.now(),
	}

	return s.repo.InsertEvent(ctx, event)
}

// RecordPropertyView appends a property-view impression.
func (s *Service) RecordPropertyView(ctx context.Context, propertyID, ownerID uuid.UUID, userID *uuid.UUID) error {
	if propertyID == uuid.Nil || ownerID == uuid.Nil {
		eventsDroppedTotal.Inc()
		return nil
	}

	view := &PropertyView{
		ID:         uuid.New(),
		PropertyID: propertyID,
		OwnerID:    ownerID,
		UserID:     userID,
		CreatedAt:  s.now(),
	}

	return s.repo.InsertView(ctx, view)
}

// RecomputeOwnerRisk rebuilds the owner's risk snapshot from the rolling
// window and applies the resulting penalty to every listing the owner has.
// Returns (nil, nil) for an invalid owner ID.
//
// The reads are not snapshot-isolated; a recompute racing a new booking may
// miss it for one cycle. Recompute is triggered on every relevant event, so
// the snapshot self-heals, and concurrent recomputes for the same owner race
// harmlessly to the same values (last writer wins).
func (s *Service) RecomputeOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*OwnerRiskSummary, error) {
	if ownerID == uuid.Nil {
		return nil, nil
	}

	now := s.now()
	since := now.Add(-Window)

	events, err := s.repo.GetOwnerEvents(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	views, err := s.repo.CountOwnerViews(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.GetOwnerBookingOutcomes(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	summary := ComputeRiskSummary(ownerID, ScoringInput{
		Events:      events,
		RecentViews: views,
		Bookings:    bookings,
	}, now)

	if err := s.repo.UpsertOwnerRisk(ctx, &summary); err != nil {
		return nil, err
	}

	updated, err := s.repo.ApplyOwnerPenalty(ctx, ownerID,
		summary.Penalties.RankingPenaltyLevel,
		summary.Penalties.FeaturedEligible,
		now,
	)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("owner risk recomputed",
		zap.String("owner_id", ownerID.String()),
		zap.Int("risk_score", summary.RiskScore),
		zap.String("risk_level", string(summary.RiskLevel)),
		zap.Int64("properties_updated", updated),
	)

	s.invalidateDashboard(ctx, ownerID)
	s.publishRecompute(ctx, &summary)

	return &summary, nil
}

// GetOwnerRisk returns the current snapshot for one owner.
func (s *Service) GetOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*OwnerRiskSummary, error) {
	return s.repo.GetOwnerRisk(ctx, ownerID)
}

// GetAdminRiskDashboard returns the top-risk owners and the most recent
// events for operator review. limit is clamped to [1, 100], default 20.
func (s *Service) GetAdminRiskDashboard(ctx context.Context, limit int) (*Dashboard, error) {
	if limit <= 0 {
		limit = dashboardDefaultLimit
	}
	if limit > dashboardMaxLimit {
		limit = dashboardMaxLimit
	}

	if s.cache != nil {
		var cached Dashboard
		if err := s.cache.Get(ctx, cache.Keys.RiskDashboard(limit), &cached); err == nil {
			return &cached, nil
		}
	}

	topOwners, err := s.repo.GetTopRiskOwners(ctx, limit)
	if err != nil {
		return nil, err
	}

	recentEvents, err := s.repo.GetRecentEvents(ctx, dashboardRecentEvents)
	if err != nil {
		return nil, err
	}

	if topOwners == nil {
		topOwners = []*OwnerRiskSummary{}
	}
	if recentEvents == nil {
		recentEvents = []*SuspiciousEvent{}
	}

	dashboard := &Dashboard{
		TopOwners:    topOwners,
		RecentEvents: recentEvents,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.Keys.RiskDashboard(limit), dashboard, cache.TTL.Dashboard()); err != nil {
			logger.WarnContext(ctx, "failed to cache risk dashboard", zap.Error(err))
		}
	}

	return dashboard, nil
}

func (s *Service) invalidateDashboard(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}

	keys := []string{cache.Keys.OwnerRisk(ownerID.String())}
	for _, limit := range []int{dashboardDefaultLimit, dashboardMaxLimit} {
		keys = append(keys, cache.Keys.RiskDashboard(limit))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.WarnContext(ctx, "failed to invalidate risk cache", zap.Error(err))
	}
}

func (s *Service) publishRecompute(ctx context.Context, summary *OwnerRiskSummary) {
	if s.bus == nil {
		return
	}

	event, err := eventbus.NewEvent("risk.recomputed", "risk-service", eventbus.RiskEvent{
		OwnerID:   summary.OwnerID,
		RiskScore: summary.RiskScore,
		RiskLevel: string(summary.RiskLevel),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build risk event", zap.Error(err))
		return
	}

	if err := s.bus.Publish(ctx, eventbus.SubjectRiskRecomputed, event); err != nil {
		logger.WarnContext(ctx, "failed to publish risk event", zap.Error(err))
	}
}
