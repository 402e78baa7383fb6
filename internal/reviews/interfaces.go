package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
)

// RepositoryInterface defines the reviews repository contract
type RepositoryInterface interface {
	Create(ctx context.Context, review *Review) error
	ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*Review, int64, error)
	GetRatingSummary(ctx context.Context, propertyID uuid.UUID) (*RatingSummary, error)
	HasReviewed(ctx context.Context, propertyID, tenantID uuid.UUID) (bool, error)
}

// RiskRecorder is the slice of the risk pipeline fraud reports feed.
type RiskRecorder interface {
	TrackSuspiciousEvent(ctx context.Context, in risk.TrackEventInput) error
	RecomputeOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*risk.OwnerRiskSummary, error)
}
