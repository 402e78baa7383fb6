package risk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/pkg/eventbus"
)

// RepositoryInterface defines the persistence operations required by the service.
type RepositoryInterface interface {
	// Append-only signal log
	InsertEvent(ctx context.Context, event *SuspiciousEvent) error
	InsertView(ctx context.Context, view *PropertyView) error

	// Window reads for aggregation
	GetOwnerEvents(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]SuspiciousEvent, error)
	CountOwnerViews(ctx context.Context, ownerID uuid.UUID, since time.Time) (int, error)
	GetOwnerBookingOutcomes(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]BookingOutcome, error)

	// Snapshot and penalty writes
	UpsertOwnerRisk(ctx context.Context, summary *OwnerRiskSummary) error
	ApplyOwnerPenalty(ctx context.Context, ownerID uuid.UUID, level PenaltyLevel, featuredEligible bool, updatedAt time.Time) (int64, error)

	// Dashboard reads
	GetOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*OwnerRiskSummary, error)
	GetTopRiskOwners(ctx context.Context, limit int) ([]*OwnerRiskSummary, error)
	GetRecentEvents(ctx context.Context, limit int) ([]*SuspiciousEvent, error)
}

// Publisher abstracts the event bus so the service can announce recomputes
// without requiring a live NATS connection.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
