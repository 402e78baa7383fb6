package risk

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles risk pipeline data operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new risk repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// InsertEvent appends a suspicious-activity event
func (r *Repository) InsertEvent(ctx context.Context, event *SuspiciousEvent) error {
	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO suspicious_events (
			id, event_type, owner_id, user_id, property_id, severity, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.OwnerID,
		event.UserID,
		event.PropertyID,
		event.Severity,
		detailsJSON,
		event.CreatedAt,
	)

	return err
}

// InsertView appends a property-view impression
func (r *Repository) InsertView(ctx context.Context, view *PropertyView) error {
	query := `
		INSERT INTO property_views (id, property_id, owner_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		view.ID,
		view.PropertyID,
		view.OwnerID,
		view.UserID,
		view.CreatedAt,
	)

	return err
}

// GetOwnerEvents returns the owner's suspicious events created since the
// given time, newest first.
func (r *Repository) GetOwnerEvents(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]SuspiciousEvent, error) {
	query := `
		SELECT id, event_type, owner_id, user_id, property_id, severity, details, created_at
		FROM suspicious_events
		WHERE owner_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountOwnerViews counts the owner's property views since the given time
func (r *Repository) CountOwnerViews(ctx context.Context, ownerID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM property_views
		WHERE owner_id = $1 AND created_at >= $2
	`

	var count int
	err := r.db.QueryRow(ctx, query, ownerID, since).Scan(&count)
	return count, err
}

// GetOwnerBookingOutcomes returns the owner's bookings created since the
// given time, reduced to the fields the aggregator needs.
func (r *Repository) GetOwnerBookingOutcomes(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]BookingOutcome, error) {
	query := `
		SELECT tenant_id, payment_status, booking_status, created_at
		FROM bookings
		WHERE owner_id = $1 AND created_at >= $2
	`

	rows, err := r.db.Query(ctx, query, ownerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []BookingOutcome
	for rows.Next() {
		var o BookingOutcome
		if err := rows.Scan(&o.TenantID, &o.PaymentStatus, &o.BookingStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}

// UpsertOwnerRisk replaces the owner's risk snapshot in full
func (r *Repository) UpsertOwnerRisk(ctx context.Context, summary *OwnerRiskSummary) error {
	query := `
		INSERT INTO owner_risk (
			owner_id, risk_score, risk_level,
			recent_views, paid_bookings, cancelled_bookings, repeated_pair_cancels,
			conversion_rate, suspicious_events,
			ranking_penalty_level, featured_eligible, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (owner_id) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			risk_level = EXCLUDED.risk_level,
			recent_views = EXCLUDED.recent_views,
			paid_bookings = EXCLUDED.paid_bookings,
			cancelled_bookings = EXCLUDED.cancelled_bookings,
			repeated_pair_cancels = EXCLUDED.repeated_pair_cancels,
			conversion_rate = EXCLUDED.conversion_rate,
			suspicious_events = EXCLUDED.suspicious_events,
			ranking_penalty_level = EXCLUDED.ranking_penalty_level,
			featured_eligible = EXCLUDED.featured_eligible,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		summary.OwnerID,
		summary.RiskScore,
		summary.RiskLevel,
		summary.Metrics.RecentViews,
		summary.Metrics.PaidBookings,
		summary.Metrics.CancelledOrFailedBookings,
		summary.Metrics.RepeatedPairCancels,
		summary.Metrics.ConversionRate,
		summary.Metrics.SuspiciousEvents30d,
		summary.Penalties.RankingPenaltyLevel,
		summary.Penalties.FeaturedEligible,
		summary.UpdatedAt,
	)

	return err
}

// ApplyOwnerPenalty overwrites the penalty fields on every property the owner
// has. One statement for the whole portfolio so all listings always agree.
func (r *Repository) ApplyOwnerPenalty(ctx context.Context, ownerID uuid.UUID, level PenaltyLevel, featuredEligible bool, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE properties
		SET ranking_penalty_level = $2,
		    featured_eligible = $3,
		    updated_at = $4
		WHERE owner_id = $1
	`

	tag, err := r.db.Exec(ctx, query, ownerID, level, featuredEligible, updatedAt)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// GetOwnerRisk retrieves the current snapshot for one owner
func (r *Repository) GetOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*OwnerRiskSummary, error) {
	query := `
		SELECT owner_id, risk_score, risk_level,
		       recent_views, paid_bookings, cancelled_bookings, repeated_pair_cancels,
		       conversion_rate, suspicious_events,
		       ranking_penalty_level, featured_eligible, updated_at
		FROM owner_risk
		WHERE owner_id = $1
	`

	summary, err := scanSummary(r.db.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return summary, nil
}

// GetTopRiskOwners returns risk snapshots sorted by score descending, with
// updated_at descending as the tie-break.
func (r *Repository) GetTopRiskOwners(ctx context.Context, limit int) ([]*OwnerRiskSummary, error) {
	query := `
		SELECT owner_id, risk_score, risk_level,
		       recent_views, paid_bookings, cancelled_bookings, repeated_pair_cancels,
		       conversion_rate, suspicious_events,
		       ranking_penalty_level, featured_eligible, updated_at
		FROM owner_risk
		ORDER BY risk_score DESC, updated_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*OwnerRiskSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// GetRecentEvents returns the most recent suspicious events across all owners
func (r *Repository) GetRecentEvents(ctx context.Context, limit int) ([]*SuspiciousEvent, error) {
	query := `
		SELECT id, event_type, owner_id, user_id, property_id, severity, details, created_at
		FROM suspicious_events
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	result := make([]*SuspiciousEvent, 0, len(events))
	for i := range events {
		result = append(result, &events[i])
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*OwnerRiskSummary, error) {
	var summary OwnerRiskSummary

	err := row.Scan(
		&summary.OwnerID,
		&summary.RiskScore,
		&summary.RiskLevel,
		&summary.Metrics.RecentViews,
		&summary.Metrics.PaidBookings,
		&summary.Metrics.CancelledOrFailedBookings,
		&summary.Metrics.RepeatedPairCancels,
		&summary.Metrics.ConversionRate,
		&summary.Metrics.SuspiciousEvents30d,
		&summary.Penalties.RankingPenaltyLevel,
		&summary.Penalties.FeaturedEligible,
		&summary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func scanEvents(rows pgx.Rows) ([]SuspiciousEvent, error) {
	var events []SuspiciousEvent
	for rows.Next() {
		var event SuspiciousEvent
		var detailsJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.OwnerID,
			&event.UserID,
			&event.PropertyID,
			&event.Severity,
			&detailsJSON,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
				event.Details = map[string]interface{}{}
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}
