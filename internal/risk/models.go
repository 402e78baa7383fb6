package risk

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel classifies an owner's risk score
type RiskLevel string

const (
	RiskLevelNormal RiskLevel = "normal"
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// PenaltyLevel is the search-ranking demotion tier applied to an owner's listings
type PenaltyLevel string

const (
	PenaltyNone   PenaltyLevel = "none"
	PenaltyLow    PenaltyLevel = "low"
	PenaltyMedium PenaltyLevel = "medium"
	PenaltyHigh   PenaltyLevel = "high"
)

// Well-known event types recorded by call sites
const (
	EventTypePaymentReversal = "payment_reversal"
	EventTypePaymentFailed   = "payment_failed"
	EventTypeFraudReport     = "fraud_report"
)

// Severity weights used by the callers
const (
	SeverityDefault         = 1
	SeverityPaymentReversal = 6
	SeverityFraudReport     = 18
)

// SuspiciousEvent is an append-only fraud signal tied to an owner.
// Events are never mutated or deleted; aggregation windows are read-time filters.
type SuspiciousEvent struct {
	ID         uuid.UUID              `json:"id"`
	EventType  string                 `json:"event_type"`
	OwnerID    uuid.UUID              `json:"owner_id"`
	UserID     *uuid.UUID             `json:"user_id,omitempty"`
	PropertyID *uuid.UUID             `json:"property_id,omitempty"`
	Severity   int                    `json:"severity"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// PropertyView is an append-only impression record, used as the denominator
// for conversion-rate signals.
type PropertyView struct {
	ID         uuid.UUID  `json:"id"`
	PropertyID uuid.UUID  `json:"property_id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BookingOutcome is the read-only slice of a booking the aggregator needs.
type BookingOutcome struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	PaymentStatus string    `json:"payment_status"`
	BookingStatus string    `json:"booking_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// RiskMetrics holds the window aggregates behind a risk score
type RiskMetrics struct {
	RecentViews               int     `json:"recent_views"`
	PaidBookings              int     `json:"paid_bookings"`
	CancelledOrFailedBookings int     `json:"cancelled_or_failed_bookings"`
	RepeatedPairCancels       int     `json:"repeated_pair_cancels"`
	ConversionRate            float64 `json:"conversion_rate"`
	SuspiciousEvents30d       int     `json:"suspicious_events_30d"`
}

// Penalties holds the listing-level consequences of a risk score
type Penalties struct {
	RankingPenaltyLevel PenaltyLevel `json:"ranking_penalty_level"`
	FeaturedEligible    bool         `json:"featured_eligible"`
}

// OwnerRiskSummary is the current risk snapshot for one owner.
// One row per owner, fully overwritten on each recompute.
type OwnerRiskSummary struct {
	OwnerID   uuid.UUID   `json:"owner_id"`
	RiskScore int         `json:"risk_score"`
	RiskLevel RiskLevel   `json:"risk_level"`
	Metrics   RiskMetrics `json:"metrics"`
	Penalties Penalties   `json:"penalties"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Dashboard is the operator view of the riskiest owners and latest signals
type Dashboard struct {
	TopOwners    []*OwnerRiskSummary `json:"top_owners"`
	RecentEvents []*SuspiciousEvent  `json:"recent_events"`
}

// TrackEventInput carries a suspicious-activity signal from a call site.
type TrackEventInput struct {
	EventType  string
	OwnerID    uuid.UUID
	UserID     *uuid.UUID
	PropertyID *uuid.UUID
	Severity   int
	Details    map[string]interface{}
}
