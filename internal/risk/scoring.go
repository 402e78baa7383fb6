package risk

import (
	"time"

	"github.com/google/uuid"
)

// Aggregation window and scoring thresholds. The scoring function is pure so
// every constant here is unit-testable without a database.
const (
	Window = 30 * 24 * time.Hour

	highViewsThreshold    = 30
	weakConversionViews   = 50
	weakConversionRate    = 0.02
	repeatedPairThreshold = 3
	manyCancelsThreshold  = 5
	conversionFlagPoints  = 20
	manyCancelsPoints     = 12
	repeatedPairPoints    = 10
	maxScore              = 100
	dashboardRecentEvents = 50
	dashboardDefaultLimit = 20
	dashboardMaxLimit     = 100
)

// Booking statuses the aggregator treats as a cancellation signal.
const (
	paymentStatusPaid      = "paid"
	bookingStatusCancelled = "cancelled"
	bookingStatusFailed    = "failed"
)

// ScoringInput is the window-filtered raw material for one owner's score.
type ScoringInput struct {
	Events      []SuspiciousEvent
	RecentViews int
	Bookings    []BookingOutcome
}

// ComputeRiskSummary derives an owner's risk snapshot from window aggregates.
// It performs no I/O; the caller supplies in-window rows and the clock.
func ComputeRiskSummary(ownerID uuid.UUID, in ScoringInput, now time.Time) OwnerRiskSummary {
	eventScore := 0
	for _, e := range in.Events {
		eventScore += e.Severity
	}

	paid := 0
	cancelled := 0
	cancelsByTenant := make(map[uuid.UUID]int)
	for _, b := range in.Bookings {
		if b.PaymentStatus == paymentStatusPaid {
			paid++
		}
		if b.BookingStatus == bookingStatusCancelled || b.BookingStatus == bookingStatusFailed {
			cancelled++
			cancelsByTenant[b.TenantID]++
		}
	}

	// A pair qualifies once it reaches the threshold; extra cancellations for
	// the same tenant do not count again.
	repeatedPairs := 0
	for _, n := range cancelsByTenant {
		if n >= repeatedPairThreshold {
			repeatedPairs++
		}
	}

	conversionRate := 0.0
	if in.RecentViews > 0 {
		conversionRate = float64(paid) / float64(in.RecentViews)
	}

	highViewsNoConversion := in.RecentViews >= highViewsThreshold && paid == 0
	weakConversion := in.RecentViews >= weakConversionViews && conversionRate < weakConversionRate

	score := eventScore
	if highViewsNoConversion || weakConversion {
		score += conversionFlagPoints
	}
	if cancelled >= manyCancelsThreshold {
		score += manyCancelsPoints
	}
	score += repeatedPairs * repeatedPairPoints

	score = clampScore(score)

	level := LevelForScore(score)
	penaltyLevel, featured := PenaltyForScore(score)

	return OwnerRiskSummary{
		OwnerID:   ownerID,
		RiskScore: score,
		RiskLevel: level,
		Metrics: RiskMetrics{
			RecentViews:               in.RecentViews,
			PaidBookings:              paid,
			CancelledOrFailedBookings: cancelled,
			RepeatedPairCancels:       repeatedPairs,
			ConversionRate:            conversionRate,
			SuspiciousEvents30d:       len(in.Events),
		},
		Penalties: Penalties{
			RankingPenaltyLevel: penaltyLevel,
			FeaturedEligible:    featured,
		},
		UpdatedAt: now,
	}
}

// LevelForScore maps a clamped score to a risk level.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 60:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	case score >= 15:
		return RiskLevelLow
	default:
		return RiskLevelNormal
	}
}

// PenaltyForScore maps a clamped score to a ranking penalty tier and
// featured-listing eligibility.
func PenaltyForScore(score int) (PenaltyLevel, bool) {
	switch {
	case score >= 60:
		return PenaltyHigh, false
	case score >= 30:
		return PenaltyMedium, false
	case score >= 15:
		return PenaltyLow, true
	default:
		return PenaltyNone, true
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
