package risk

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var scoringNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func eventWithSeverity(severity int) SuspiciousEvent {
	return SuspiciousEvent{
		ID:        uuid.New(),
		EventType: EventTypePaymentFailed,
		OwnerID:   uuid.New(),
		Severity:  severity,
		CreatedAt: scoringNow.Add(-time.Hour),
	}
}

func cancelledBooking(tenantID uuid.UUID) BookingOutcome {
	return BookingOutcome{
		TenantID:      tenantID,
		PaymentStatus: "failed",
		BookingStatus: "cancelled",
		CreatedAt:     scoringNow.Add(-time.Hour),
	}
}

func paidBooking(tenantID uuid.UUID) BookingOutcome {
	return BookingOutcome{
		TenantID:      tenantID,
		PaymentStatus: "paid",
		BookingStatus: "confirmed",
		CreatedAt:     scoringNow.Add(-time.Hour),
	}
}

func TestComputeRiskSummaryZeroCase(t *testing.T) {
	ownerID := uuid.New()

	summary := ComputeRiskSummary(ownerID, ScoringInput{}, scoringNow)

	assert.Equal(t, ownerID, summary.OwnerID)
	assert.Equal(t, 0, summary.RiskScore)
	assert.Equal(t, RiskLevelNormal, summary.RiskLevel)
	assert.Equal(t, PenaltyNone, summary.Penalties.RankingPenaltyLevel)
	assert.True(t, summary.Penalties.FeaturedEligible)
	assert.Equal(t, 0.0, summary.Metrics.ConversionRate)
	assert.Equal(t, scoringNow, summary.UpdatedAt)
}

func TestComputeRiskSummaryThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		eventScore   int
		wantLevel    RiskLevel
		wantPenalty  PenaltyLevel
		wantFeatured bool
	}{
		{"score 14 is normal", 14, RiskLevelNormal, PenaltyNone, true},
		{"score 15 is low", 15, RiskLevelLow, PenaltyLow, true},
		{"score 29 is low", 29, RiskLevelLow, PenaltyLow, true},
		{"score 30 is medium", 30, RiskLevelMedium, PenaltyMedium, false},
		{"score 59 is medium", 59, RiskLevelMedium, PenaltyMedium, false},
		{"score 60 is high", 60, RiskLevelHigh, PenaltyHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := ComputeRiskSummary(uuid.New(), ScoringInput{
				Events: []SuspiciousEvent{eventWithSeverity(tt.eventScore)},
			}, scoringNow)

			assert.Equal(t, tt.eventScore, summary.RiskScore)
			assert.Equal(t, tt.wantLevel, summary.RiskLevel)
			assert.Equal(t, tt.wantPenalty, summary.Penalties.RankingPenaltyLevel)
			assert.Equal(t, tt.wantFeatured, summary.Penalties.FeaturedEligible)
		})
	}
}

func TestComputeRiskSummaryClampBound(t *testing.T) {
	tenant := uuid.New()
	input := ScoringInput{
		Events:      []SuspiciousEvent{eventWithSeverity(500)},
		RecentViews: 200,
	}
	for i := 0; i < 10; i++ {
		input.Bookings = append(input.Bookings, cancelledBooking(tenant))
	}

	summary := ComputeRiskSummary(uuid.New(), input, scoringNow)

	assert.Equal(t, 100, summary.RiskScore)
	assert.Equal(t, RiskLevelHigh, summary.RiskLevel)
}

func TestComputeRiskSummaryMonotonicity(t *testing.T) {
	ownerID := uuid.New()
	input := ScoringInput{
		Events:      []SuspiciousEvent{eventWithSeverity(6), eventWithSeverity(3)},
		RecentViews: 40,
		Bookings:    []BookingOutcome{paidBooking(uuid.New())},
	}

	before := ComputeRiskSummary(ownerID, input, scoringNow)

	input.Events = append(input.Events, eventWithSeverity(18))
	after := ComputeRiskSummary(ownerID, input, scoringNow)

	assert.GreaterOrEqual(t, after.RiskScore, before.RiskScore)
}

func TestComputeRiskSummaryIdempotent(t *testing.T) {
	ownerID := uuid.New()
	tenant := uuid.New()
	input := ScoringInput{
		Events:      []SuspiciousEvent{eventWithSeverity(6)},
		RecentViews: 25,
		Bookings: []BookingOutcome{
			paidBooking(tenant),
			cancelledBooking(tenant),
		},
	}

	first := ComputeRiskSummary(ownerID, input, scoringNow)
	second := ComputeRiskSummary(ownerID, input, scoringNow)

	assert.Equal(t, first, second)
}

func TestComputeRiskSummaryHighViewsNoConversion(t *testing.T) {
	// 30 views and zero paid bookings contribute +20 even with no events
	summary := ComputeRiskSummary(uuid.New(), ScoringInput{
		RecentViews: 30,
	}, scoringNow)

	assert.Equal(t, 20, summary.RiskScore)
	assert.Equal(t, RiskLevelLow, summary.RiskLevel)
}

func TestComputeRiskSummaryBelowViewThresholdNoFlag(t *testing.T) {
	summary := ComputeRiskSummary(uuid.New(), ScoringInput{
		RecentViews: 29,
	}, scoringNow)

	assert.Equal(t, 0, summary.RiskScore)
}

func TestComputeRiskSummaryWeakConversion(t *testing.T) {
	// 100 views with one paid booking is a 1% conversion rate
	summary := ComputeRiskSummary(uuid.New(), ScoringInput{
		RecentViews: 100,
		Bookings:    []BookingOutcome{paidBooking(uuid.New())},
	}, scoringNow)

	assert.Equal(t, 20, summary.RiskScore)
	assert.InDelta(t, 0.01, summary.Metrics.ConversionRate, 1e-9)
}

func TestComputeRiskSummaryConversionExactlyAtRateNoFlag(t *testing.T) {
	// 50 views with one paid booking is exactly 2%, not below it
	summary := ComputeRiskSummary(uuid.New(), ScoringInput{
		RecentViews: 50,
		Bookings:    []BookingOutcome{paidBooking(uuid.New())},
	}, scoringNow)

	assert.Equal(t, 0, summary.RiskScore)
}

func TestComputeRiskSummaryRepeatedPairCancels(t *testing.T) {
	ownerID := uuid.New()
	tenant := uuid.New()

	input := ScoringInput{
		Bookings: []BookingOutcome{
			cancelledBooking(tenant),
			cancelledBooking(tenant),
			cancelledBooking(tenant),
		},
	}

	summary := ComputeRiskSummary(ownerID, input, scoringNow)
	assert.Equal(t, 1, summary.Metrics.RepeatedPairCancels)
	assert.Equal(t, 10, summary.RiskScore)

	// A fourth cancellation for the same pair does not count again
	input.Bookings = append(input.Bookings, cancelledBooking(tenant))
	summary = ComputeRiskSummary(ownerID, input, scoringNow)
	assert.Equal(t, 1, summary.Metrics.RepeatedPairCancels)
	assert.Equal(t, 10, summary.RiskScore)
}

func TestComputeRiskSummaryTwoCancelsBelowPairThreshold(t *testing.T) {
	tenant := uuid.New()
	summary := ComputeRiskSummary(uuid.New(), ScoringInput{
		Bookings: []BookingOutcome{
			cancelledBooking(tenant),
			cancelledBooking(tenant),
		},
	}, scoringNow)

	assert.Equal(t, 0, summary.Metrics.RepeatedPairCancels)
	assert.Equal(t, 0, summary.RiskScore)
}

func TestComputeRiskSummaryManyCancellations(t *testing.T) {
	input := ScoringInput{}
	for i := 0; i < 5; i++ {
		input.Bookings = append(input.Bookings, cancelledBooking(uuid.New()))
	}

	summary := ComputeRiskSummary(uuid.New(), input, scoringNow)

	assert.Equal(t, 5, summary.Metrics.CancelledOrFailedBookings)
	assert.Equal(t, 0, summary.Metrics.RepeatedPairCancels)
	assert.Equal(t, 12, summary.RiskScore)
}

func TestComputeRiskSummaryCombinedSignals(t *testing.T) {
	tenant := uuid.New()
	input := ScoringInput{
		Events:      []SuspiciousEvent{eventWithSeverity(6), eventWithSeverity(18)},
		RecentViews: 35,
	}
	for i := 0; i < 3; i++ {
		input.Bookings = append(input.Bookings, cancelledBooking(tenant))
	}
	input.Bookings = append(input.Bookings,
		cancelledBooking(uuid.New()),
		cancelledBooking(uuid.New()),
	)

	summary := ComputeRiskSummary(uuid.New(), input, scoringNow)

	// 24 events + 20 no-conversion + 12 many cancels + 10 repeated pair
	assert.Equal(t, 66, summary.RiskScore)
	assert.Equal(t, RiskLevelHigh, summary.RiskLevel)
	assert.Equal(t, PenaltyHigh, summary.Penalties.RankingPenaltyLevel)
	assert.False(t, summary.Penalties.FeaturedEligible)
}

func TestPenaltyForScore(t *testing.T) {
	level, featured := PenaltyForScore(0)
	assert.Equal(t, PenaltyNone, level)
	assert.True(t, featured)

	level, featured = PenaltyForScore(15)
	assert.Equal(t, PenaltyLow, level)
	assert.True(t, featured)

	level, featured = PenaltyForScore(30)
	assert.Equal(t, PenaltyMedium, level)
	assert.False(t, featured)

	level, featured = PenaltyForScore(60)
	assert.Equal(t, PenaltyHigh, level)
	assert.False(t, featured)
}
