package reviews

import (
	"time"

	"github.com/google/uuid"
)

// Review is a tenant's rating of a listing
type Review struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingSummary aggregates a listing's reviews
type RatingSummary struct {
	PropertyID    uuid.UUID `json:"property_id"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
}

// SubmitReviewRequest is the payload for reviewing a listing
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// FraudReportRequest is the payload for reporting an owner
type FraudReportRequest struct {
	PropertyID *uuid.UUID `json:"property_id"`
	Reason     string     `json:"reason" binding:"required,max=2000"`
}
