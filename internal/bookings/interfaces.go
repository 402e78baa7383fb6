package bookings

import (
	"context"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
)

// RepositoryInterface defines the bookings repository contract
type RepositoryInterface interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status BookingStatus) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Booking, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Booking, int64, error)
}

// PropertyGetter resolves a listing so a booking can denormalize its owner.
type PropertyGetter interface {
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
}

// Listing is the slice of a property a booking needs.
type Listing struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	RentMonthly int64
	Active      bool
}

// RiskRecorder is the slice of the risk pipeline the booking flow feeds.
type RiskRecorder interface {
	TrackSuspiciousEvent(ctx context.Context, in risk.TrackEventInput) error
	RecomputeOwnerRisk(ctx context.Context, ownerID uuid.UUID) (*risk.OwnerRiskSummary, error)
}
